package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// Helper resolves per-transaction facts that every node endorsing the same
// proposal agrees on.
type Helper interface {
	// CallerID is the submitter's unique id: client id concatenated with
	// the id of the issuing MSP.
	CallerID() (string, error)
	// Timestamp is the ledger-agreed transaction time in milliseconds.
	Timestamp() (int64, error)
}

const (
	fnGetCreatorID = "getCreatorId"
	fnGetTimestamp = "getTimestamp"
)

// HelperCallError is returned when a helper call does not succeed.
type HelperCallError struct {
	Function string
	Status   int32
	Message  string
}

func (e *HelperCallError) Error() string {
	return fmt.Sprintf("helper call '%s' failed with status %d: %s", e.Function, e.Status, e.Message)
}

// ChaincodeHelper asks a helper chaincode deployed on Channel.
type ChaincodeHelper struct {
	Stub      shim.ChaincodeStubInterface
	Chaincode string
	Channel   string
}

func (h *ChaincodeHelper) call(function string) (string, error) {
	resp := h.Stub.InvokeChaincode(h.Chaincode, [][]byte{[]byte(function)}, h.Channel)
	if resp.Status != shim.OK {
		return "", &HelperCallError{Function: function, Status: resp.Status, Message: resp.Message}
	}
	return string(resp.Payload), nil
}

func (h *ChaincodeHelper) CallerID() (string, error) {
	id, err := h.call(fnGetCreatorID)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", &HelperCallError{Function: fnGetCreatorID, Status: shim.OK, Message: "empty creator id"}
	}
	return id, nil
}

func (h *ChaincodeHelper) Timestamp() (int64, error) {
	raw, err := h.call(fnGetTimestamp)
	if err != nil {
		return 0, err
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &HelperCallError{Function: fnGetTimestamp, Status: shim.OK, Message: fmt.Sprintf("timestamp '%s' is not an integer", raw)}
	}
	return ts, nil
}

// LocalHelper derives the same facts in-process from the client identity
// and the proposal header.
type LocalHelper struct {
	Stub     shim.ChaincodeStubInterface
	Identity cid.ClientIdentity
}

func (h *LocalHelper) CallerID() (string, error) {
	if h.Identity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := h.Identity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID: %w", err)
	}
	mspID, err := h.Identity.GetMSPID()
	if err != nil {
		return "", fmt.Errorf("failed to get client MSPID: %w", err)
	}
	if id == "" || mspID == "" {
		return "", errors.New("client identity ID or MSPID is empty")
	}
	return id + mspID, nil
}

func (h *LocalHelper) Timestamp() (int64, error) {
	ts, err := h.Stub.GetTxTimestamp()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime().UnixMilli(), nil
}
