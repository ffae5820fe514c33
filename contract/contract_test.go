package contract

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"jobledger/config"
	"jobledger/model"

	"github.com/golang/protobuf/proto"
	"github.com/google/uuid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCreator returns a serialized identity with a self-signed certificate for cn.
func newCreator(t *testing.T, mspID, cn string) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn, Organization: []string{mspID}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	creator, err := proto.Marshal(&msp.SerializedIdentity{
		Mspid:   mspID,
		IdBytes: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	})
	require.NoError(t, err)
	return creator
}

func newChaincodeStub(t *testing.T, cfg config.Config) *shimtest.MockStub {
	t.Helper()
	cc, err := contractapi.NewChaincode(NewUserContract(cfg), NewKeypairContract(cfg))
	require.NoError(t, err)
	return shimtest.NewMockStub("jobledger", cc)
}

func localConfig() config.Config {
	cfg := config.Default()
	cfg.Helper.Mode = config.HelperModeLocal
	return cfg
}

func invoke(stub *shimtest.MockStub, creator []byte, fn string, args ...string) peer.Response {
	stub.Creator = creator
	input := [][]byte{[]byte(fn)}
	for _, a := range args {
		input = append(input, []byte(a))
	}
	return stub.MockInvoke(uuid.NewString(), input)
}

func requireOK(t *testing.T, resp peer.Response) []byte {
	t.Helper()
	require.Equal(t, int32(shim.OK), resp.Status, resp.Message)
	return resp.Payload
}

func TestUserContract_CreateAndGetUser(t *testing.T) {
	stub := newChaincodeStub(t, localConfig())
	alice := newCreator(t, "Org1MSP", "alice")
	bob := newCreator(t, "Org1MSP", "bob")

	aliceID := string(requireOK(t, invoke(stub, alice, "User:CreateUser", "alice", "alice-public-key")))
	assert.NotEmpty(t, aliceID)
	assert.Contains(t, aliceID, "Org1MSP")

	var identity model.Identity
	require.NoError(t, json.Unmarshal(requireOK(t, invoke(stub, bob, "User:GetUser", aliceID)), &identity))
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "alice-public-key", identity.PublicKey)
	assert.Equal(t, int64(0), identity.LastAssignment)
	assert.False(t, identity.Verified)

	var own model.Identity
	require.NoError(t, json.Unmarshal(requireOK(t, invoke(stub, alice, "User:GetUser")), &own))
	assert.Equal(t, identity, own)

	resp := invoke(stub, bob, "User:CreateUser", "alice", "bob-public-key")
	assert.Equal(t, int32(shim.ERROR), resp.Status)
	assert.Contains(t, resp.Message, ErrDuplicateUsername.Error())

	resp = invoke(stub, bob, "User:GetUser")
	assert.Equal(t, int32(shim.ERROR), resp.Status)
	assert.Contains(t, resp.Message, ErrNotFound.Error())
}

func TestUserContract_ArgumentCount(t *testing.T) {
	stub := newChaincodeStub(t, localConfig())
	alice := newCreator(t, "Org1MSP", "alice")

	resp := invoke(stub, alice, "User:GetUser", "a", "b")
	assert.Equal(t, int32(shim.ERROR), resp.Status)
	assert.Contains(t, resp.Message, "incorrect number of arguments")

	resp = invoke(stub, alice, "User:CreateUser", "alice", "pk", "extra")
	assert.Equal(t, int32(shim.ERROR), resp.Status)
	assert.Contains(t, resp.Message, "incorrect number of arguments")
}

func TestUserContract_GetUserDocument(t *testing.T) {
	stub := newChaincodeStub(t, localConfig())
	alice := newCreator(t, "Org1MSP", "alice")
	aliceID := string(requireOK(t, invoke(stub, alice, "User:CreateUser", "alice", "alice-public-key")))

	var doc model.DIDDocument
	require.NoError(t, json.Unmarshal(requireOK(t, invoke(stub, alice, "User:GetUserDocument")), &doc))
	assert.Equal(t, IdentityDID("jobledger", aliceID), doc.ID)
	require.Len(t, doc.VerificationMethod, 1)
	assert.NotEmpty(t, doc.VerificationMethod[0].PublicKeyMultibase)
}

func TestKeypairContract_ShareAndRead(t *testing.T) {
	stub := newChaincodeStub(t, localConfig())
	alice := newCreator(t, "Org1MSP", "alice")
	bob := newCreator(t, "Org1MSP", "bob")
	carol := newCreator(t, "Org2MSP", "carol")

	aliceID := string(requireOK(t, invoke(stub, alice, "User:CreateUser", "alice", "pk-a")))
	bobID := string(requireOK(t, invoke(stub, bob, "User:CreateUser", "bob", "pk-b")))

	sharedWith, err := json.Marshal(map[string]model.KeypairShare{bobID: {Keypair: "ciphertext-for-bob"}})
	require.NoError(t, err)
	requireOK(t, invoke(stub, alice, "Keypair:CreateSharedKeypair", string(sharedWith), "group-1", "ciphertext-for-alice", "job"))

	key := SharedKeypairKey("job", aliceID, "group-1")
	assert.Equal(t, "ciphertext-for-alice", string(requireOK(t, invoke(stub, alice, "Keypair:GetKeypair", key))))
	assert.Equal(t, "ciphertext-for-bob", string(requireOK(t, invoke(stub, bob, "Keypair:GetKeypair", key))))

	resp := invoke(stub, carol, "Keypair:GetKeypair", key)
	assert.Equal(t, int32(shim.ERROR), resp.Status)
	assert.Contains(t, resp.Message, ErrNotShared.Error())

	resp = invoke(stub, alice, "Keypair:CreateSharedKeypair", "{}", "group-1", "again", "job")
	assert.Equal(t, int32(shim.ERROR), resp.Status)
	assert.Contains(t, resp.Message, ErrAlreadyExists.Error())
	assert.Equal(t, "ciphertext-for-alice", string(requireOK(t, invoke(stub, alice, "Keypair:GetKeypair", key))))

	resp = invoke(stub, alice, "Keypair:CreateSharedKeypair", "not-json", "group-2", "c", "job")
	assert.Equal(t, int32(shim.ERROR), resp.Status)
	assert.Contains(t, resp.Message, ErrInvalidArgument.Error())
}

// helperChaincode stands in for the helper chaincode on the channel.
type helperChaincode struct {
	creator   string
	timestamp string
	status    int32
}

func (h *helperChaincode) Init(stub shim.ChaincodeStubInterface) peer.Response {
	return shim.Success(nil)
}

func (h *helperChaincode) Invoke(stub shim.ChaincodeStubInterface) peer.Response {
	if h.status != shim.OK {
		return peer.Response{Status: h.status, Message: "helper unavailable"}
	}
	fn, _ := stub.GetFunctionAndParameters()
	switch fn {
	case "getCreatorId":
		return shim.Success([]byte(h.creator))
	case "getTimestamp":
		return shim.Success([]byte(h.timestamp))
	}
	return shim.Error("unknown helper function " + fn)
}

func newHelperBackedStub(t *testing.T, helper *helperChaincode) *shimtest.MockStub {
	t.Helper()
	stub := newChaincodeStub(t, config.Default())
	stub.MockPeerChaincode("helper", shimtest.NewMockStub("helper", helper), "mychannel")
	return stub
}

func TestUserContract_HelperChaincode(t *testing.T) {
	helper := &helperChaincode{creator: "u-1", timestamp: "1234", status: shim.OK}
	stub := newHelperBackedStub(t, helper)
	creator := newCreator(t, "Org1MSP", "alice")

	assert.Equal(t, "u-1", string(requireOK(t, invoke(stub, creator, "User:CreateUser", "alice", "pk"))))

	var identity model.Identity
	require.NoError(t, json.Unmarshal(requireOK(t, invoke(stub, creator, "User:GetUser", "u-1")), &identity))
	assert.Equal(t, int64(1234), identity.RegistryDate)
}

func TestUserContract_HelperChaincodeFailure(t *testing.T) {
	helper := &helperChaincode{status: shim.ERROR}
	stub := newHelperBackedStub(t, helper)
	creator := newCreator(t, "Org1MSP", "alice")

	resp := invoke(stub, creator, "User:CreateUser", "alice", "pk")
	assert.Equal(t, int32(shim.ERROR), resp.Status)
	assert.Contains(t, resp.Message, "helper call 'getCreatorId' failed with status 500: helper unavailable")

	helper.status = shim.OK
	helper.creator, helper.timestamp = "u-1", "1"
	requireOK(t, invoke(stub, creator, "User:CreateUser", "alice", "pk"))
}

func TestUserContract_GetNextWorkersIdsArguments(t *testing.T) {
	stub := newChaincodeStub(t, localConfig())
	alice := newCreator(t, "Org1MSP", "alice")

	assert.JSONEq(t, `[]`, string(requireOK(t, invoke(stub, alice, "User:GetNextWorkersIds", "0"))))

	for _, count := range []string{"-1", "three", ""} {
		resp := invoke(stub, alice, "User:GetNextWorkersIds", count)
		assert.Equal(t, int32(shim.ERROR), resp.Status, count)
		assert.Contains(t, resp.Message, ErrInvalidArgument.Error(), count)
	}

	resp := invoke(stub, alice, "User:GetNextWorkersIds", "1", "2")
	assert.Equal(t, int32(shim.ERROR), resp.Status)
	assert.Contains(t, resp.Message, "incorrect number of arguments")

	resp = invoke(stub, alice, "User:GetNextWorkersIds")
	assert.Equal(t, int32(shim.ERROR), resp.Status)
}
