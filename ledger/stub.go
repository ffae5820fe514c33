package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// StubLedger is the Ledger of a live transaction, backed by the chaincode stub.
type StubLedger struct {
	Stub shim.ChaincodeStubInterface
}

// NewStubLedger wraps stub.
func NewStubLedger(stub shim.ChaincodeStubInterface) *StubLedger {
	return &StubLedger{Stub: stub}
}

func (l *StubLedger) GetState(key string) ([]byte, error) {
	return l.Stub.GetState(key)
}

func (l *StubLedger) PutState(key string, value []byte) error {
	return l.Stub.PutState(key, value)
}

// Query runs q as a CouchDB rich query. It fails on LevelDB state databases.
func (l *StubLedger) Query(q Query) (Iterator, error) {
	queryBytes, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rich query: %w", err)
	}
	logger.Debugf("StubLedger.Query: %s", queryBytes)
	it, err := l.Stub.GetQueryResult(string(queryBytes))
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (l *StubLedger) CreateCompositeKey(index string, attrs []string) (string, error) {
	return l.Stub.CreateCompositeKey(index, attrs)
}

func (l *StubLedger) ScanPartialCompositeKey(index string, prefix []string) (Iterator, error) {
	it, err := l.Stub.GetStateByPartialCompositeKey(index, prefix)
	if err != nil {
		return nil, err
	}
	return it, nil
}
