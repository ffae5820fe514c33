// Package ledger is the thin key-value contract the chaincode logic runs on.
//
// Everything above this package sees the world state only through Ledger:
// point reads and writes, rich queries over JSON values, and composite keys
// used as secondary indexes. Implementations provide no locking; concurrent
// proposals are reconciled by the platform's MVCC check at commit time.
package ledger

import (
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("jobledger.ledger")

// Iterator is a lazy, finite, non-restartable sequence of key/value pairs.
// The shim's StateQueryIteratorInterface satisfies it.
type Iterator interface {
	HasNext() bool
	Next() (*queryresult.KV, error)
	Close() error
}

// Ledger is the world state as seen by one transaction.
type Ledger interface {
	// GetState returns nil, nil when the key is absent.
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	Query(q Query) (Iterator, error)
	CreateCompositeKey(index string, attrs []string) (string, error)
	ScanPartialCompositeKey(index string, prefix []string) (Iterator, error)
}

// Collect drains it into a slice, stopping after limit entries when limit > 0.
// The iterator is closed on every path.
func Collect(it Iterator, limit int) ([]*queryresult.KV, error) {
	defer func() {
		if err := it.Close(); err != nil {
			logger.Warningf("Collect: failed to close iterator: %v", err)
		}
	}()

	results := []*queryresult.KV{}
	for it.HasNext() {
		if limit > 0 && len(results) >= limit {
			break
		}
		kv, err := it.Next()
		if err != nil {
			return nil, err
		}
		// Zero-length values read as absent on some state databases.
		if len(kv.Value) == 0 {
			continue
		}
		results = append(results, kv)
	}
	return results, nil
}
