// Package pebbleledger is an ordered key-value world state on Pebble.
//
// It follows the key layout of a peer's state database: simple keys are
// plain strings, composite keys start with 0x00 and are range-scanned by
// prefix. Rich queries are evaluated in-process over the JSON values. It is
// used to exercise the chaincode logic outside a peer.
package pebbleledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"

	"jobledger/ledger"
)

const compositeKeyNamespace = "\x00"

// Options configures the Pebble-backed ledger.
type Options struct {
	// DataDir is the Pebble directory. Empty means in-memory.
	DataDir string
	// Namespace is reported on every returned KV.
	Namespace string
	// PebbleOptions allows advanced tuning. If nil, defaults are used.
	PebbleOptions *pebble.Options
}

// Ledger implements ledger.Ledger.
type Ledger struct {
	db        *pebble.DB
	namespace string
}

var _ ledger.Ledger = (*Ledger)(nil)

// Open creates or opens a Pebble database with the provided options.
func Open(opts Options) (*Ledger, error) {
	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	dir := opts.DataDir
	if dir == "" {
		po.FS = vfs.NewMem()
		dir = "ledger"
	}
	db, err := pebble.Open(dir, po)
	if err != nil {
		return nil, fmt.Errorf("pebble: open '%s': %w", dir, err)
	}
	return &Ledger{db: db, namespace: opts.Namespace}, nil
}

// OpenInMemory is Open with an in-memory filesystem.
func OpenInMemory() (*Ledger, error) {
	return Open(Options{})
}

// Close closes the Pebble database.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Ledger) GetState(key string) ([]byte, error) {
	val, closer, err := l.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

func (l *Ledger) PutState(key string, value []byte) error {
	if key == "" {
		return errors.New("key must not be an empty string")
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("key '%s' is not a valid UTF-8 string", key)
	}
	return l.db.Set([]byte(key), value, pebble.NoSync)
}

func (l *Ledger) CreateCompositeKey(index string, attrs []string) (string, error) {
	return shim.CreateCompositeKey(index, attrs)
}

// ScanPartialCompositeKey iterates lazily over keys sharing the prefix.
func (l *Ledger) ScanPartialCompositeKey(index string, prefix []string) (ledger.Iterator, error) {
	start, err := shim.CreateCompositeKey(index, prefix)
	if err != nil {
		return nil, err
	}
	end := start + string(utf8.MaxRune)
	iter, err := l.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(start),
		UpperBound: []byte(end),
	})
	if err != nil {
		return nil, err
	}
	iter.First()
	return &rangeIterator{iter: iter, namespace: l.namespace}, nil
}

// Query evaluates q over every simple key holding a JSON object.
func (l *Ledger) Query(q ledger.Query) (ledger.Iterator, error) {
	iter, err := l.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	excluded := make(map[string]bool, len(q.ExcludeKeys))
	for _, k := range q.ExcludeKeys {
		excluded[k] = true
	}

	var docs []document
	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		if strings.HasPrefix(key, compositeKeyNamespace) || excluded[key] {
			continue
		}
		var fields map[string]interface{}
		if err := json.Unmarshal(iter.Value(), &fields); err != nil {
			continue
		}
		if !hasAll(fields, q.Exists) {
			continue
		}
		docs = append(docs, document{
			key:    key,
			value:  append([]byte(nil), iter.Value()...),
			fields: fields,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for _, s := range q.Sort {
			var c int
			if s.Field == ledger.KeyField {
				c = strings.Compare(docs[i].key, docs[j].key)
			} else {
				c = collate(docs[i].fields[s.Field], docs[j].fields[s.Field])
			}
			if c == 0 {
				continue
			}
			if s.Order == ledger.Desc {
				return c > 0
			}
			return c < 0
		}
		return docs[i].key < docs[j].key
	})
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}

	kvs := make([]*queryresult.KV, 0, len(docs))
	for _, d := range docs {
		kvs = append(kvs, &queryresult.KV{Namespace: l.namespace, Key: d.key, Value: d.value})
	}
	return &sliceIterator{kvs: kvs}, nil
}

type document struct {
	key    string
	value  []byte
	fields map[string]interface{}
}

func hasAll(fields map[string]interface{}, names []string) bool {
	for _, n := range names {
		if _, ok := fields[n]; !ok {
			return false
		}
	}
	return true
}

// collate orders JSON values the way CouchDB does for mixed types:
// null < false < true < numbers < strings < arrays < objects.
func collate(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		return strings.Compare(av, b.(string))
	}
	return 0
}

func rank(v interface{}) int {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 2
		}
		return 1
	case float64:
		return 3
	case string:
		return 4
	case []interface{}:
		return 5
	default:
		return 6
	}
}
