package pebbleledger

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
)

var errExhausted = errors.New("iterator exhausted")

// rangeIterator walks a positioned Pebble iterator.
type rangeIterator struct {
	iter      *pebble.Iterator
	namespace string
	closed    bool
}

func (it *rangeIterator) HasNext() bool {
	return !it.closed && it.iter.Valid()
}

func (it *rangeIterator) Next() (*queryresult.KV, error) {
	if !it.HasNext() {
		if it.closed {
			return nil, errExhausted
		}
		if err := it.iter.Error(); err != nil {
			return nil, err
		}
		return nil, errExhausted
	}
	kv := &queryresult.KV{
		Namespace: it.namespace,
		Key:       string(it.iter.Key()),
		Value:     append([]byte(nil), it.iter.Value()...),
	}
	it.iter.Next()
	return kv, nil
}

func (it *rangeIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.iter.Close()
}

// sliceIterator serves results that had to be materialized, e.g. sorted ones.
type sliceIterator struct {
	kvs []*queryresult.KV
	pos int
}

func (it *sliceIterator) HasNext() bool {
	return it.pos < len(it.kvs)
}

func (it *sliceIterator) Next() (*queryresult.KV, error) {
	if !it.HasNext() {
		return nil, errExhausted
	}
	kv := it.kvs[it.pos]
	it.pos++
	return kv, nil
}

func (it *sliceIterator) Close() error {
	it.kvs = nil
	it.pos = 0
	return nil
}
