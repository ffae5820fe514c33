package ledger

import "fmt"

// IndexMarker is the value stored under every secondary index key. It is
// never zero-length because some range reads treat empty values as absent.
var IndexMarker = []byte{0x00}

// PutIndex writes one composite index entry, e.g. PutIndex(l, "username~id", name, id).
func PutIndex(l Ledger, index string, attrs ...string) error {
	key, err := l.CreateCompositeKey(index, attrs)
	if err != nil {
		return fmt.Errorf("failed to create composite key for index '%s': %w", index, err)
	}
	if err := l.PutState(key, IndexMarker); err != nil {
		return fmt.Errorf("failed to write index entry for '%s': %w", index, err)
	}
	return nil
}

// IndexExists reports whether index holds any entry starting with prefix.
func IndexExists(l Ledger, index string, prefix ...string) (bool, error) {
	it, err := l.ScanPartialCompositeKey(index, prefix)
	if err != nil {
		return false, fmt.Errorf("failed to scan index '%s': %w", index, err)
	}
	defer it.Close()
	return it.HasNext(), nil
}
