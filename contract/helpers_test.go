package contract

import (
	"testing"

	"jobledger/ledger/pebbleledger"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHelper is a testify mock of ledger.Helper.
type MockHelper struct {
	mock.Mock
}

func (m *MockHelper) CallerID() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockHelper) Timestamp() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// callerHelper answers as a fixed caller at a fixed time.
func callerHelper(id string, now int64) *MockHelper {
	h := new(MockHelper)
	h.On("CallerID").Return(id, nil)
	h.On("Timestamp").Return(now, nil)
	return h
}

func newTestLedger(t *testing.T) *pebbleledger.Ledger {
	t.Helper()
	l, err := pebbleledger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// register creates an identity for id at registryDate.
func register(t *testing.T, l *pebbleledger.Ledger, id, username string, registryDate int64) {
	t.Helper()
	got, err := NewIdentityRegistry(l, callerHelper(id, registryDate)).CreateIdentity(username, "pk-"+username)
	require.NoError(t, err)
	require.Equal(t, id, got)
}
