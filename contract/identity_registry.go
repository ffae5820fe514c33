package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"jobledger/ledger"
	"jobledger/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var regLogger = flogging.MustGetLogger("jobledger.registry")

// Index names for identity records. Attribute order is part of the on-ledger format.
const (
	usernameIndex     = "username~id"
	registryDateIndex = "registryDate~id"
)

// IdentityRegistry registers identities and looks them up by id.
type IdentityRegistry struct {
	Ledger ledger.Ledger
	Helper ledger.Helper
}

// NewIdentityRegistry creates a registry over one transaction's ledger view.
func NewIdentityRegistry(l ledger.Ledger, h ledger.Helper) *IdentityRegistry {
	return &IdentityRegistry{Ledger: l, Helper: h}
}

// CreateIdentity registers the caller under username and returns the caller id.
//
// The username check and the writes are not atomic across endorsers. Two
// proposals racing for one username are settled by the commit-time
// read-set check, or not at all if they were endorsed on disjoint snapshots.
func (r *IdentityRegistry) CreateIdentity(username, publicKey string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", fmt.Errorf("%w: username cannot be empty", ErrInvalidArgument)
	}

	taken, err := ledger.IndexExists(r.Ledger, usernameIndex, username)
	if err != nil {
		return "", fmt.Errorf("failed to check username availability for '%s': %w", username, err)
	}
	if taken {
		return "", fmt.Errorf("%w: '%s'", ErrDuplicateUsername, username)
	}

	id, err := r.Helper.CallerID()
	if err != nil {
		return "", fmt.Errorf("failed to resolve caller id: %w", err)
	}
	existing, err := r.Ledger.GetState(id)
	if err != nil {
		return "", fmt.Errorf("failed to read identity state for '%s': %w", id, err)
	}
	if len(existing) > 0 {
		return "", fmt.Errorf("%w: '%s'", ErrIdentityExists, id)
	}

	registryDate, err := r.Helper.Timestamp()
	if err != nil {
		return "", fmt.Errorf("failed to resolve registry date: %w", err)
	}

	identity := model.Identity{
		Username:       username,
		RegistryDate:   registryDate,
		PublicKey:      publicKey,
		LastAssignment: 0,
		Verified:       false,
	}
	identityBytes, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("failed to marshal identity for '%s': %w", id, err)
	}
	if err := r.Ledger.PutState(id, identityBytes); err != nil {
		return "", fmt.Errorf("failed to save identity for '%s': %w", id, err)
	}

	if err := ledger.PutIndex(r.Ledger, usernameIndex, username, id); err != nil {
		return "", err
	}
	if err := ledger.PutIndex(r.Ledger, registryDateIndex, strconv.FormatInt(registryDate, 10), id); err != nil {
		return "", err
	}

	regLogger.Infof("Registered identity '%s' with username '%s' at %d", id, username, registryDate)
	return id, nil
}

// GetIdentity reads the identity stored under id.
func (r *IdentityRegistry) GetIdentity(id string) (*model.Identity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id cannot be empty", ErrInvalidArgument)
	}
	identityBytes, err := r.Ledger.GetState(id)
	if err != nil {
		return nil, fmt.Errorf("ledger error retrieving identity '%s': %w", id, err)
	}
	if len(identityBytes) == 0 {
		return nil, fmt.Errorf("%w: identity '%s'", ErrNotFound, id)
	}
	var identity model.Identity
	if err := json.Unmarshal(identityBytes, &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity '%s': %w", id, err)
	}
	regLogger.Debugf("Read identity '%s' (%s)", id, identity.Username)
	return &identity, nil
}

// GetCallerIdentity reads the invoking identity's own record.
func (r *IdentityRegistry) GetCallerIdentity() (string, *model.Identity, error) {
	id, err := r.Helper.CallerID()
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve caller id: %w", err)
	}
	identity, err := r.GetIdentity(id)
	if err != nil {
		return "", nil, err
	}
	return id, identity, nil
}
