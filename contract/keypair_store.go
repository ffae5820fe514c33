package contract

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"jobledger/ledger"
	"jobledger/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var keypairLogger = flogging.MustGetLogger("jobledger.keypairs")

// Reverse lookup indexes for shared keypairs. No transaction reads them yet,
// but clients listing keypairs by owner or by group rely on them being present.
const (
	keypairOwnerIndex = "id~groupId~type"
	keypairGroupIndex = "groupId~id~type"

	keypairKeySeparator = "||"
)

// SharedKeypairKey is the ledger key of the keypair ownerID shares for groupID.
func SharedKeypairKey(keypairType, ownerID, groupID string) string {
	return strings.Join([]string{keypairType, ownerID, groupID}, keypairKeySeparator)
}

// KeypairStore stores one ciphertext per participant of a group secret.
type KeypairStore struct {
	Ledger ledger.Ledger
	Helper ledger.Helper
}

// NewKeypairStore creates a store over one transaction's ledger view.
func NewKeypairStore(l ledger.Ledger, h ledger.Helper) *KeypairStore {
	return &KeypairStore{Ledger: l, Helper: h}
}

// ParseSharedWith decodes the recipients argument. Both {"id": "ciphertext"}
// and {"id": {"keypair": "ciphertext"}} are accepted.
func ParseSharedWith(raw string) (map[string]string, error) {
	if !utf8.ValidString(raw) {
		return nil, fmt.Errorf("%w: sharedWith is not valid UTF-8", ErrInvalidArgument)
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: sharedWith must be a JSON object: %v", ErrInvalidArgument, err)
	}

	sharedWith := make(map[string]string, len(entries))
	for id, entry := range entries {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: sharedWith contains an empty participant id", ErrInvalidArgument)
		}
		var ciphertext string
		if err := json.Unmarshal(entry, &ciphertext); err == nil {
			sharedWith[id] = ciphertext
			continue
		}
		var share struct {
			Keypair *string `json:"keypair"`
		}
		if err := json.Unmarshal(entry, &share); err != nil || share.Keypair == nil {
			return nil, fmt.Errorf("%w: sharedWith entry for '%s' must be a string or an object with a keypair", ErrInvalidArgument, id)
		}
		sharedWith[id] = *share.Keypair
	}
	return sharedWith, nil
}

// CreateSharedKeypair stores the caller's keypair for groupID together with
// one encrypted copy per recipient. Recipients are not checked against the
// identity registry.
func (s *KeypairStore) CreateSharedKeypair(sharedWith map[string]string, groupID, ownerCiphertext, keypairType string) (string, error) {
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(keypairType) == "" {
		return "", fmt.Errorf("%w: groupId and type cannot be empty", ErrInvalidArgument)
	}
	// Ciphertexts are stored as JSON strings and must come back byte for byte.
	if !utf8.ValidString(ownerCiphertext) {
		return "", fmt.Errorf("%w: owner keypair is not valid UTF-8", ErrInvalidArgument)
	}
	for id, ciphertext := range sharedWith {
		if !utf8.ValidString(ciphertext) {
			return "", fmt.Errorf("%w: keypair shared with '%s' is not valid UTF-8", ErrInvalidArgument, id)
		}
	}

	ownerID, err := s.Helper.CallerID()
	if err != nil {
		return "", fmt.Errorf("failed to resolve caller id: %w", err)
	}
	key := SharedKeypairKey(keypairType, ownerID, groupID)

	existing, err := s.Ledger.GetState(key)
	if err != nil {
		return "", fmt.Errorf("failed to check shared keypair '%s': %w", key, err)
	}
	if len(existing) > 0 {
		return "", fmt.Errorf("%w: shared keypair '%s' is already taken", ErrAlreadyExists, key)
	}

	value := make(model.SharedKeypair, len(sharedWith)+1)
	for id, ciphertext := range sharedWith {
		value[id] = model.KeypairShare{Keypair: ciphertext, IsOwner: false}
	}
	value[ownerID] = model.KeypairShare{Keypair: ownerCiphertext, IsOwner: true}

	valueBytes, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal shared keypair '%s': %w", key, err)
	}
	if err := s.Ledger.PutState(key, valueBytes); err != nil {
		return "", fmt.Errorf("failed to save shared keypair '%s': %w", key, err)
	}

	if err := ledger.PutIndex(s.Ledger, keypairOwnerIndex, ownerID, groupID, keypairType); err != nil {
		return "", err
	}
	if err := ledger.PutIndex(s.Ledger, keypairGroupIndex, groupID, ownerID, keypairType); err != nil {
		return "", err
	}

	keypairLogger.Infof("Stored shared keypair '%s' for %d recipients", key, len(value)-1)
	return key, nil
}

// GetSharedKeypair returns the caller's ciphertext from the keypair stored under key.
func (s *KeypairStore) GetSharedKeypair(key string) (string, error) {
	callerID, err := s.Helper.CallerID()
	if err != nil {
		return "", fmt.Errorf("failed to resolve caller id: %w", err)
	}

	raw, err := s.Ledger.GetState(key)
	if err != nil {
		return "", fmt.Errorf("ledger error retrieving shared keypair '%s': %w", key, err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: shared keypair '%s'", ErrNotFound, key)
	}

	var value model.SharedKeypair
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("failed to unmarshal shared keypair '%s': %w", key, err)
	}
	share, ok := value[callerID]
	if !ok {
		return "", fmt.Errorf("%w: shared keypair '%s'", ErrNotShared, key)
	}

	keypairLogger.Debugf("Read shared keypair '%s' for participant '%s' (owner: %t)", key, callerID, share.IsOwner)
	return share.Keypair, nil
}
