package contract

import (
	"fmt"
	"time"

	"jobledger/model"

	"github.com/multiformats/go-multibase"
)

const (
	didContextV1         = "https://www.w3.org/ns/did/v1"
	verificationKeyType  = "Multikey"
	verificationFragment = "#key-1"
)

// IdentityDID is the DID naming the identity registered under id.
func IdentityDID(method, id string) string {
	return fmt.Sprintf("did:%s:%s", method, id)
}

// BuildDIDDocument resolves identity into a DID document. All dates come
// from the ledger so every endorser builds the same bytes.
func BuildDIDDocument(method, id string, identity *model.Identity) (*model.DIDDocument, error) {
	encoded, err := multibase.Encode(multibase.Base58BTC, []byte(identity.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("did: encode public key: %w", err)
	}

	did := IdentityDID(method, id)
	vmID := did + verificationFragment
	doc := &model.DIDDocument{
		Context:    []string{didContextV1},
		ID:         did,
		Controller: did,
		VerificationMethod: []model.VerificationMethod{
			{
				ID:                 vmID,
				Type:               verificationKeyType,
				Controller:         did,
				PublicKeyMultibase: encoded,
			},
		},
		Authentication: []string{vmID},
		Created:        formatLedgerTime(identity.RegistryDate),
	}
	if identity.LastAssignment > 0 {
		doc.Updated = formatLedgerTime(identity.LastAssignment)
	}
	return doc, nil
}

func formatLedgerTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
