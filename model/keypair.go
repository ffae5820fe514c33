// File: model/keypair.go
package model

// KeypairShare is one participant's encrypted copy of a shared keypair.
type KeypairShare struct {
	Keypair string `json:"keypair"` // Ciphertext, stored and returned byte-for-byte
	IsOwner bool   `json:"isOwner"`
}

// SharedKeypair maps participant ids to their share. Exactly one share has IsOwner set.
type SharedKeypair map[string]KeypairShare

// Owner returns the id of the owning participant.
func (s SharedKeypair) Owner() (string, bool) {
	for id, share := range s {
		if share.IsOwner {
			return id, true
		}
	}
	return "", false
}
