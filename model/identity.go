// File: model/identity.go
package model

// Identity is a registered participant, stored under its caller-derived id.
type Identity struct {
	Username       string `json:"username"`       // Globally unique, enforced through the username~id index
	RegistryDate   int64  `json:"registryDate"`   // Ledger timestamp of registration
	PublicKey      string `json:"publicKey"`      // Public key supplied at registration, opaque to the chaincode
	LastAssignment int64  `json:"lastAssignment"` // Ledger timestamp of the last job assignment, 0 if never assigned
	Verified       bool   `json:"verified"`       // KYC status
}

// WorkerRef is what a job creator learns about a selected worker.
type WorkerRef struct {
	ID        string `json:"_id"`
	PublicKey string `json:"publicKey"`
}
