// File: model/did.go
package model

// DIDDocument is the W3C DID document resolved for a registered identity.
type DIDDocument struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	Controller         string               `json:"controller,omitempty" metadata:",optional"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
	Created            string               `json:"created,omitempty" metadata:",optional"`
	Updated            string               `json:"updated,omitempty" metadata:",optional"`
}

// VerificationMethod is an entry in a DID document's verificationMethod array.
type VerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase"`
}
