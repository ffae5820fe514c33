package contract

import (
	"jobledger/config"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// KeypairContract exposes shared keypair storage.
// @contract:Keypair
type KeypairContract struct {
	contractapi.Contract
	cfg config.Config
}

// NewKeypairContract creates the Keypair contract.
func NewKeypairContract(cfg config.Config) *KeypairContract {
	return &KeypairContract{
		Contract: contractapi.Contract{Name: "Keypair"},
		cfg:      cfg,
	}
}

func (c *KeypairContract) InitLedger(ctx contractapi.TransactionContextInterface) {
	logger.Info("Keypair contract initialized")
}

// CreateSharedKeypair stores the caller's encrypted keypair for groupId and
// the copies encrypted for each participant in sharedWith.
func (c *KeypairContract) CreateSharedKeypair(ctx contractapi.TransactionContextInterface, sharedWith string, groupID string, ownerCiphertext string, keypairType string) error {
	if _, err := requireArgs(ctx, 4); err != nil {
		return err
	}
	recipients, err := ParseSharedWith(sharedWith)
	if err != nil {
		return err
	}
	logger.Infof("Chaincode Call: CreateSharedKeypair of type '%s' for group '%s' with %d recipients", keypairType, groupID, len(recipients))
	svc := newServices(ctx, c.cfg)
	_, err = NewKeypairStore(svc.ledger, svc.helper).CreateSharedKeypair(recipients, groupID, ownerCiphertext, keypairType)
	return err
}

// GetKeypair returns the caller's ciphertext of the shared keypair stored under keypairID.
func (c *KeypairContract) GetKeypair(ctx contractapi.TransactionContextInterface, keypairID string) (string, error) {
	if _, err := requireArgs(ctx, 1); err != nil {
		return "", err
	}
	logger.Debugf("Chaincode Call: GetKeypair for '%s'", keypairID)
	svc := newServices(ctx, c.cfg)
	return NewKeypairStore(svc.ledger, svc.helper).GetSharedKeypair(keypairID)
}
