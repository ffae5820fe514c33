package contract

import (
	"fmt"

	"jobledger/config"
	"jobledger/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// UserContract exposes identity registration and worker selection.
// @contract:User
type UserContract struct {
	contractapi.Contract
	cfg config.Config
}

// NewUserContract creates the User contract.
func NewUserContract(cfg config.Config) *UserContract {
	return &UserContract{
		Contract: contractapi.Contract{Name: "User"},
		cfg:      cfg,
	}
}

// InitLedger is kept for deployment scripts that call it; there is no seed data.
func (c *UserContract) InitLedger(ctx contractapi.TransactionContextInterface) {
	logger.Info("User contract initialized")
}

// CreateUser registers the caller under username and returns the caller's id.
func (c *UserContract) CreateUser(ctx contractapi.TransactionContextInterface, username string, publicKey string) (string, error) {
	if _, err := requireArgs(ctx, 2); err != nil {
		return "", err
	}
	logger.Infof("Chaincode Call: CreateUser for username '%s'", username)
	svc := newServices(ctx, c.cfg)
	return NewIdentityRegistry(svc.ledger, svc.helper).CreateIdentity(username, publicKey)
}

// GetUser returns the identity stored under the optional userId argument,
// or the caller's own identity when no argument is given.
func (c *UserContract) GetUser(ctx contractapi.TransactionContextInterface) (*model.Identity, error) {
	params, err := requireArgs(ctx, 0, 1)
	if err != nil {
		return nil, err
	}
	svc := newServices(ctx, c.cfg)
	registry := NewIdentityRegistry(svc.ledger, svc.helper)
	if len(params) == 0 {
		logger.Debug("Chaincode Call: GetUser for caller")
		_, identity, err := registry.GetCallerIdentity()
		return identity, err
	}
	logger.Debugf("Chaincode Call: GetUser for '%s'", params[0])
	return registry.GetIdentity(params[0])
}

// GetUserDocument returns the DID document of the optional userId argument,
// or of the caller when no argument is given.
func (c *UserContract) GetUserDocument(ctx contractapi.TransactionContextInterface) (*model.DIDDocument, error) {
	params, err := requireArgs(ctx, 0, 1)
	if err != nil {
		return nil, err
	}
	svc := newServices(ctx, c.cfg)
	registry := NewIdentityRegistry(svc.ledger, svc.helper)

	var id string
	var identity *model.Identity
	if len(params) == 0 {
		id, identity, err = registry.GetCallerIdentity()
	} else {
		id = params[0]
		identity, err = registry.GetIdentity(id)
	}
	if err != nil {
		return nil, err
	}
	logger.Debugf("Chaincode Call: GetUserDocument for '%s'", id)
	return BuildDIDDocument(c.cfg.DID.Method, id, identity)
}

// GetNextWorkersIds selects count workers for a job created by the caller.
func (c *UserContract) GetNextWorkersIds(ctx contractapi.TransactionContextInterface, count string) ([]model.WorkerRef, error) {
	if _, err := requireArgs(ctx, 1); err != nil {
		return nil, err
	}
	n, err := ParseWorkerCount(count)
	if err != nil {
		return nil, err
	}
	logger.Infof("Chaincode Call: GetNextWorkersIds for %d workers", n)
	svc := newServices(ctx, c.cfg)
	workers, err := NewWorkerSelector(svc.ledger, svc.helper, c.cfg.Workers.SampleFactor).SelectWorkers(n)
	if err != nil {
		return nil, fmt.Errorf("GetNextWorkersIds: %w", err)
	}
	return workers, nil
}
