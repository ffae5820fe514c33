package contract

import (
	"jobledger/config"
	"jobledger/ledger"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("jobledger.contract")

// services bundles what one transaction needs. It is rebuilt on every
// invocation; nothing survives between calls.
type services struct {
	ledger ledger.Ledger
	helper ledger.Helper
}

func newServices(ctx contractapi.TransactionContextInterface, cfg config.Config) *services {
	stub := ctx.GetStub()
	var helper ledger.Helper
	switch cfg.Helper.Mode {
	case config.HelperModeLocal:
		helper = &ledger.LocalHelper{Stub: stub, Identity: ctx.GetClientIdentity()}
	default:
		helper = &ledger.ChaincodeHelper{Stub: stub, Chaincode: cfg.Helper.Chaincode, Channel: cfg.Helper.Channel}
	}
	return &services{ledger: ledger.NewStubLedger(stub), helper: helper}
}
