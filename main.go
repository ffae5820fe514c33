// Author: Muhammad-Tameem Mughal
// Last updated: Oct 19, 2026
// Last modified by: Muhammad-Tameem Mughal

package main

import (
	"os"

	"jobledger/config"
	"jobledger/contract"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("jobledger.main")

func main() {
	cfg, err := config.Load(os.Getenv("JOBLEDGER_CONFIG"))
	if err != nil {
		panic("Error loading configuration: " + err.Error())
	}
	flogging.ActivateSpec(cfg.Log.Spec)

	cc, err := contractapi.NewChaincode(contract.NewUserContract(cfg), contract.NewKeypairContract(cfg))
	if err != nil {
		panic("Error creating jobledger chaincode: " + err.Error())
	}

	if cfg.Server.External() {
		logger.Infof("Starting chaincode server '%s' on %s", cfg.Server.CCID, cfg.Server.Address)
		server := &shim.ChaincodeServer{
			CCID:    cfg.Server.CCID,
			Address: cfg.Server.Address,
			CC:      cc,
			TLSProps: shim.TLSProperties{
				Disabled: true,
			},
		}
		if err := server.Start(); err != nil {
			panic("Error starting chaincode server: " + err.Error())
		}
		return
	}

	if err := cc.Start(); err != nil {
		panic("Error starting chaincode: " + err.Error())
	}
}
