package contract

import (
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// invocationArgs returns the function name (without contract namespace) and
// its flat argument list as submitted.
func invocationArgs(ctx contractapi.TransactionContextInterface) (string, []string) {
	fn, params := ctx.GetStub().GetFunctionAndParameters()
	if i := strings.LastIndex(fn, ":"); i >= 0 {
		fn = fn[i+1:]
	}
	return fn, params
}

// validateParams fails unless len(params) is one of the accepted counts.
func validateParams(fn string, params []string, counts ...int) error {
	for _, c := range counts {
		if len(params) == c {
			return nil
		}
	}
	return &ArgumentCountError{Function: fn, Expected: counts, Got: params}
}

// requireArgs validates the current invocation's argument count.
func requireArgs(ctx contractapi.TransactionContextInterface, counts ...int) ([]string, error) {
	fn, params := invocationArgs(ctx)
	if err := validateParams(fn, params, counts...); err != nil {
		return nil, err
	}
	return params, nil
}
