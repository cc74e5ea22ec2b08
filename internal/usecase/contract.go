package usecase

import (
	"context"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/schemas"
)

// Contract submits the one-off core::initialize call for an account.
type Contract struct {
	ledger *ledger
}

func NewContract(deps Deps) *Contract {
	return &Contract{ledger: newLedger(deps)}
}

func (c *Contract) Initialize(ctx context.Context, account string, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	return c.ledger.submit(ctx, txCall{
		operation: "initialize",
		module:    schemas.ModuleCore,
		function:  schemas.Initialize,
		success:   "Contract initialized",
		event:     domain.EventContractInitialized,
		subject:   account,
	}, signer, nil, nil)
}
