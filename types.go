package logistics

import (
	"context"
)

// EntryFunctionPayload is the ledger call shape shared by view calls and transactions.
type EntryFunctionPayload struct {
	Function          string   `json:"function"`
	TypeArguments     []string `json:"typeArguments"`
	FunctionArguments []any    `json:"functionArguments"`
}

type TransactionRequest struct {
	Payload EntryFunctionPayload `json:"payload"`
}

type ViewRequest struct {
	Payload EntryFunctionPayload `json:"payload"`
}

// SubmitResult is whatever the signer reports after a successful submission.
type SubmitResult struct {
	Hash string `json:"hash"`
}

// SubmitFunc is the signer capability. It is owned by the wallet, never by the core.
type SubmitFunc func(ctx context.Context, req TransactionRequest) (SubmitResult, error)

// ViewFunc is the ledger read endpoint.
type ViewFunc func(ctx context.Context, req ViewRequest) ([]any, error)

// View lets a plain function satisfy reader interfaces.
func (f ViewFunc) View(ctx context.Context, req ViewRequest) ([]any, error) {
	return f(ctx, req)
}

type WalletInfo struct {
	Name string `json:"name"`
}

// WalletState mirrors what the wallet-connection provider exposes.
type WalletState struct {
	Account   string       `json:"account"`
	Connected bool         `json:"connected"`
	Wallet    *WalletInfo  `json:"wallet,omitempty"`
	Wallets   []WalletInfo `json:"wallets"`
	Signer    SubmitFunc   `json:"-"`
}

func NewPayload(function string, args ...any) EntryFunctionPayload {
	if args == nil {
		args = []any{}
	}
	return EntryFunctionPayload{
		Function:          function,
		TypeArguments:     []string{},
		FunctionArguments: args,
	}
}
