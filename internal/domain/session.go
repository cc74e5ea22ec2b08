package domain

import (
	"github.com/hhyyy9/logistics-platform"
)

// Session is the wallet-connected state of this process.
type Session struct {
	Account             string               `json:"account"`
	Signer              logistics.SubmitFunc `json:"-"`
	ContractInitialized bool                 `json:"contractInitialized"`
	WalletName          string               `json:"walletName,omitempty"`
}

func (s Session) Connected() bool {
	return s.Account != ""
}

func (s Session) HasSigner() bool {
	return s.Signer != nil
}
