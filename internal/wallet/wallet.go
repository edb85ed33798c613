// Package wallet is the boundary to the user's TON wallet. The real
// connection handshake, signing UI and transport live in an external
// wallet application; this package only defines the capability the
// purchase flow consumes, plus a simulator for demos and tests.
package wallet

import (
	"context"
	"errors"

	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

var (
	ErrNotConnected = errors.New("wallet not connected")
	ErrRejected     = errors.New("transaction rejected by user")
)

// Receipt is the provisional submission receipt the wallet returns on
// acceptance. It proves the wallet queued the transfer, not that the
// ledger settled it.
type Receipt struct {
	BOC string
}

// Session is a connected (or connectable) wallet.
//
// SendTransaction may block indefinitely while the user decides in the
// external wallet app; callers cancel via ctx. A rejection or wallet
// failure returns an error and nothing was transferred.
type Session interface {
	Connected() bool
	Address() string
	// RequestConnect opens the connection prompt and returns
	// immediately; connection completes out of band.
	RequestConnect()
	SendTransaction(ctx context.Context, intent ton.Intent) (Receipt, error)
}
