package ton

import (
	"errors"
	"strings"
	"time"
)

// Transfer is a single (destination, amount) leg of a transaction intent.
type Transfer struct {
	Address string `json:"address"`
	Amount  Amount `json:"amount"`
	Comment string `json:"payload,omitempty"`
}

// Intent is a transfer request handed to the wallet for authorization.
// ValidUntil bounds how long the wallet may hold it before submission;
// stale intents must not reach the chain.
type Intent struct {
	ValidUntil int64      `json:"validUntil"` // unix seconds
	Transfers  []Transfer `json:"messages"`
}

// NewIntent builds an intent valid for the given window from now.
func NewIntent(window time.Duration, transfers ...Transfer) Intent {
	return Intent{
		ValidUntil: time.Now().Add(window).Unix(),
		Transfers:  transfers,
	}
}

func (i Intent) Expired(now time.Time) bool {
	return now.Unix() > i.ValidUntil
}

func (i Intent) Total() Amount {
	var t Amount
	for _, tr := range i.Transfers {
		t += tr.Amount
	}
	return t
}

var ErrBadAddress = errors.New("malformed ton address")

// ValidateAddress performs a shallow check of a user-friendly address:
// 48 base64 characters with a known flag prefix. Full checksum
// verification belongs to the wallet layer.
func ValidateAddress(addr string) error {
	if len(addr) != 48 {
		return ErrBadAddress
	}
	switch {
	case strings.HasPrefix(addr, "EQ"), strings.HasPrefix(addr, "UQ"),
		strings.HasPrefix(addr, "kQ"), strings.HasPrefix(addr, "0Q"):
		return nil
	}
	return ErrBadAddress
}
