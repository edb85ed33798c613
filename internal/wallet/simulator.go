package wallet

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

// Simulator is an in-process wallet that auto-approves transfers,
// standing in for a real wallet connection during demos and tests.
// Scripted failures are injected through RejectNext.
type Simulator struct {
	mu        sync.Mutex
	connected bool
	address   string
	prompts   int

	// RejectNext fails the next SendTransaction with this error.
	RejectNext error
	// Delay simulates user think-time before approval.
	Delay time.Duration
}

func NewSimulator(address string) *Simulator {
	return &Simulator{address: address}
}

func (s *Simulator) Connect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
}

func (s *Simulator) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
}

func (s *Simulator) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Simulator) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return ""
	}
	return s.address
}

func (s *Simulator) RequestConnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts++
}

// Prompts reports how many times the connect prompt was shown.
func (s *Simulator) Prompts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts
}

func (s *Simulator) SendTransaction(ctx context.Context, intent ton.Intent) (Receipt, error) {
	s.mu.Lock()
	connected := s.connected
	reject := s.RejectNext
	s.RejectNext = nil
	delay := s.Delay
	s.mu.Unlock()

	if !connected {
		return Receipt{}, ErrNotConnected
	}
	if intent.Expired(time.Now()) {
		return Receipt{}, errors.New("intent validity window elapsed")
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}
	if reject != nil {
		return Receipt{}, reject
	}
	return Receipt{BOC: mockReference()}, nil
}

func mockReference() string {
	b := make([]byte, 20)
	_, _ = rand.Read(b)
	return "0x" + hex.EncodeToString(b)
}
