// internal/testutil/stubs.go
package testutil

import (
	"context"
	"sync"

	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/payments"
)

// StubVerifier returns a fixed identity for any token.
type StubVerifier struct {
	Identity auth.Identity
	Err      error
}

func (s *StubVerifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	return s.Identity, s.Err
}

// StubDeleter records identity-provider account deletions.
type StubDeleter struct {
	mu      sync.Mutex
	Deleted []string
	Err     error
}

func (s *StubDeleter) DeleteAccount(ctx context.Context, uid string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	s.Deleted = append(s.Deleted, uid)
	s.mu.Unlock()
	return nil
}

// DeletedUIDs returns the recorded deletions.
func (s *StubDeleter) DeletedUIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Deleted...)
}

// StubProcessor returns a canned payment intent.
type StubProcessor struct {
	Intent payments.Intent
	Err    error

	mu      sync.Mutex
	Amounts []int64
}

func (s *StubProcessor) CreateIntent(ctx context.Context, amount int64) (payments.Intent, error) {
	if s.Err != nil {
		return payments.Intent{}, s.Err
	}
	s.mu.Lock()
	s.Amounts = append(s.Amounts, amount)
	s.mu.Unlock()
	return s.Intent, nil
}
