package memory

import (
	"context"
	"sync"

	"hisab/internal/core"
)

// Store is an in-memory mirror used for local development and tests.
type Store struct {
	mu   sync.Mutex
	rows []core.Transaction
}

func New() *Store {
	return &Store{}
}

// Replace swaps the mirrored snapshot with the given rows.
func (s *Store) Replace(_ context.Context, rows []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]core.Transaction(nil), rows...)
	return nil
}

// Rows returns a copy of the current snapshot.
func (s *Store) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.rows...)
}
