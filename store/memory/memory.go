// Package memory provides an in-memory fees.Store for tests and dev.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sankore/school-portal/fees"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	lineItems map[fees.ClassID][]fees.FeeLineItem
	payments  map[fees.StudentID][]fees.PaymentRecord
	refs      map[string]bool
}

func New() *Store {
	return &Store{
		lineItems: make(map[fees.ClassID][]fees.FeeLineItem),
		payments:  make(map[fees.StudentID][]fees.PaymentRecord),
		refs:      make(map[string]bool),
	}
}

// AddLineItems seeds fee structure for a class.
func (s *Store) AddLineItems(items ...fees.FeeLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.lineItems[it.ClassID] = append(s.lineItems[it.ClassID], it)
	}
}

func (s *Store) LineItemsByClass(_ context.Context, classID fees.ClassID) ([]fees.FeeLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]fees.FeeLineItem, len(s.lineItems[classID]))
	copy(items, s.lineItems[classID])
	return items, nil
}

// AppendPayment adds a payment record. Append-only.
func (s *Store) AppendPayment(_ context.Context, rec fees.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Reference != "" {
		if s.refs[rec.Reference] {
			return fees.ErrDuplicateReference
		}
		s.refs[rec.Reference] = true
	}
	s.payments[rec.StudentID] = append(s.payments[rec.StudentID], rec)
	return nil
}

func (s *Store) PaymentsByStudent(_ context.Context, studentID fees.StudentID) ([]fees.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]fees.PaymentRecord, len(s.payments[studentID]))
	copy(recs, s.payments[studentID])
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs, nil
}

func (s *Store) PaymentExists(_ context.Context, reference string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refs[reference], nil
}
