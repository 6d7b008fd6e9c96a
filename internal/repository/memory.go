package repository

import (
	"context"
	"sync"

	"github.com/insurcert/backend/internal/domain"
)

// MemoryStore is an in-memory certificate store with the same contract as
// CertificateRepository: auto-increment keys, append-only, unique
// certificate numbers. It backs the server when no database is configured
// and substitutes for Postgres in tests.
type MemoryStore struct {
	mu     sync.Mutex
	certs  []*domain.Certificate
	nextID int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Append stores a copy of the certificate, assigning the next surrogate
// keys. Duplicate certificate numbers are rejected with
// domain.ErrDuplicateNumber.
func (s *MemoryStore) Append(ctx context.Context, cert *domain.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.certs {
		if existing.Number == cert.Number {
			return domain.ErrDuplicateNumber
		}
	}

	cert.Customer.ID = s.nextID
	cert.ID = s.nextID
	s.nextID++

	stored := *cert
	s.certs = append(s.certs, &stored)
	return nil
}

// FindLatest returns the most recently appended certificate, or nil when
// the store is empty.
func (s *MemoryStore) FindLatest(ctx context.Context) (*domain.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.certs) == 0 {
		return nil, nil
	}
	latest := *s.certs[len(s.certs)-1]
	return &latest, nil
}

// Ping always succeeds; the in-memory store has nothing to reach.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// FindAll returns copies of every certificate in issuance order.
func (s *MemoryStore) FindAll(ctx context.Context) ([]*domain.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	certs := make([]*domain.Certificate, 0, len(s.certs))
	for _, cert := range s.certs {
		c := *cert
		certs = append(certs, &c)
	}
	return certs, nil
}
