package repository

import (
	"strings"
	"sync"
	"time"

	"bloodlink-data/internal/domain"
)

// MemoryStore is an in-memory backing store implementing every repository
// interface. It serves unit tests and the dev fallback when Postgres is not
// reachable. One mutex guards all entity maps so cross-entity checks (the
// respond gates, the delete cascades) are atomic, mirroring the transactions
// of the Postgres repositories.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]*domain.User
	donors    map[string]*domain.Donor
	requests  map[string]*domain.BloodRequest
	responses map[string]*domain.DonationResponse

	clock func() time.Time

	// insertion counter breaks created_at ties deterministically
	seq   int64
	seqOf map[string]int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     map[string]*domain.User{},
		donors:    map[string]*domain.Donor{},
		requests:  map[string]*domain.BloodRequest{},
		responses: map[string]*domain.DonationResponse{},
		clock:     time.Now,
		seqOf:     map[string]int64{},
	}
}

var (
	_ UsersRepository     = (*MemoryStore)(nil)
	_ DonorsRepository    = (*MemoryStore)(nil)
	_ RequestsRepository  = (*MemoryStore)(nil)
	_ ResponsesRepository = (*MemoryStore)(nil)
	_ StatsRepository     = (*MemoryStore)(nil)
)

// SetClock overrides the store clock; tests use it to control created_at.
func (s *MemoryStore) SetClock(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = fn
}

// stamp records insertion order for an id, used to order equal timestamps.
func (s *MemoryStore) stamp(id string) {
	s.seq++
	s.seqOf[id] = s.seq
}

// newerFirst orders by creation time descending with insertion order as
// tiebreaker.
func (s *MemoryStore) newerFirst(aID string, aAt time.Time, bID string, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return s.seqOf[aID] > s.seqOf[bID]
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
