package repository

import (
	"context"
	"sort"

	"bloodlink-data/internal/domain"

	"github.com/google/uuid"
)

func (s *MemoryStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.newerFirst(out[i].UserID, out[i].CreatedAt, out[j].UserID, out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *domain.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	copied.UserID = uuid.NewString()
	copied.CreatedAt = s.clock()
	s.users[copied.UserID] = &copied
	s.stamp(copied.UserID)
	return copied.UserID, nil
}

func (s *MemoryStore) SetUserActive(ctx context.Context, userID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	return nil
}

// DeleteUser removes the account with its donor row, requests, and all
// responses either side owns, atomically under the store mutex.
func (s *MemoryStore) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	for donorID, d := range s.donors {
		if d.UserID != userID {
			continue
		}
		for respID, resp := range s.responses {
			if resp.DonorID == donorID {
				delete(s.responses, respID)
			}
		}
		delete(s.donors, donorID)
	}
	for reqID, req := range s.requests {
		if req.HospitalID != userID {
			continue
		}
		for respID, resp := range s.responses {
			if resp.RequestID == reqID {
				delete(s.responses, respID)
			}
		}
		delete(s.requests, reqID)
	}
	delete(s.users, userID)
	return nil
}
