package repository

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"bloodlink-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRequestAndDonor(t *testing.T, s *MemoryStore) (requestID, donorID string) {
	t.Helper()
	ctx := context.Background()

	hospitalID, err := s.CreateUser(ctx, &domain.User{
		FullName:     "General Hospital",
		Email:        "hospital@example.com",
		PasswordHash: []byte("x"),
		Role:         domain.RoleHospital,
		IsActive:     true,
	})
	require.NoError(t, err)

	donorUserID, err := s.CreateUser(ctx, &domain.User{
		FullName:     "Donor One",
		Email:        "donor@example.com",
		PasswordHash: []byte("x"),
		Phone:        sql.NullString{String: "5550001", Valid: true},
		Role:         domain.RoleDonor,
		IsActive:     true,
	})
	require.NoError(t, err)

	donorID, err = s.CreateDonor(ctx, &domain.Donor{
		UserID:      donorUserID,
		BloodType:   domain.ONeg,
		IsAvailable: true,
		City:        "Springfield",
	})
	require.NoError(t, err)

	requestID, err = s.CreateRequest(ctx, &domain.BloodRequest{
		HospitalID:      hospitalID,
		PatientName:     "John Doe",
		BloodType:       domain.APos,
		UnitsRequired:   2,
		Urgency:         domain.UrgencyUrgent,
		Status:          domain.StatusOpen,
		HospitalName:    "General Hospital",
		HospitalAddress: "1 Main St",
		City:            "Springfield",
		ContactPerson:   "Dr. Smith",
		ContactPhone:    "5551234",
		RequiredBy:      time.Now().AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	return requestID, donorID
}

// Two concurrent responses from the same donor to the same request must never
// both succeed; the check-then-insert runs atomically under the store lock.
func TestCreateResponseConcurrentDuplicates(t *testing.T) {
	s := NewMemoryStore()
	requestID, donorID := seedRequestAndDonor(t, s)
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	errs := make([]error, workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = s.CreateResponse(ctx, &domain.DonationResponse{
				RequestID:    requestID,
				DonorID:      donorID,
				ResponseType: domain.ResponseInterested,
			})
		}(i)
	}
	close(start)
	wg.Wait()

	successes, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case err == domain.ErrDuplicateResponse:
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one response may win")
	assert.Equal(t, workers-1, duplicates)

	rows, err := s.ListByRequest(ctx, requestID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCreateResponseGates(t *testing.T) {
	s := NewMemoryStore()
	requestID, donorID := seedRequestAndDonor(t, s)
	ctx := context.Background()

	_, err := s.CreateResponse(ctx, &domain.DonationResponse{
		RequestID: "00000000-0000-0000-0000-000000000000",
		DonorID:   donorID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	status := domain.StatusClosed
	require.NoError(t, s.UpdateRequest(ctx, requestID, RequestPatch{Status: &status}))

	_, err = s.CreateResponse(ctx, &domain.DonationResponse{
		RequestID: requestID,
		DonorID:   donorID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
