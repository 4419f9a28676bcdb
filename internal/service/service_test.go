package service

import (
	"context"
	"testing"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"
	"bloodlink-data/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv wires every service over one in-memory store, mirroring the
// production wiring in cmd/bloodlink-data.
type testEnv struct {
	store     *repository.MemoryStore
	auth      AuthService
	donors    DonorService
	requests  RequestService
	responses ResponseService
	admin     AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := repository.NewMemoryStore()
	logger := zap.NewNop()
	kv := store.NewMemoryKV()
	return &testEnv{
		store:     mem,
		auth:      NewAuthService(mem, mem, kv, 0, logger),
		donors:    NewDonorService(mem, logger),
		requests:  NewRequestService(mem, nil, logger),
		responses: NewResponseService(mem, mem, mem, logger),
		admin:     NewAdminService(mem, mem, logger),
	}
}

func (e *testEnv) registerDonor(t *testing.T, email string, bt domain.BloodType, city string) *domain.User {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		FullName:  "Donor " + email,
		Email:     email,
		Password:  "secret1",
		Phone:     "5550001",
		Role:      domain.RoleDonor,
		BloodType: bt,
		City:      city,
	})
	require.NoError(t, err)
	return e.user(t, resp.User.UserID)
}

func (e *testEnv) registerHospital(t *testing.T, email string) *domain.User {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		FullName: "Hospital " + email,
		Email:    email,
		Password: "secret1",
		Phone:    "5550002",
		Role:     domain.RoleHospital,
	})
	require.NoError(t, err)
	return e.user(t, resp.User.UserID)
}

func (e *testEnv) registerAdmin(t *testing.T, email string) *domain.User {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		FullName: "Admin " + email,
		Email:    email,
		Password: "secret1",
		Phone:    "5550003",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	return e.user(t, resp.User.UserID)
}

func (e *testEnv) user(t *testing.T, userID string) *domain.User {
	t.Helper()
	u, err := e.store.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return u
}

// newRequestInput is a minimal valid blood request.
func newRequestInput(bt domain.BloodType) CreateRequestInput {
	return CreateRequestInput{
		PatientName:     "John Doe",
		BloodType:       bt,
		UnitsRequired:   2,
		HospitalName:    "City Hospital",
		HospitalAddress: "1 Main St",
		City:            "Springfield",
		ContactPerson:   "Dr. Smith",
		ContactPhone:    "5551234",
		RequiredBy:      "2030-01-15",
	}
}

func (e *testEnv) createRequest(t *testing.T, hospital *domain.User, bt domain.BloodType, urgency domain.Urgency) *RequestDTO {
	t.Helper()
	in := newRequestInput(bt)
	in.Urgency = urgency
	req, err := e.requests.CreateRequest(context.Background(), hospital, in)
	require.NoError(t, err)
	return req
}
