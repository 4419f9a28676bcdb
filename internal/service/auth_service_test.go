package service

import (
	"context"
	"testing"

	"bloodlink-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, RegisterRequest{
		FullName:  "Alice Donor",
		Email:     "alice@example.com",
		Password:  "secret1",
		Phone:     "5550001",
		Role:      domain.RoleDonor,
		BloodType: domain.ONeg,
		City:      "Springfield",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.Token)
	assert.Equal(t, domain.RoleDonor, reg.User.Role)

	login, err := env.auth.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	actor, err := env.auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", actor.Email)

	profile, err := env.auth.Profile(ctx, actor.UserID)
	require.NoError(t, err)
	require.NotNil(t, profile.Donor)
	assert.Equal(t, domain.ONeg, profile.Donor.BloodType)
	assert.Equal(t, "Springfield", profile.Donor.City)
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), RegisterRequest{Email: "x@example.com"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ElementsMatch(t, []string{"full_name", "password", "phone"}, ve.Fields)
}

func TestRegisterDonorRequiresBloodGroupAndCity(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		FullName: "Bob",
		Email:    "bob@example.com",
		Password: "secret1",
		Phone:    "5550002",
		Role:     domain.RoleDonor,
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRegisterShortPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		FullName:  "Bob",
		Email:     "bob@example.com",
		Password:  "abc",
		Phone:     "5550002",
		Role:      domain.RoleDonor,
		BloodType: domain.APos,
		City:      "Springfield",
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerDonor(t, "dup@example.com", domain.APos, "Springfield")

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		FullName:  "Second",
		Email:     "dup@example.com",
		Password:  "secret1",
		Phone:     "5550003",
		Role:      domain.RoleDonor,
		BloodType: domain.BPos,
		City:      "Shelbyville",
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "email")
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerDonor(t, "carol@example.com", domain.APos, "Springfield")
	ctx := context.Background()

	_, err := env.auth.Login(ctx, LoginRequest{Email: "carol@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	donor := env.registerDonor(t, "dave@example.com", domain.APos, "Springfield")
	ctx := context.Background()

	require.NoError(t, env.store.SetUserActive(ctx, donor.UserID, false))

	_, err := env.auth.Login(ctx, LoginRequest{Email: "dave@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrAccountInactive)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	env.registerDonor(t, "erin@example.com", domain.APos, "Springfield")
	ctx := context.Background()

	login, err := env.auth.Login(ctx, LoginRequest{Email: "erin@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = env.auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, login.Token))
	_, err = env.auth.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticateUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticateDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t)
	donor := env.registerDonor(t, "frank@example.com", domain.APos, "Springfield")
	ctx := context.Background()

	login, err := env.auth.Login(ctx, LoginRequest{Email: "frank@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, env.store.SetUserActive(ctx, donor.UserID, false))

	_, err = env.auth.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
