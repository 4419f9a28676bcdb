package service

import (
	"context"
	"testing"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDonorsFilters(t *testing.T) {
	env := newTestEnv(t)
	env.registerDonor(t, "a@example.com", domain.APos, "Springfield")
	env.registerDonor(t, "b@example.com", domain.ONeg, "Springfield")
	busy := env.registerDonor(t, "c@example.com", domain.APos, "Shelbyville")
	ctx := context.Background()

	row, err := env.store.GetDonorByUserID(ctx, busy.UserID)
	require.NoError(t, err)
	unavailable := false
	require.NoError(t, env.store.UpdateDonor(ctx, row.DonorID, repository.DonorPatch{IsAvailable: &unavailable}))

	all, err := env.donors.ListDonors(ctx, repository.DonorFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	aPos, err := env.donors.ListDonors(ctx, repository.DonorFilters{BloodType: domain.APos})
	require.NoError(t, err)
	assert.Len(t, aPos, 2)

	// substring match, case-insensitive
	city, err := env.donors.ListDonors(ctx, repository.DonorFilters{City: "spring"})
	require.NoError(t, err)
	assert.Len(t, city, 2)

	available := true
	avail, err := env.donors.ListDonors(ctx, repository.DonorFilters{Available: &available})
	require.NoError(t, err)
	assert.Len(t, avail, 2)

	_, err = env.donors.ListDonors(ctx, repository.DonorFilters{BloodType: domain.BloodType("Z+")})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateDonorAuthorization(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerDonor(t, "owner@example.com", domain.APos, "Springfield")
	intruder := env.registerDonor(t, "intruder@example.com", domain.ONeg, "Shelbyville")
	admin := env.registerAdmin(t, "admin@example.com")
	ctx := context.Background()

	row, err := env.store.GetDonorByUserID(ctx, owner.UserID)
	require.NoError(t, err)

	city := "Capital City"
	_, err = env.donors.UpdateDonor(ctx, intruder, row.DonorID, repository.DonorPatch{City: &city})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := env.donors.UpdateDonor(ctx, owner, row.DonorID, repository.DonorPatch{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Capital City", updated.City)
	assert.Equal(t, domain.APos, updated.BloodType, "unpatched fields keep prior values")

	notes := "none"
	updated, err = env.donors.UpdateDonor(ctx, admin, row.DonorID, repository.DonorPatch{MedicalNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "none", updated.MedicalNotes)

	_, err = env.donors.UpdateDonor(ctx, owner, row.DonorID, repository.DonorPatch{})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestDeleteDonorRemovesResponses(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")
	ctx := context.Background()

	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)
	_, err := env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	require.NoError(t, err)

	row, err := env.store.GetDonorByUserID(ctx, donor.UserID)
	require.NoError(t, err)
	require.NoError(t, env.donors.DeleteDonor(ctx, donor, row.DonorID))

	rows, err := env.responses.ListForRequest(ctx, hospital, req.RequestID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
