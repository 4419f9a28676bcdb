package service

import (
	"context"
	"testing"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondUniversalDonorSucceeds(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")
	ctx := context.Background()

	req := env.createRequest(t, hospital, domain.ABPos, domain.UrgencyNormal)

	resp, err := env.responses.Respond(ctx, donor, RespondInput{
		RequestID:    req.RequestID,
		ResponseType: domain.ResponseInterested,
		Message:      "can come this week",
	})
	require.NoError(t, err)
	assert.Equal(t, req.RequestID, resp.RequestID)
	assert.Equal(t, domain.ResponseInterested, resp.ResponseType)
	assert.Equal(t, "can come this week", resp.Message)
}

func TestRespondIncompatibleBloodType(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.BPos, "Springfield")
	ctx := context.Background()

	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)

	_, err := env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	var ie *domain.IncompatibleBloodTypeError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, domain.BPos, ie.Donor)
	assert.Equal(t, domain.APos, ie.Recipient)
	assert.Contains(t, err.Error(), "B+")
	assert.Contains(t, err.Error(), "A+")
}

func TestRespondNonOpenRequest(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.BPos, "Springfield")
	ctx := context.Background()

	// blood groups are incompatible too; InvalidState must win
	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)
	status := domain.StatusClosed
	_, err := env.requests.UpdateRequest(ctx, hospital, req.RequestID, repository.RequestPatch{Status: &status})
	require.NoError(t, err)

	_, err = env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRespondDuplicate(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")
	ctx := context.Background()

	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)

	_, err := env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	require.NoError(t, err)

	_, err = env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	assert.ErrorIs(t, err, domain.ErrDuplicateResponse)
}

func TestRespondOnlyDonors(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	other := env.registerHospital(t, "other@example.com")
	ctx := context.Background()

	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)

	_, err := env.responses.Respond(ctx, other, RespondInput{RequestID: req.RequestID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "only donors may respond")
}

func TestRespondUnknownRequest(t *testing.T) {
	env := newTestEnv(t)
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")

	_, err := env.responses.Respond(context.Background(), donor, RespondInput{RequestID: "00000000-0000-0000-0000-000000000000"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRespondRejectsOutcomeTypes(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")

	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)

	_, err := env.responses.Respond(context.Background(), donor, RespondInput{
		RequestID:    req.RequestID,
		ResponseType: domain.ResponseDonated,
	})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestListForRequestAuthorization(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerHospital(t, "owner@example.com")
	other := env.registerHospital(t, "other@example.com")
	admin := env.registerAdmin(t, "admin@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")
	ctx := context.Background()

	req := env.createRequest(t, owner, domain.APos, domain.UrgencyNormal)
	_, err := env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	require.NoError(t, err)

	_, err = env.responses.ListForRequest(ctx, other, req.RequestID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	rows, err := env.responses.ListForRequest(ctx, owner, req.RequestID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ONeg, rows[0].BloodType)
	assert.Equal(t, donor.FullName, rows[0].DonorName)
	assert.Equal(t, donor.Email, rows[0].DonorEmail)

	rows, err = env.responses.ListForRequest(ctx, admin, req.RequestID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestListMine(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")
	otherDonor := env.registerDonor(t, "other@example.com", domain.ONeg, "Shelbyville")
	ctx := context.Background()

	first := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)
	second := env.createRequest(t, hospital, domain.BPos, domain.UrgencyUrgent)

	_, err := env.responses.Respond(ctx, donor, RespondInput{RequestID: first.RequestID})
	require.NoError(t, err)
	_, err = env.responses.Respond(ctx, donor, RespondInput{RequestID: second.RequestID})
	require.NoError(t, err)
	_, err = env.responses.Respond(ctx, otherDonor, RespondInput{RequestID: first.RequestID})
	require.NoError(t, err)

	mine, err := env.responses.ListMine(ctx, donor)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// newest first
	assert.Equal(t, second.RequestID, mine[0].RequestID)
	assert.Equal(t, first.RequestID, mine[1].RequestID)
	assert.Equal(t, second.PatientName, mine[0].PatientName)

	_, err = env.responses.ListMine(ctx, hospital)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "only donors have responses")
}

func TestUpdateResponseOwnership(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")
	intruder := env.registerDonor(t, "intruder@example.com", domain.ONeg, "Shelbyville")
	ctx := context.Background()

	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)
	resp, err := env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	require.NoError(t, err)

	confirmed := domain.ResponseConfirmed
	_, err = env.responses.Update(ctx, intruder, resp.ResponseID, repository.ResponsePatch{ResponseType: &confirmed})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.responses.Update(ctx, donor, resp.ResponseID, repository.ResponsePatch{})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	updated, err := env.responses.Update(ctx, donor, resp.ResponseID, repository.ResponsePatch{ResponseType: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.ResponseConfirmed, updated.ResponseType)
}

func TestCompletedDonationStampsDonor(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")
	ctx := context.Background()

	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)
	resp, err := env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	require.NoError(t, err)

	donated := domain.ResponseDonated
	completed := true
	date := "2030-01-20"
	updated, err := env.responses.Update(ctx, donor, resp.ResponseID, repository.ResponsePatch{
		ResponseType:      &donated,
		DonationCompleted: &completed,
		DonationDate:      &date,
	})
	require.NoError(t, err)
	assert.True(t, updated.DonationCompleted)
	assert.Equal(t, "2030-01-20", updated.DonationDate)

	row, err := env.store.GetDonorByUserID(ctx, donor.UserID)
	require.NoError(t, err)
	require.True(t, row.LastDonationDate.Valid)
	assert.Equal(t, "2030-01-20", row.LastDonationDate.Time.Format("2006-01-02"))
}

func TestCancelResponseAllowsRespondingAgain(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")
	intruder := env.registerDonor(t, "intruder@example.com", domain.ONeg, "Shelbyville")
	ctx := context.Background()

	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)
	resp, err := env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	require.NoError(t, err)

	err = env.responses.Cancel(ctx, intruder, resp.ResponseID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, env.responses.Cancel(ctx, donor, resp.ResponseID))

	_, err = env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	assert.NoError(t, err)
}
