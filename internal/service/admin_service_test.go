package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countFor(rows []repository.CountRow, label string) int {
	for _, r := range rows {
		if r.Label == label {
			return r.Count
		}
	}
	return 0
}

func TestStatisticsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	donor := env.registerDonor(t, "donor@example.com", domain.APos, "Springfield")

	_, err := env.admin.Statistics(context.Background(), donor)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.admin.Statistics(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStatisticsCounts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin(t, "admin@example.com")
	hospital := env.registerHospital(t, "hosp@example.com")
	env.registerDonor(t, "a@example.com", domain.APos, "Springfield")
	env.registerDonor(t, "b@example.com", domain.APos, "Springfield")
	env.registerDonor(t, "c@example.com", domain.ONeg, "Shelbyville")
	ctx := context.Background()

	env.createRequest(t, hospital, domain.APos, domain.UrgencyCritical)
	req := env.createRequest(t, hospital, domain.BPos, domain.UrgencyNormal)
	status := domain.StatusFulfilled
	_, err := env.requests.UpdateRequest(ctx, hospital, req.RequestID, repository.RequestPatch{Status: &status})
	require.NoError(t, err)

	stats, err := env.admin.Statistics(ctx, admin)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Totals.TotalUsers)
	assert.Equal(t, 3, stats.Totals.TotalAvailableDonors)
	assert.Equal(t, 1, stats.Totals.OpenRequests)
	assert.Equal(t, 1, stats.Totals.FulfilledRequests)

	assert.Equal(t, 3, countFor(stats.UsersByRole, "donor"))
	assert.Equal(t, 1, countFor(stats.UsersByRole, "hospital"))
	assert.Equal(t, 1, countFor(stats.UsersByRole, "admin"))

	assert.Equal(t, 2, countFor(stats.DonorsByBloodType, "A+"))
	assert.Equal(t, 1, countFor(stats.DonorsByBloodType, "O-"))

	assert.Equal(t, 1, countFor(stats.RequestsByStatus, "Open"))
	assert.Equal(t, 1, countFor(stats.RequestsByStatus, "Fulfilled"))
	assert.Equal(t, 1, countFor(stats.OpenRequestsByUrgency, "Critical"))

	assert.Equal(t, 2, countFor(stats.TopDonorCities, "Springfield"))
}

func TestDonorReportDateRange(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin(t, "admin@example.com")
	ctx := context.Background()

	past := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env.store.SetClock(func() time.Time { return past })
	env.registerDonor(t, "old@example.com", domain.APos, "Springfield")

	recent := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	env.store.SetClock(func() time.Time { return recent })
	env.registerDonor(t, "new@example.com", domain.ONeg, "Shelbyville")

	all, err := env.admin.Report(ctx, admin, ReportDonors, repository.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "Donors Report", all.Title)
	assert.Len(t, all.Rows, 2)
	assert.Equal(t, 2, all.Summary["total_donors"])

	bounded, err := env.admin.Report(ctx, admin, ReportDonors, repository.DateRange{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, bounded.Rows, 1)
	assert.Equal(t, "Donor new@example.com", bounded.Rows[0][0])
}

func TestBloodGroupAndCityReports(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin(t, "admin@example.com")
	hospital := env.registerHospital(t, "hosp@example.com")
	env.registerDonor(t, "a@example.com", domain.APos, "Springfield")
	env.registerDonor(t, "b@example.com", domain.APos, "Springfield")
	ctx := context.Background()

	env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)

	blood, err := env.admin.Report(ctx, admin, ReportBloodGroups, repository.DateRange{})
	require.NoError(t, err)
	require.Len(t, blood.Rows, 1)
	assert.Equal(t, []string{"A+", "2", "2", "1", "1"}, blood.Rows[0])

	city, err := env.admin.Report(ctx, admin, ReportCities, repository.DateRange{})
	require.NoError(t, err)
	require.Len(t, city.Rows, 1)
	assert.Equal(t, "Springfield", city.Rows[0][0])

	_, err = env.admin.Report(ctx, admin, ReportKind("bogus"), repository.DateRange{})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestExportReportProducesWorkbook(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin(t, "admin@example.com")
	env.registerDonor(t, "a@example.com", domain.APos, "Springfield")

	data, filename, err := env.admin.ExportReport(context.Background(), admin, ReportDonors, repository.DateRange{})
	require.NoError(t, err)
	assert.Contains(t, filename, "donors-report-")
	assert.Contains(t, filename, ".xlsx")
	// xlsx files are zip archives
	require.Greater(t, len(data), 4)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestListUsersHidesNothingForAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin(t, "admin@example.com")
	env.registerDonor(t, "donor@example.com", domain.APos, "Springfield")

	users, err := env.admin.ListUsers(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestSetUserStatus(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin(t, "admin@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.APos, "Springfield")
	ctx := context.Background()

	err := env.admin.SetUserStatus(ctx, admin, admin.UserID, false)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "self-deactivation is rejected")

	require.NoError(t, env.admin.SetUserStatus(ctx, admin, donor.UserID, false))

	u := env.user(t, donor.UserID)
	assert.False(t, u.IsActive)

	// deactivated accounts drop out of the donor directory
	donors, err := env.donors.ListDonors(ctx, repository.DonorFilters{})
	require.NoError(t, err)
	assert.Empty(t, donors)
}

func TestDeleteUserCascades(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin(t, "admin@example.com")
	hospital := env.registerHospital(t, "hosp@example.com")
	donor := env.registerDonor(t, "donor@example.com", domain.ONeg, "Springfield")
	ctx := context.Background()

	req := env.createRequest(t, hospital, domain.APos, domain.UrgencyNormal)
	_, err := env.responses.Respond(ctx, donor, RespondInput{RequestID: req.RequestID})
	require.NoError(t, err)

	err = env.admin.DeleteUser(ctx, admin, admin.UserID)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "self-deletion is rejected")

	require.NoError(t, env.admin.DeleteUser(ctx, admin, donor.UserID))

	_, err = env.store.GetUser(ctx, donor.UserID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.store.GetDonorByUserID(ctx, donor.UserID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rows, err := env.responses.ListForRequest(ctx, hospital, req.RequestID)
	require.NoError(t, err)
	assert.Empty(t, rows, "donor's responses are removed with the account")

	// deleting the hospital removes its requests too
	require.NoError(t, env.admin.DeleteUser(ctx, admin, hospital.UserID))
	_, err = env.requests.GetRequest(ctx, req.RequestID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
