package repository

import (
	"context"
	"time"

	"bloodlink-data/internal/domain"
)

// CountRow is one group-by-count result.
type CountRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TotalCounts are the dashboard scalar totals.
type TotalCounts struct {
	TotalUsers           int `json:"total_users"`
	TotalAvailableDonors int `json:"total_available_donors"`
	OpenRequests         int `json:"open_requests"`
	FulfilledRequests    int `json:"fulfilled_requests"`
}

// BloodGroupAnalysisRow cross-references donors and requests per blood group.
type BloodGroupAnalysisRow struct {
	BloodType       domain.BloodType `json:"blood_group"`
	TotalDonors     int              `json:"total_donors"`
	AvailableDonors int              `json:"available_donors"`
	TotalRequests   int              `json:"total_requests"`
	OpenRequests    int              `json:"open_requests"`
}

// CityAnalysisRow cross-references donors and requests per city.
type CityAnalysisRow struct {
	City            string `json:"city"`
	State           string `json:"state,omitempty"`
	TotalDonors     int    `json:"total_donors"`
	AvailableDonors int    `json:"available_donors"`
	TotalRequests   int    `json:"total_requests"`
}

// DateRange bounds report rows by entity creation time. Zero bounds are open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// StatsRepository derives read-only rollups from current entity state. No
// caching; every call recomputes against the store.
type StatsRepository interface {
	CountUsersByRole(ctx context.Context) ([]CountRow, error)
	// CountDonorsByBloodType counts available donors only.
	CountDonorsByBloodType(ctx context.Context) ([]CountRow, error)
	CountRequestsByStatus(ctx context.Context) ([]CountRow, error)
	// CountOpenRequestsByUrgency counts Open requests only.
	CountOpenRequestsByUrgency(ctx context.Context) ([]CountRow, error)
	// TopDonorCities counts available donors per city, largest first.
	TopDonorCities(ctx context.Context, limit int) ([]CountRow, error)
	Totals(ctx context.Context) (*TotalCounts, error)

	// Report datasets, each bounded by an optional creation-date range.
	DonorReport(ctx context.Context, dr DateRange) ([]*domain.DonorProfile, error)
	RequestReport(ctx context.Context, dr DateRange) ([]*domain.RequestDetail, error)
	BloodGroupAnalysis(ctx context.Context) ([]BloodGroupAnalysisRow, error)
	CityAnalysis(ctx context.Context) ([]CityAnalysisRow, error)
}
