package repository

import (
	"context"
	"database/sql"

	"bloodlink-data/internal/domain"
)

// PostgresStatsRepository implements StatsRepository with group-by queries
// against current state. Nothing is cached.
type PostgresStatsRepository struct {
	db *sql.DB
}

// NewPostgresStatsRepository creates the statistics repository.
func NewPostgresStatsRepository(db *sql.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

var _ StatsRepository = (*PostgresStatsRepository)(nil)

func (r *PostgresStatsRepository) countRows(ctx context.Context, query string, args ...any) ([]CountRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CountRow
	for rows.Next() {
		var c CountRow
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountUsersByRole counts active accounts per role.
func (r *PostgresStatsRepository) CountUsersByRole(ctx context.Context) ([]CountRow, error) {
	return r.countRows(ctx, `
		SELECT role, COUNT(*) FROM users
		WHERE is_active = TRUE
		GROUP BY role
		ORDER BY role
	`)
}

// CountDonorsByBloodType counts available donors per blood group.
func (r *PostgresStatsRepository) CountDonorsByBloodType(ctx context.Context) ([]CountRow, error) {
	return r.countRows(ctx, `
		SELECT blood_group, COUNT(*) FROM donors
		WHERE is_available = TRUE
		GROUP BY blood_group
		ORDER BY blood_group
	`)
}

// CountRequestsByStatus counts all requests per status.
func (r *PostgresStatsRepository) CountRequestsByStatus(ctx context.Context) ([]CountRow, error) {
	return r.countRows(ctx, `
		SELECT status, COUNT(*) FROM blood_requests
		GROUP BY status
		ORDER BY status
	`)
}

// CountOpenRequestsByUrgency counts Open requests per urgency.
func (r *PostgresStatsRepository) CountOpenRequestsByUrgency(ctx context.Context) ([]CountRow, error) {
	return r.countRows(ctx, `
		SELECT urgency, COUNT(*) FROM blood_requests
		WHERE status = 'Open'
		GROUP BY urgency
		ORDER BY urgency
	`)
}

// TopDonorCities counts available donors per city, largest first.
func (r *PostgresStatsRepository) TopDonorCities(ctx context.Context, limit int) ([]CountRow, error) {
	return r.countRows(ctx, `
		SELECT city, COUNT(*) AS donor_count FROM donors
		WHERE is_available = TRUE
		GROUP BY city
		ORDER BY donor_count DESC
		LIMIT $1
	`, limit)
}

// Totals returns the dashboard scalar counters in one round trip.
func (r *PostgresStatsRepository) Totals(ctx context.Context) (*TotalCounts, error) {
	var t TotalCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM donors WHERE is_available = TRUE),
			(SELECT COUNT(*) FROM blood_requests WHERE status = 'Open'),
			(SELECT COUNT(*) FROM blood_requests WHERE status = 'Fulfilled')
	`).Scan(&t.TotalUsers, &t.TotalAvailableDonors, &t.OpenRequests, &t.FulfilledRequests)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DonorReport returns donor profiles created inside the date range, newest first.
func (r *PostgresStatsRepository) DonorReport(ctx context.Context, dr DateRange) ([]*domain.DonorProfile, error) {
	query := `
		SELECT ` + donorProfileColumns + `
		FROM donors d
		JOIN users u ON d.user_id = u.user_id
		WHERE ($1::timestamptz IS NULL OR d.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR d.created_at <= $2)
		ORDER BY d.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, nullTime(dr.Start), nullTime(dr.End))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.DonorProfile
	for rows.Next() {
		p, err := scanDonorProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RequestReport returns request details created inside the date range, newest first.
func (r *PostgresStatsRepository) RequestReport(ctx context.Context, dr DateRange) ([]*domain.RequestDetail, error) {
	query := `
		SELECT ` + requestDetailColumns + `
		FROM blood_requests br
		JOIN users u ON br.hospital_id = u.user_id
		WHERE ($1::timestamptz IS NULL OR br.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR br.created_at <= $2)
		ORDER BY br.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, nullTime(dr.Start), nullTime(dr.End))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.RequestDetail
	for rows.Next() {
		d, err := scanRequestDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// BloodGroupAnalysis cross-references donor supply and request demand per
// blood group.
func (r *PostgresStatsRepository) BloodGroupAnalysis(ctx context.Context) ([]BloodGroupAnalysisRow, error) {
	query := `
		SELECT
			d.blood_group,
			COUNT(DISTINCT d.donor_id),
			COUNT(DISTINCT CASE WHEN d.is_available = TRUE THEN d.donor_id END),
			COUNT(DISTINCT br.request_id),
			COUNT(DISTINCT CASE WHEN br.status = 'Open' THEN br.request_id END)
		FROM donors d
		LEFT JOIN blood_requests br ON d.blood_group = br.blood_group
		GROUP BY d.blood_group
		ORDER BY d.blood_group
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BloodGroupAnalysisRow
	for rows.Next() {
		var v BloodGroupAnalysisRow
		if err := rows.Scan(&v.BloodType, &v.TotalDonors, &v.AvailableDonors, &v.TotalRequests, &v.OpenRequests); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CityAnalysis cross-references donor supply and request demand per city.
func (r *PostgresStatsRepository) CityAnalysis(ctx context.Context) ([]CityAnalysisRow, error) {
	query := `
		SELECT
			d.city,
			COALESCE(MAX(d.state), ''),
			COUNT(DISTINCT d.donor_id),
			COUNT(DISTINCT CASE WHEN d.is_available = TRUE THEN d.donor_id END),
			COUNT(DISTINCT br.request_id)
		FROM donors d
		LEFT JOIN blood_requests br ON d.city = br.city
		GROUP BY d.city
		ORDER BY COUNT(DISTINCT d.donor_id) DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CityAnalysisRow
	for rows.Next() {
		var v CityAnalysisRow
		if err := rows.Scan(&v.City, &v.State, &v.TotalDonors, &v.AvailableDonors, &v.TotalRequests); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
