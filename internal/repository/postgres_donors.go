package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bloodlink-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresDonorsRepository implements DonorsRepository over database/sql.
type PostgresDonorsRepository struct {
	db *sql.DB
}

// NewPostgresDonorsRepository creates the donors repository.
func NewPostgresDonorsRepository(db *sql.DB) *PostgresDonorsRepository {
	return &PostgresDonorsRepository{db: db}
}

var _ DonorsRepository = (*PostgresDonorsRepository)(nil)

const donorProfileColumns = `
	d.donor_id::text,
	d.user_id::text,
	d.blood_group,
	d.is_available,
	d.date_of_birth,
	d.gender,
	d.weight,
	d.city,
	d.state,
	d.address,
	d.last_donation_date,
	d.medical_conditions,
	d.created_at,
	u.full_name,
	u.email,
	u.phone
`

func scanDonorProfile(scan func(dest ...any) error) (*domain.DonorProfile, error) {
	var p domain.DonorProfile
	err := scan(
		&p.DonorID,
		&p.UserID,
		&p.BloodType,
		&p.IsAvailable,
		&p.DateOfBirth,
		&p.Gender,
		&p.Weight,
		&p.City,
		&p.State,
		&p.Address,
		&p.LastDonationDate,
		&p.MedicalNotes,
		&p.CreatedAt,
		&p.FullName,
		&p.Email,
		&p.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetDonor fetches one donor joined with its account identity. Donors of
// inactive accounts are hidden, matching the public directory.
func (r *PostgresDonorsRepository) GetDonor(ctx context.Context, donorID string) (*domain.DonorProfile, error) {
	if donorID == "" {
		return nil, domain.ErrNotFound
	}
	query := `
		SELECT ` + donorProfileColumns + `
		FROM donors d
		JOIN users u ON d.user_id = u.user_id
		WHERE d.donor_id = $1 AND u.is_active = TRUE
	`
	row := r.db.QueryRowContext(ctx, query, donorID)
	return scanDonorProfile(row.Scan)
}

// GetDonorByUserID resolves the donor owned by an account.
func (r *PostgresDonorsRepository) GetDonorByUserID(ctx context.Context, userID string) (*domain.Donor, error) {
	if userID == "" {
		return nil, domain.ErrNotFound
	}
	query := `
		SELECT
			donor_id::text,
			user_id::text,
			blood_group,
			is_available,
			date_of_birth,
			gender,
			weight,
			city,
			state,
			address,
			last_donation_date,
			medical_conditions,
			created_at
		FROM donors
		WHERE user_id = $1
	`
	var d domain.Donor
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&d.DonorID,
		&d.UserID,
		&d.BloodType,
		&d.IsAvailable,
		&d.DateOfBirth,
		&d.Gender,
		&d.Weight,
		&d.City,
		&d.State,
		&d.Address,
		&d.LastDonationDate,
		&d.MedicalNotes,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListDonors returns donors of active accounts, newest first. Filters are
// independently optional; city matches as a case-insensitive substring.
func (r *PostgresDonorsRepository) ListDonors(ctx context.Context, filters DonorFilters) ([]*domain.DonorProfile, error) {
	query := `
		SELECT ` + donorProfileColumns + `
		FROM donors d
		JOIN users u ON d.user_id = u.user_id
		WHERE u.is_active = TRUE
		  AND ($1::text IS NULL OR d.blood_group = $1)
		  AND ($2::text IS NULL OR d.city ILIKE '%' || $2 || '%')
		  AND ($3::boolean IS NULL OR d.is_available = $3)
		ORDER BY d.created_at DESC
	`
	var bloodType, city *string
	if filters.BloodType != "" {
		s := string(filters.BloodType)
		bloodType = &s
	}
	if filters.City != "" {
		city = &filters.City
	}

	rows, err := r.db.QueryContext(ctx, query, nullStr(bloodType), nullStr(city), nullBool(filters.Available))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donors []*domain.DonorProfile
	for rows.Next() {
		p, err := scanDonorProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		donors = append(donors, p)
	}
	return donors, rows.Err()
}

// CreateDonor inserts a donor row and returns its id.
func (r *PostgresDonorsRepository) CreateDonor(ctx context.Context, donor *domain.Donor) (string, error) {
	donorID := uuid.NewString()
	query := `
		INSERT INTO donors (
			donor_id, user_id, blood_group, is_available, date_of_birth,
			gender, weight, city, state, address, last_donation_date, medical_conditions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		donorID,
		donor.UserID,
		donor.BloodType,
		donor.IsAvailable,
		donor.DateOfBirth,
		donor.Gender,
		donor.Weight,
		donor.City,
		donor.State,
		donor.Address,
		donor.LastDonationDate,
		donor.MedicalNotes,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create donor: %w", err)
	}
	return donorID, nil
}

// UpdateDonor applies the present patch fields. The statement is static;
// absent fields collapse to the current column value via COALESCE.
func (r *PostgresDonorsRepository) UpdateDonor(ctx context.Context, donorID string, patch DonorPatch) error {
	var bloodType *string
	if patch.BloodType != nil {
		s := string(*patch.BloodType)
		bloodType = &s
	}
	query := `
		UPDATE donors SET
			blood_group        = COALESCE($2, blood_group),
			date_of_birth      = COALESCE($3::date, date_of_birth),
			gender             = COALESCE($4, gender),
			weight             = COALESCE($5, weight),
			city               = COALESCE($6, city),
			state              = COALESCE($7, state),
			address            = COALESCE($8, address),
			last_donation_date = COALESCE($9::date, last_donation_date),
			is_available       = COALESCE($10, is_available),
			medical_conditions = COALESCE($11, medical_conditions)
		WHERE donor_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		donorID,
		nullStr(bloodType),
		nullStr(patch.DateOfBirth),
		nullStr(patch.Gender),
		nullInt(patch.Weight),
		nullStr(patch.City),
		nullStr(patch.State),
		nullStr(patch.Address),
		nullStr(patch.LastDonationDate),
		nullBool(patch.IsAvailable),
		nullStr(patch.MedicalNotes),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteDonor removes the donor and its responses in one transaction.
func (r *PostgresDonorsRepository) DeleteDonor(ctx context.Context, donorID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM donation_responses WHERE donor_id = $1`, donorID)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM donors WHERE donor_id = $1`, donorID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
