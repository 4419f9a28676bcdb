package repository

import (
	"context"
	"database/sql"
	"errors"

	"bloodlink-data/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresResponsesRepository implements ResponsesRepository over database/sql.
type PostgresResponsesRepository struct {
	db *sql.DB
}

// NewPostgresResponsesRepository creates the donation responses repository.
func NewPostgresResponsesRepository(db *sql.DB) *PostgresResponsesRepository {
	return &PostgresResponsesRepository{db: db}
}

var _ ResponsesRepository = (*PostgresResponsesRepository)(nil)

const uniqueViolation = "23505"

// CreateResponse inserts a response atomically with its gates. The request row
// is locked and its status re-checked inside the transaction; uniqueness per
// (request_id, donor_id) is enforced by the table constraint. Two concurrent
// responses from the same donor therefore cannot both commit.
func (r *PostgresResponsesRepository) CreateResponse(ctx context.Context, resp *domain.DonationResponse) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var status domain.RequestStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM blood_requests WHERE request_id = $1 FOR UPDATE`,
		resp.RequestID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	if status != domain.StatusOpen {
		return "", domain.ErrInvalidState
	}

	responseID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO donation_responses (
			response_id, request_id, donor_id, response_type,
			response_message, appointment_date, donation_completed, donation_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		responseID,
		resp.RequestID,
		resp.DonorID,
		resp.ResponseType,
		resp.Message,
		resp.Appointment,
		resp.DonationCompleted,
		resp.DonationDate,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", domain.ErrDuplicateResponse
		}
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return responseID, nil
}

// GetResponse fetches one response by id.
func (r *PostgresResponsesRepository) GetResponse(ctx context.Context, responseID string) (*domain.DonationResponse, error) {
	if responseID == "" {
		return nil, domain.ErrNotFound
	}
	query := `
		SELECT
			response_id::text,
			request_id::text,
			donor_id::text,
			response_type,
			response_message,
			appointment_date,
			donation_completed,
			donation_date,
			created_at
		FROM donation_responses
		WHERE response_id = $1
	`
	var resp domain.DonationResponse
	err := r.db.QueryRowContext(ctx, query, responseID).Scan(
		&resp.ResponseID,
		&resp.RequestID,
		&resp.DonorID,
		&resp.ResponseType,
		&resp.Message,
		&resp.Appointment,
		&resp.DonationCompleted,
		&resp.DonationDate,
		&resp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &resp, nil
}

// ListByRequest returns all responses to a request joined with donor identity
// and contact details, newest first.
func (r *PostgresResponsesRepository) ListByRequest(ctx context.Context, requestID string) ([]*domain.ResponseWithDonor, error) {
	query := `
		SELECT
			dr.response_id::text,
			dr.request_id::text,
			dr.donor_id::text,
			dr.response_type,
			dr.response_message,
			dr.appointment_date,
			dr.donation_completed,
			dr.donation_date,
			dr.created_at,
			d.blood_group,
			d.city,
			d.state,
			u.full_name AS donor_name,
			u.email AS donor_email,
			u.phone AS donor_phone
		FROM donation_responses dr
		JOIN donors d ON dr.donor_id = d.donor_id
		JOIN users u ON d.user_id = u.user_id
		WHERE dr.request_id = $1
		ORDER BY dr.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ResponseWithDonor
	for rows.Next() {
		var v domain.ResponseWithDonor
		if err := rows.Scan(
			&v.ResponseID,
			&v.RequestID,
			&v.DonorID,
			&v.ResponseType,
			&v.Message,
			&v.Appointment,
			&v.DonationCompleted,
			&v.DonationDate,
			&v.CreatedAt,
			&v.BloodType,
			&v.City,
			&v.State,
			&v.DonorName,
			&v.DonorEmail,
			&v.DonorPhone,
		); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// ListByDonor returns the donor's responses joined with the referenced
// request's public fields, newest first.
func (r *PostgresResponsesRepository) ListByDonor(ctx context.Context, donorID string) ([]*domain.ResponseWithRequest, error) {
	query := `
		SELECT
			dr.response_id::text,
			dr.request_id::text,
			dr.donor_id::text,
			dr.response_type,
			dr.response_message,
			dr.appointment_date,
			dr.donation_completed,
			dr.donation_date,
			dr.created_at,
			br.patient_name,
			br.blood_group,
			br.hospital_name,
			br.city,
			br.contact_person,
			br.contact_phone,
			br.status AS request_status
		FROM donation_responses dr
		JOIN blood_requests br ON dr.request_id = br.request_id
		WHERE dr.donor_id = $1
		ORDER BY dr.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ResponseWithRequest
	for rows.Next() {
		var v domain.ResponseWithRequest
		if err := rows.Scan(
			&v.ResponseID,
			&v.RequestID,
			&v.DonorID,
			&v.ResponseType,
			&v.Message,
			&v.Appointment,
			&v.DonationCompleted,
			&v.DonationDate,
			&v.CreatedAt,
			&v.PatientName,
			&v.BloodType,
			&v.HospitalName,
			&v.City,
			&v.ContactPerson,
			&v.ContactPhone,
			&v.RequestStatus,
		); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// UpdateResponse applies the present patch fields via a static COALESCE update.
func (r *PostgresResponsesRepository) UpdateResponse(ctx context.Context, responseID string, patch ResponsePatch) error {
	var responseType *string
	if patch.ResponseType != nil {
		s := string(*patch.ResponseType)
		responseType = &s
	}
	query := `
		UPDATE donation_responses SET
			response_type      = COALESCE($2, response_type),
			response_message   = COALESCE($3, response_message),
			appointment_date   = COALESCE($4::timestamptz, appointment_date),
			donation_completed = COALESCE($5, donation_completed),
			donation_date      = COALESCE($6::date, donation_date)
		WHERE response_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		responseID,
		nullStr(responseType),
		nullStr(patch.Message),
		nullStr(patch.Appointment),
		nullBool(patch.DonationCompleted),
		nullStr(patch.DonationDate),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteResponse removes one response.
func (r *PostgresResponsesRepository) DeleteResponse(ctx context.Context, responseID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM donation_responses WHERE response_id = $1`, responseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
