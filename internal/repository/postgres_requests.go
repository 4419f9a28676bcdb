package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bloodlink-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresRequestsRepository implements RequestsRepository over database/sql.
type PostgresRequestsRepository struct {
	db *sql.DB
}

// NewPostgresRequestsRepository creates the blood requests repository.
func NewPostgresRequestsRepository(db *sql.DB) *PostgresRequestsRepository {
	return &PostgresRequestsRepository{db: db}
}

var _ RequestsRepository = (*PostgresRequestsRepository)(nil)

const requestDetailColumns = `
	br.request_id::text,
	br.hospital_id::text,
	br.patient_name,
	br.blood_group,
	br.units_required,
	br.urgency,
	br.status,
	br.hospital_name,
	br.hospital_address,
	br.city,
	br.state,
	br.contact_person,
	br.contact_phone,
	br.required_by,
	br.description,
	br.created_at,
	u.full_name AS hospital_contact_name
`

// urgencyRankSQL orders Critical > Urgent > Normal. A plain ORDER BY on the
// varchar column would sort alphabetically.
const urgencyRankSQL = `CASE br.urgency WHEN 'Critical' THEN 3 WHEN 'Urgent' THEN 2 ELSE 1 END`

func scanRequestDetail(scan func(dest ...any) error) (*domain.RequestDetail, error) {
	var d domain.RequestDetail
	err := scan(
		&d.RequestID,
		&d.HospitalID,
		&d.PatientName,
		&d.BloodType,
		&d.UnitsRequired,
		&d.Urgency,
		&d.Status,
		&d.HospitalName,
		&d.HospitalAddress,
		&d.City,
		&d.State,
		&d.ContactPerson,
		&d.ContactPhone,
		&d.RequiredBy,
		&d.Description,
		&d.CreatedAt,
		&d.HospitalContactName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetRequest fetches one request joined with the posting account's name.
func (r *PostgresRequestsRepository) GetRequest(ctx context.Context, requestID string) (*domain.RequestDetail, error) {
	if requestID == "" {
		return nil, domain.ErrNotFound
	}
	query := `
		SELECT ` + requestDetailColumns + `
		FROM blood_requests br
		JOIN users u ON br.hospital_id = u.user_id
		WHERE br.request_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, requestID)
	return scanRequestDetail(row.Scan)
}

// ListRequests returns requests matching the filters, most urgent first, then
// newest first.
func (r *PostgresRequestsRepository) ListRequests(ctx context.Context, filters RequestFilters) ([]*domain.RequestDetail, error) {
	query := `
		SELECT ` + requestDetailColumns + `
		FROM blood_requests br
		JOIN users u ON br.hospital_id = u.user_id
		WHERE ($1::text IS NULL OR br.blood_group = $1)
		  AND ($2::text IS NULL OR br.city ILIKE '%' || $2 || '%')
		  AND ($3::text IS NULL OR br.status = $3)
		  AND ($4::text IS NULL OR br.urgency = $4)
		ORDER BY ` + urgencyRankSQL + ` DESC, br.created_at DESC
	`
	var bloodType, city, status, urgency *string
	if filters.BloodType != "" {
		s := string(filters.BloodType)
		bloodType = &s
	}
	if filters.City != "" {
		city = &filters.City
	}
	if filters.Status != "" {
		s := string(filters.Status)
		status = &s
	}
	if filters.Urgency != "" {
		s := string(filters.Urgency)
		urgency = &s
	}

	rows, err := r.db.QueryContext(ctx, query,
		nullStr(bloodType), nullStr(city), nullStr(status), nullStr(urgency))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.RequestDetail
	for rows.Next() {
		d, err := scanRequestDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		requests = append(requests, d)
	}
	return requests, rows.Err()
}

// CreateRequest inserts a request and returns its id.
func (r *PostgresRequestsRepository) CreateRequest(ctx context.Context, req *domain.BloodRequest) (string, error) {
	requestID := uuid.NewString()
	query := `
		INSERT INTO blood_requests (
			request_id, hospital_id, patient_name, blood_group, units_required,
			urgency, status, hospital_name, hospital_address, city, state,
			contact_person, contact_phone, required_by, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		requestID,
		req.HospitalID,
		req.PatientName,
		req.BloodType,
		req.UnitsRequired,
		req.Urgency,
		req.Status,
		req.HospitalName,
		req.HospitalAddress,
		req.City,
		req.State,
		req.ContactPerson,
		req.ContactPhone,
		req.RequiredBy,
		req.Description,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create blood request: %w", err)
	}
	return requestID, nil
}

// UpdateRequest applies the present patch fields via a static COALESCE update.
func (r *PostgresRequestsRepository) UpdateRequest(ctx context.Context, requestID string, patch RequestPatch) error {
	var bloodType, urgency, status *string
	if patch.BloodType != nil {
		s := string(*patch.BloodType)
		bloodType = &s
	}
	if patch.Urgency != nil {
		s := string(*patch.Urgency)
		urgency = &s
	}
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	query := `
		UPDATE blood_requests SET
			patient_name     = COALESCE($2, patient_name),
			blood_group      = COALESCE($3, blood_group),
			units_required   = COALESCE($4, units_required),
			urgency          = COALESCE($5, urgency),
			status           = COALESCE($6, status),
			hospital_name    = COALESCE($7, hospital_name),
			hospital_address = COALESCE($8, hospital_address),
			city             = COALESCE($9, city),
			state            = COALESCE($10, state),
			contact_person   = COALESCE($11, contact_person),
			contact_phone    = COALESCE($12, contact_phone),
			required_by      = COALESCE($13::date, required_by),
			description      = COALESCE($14, description)
		WHERE request_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		requestID,
		nullStr(patch.PatientName),
		nullStr(bloodType),
		nullInt(patch.UnitsRequired),
		nullStr(urgency),
		nullStr(status),
		nullStr(patch.HospitalName),
		nullStr(patch.HospitalAddress),
		nullStr(patch.City),
		nullStr(patch.State),
		nullStr(patch.ContactPerson),
		nullStr(patch.ContactPhone),
		nullStr(patch.RequiredBy),
		nullStr(patch.Description),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteRequest removes the request and all its responses in one transaction.
func (r *PostgresRequestsRepository) DeleteRequest(ctx context.Context, requestID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM donation_responses WHERE request_id = $1`, requestID)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM blood_requests WHERE request_id = $1`, requestID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
