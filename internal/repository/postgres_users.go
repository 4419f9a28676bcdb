package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bloodlink-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresUsersRepository implements UsersRepository over database/sql.
type PostgresUsersRepository struct {
	db *sql.DB
}

// NewPostgresUsersRepository creates the users repository.
func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	user_id::text,
	full_name,
	email,
	password_hash,
	phone,
	role,
	is_active,
	created_at
`

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var phone sql.NullString
	err := row.Scan(
		&user.UserID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&phone,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	user.Phone = phone
	return &user, nil
}

// GetUser fetches one account by id.
func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, userID))
}

// GetUserByEmail fetches one account by its unique email.
func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// ListUsers returns all accounts, newest first.
func (r *PostgresUsersRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		var phone sql.NullString
		if err := rows.Scan(
			&user.UserID,
			&user.FullName,
			&user.Email,
			&user.PasswordHash,
			&phone,
			&user.Role,
			&user.IsActive,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		user.Phone = phone
		users = append(users, &user)
	}
	return users, rows.Err()
}

// CreateUser inserts an account and returns its id.
func (r *PostgresUsersRepository) CreateUser(ctx context.Context, user *domain.User) (string, error) {
	userID := uuid.NewString()
	query := `
		INSERT INTO users (user_id, full_name, email, password_hash, phone, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		userID,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.Role,
		user.IsActive,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return userID, nil
}

// SetUserActive toggles the account active flag.
func (r *PostgresUsersRepository) SetUserActive(ctx context.Context, userID string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = $2 WHERE user_id = $1`, userID, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteUser removes the account and everything it owns in one transaction.
// Donor responses, the donor row, responses to the account's requests and the
// requests themselves all go together so no orphaned reference survives.
func (r *PostgresUsersRepository) DeleteUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM donation_responses
		WHERE donor_id IN (SELECT donor_id FROM donors WHERE user_id = $1)
	`, userID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM donors WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM donation_responses
		WHERE request_id IN (SELECT request_id FROM blood_requests WHERE hospital_id = $1)
	`, userID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM blood_requests WHERE hospital_id = $1`, userID)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
