package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"
	"bloodlink-data/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "session:"

// AuthService handles registration, login and session tokens.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID string) (*ProfileResponse, error)

	// Authenticate resolves a bearer token to its active account. Returns
	// domain.ErrUnauthorized for unknown or expired tokens and for
	// deactivated accounts.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type authService struct {
	users      repository.UsersRepository
	donors     repository.DonorsRepository
	sessions   store.KV
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService creates an AuthService storing session tokens in kv with the
// given TTL.
func NewAuthService(users repository.UsersRepository, donors repository.DonorsRepository, sessions store.KV, sessionTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		users:      users,
		donors:     donors,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// RegisterRequest carries a new account. Donor role additionally requires
// BloodType and City; the donor row is created in the same flow.
type RegisterRequest struct {
	FullName string
	Email    string
	Password string
	Phone    string
	Role     domain.Role // optional, defaults to donor

	// donor fields
	BloodType   domain.BloodType
	DateOfBirth string // YYYY-MM-DD, optional
	Gender      string // optional
	Weight      int    // optional
	City        string
	State       string // optional
	Address     string // optional
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string
	Password string
}

// UserSummary is the public slice of an account returned with a token.
type UserSummary struct {
	UserID   string      `json:"user_id"`
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// AuthResponse is the result of a successful register or login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// ProfileResponse is the current account, with donor fields merged in when
// the account has the donor role.
type ProfileResponse struct {
	UserID    string      `json:"user_id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`

	Donor *DonorDTO `json:"donor,omitempty"`
}

// HashPassword hashes a password for storage. The hash depends only on the
// password itself.
func HashPassword(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return sum[:]
}

func passwordMatches(hash []byte, password string) bool {
	candidate := HashPassword(password)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}

// Register creates an account, the donor row when applicable, and a session.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var missing []string
	if req.FullName == "" {
		missing = append(missing, "full_name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if req.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(missing...)
	}
	if !validEmail(req.Email) {
		return nil, domain.NewValidationError("email")
	}
	if len(req.Password) < 6 {
		return nil, &domain.ValidationError{Message: "password must be at least 6 characters"}
	}

	role := req.Role
	if role == "" {
		role = domain.RoleDonor
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError("role")
	}

	if role == domain.RoleDonor {
		if req.BloodType == "" || req.City == "" {
			return nil, &domain.ValidationError{Message: "blood group and city are required for donors"}
		}
		if !req.BloodType.IsValid() {
			return nil, domain.NewValidationError("blood_group")
		}
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, &domain.ValidationError{Message: "email already registered"}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &domain.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: HashPassword(req.Password),
		Phone:        sql.NullString{String: req.Phone, Valid: true},
		Role:         role,
		IsActive:     true,
	}
	userID, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if role == domain.RoleDonor {
		donor := &domain.Donor{
			UserID:      userID,
			BloodType:   req.BloodType,
			IsAvailable: true,
			City:        req.City,
		}
		if req.DateOfBirth != "" {
			if t, err := time.Parse("2006-01-02", req.DateOfBirth); err == nil {
				donor.DateOfBirth = sql.NullTime{Time: t, Valid: true}
			}
		}
		if req.Gender != "" {
			donor.Gender = sql.NullString{String: req.Gender, Valid: true}
		}
		if req.Weight > 0 {
			donor.Weight = sql.NullInt64{Int64: int64(req.Weight), Valid: true}
		}
		if req.State != "" {
			donor.State = sql.NullString{String: req.State, Valid: true}
		}
		if req.Address != "" {
			donor.Address = sql.NullString{String: req.Address, Valid: true}
		}
		if _, err := s.donors.CreateDonor(ctx, donor); err != nil {
			return nil, fmt.Errorf("failed to create donor: %w", err)
		}
	}

	token, err := s.issueToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
	)
	return &AuthResponse{
		Token: token,
		User: UserSummary{
			UserID:   userID,
			FullName: req.FullName,
			Email:    req.Email,
			Role:     role,
		},
	}, nil
}

// Login checks credentials and issues a session token.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, domain.NewValidationError("email", "password")
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}
	if !passwordMatches(user.PasswordHash, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.UserID))
	return &AuthResponse{
		Token: token,
		User: UserSummary{
			UserID:   user.UserID,
			FullName: user.FullName,
			Email:    user.Email,
			Role:     user.Role,
		},
	}, nil
}

// Logout revokes a session token. Unknown tokens are not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionKeyPrefix+token)
}

// Profile returns the current account, merging donor fields for donor accounts.
func (s *authService) Profile(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &ProfileResponse{
		UserID:    user.UserID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	if user.Phone.Valid {
		resp.Phone = user.Phone.String
	}
	if user.Role == domain.RoleDonor {
		if donor, err := s.donors.GetDonorByUserID(ctx, userID); err == nil {
			dto := donorToDTO(donor)
			resp.Donor = &dto
		}
	}
	return resp, nil
}

// Authenticate resolves a bearer token to its active account.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	userID, err := s.sessions.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (s *authService) issueToken(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.sessions.Set(ctx, sessionKeyPrefix+token, userID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}
