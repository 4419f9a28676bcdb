package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"

	"go.uber.org/zap"
)

// Notifier is told about newly posted critical requests. Implementations must
// not block the request path; failures are logged, never surfaced.
type Notifier interface {
	NotifyCriticalRequest(ctx context.Context, req *domain.BloodRequest)
}

// NopNotifier discards notifications. Used when no webhook is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyCriticalRequest(ctx context.Context, req *domain.BloodRequest) {}

// RequestService manages the blood request lifecycle.
type RequestService interface {
	ListRequests(ctx context.Context, filters repository.RequestFilters) ([]RequestDTO, error)
	GetRequest(ctx context.Context, requestID string) (*RequestDTO, error)

	// CreateRequest posts a request. Hospital and admin accounts only.
	// Status always starts Open; urgency defaults to Normal.
	CreateRequest(ctx context.Context, actor *domain.User, req CreateRequestInput) (*RequestDTO, error)

	// UpdateRequest applies a partial update. Owning hospital or admin only.
	// Setting Status back to Open reopens a closed request.
	UpdateRequest(ctx context.Context, actor *domain.User, requestID string, patch repository.RequestPatch) (*RequestDTO, error)

	// DeleteRequest removes the request and its responses. Owner or admin only.
	DeleteRequest(ctx context.Context, actor *domain.User, requestID string) error
}

type requestService struct {
	requests repository.RequestsRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewRequestService(requests repository.RequestsRepository, notifier Notifier, logger *zap.Logger) RequestService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &requestService{requests: requests, notifier: notifier, logger: logger}
}

// CreateRequestInput carries a new blood request.
type CreateRequestInput struct {
	PatientName     string           `json:"patient_name"`
	BloodType       domain.BloodType `json:"blood_group"`
	UnitsRequired   int              `json:"units_required"`
	Urgency         domain.Urgency   `json:"urgency"`
	HospitalName    string           `json:"hospital_name"`
	HospitalAddress string           `json:"hospital_address"`
	City            string           `json:"city"`
	State           string           `json:"state"`
	ContactPerson   string           `json:"contact_person"`
	ContactPhone    string           `json:"contact_phone"`
	RequiredBy      string           `json:"required_by"` // YYYY-MM-DD
	Description     string           `json:"description"`
}

// RequestDTO is the JSON shape of a blood request.
type RequestDTO struct {
	RequestID           string               `json:"request_id"`
	HospitalID          string               `json:"hospital_id"`
	PatientName         string               `json:"patient_name"`
	BloodType           domain.BloodType     `json:"blood_group"`
	UnitsRequired       int                  `json:"units_required"`
	Urgency             domain.Urgency       `json:"urgency"`
	Status              domain.RequestStatus `json:"status"`
	HospitalName        string               `json:"hospital_name"`
	HospitalAddress     string               `json:"hospital_address"`
	City                string               `json:"city"`
	State               string               `json:"state,omitempty"`
	ContactPerson       string               `json:"contact_person"`
	ContactPhone        string               `json:"contact_phone"`
	RequiredBy          string               `json:"required_by"`
	Description         string               `json:"description,omitempty"`
	HospitalContactName string               `json:"hospital_contact_name,omitempty"`
	CreatedAt           string               `json:"created_at"`
}

func requestToDTO(d *domain.RequestDetail) RequestDTO {
	dto := RequestDTO{
		RequestID:           d.RequestID,
		HospitalID:          d.HospitalID,
		PatientName:         d.PatientName,
		BloodType:           d.BloodType,
		UnitsRequired:       d.UnitsRequired,
		Urgency:             d.Urgency,
		Status:              d.Status,
		HospitalName:        d.HospitalName,
		HospitalAddress:     d.HospitalAddress,
		City:                d.City,
		ContactPerson:       d.ContactPerson,
		ContactPhone:        d.ContactPhone,
		RequiredBy:          formatDate(d.RequiredBy),
		HospitalContactName: d.HospitalContactName,
		CreatedAt:           d.CreatedAt.UTC().Format(time.RFC3339),
	}
	if d.State.Valid {
		dto.State = d.State.String
	}
	if d.Description.Valid {
		dto.Description = d.Description.String
	}
	return dto
}

func (s *requestService) ListRequests(ctx context.Context, filters repository.RequestFilters) ([]RequestDTO, error) {
	if filters.BloodType != "" && !filters.BloodType.IsValid() {
		return nil, domain.NewValidationError("blood_group")
	}
	if filters.Status != "" && !filters.Status.IsValid() {
		return nil, domain.NewValidationError("status")
	}
	if filters.Urgency != "" && !filters.Urgency.IsValid() {
		return nil, domain.NewValidationError("urgency")
	}
	details, err := s.requests.ListRequests(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	out := make([]RequestDTO, 0, len(details))
	for _, d := range details {
		out = append(out, requestToDTO(d))
	}
	return out, nil
}

func (s *requestService) GetRequest(ctx context.Context, requestID string) (*RequestDTO, error) {
	d, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dto := requestToDTO(d)
	return &dto, nil
}

func (s *requestService) CreateRequest(ctx context.Context, actor *domain.User, in CreateRequestInput) (*RequestDTO, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if actor.Role != domain.RoleHospital && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	var missing []string
	if in.PatientName == "" {
		missing = append(missing, "patient_name")
	}
	if in.BloodType == "" {
		missing = append(missing, "blood_group")
	}
	if in.UnitsRequired <= 0 {
		missing = append(missing, "units_required")
	}
	if in.HospitalName == "" {
		missing = append(missing, "hospital_name")
	}
	if in.HospitalAddress == "" {
		missing = append(missing, "hospital_address")
	}
	if in.City == "" {
		missing = append(missing, "city")
	}
	if in.ContactPerson == "" {
		missing = append(missing, "contact_person")
	}
	if in.ContactPhone == "" {
		missing = append(missing, "contact_phone")
	}
	if in.RequiredBy == "" {
		missing = append(missing, "required_by")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(missing...)
	}
	if !in.BloodType.IsValid() {
		return nil, domain.NewValidationError("blood_group")
	}
	requiredBy, err := time.Parse("2006-01-02", in.RequiredBy)
	if err != nil {
		return nil, domain.NewValidationError("required_by")
	}

	urgency := in.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}
	if !urgency.IsValid() {
		return nil, domain.NewValidationError("urgency")
	}

	req := &domain.BloodRequest{
		HospitalID:      actor.UserID,
		PatientName:     in.PatientName,
		BloodType:       in.BloodType,
		UnitsRequired:   in.UnitsRequired,
		Urgency:         urgency,
		Status:          domain.StatusOpen,
		HospitalName:    in.HospitalName,
		HospitalAddress: in.HospitalAddress,
		City:            in.City,
		ContactPerson:   in.ContactPerson,
		ContactPhone:    in.ContactPhone,
		RequiredBy:      requiredBy,
	}
	if in.State != "" {
		req.State.String, req.State.Valid = in.State, true
	}
	if in.Description != "" {
		req.Description.String, req.Description.Valid = in.Description, true
	}

	requestID, err := s.requests.CreateRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.RequestID = requestID

	s.logger.Info("blood request created",
		zap.String("request_id", requestID),
		zap.String("hospital_id", actor.UserID),
		zap.String("blood_group", string(in.BloodType)),
		zap.String("urgency", string(urgency)),
	)
	if urgency == domain.UrgencyCritical {
		s.notifier.NotifyCriticalRequest(ctx, req)
	}
	return s.GetRequest(ctx, requestID)
}

func (s *requestService) UpdateRequest(ctx context.Context, actor *domain.User, requestID string, patch repository.RequestPatch) (*RequestDTO, error) {
	if err := s.authorize(ctx, actor, requestID); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, &domain.ValidationError{Message: "no fields to update"}
	}
	if patch.BloodType != nil && !patch.BloodType.IsValid() {
		return nil, domain.NewValidationError("blood_group")
	}
	if patch.Urgency != nil && !patch.Urgency.IsValid() {
		return nil, domain.NewValidationError("urgency")
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, domain.NewValidationError("status")
	}
	if patch.UnitsRequired != nil && *patch.UnitsRequired <= 0 {
		return nil, domain.NewValidationError("units_required")
	}
	if patch.RequiredBy != nil && !validDate(*patch.RequiredBy) {
		return nil, domain.NewValidationError("required_by")
	}
	if err := s.requests.UpdateRequest(ctx, requestID, patch); err != nil {
		return nil, err
	}
	s.logger.Info("blood request updated",
		zap.String("request_id", requestID),
		zap.String("actor_id", actor.UserID),
	)
	return s.GetRequest(ctx, requestID)
}

func (s *requestService) DeleteRequest(ctx context.Context, actor *domain.User, requestID string) error {
	if err := s.authorize(ctx, actor, requestID); err != nil {
		return err
	}
	if err := s.requests.DeleteRequest(ctx, requestID); err != nil {
		return err
	}
	s.logger.Info("blood request deleted",
		zap.String("request_id", requestID),
		zap.String("actor_id", actor.UserID),
	)
	return nil
}

// authorize allows admins and the posting hospital account.
func (s *requestService) authorize(ctx context.Context, actor *domain.User, requestID string) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	d, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to load request: %w", err)
	}
	if d.HospitalID != actor.UserID {
		return domain.ErrForbidden
	}
	return nil
}
