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

// ResponseService coordinates donor responses to blood requests.
type ResponseService interface {
	// Respond records the actor's response to an Open request. Gates, in
	// order: the actor must own a donor row (ErrForbidden), the request must
	// exist (ErrNotFound) and be Open (ErrInvalidState), the donor's blood
	// group must be able to donate to the request's group
	// (IncompatibleBloodTypeError), and the donor must not have responded
	// before (ErrDuplicateResponse). The openness and uniqueness gates are
	// re-checked atomically with the insert by the repository.
	Respond(ctx context.Context, actor *domain.User, in RespondInput) (*ResponseDTO, error)

	// ListForRequest returns all responses to a request with donor identity.
	// Only the posting hospital account or an admin may view them.
	ListForRequest(ctx context.Context, actor *domain.User, requestID string) ([]ResponseWithDonorDTO, error)

	// ListMine returns the actor's own responses with request context.
	ListMine(ctx context.Context, actor *domain.User) ([]ResponseWithRequestDTO, error)

	// Update applies a partial update to a response owned by the actor.
	Update(ctx context.Context, actor *domain.User, responseID string, patch repository.ResponsePatch) (*ResponseDTO, error)

	// Cancel removes a response owned by the actor.
	Cancel(ctx context.Context, actor *domain.User, responseID string) error
}

type responseService struct {
	responses repository.ResponsesRepository
	requests  repository.RequestsRepository
	donors    repository.DonorsRepository
	logger    *zap.Logger
}

func NewResponseService(responses repository.ResponsesRepository, requests repository.RequestsRepository, donors repository.DonorsRepository, logger *zap.Logger) ResponseService {
	return &responseService{
		responses: responses,
		requests:  requests,
		donors:    donors,
		logger:    logger,
	}
}

// RespondInput carries a new donation response.
type RespondInput struct {
	RequestID    string              `json:"request_id"`
	ResponseType domain.ResponseType `json:"response_type"`
	Message      string              `json:"message"`
	Appointment  string              `json:"appointment_date"` // RFC 3339 or YYYY-MM-DD
}

// ResponseDTO is the JSON shape of a donation response.
type ResponseDTO struct {
	ResponseID        string              `json:"response_id"`
	RequestID         string              `json:"request_id"`
	DonorID           string              `json:"donor_id"`
	ResponseType      domain.ResponseType `json:"response_type"`
	Message           string              `json:"message,omitempty"`
	Appointment       string              `json:"appointment_date,omitempty"`
	DonationCompleted bool                `json:"donation_completed"`
	DonationDate      string              `json:"donation_date,omitempty"`
	CreatedAt         string              `json:"created_at"`
}

// ResponseWithDonorDTO adds the responding donor's identity, for the hospital view.
type ResponseWithDonorDTO struct {
	ResponseDTO
	BloodType  domain.BloodType `json:"blood_group"`
	City       string           `json:"city"`
	State      string           `json:"state,omitempty"`
	DonorName  string           `json:"donor_name"`
	DonorEmail string           `json:"donor_email"`
	DonorPhone string           `json:"donor_phone,omitempty"`
}

// ResponseWithRequestDTO adds the referenced request's public fields, for the donor view.
type ResponseWithRequestDTO struct {
	ResponseDTO
	PatientName   string               `json:"patient_name"`
	BloodType     domain.BloodType     `json:"blood_group"`
	HospitalName  string               `json:"hospital_name"`
	City          string               `json:"city"`
	ContactPerson string               `json:"contact_person"`
	ContactPhone  string               `json:"contact_phone"`
	RequestStatus domain.RequestStatus `json:"request_status"`
}

func responseToDTO(r *domain.DonationResponse) ResponseDTO {
	dto := ResponseDTO{
		ResponseID:        r.ResponseID,
		RequestID:         r.RequestID,
		DonorID:           r.DonorID,
		ResponseType:      r.ResponseType,
		DonationCompleted: r.DonationCompleted,
		CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.Message.Valid {
		dto.Message = r.Message.String
	}
	if r.Appointment.Valid {
		dto.Appointment = r.Appointment.Time.UTC().Format(time.RFC3339)
	}
	if r.DonationDate.Valid {
		dto.DonationDate = formatDate(r.DonationDate.Time)
	}
	return dto
}

func (s *responseService) Respond(ctx context.Context, actor *domain.User, in RespondInput) (*ResponseDTO, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	donor, err := s.donors.GetDonorByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("only donors may respond: %w", domain.ErrForbidden)
		}
		return nil, fmt.Errorf("failed to resolve donor: %w", err)
	}

	if in.RequestID == "" {
		return nil, domain.NewValidationError("request_id")
	}
	respType := in.ResponseType
	if respType == "" {
		respType = domain.ResponseInterested
	}
	if respType != domain.ResponseInterested && respType != domain.ResponseConfirmed {
		return nil, domain.NewValidationError("response_type")
	}

	req, err := s.requests.GetRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.StatusOpen {
		return nil, domain.ErrInvalidState
	}
	if !domain.CanDonate(donor.BloodType, req.BloodType) {
		return nil, &domain.IncompatibleBloodTypeError{Donor: donor.BloodType, Recipient: req.BloodType}
	}

	resp := &domain.DonationResponse{
		RequestID:    in.RequestID,
		DonorID:      donor.DonorID,
		ResponseType: respType,
	}
	if in.Message != "" {
		resp.Message.String, resp.Message.Valid = in.Message, true
	}
	if in.Appointment != "" {
		t, err := parseTimestamp(in.Appointment)
		if err != nil {
			return nil, domain.NewValidationError("appointment_date")
		}
		resp.Appointment.Time, resp.Appointment.Valid = t, true
	}

	responseID, err := s.responses.CreateResponse(ctx, resp)
	if err != nil {
		return nil, err
	}

	s.logger.Info("donation response created",
		zap.String("response_id", responseID),
		zap.String("request_id", in.RequestID),
		zap.String("donor_id", donor.DonorID),
		zap.String("response_type", string(respType)),
	)
	created, err := s.responses.GetResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	dto := responseToDTO(created)
	return &dto, nil
}

func (s *responseService) ListForRequest(ctx context.Context, actor *domain.User, requestID string) ([]ResponseWithDonorDTO, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	req, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && req.HospitalID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	rows, err := s.responses.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	out := make([]ResponseWithDonorDTO, 0, len(rows))
	for _, r := range rows {
		dto := ResponseWithDonorDTO{
			ResponseDTO: responseToDTO(&r.DonationResponse),
			BloodType:   r.BloodType,
			City:        r.City,
			DonorName:   r.DonorName,
			DonorEmail:  r.DonorEmail,
		}
		if r.State.Valid {
			dto.State = r.State.String
		}
		if r.DonorPhone.Valid {
			dto.DonorPhone = r.DonorPhone.String
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *responseService) ListMine(ctx context.Context, actor *domain.User) ([]ResponseWithRequestDTO, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	donor, err := s.donors.GetDonorByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("only donors have responses: %w", domain.ErrForbidden)
		}
		return nil, fmt.Errorf("failed to resolve donor: %w", err)
	}
	rows, err := s.responses.ListByDonor(ctx, donor.DonorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	out := make([]ResponseWithRequestDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, ResponseWithRequestDTO{
			ResponseDTO:   responseToDTO(&r.DonationResponse),
			PatientName:   r.PatientName,
			BloodType:     r.BloodType,
			HospitalName:  r.HospitalName,
			City:          r.City,
			ContactPerson: r.ContactPerson,
			ContactPhone:  r.ContactPhone,
			RequestStatus: r.RequestStatus,
		})
	}
	return out, nil
}

func (s *responseService) Update(ctx context.Context, actor *domain.User, responseID string, patch repository.ResponsePatch) (*ResponseDTO, error) {
	if _, err := s.ownResponse(ctx, actor, responseID); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, &domain.ValidationError{Message: "no fields to update"}
	}
	if patch.ResponseType != nil && !patch.ResponseType.IsValid() {
		return nil, domain.NewValidationError("response_type")
	}
	if patch.Appointment != nil {
		if _, err := parseTimestamp(*patch.Appointment); err != nil {
			return nil, domain.NewValidationError("appointment_date")
		}
	}
	if patch.DonationDate != nil && !validDate(*patch.DonationDate) {
		return nil, domain.NewValidationError("donation_date")
	}
	if err := s.responses.UpdateResponse(ctx, responseID, patch); err != nil {
		return nil, err
	}

	// A completed donation stamps the donor's last donation date.
	if patch.DonationCompleted != nil && *patch.DonationCompleted {
		s.recordDonationDate(ctx, actor, patch.DonationDate)
	}

	s.logger.Info("donation response updated",
		zap.String("response_id", responseID),
		zap.String("actor_id", actor.UserID),
	)
	updated, err := s.responses.GetResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	dto := responseToDTO(updated)
	return &dto, nil
}

func (s *responseService) Cancel(ctx context.Context, actor *domain.User, responseID string) error {
	if _, err := s.ownResponse(ctx, actor, responseID); err != nil {
		return err
	}
	if err := s.responses.DeleteResponse(ctx, responseID); err != nil {
		return err
	}
	s.logger.Info("donation response cancelled",
		zap.String("response_id", responseID),
		zap.String("actor_id", actor.UserID),
	)
	return nil
}

// ownResponse loads the response and verifies it belongs to the actor's donor.
func (s *responseService) ownResponse(ctx context.Context, actor *domain.User, responseID string) (*domain.DonationResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	resp, err := s.responses.GetResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	donor, err := s.donors.GetDonorByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("failed to resolve donor: %w", err)
	}
	if resp.DonorID != donor.DonorID {
		return nil, domain.ErrForbidden
	}
	return resp, nil
}

func (s *responseService) recordDonationDate(ctx context.Context, actor *domain.User, donationDate *string) {
	donor, err := s.donors.GetDonorByUserID(ctx, actor.UserID)
	if err != nil {
		return
	}
	date := time.Now().Format("2006-01-02")
	if donationDate != nil {
		date = *donationDate
	}
	patch := repository.DonorPatch{LastDonationDate: &date}
	if err := s.donors.UpdateDonor(ctx, donor.DonorID, patch); err != nil {
		s.logger.Warn("failed to stamp last donation date",
			zap.String("donor_id", donor.DonorID),
			zap.Error(err),
		)
	}
}

// parseTimestamp accepts RFC 3339 or a bare date.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
