package service

import (
	"context"
	"fmt"
	"strconv"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"

	"go.uber.org/zap"
)

// ReportKind selects one of the admin report datasets.
type ReportKind string

const (
	ReportDonors      ReportKind = "donors"
	ReportRequests    ReportKind = "requests"
	ReportBloodGroups ReportKind = "blood-groups"
	ReportCities      ReportKind = "cities"
)

// Report is a titled tabular dataset with an optional summary.
type Report struct {
	Title   string         `json:"title"`
	Columns []string       `json:"columns"`
	Rows    [][]string     `json:"rows"`
	Summary map[string]int `json:"summary,omitempty"`
}

// StatisticsDTO is the admin dashboard rollup.
type StatisticsDTO struct {
	Totals               repository.TotalCounts `json:"totals"`
	UsersByRole          []repository.CountRow  `json:"users_by_role"`
	DonorsByBloodType    []repository.CountRow  `json:"donors_by_blood_group"`
	RequestsByStatus     []repository.CountRow  `json:"requests_by_status"`
	OpenRequestsByUrgency []repository.CountRow `json:"open_requests_by_urgency"`
	TopDonorCities       []repository.CountRow  `json:"top_donor_cities"`
}

// AdminService serves the admin dashboard, reports and user management.
// Every operation requires an admin actor.
type AdminService interface {
	Statistics(ctx context.Context, actor *domain.User) (*StatisticsDTO, error)
	Report(ctx context.Context, actor *domain.User, kind ReportKind, dr repository.DateRange) (*Report, error)
	// ExportReport renders a report as an xlsx workbook.
	ExportReport(ctx context.Context, actor *domain.User, kind ReportKind, dr repository.DateRange) ([]byte, string, error)

	ListUsers(ctx context.Context, actor *domain.User) ([]UserDTO, error)
	// SetUserStatus activates or deactivates an account. Admins cannot
	// deactivate themselves.
	SetUserStatus(ctx context.Context, actor *domain.User, userID string, active bool) error
	// DeleteUser removes an account with everything it owns. Admins cannot
	// delete themselves.
	DeleteUser(ctx context.Context, actor *domain.User, userID string) error
}

type adminService struct {
	users  repository.UsersRepository
	stats  repository.StatsRepository
	logger *zap.Logger
}

func NewAdminService(users repository.UsersRepository, stats repository.StatsRepository, logger *zap.Logger) AdminService {
	return &adminService{users: users, stats: stats, logger: logger}
}

// UserDTO is the admin view of an account. Password hashes never leave the
// service layer.
type UserDTO struct {
	UserID    string      `json:"user_id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt string      `json:"created_at"`
}

func userToDTO(u *domain.User) UserDTO {
	dto := UserDTO{
		UserID:    u.UserID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if u.Phone.Valid {
		dto.Phone = u.Phone.String
	}
	return dto
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *adminService) Statistics(ctx context.Context, actor *domain.User) (*StatisticsDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute totals: %w", err)
	}
	byRole, err := s.stats.CountUsersByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	byBlood, err := s.stats.CountDonorsByBloodType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count donors: %w", err)
	}
	byStatus, err := s.stats.CountRequestsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}
	byUrgency, err := s.stats.CountOpenRequestsByUrgency(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count open requests: %w", err)
	}
	topCities, err := s.stats.TopDonorCities(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to count cities: %w", err)
	}
	return &StatisticsDTO{
		Totals:                *totals,
		UsersByRole:           byRole,
		DonorsByBloodType:     byBlood,
		RequestsByStatus:      byStatus,
		OpenRequestsByUrgency: byUrgency,
		TopDonorCities:        topCities,
	}, nil
}

func (s *adminService) Report(ctx context.Context, actor *domain.User, kind ReportKind, dr repository.DateRange) (*Report, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	switch kind {
	case ReportDonors:
		return s.donorReport(ctx, dr)
	case ReportRequests:
		return s.requestReport(ctx, dr)
	case ReportBloodGroups:
		return s.bloodGroupReport(ctx)
	case ReportCities:
		return s.cityReport(ctx)
	}
	return nil, domain.NewValidationError("report")
}

func (s *adminService) donorReport(ctx context.Context, dr repository.DateRange) (*Report, error) {
	donors, err := s.stats.DonorReport(ctx, dr)
	if err != nil {
		return nil, fmt.Errorf("failed to build donor report: %w", err)
	}
	r := &Report{
		Title:   "Donors Report",
		Columns: []string{"Name", "Email", "Phone", "Blood Group", "City", "State", "Available", "Last Donation", "Registered"},
		Summary: map[string]int{"total_donors": len(donors)},
	}
	available := 0
	for _, d := range donors {
		phone, state, lastDonation := "", "", ""
		if d.Phone.Valid {
			phone = d.Phone.String
		}
		if d.State.Valid {
			state = d.State.String
		}
		if d.LastDonationDate.Valid {
			lastDonation = formatDate(d.LastDonationDate.Time)
		}
		avail := "No"
		if d.IsAvailable {
			avail = "Yes"
			available++
		}
		r.Rows = append(r.Rows, []string{
			d.FullName, d.Email, phone, string(d.BloodType), d.City, state,
			avail, lastDonation, formatDate(d.CreatedAt),
		})
	}
	r.Summary["available_donors"] = available
	return r, nil
}

func (s *adminService) requestReport(ctx context.Context, dr repository.DateRange) (*Report, error) {
	requests, err := s.stats.RequestReport(ctx, dr)
	if err != nil {
		return nil, fmt.Errorf("failed to build request report: %w", err)
	}
	r := &Report{
		Title:   "Blood Requests Report",
		Columns: []string{"Patient", "Blood Group", "Units", "Urgency", "Status", "Hospital", "City", "Required By", "Created"},
		Summary: map[string]int{"total_requests": len(requests)},
	}
	open := 0
	for _, req := range requests {
		if req.Status == domain.StatusOpen {
			open++
		}
		r.Rows = append(r.Rows, []string{
			req.PatientName, string(req.BloodType), strconv.Itoa(req.UnitsRequired),
			string(req.Urgency), string(req.Status), req.HospitalName, req.City,
			formatDate(req.RequiredBy), formatDate(req.CreatedAt),
		})
	}
	r.Summary["open_requests"] = open
	return r, nil
}

func (s *adminService) bloodGroupReport(ctx context.Context) (*Report, error) {
	rows, err := s.stats.BloodGroupAnalysis(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build blood group report: %w", err)
	}
	r := &Report{
		Title:   "Blood Group Analysis",
		Columns: []string{"Blood Group", "Total Donors", "Available Donors", "Total Requests", "Open Requests"},
	}
	for _, row := range rows {
		r.Rows = append(r.Rows, []string{
			string(row.BloodType), strconv.Itoa(row.TotalDonors),
			strconv.Itoa(row.AvailableDonors), strconv.Itoa(row.TotalRequests),
			strconv.Itoa(row.OpenRequests),
		})
	}
	return r, nil
}

func (s *adminService) cityReport(ctx context.Context) (*Report, error) {
	rows, err := s.stats.CityAnalysis(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build city report: %w", err)
	}
	r := &Report{
		Title:   "City Analysis",
		Columns: []string{"City", "State", "Total Donors", "Available Donors", "Total Requests"},
	}
	for _, row := range rows {
		r.Rows = append(r.Rows, []string{
			row.City, row.State, strconv.Itoa(row.TotalDonors),
			strconv.Itoa(row.AvailableDonors), strconv.Itoa(row.TotalRequests),
		})
	}
	return r, nil
}

func (s *adminService) ListUsers(ctx context.Context, actor *domain.User) ([]UserDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, userToDTO(u))
	}
	return out, nil
}

func (s *adminService) SetUserStatus(ctx context.Context, actor *domain.User, userID string, active bool) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if userID == actor.UserID {
		return &domain.ValidationError{Message: "cannot change your own account status"}
	}
	if err := s.users.SetUserActive(ctx, userID, active); err != nil {
		return err
	}
	s.logger.Info("user status changed",
		zap.String("user_id", userID),
		zap.Bool("active", active),
		zap.String("actor_id", actor.UserID),
	)
	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if userID == actor.UserID {
		return &domain.ValidationError{Message: "cannot delete your own account"}
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted",
		zap.String("user_id", userID),
		zap.String("actor_id", actor.UserID),
	)
	return nil
}
