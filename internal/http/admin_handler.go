package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"
	"bloodlink-data/internal/service"

	"go.uber.org/zap"
)

// AdminHandler serves the admin dashboard, reports and user management.
type AdminHandler struct {
	admin  service.AdminService
	logger *zap.Logger
}

func NewAdminHandler(admin service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

func (h *AdminHandler) Statistics(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	stats, err := h.admin.Statistics(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

// dateRangeFromQuery reads optional start_date/end_date bounds (YYYY-MM-DD).
// The end bound is inclusive of the whole day.
func dateRangeFromQuery(r *http.Request) repository.DateRange {
	var dr repository.DateRange
	if v := r.URL.Query().Get("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			dr.Start = t
		}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			dr.End = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return dr
}

func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	kind := service.ReportKind(r.URL.Query().Get("type"))
	report, err := h.admin.Report(r.Context(), actor, kind, dateRangeFromQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(report))
}

func (h *AdminHandler) ExportReport(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	kind := service.ReportKind(r.URL.Query().Get("type"))
	data, filename, err := h.admin.ExportReport(r.Context(), actor, kind, dateRangeFromQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	users, err := h.admin.ListUsers(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(users))
}

func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request, actor *domain.User, userID string) {
	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil || body.IsActive == nil {
		writeJSON(w, http.StatusBadRequest, Fail("is_active is required"))
		return
	}
	if err := h.admin.SetUserStatus(r.Context(), actor, userID, *body.IsActive); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request, actor *domain.User, userID string) {
	if err := h.admin.DeleteUser(r.Context(), actor, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
