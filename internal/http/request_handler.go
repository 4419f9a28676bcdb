package httpapi

import (
	"net/http"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"
	"bloodlink-data/internal/service"

	"go.uber.org/zap"
)

// RequestHandler serves the blood request lifecycle.
type RequestHandler struct {
	requests service.RequestService
	logger   *zap.Logger
}

func NewRequestHandler(requests service.RequestService, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{requests: requests, logger: logger}
}

func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	q := r.URL.Query()
	filters := repository.RequestFilters{
		BloodType: domain.BloodType(q.Get("blood_group")),
		City:      q.Get("city"),
		Status:    domain.RequestStatus(q.Get("status")),
		Urgency:   domain.Urgency(q.Get("urgency")),
	}
	requests, err := h.requests.ListRequests(r.Context(), filters)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(requests))
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request, actor *domain.User, requestID string) {
	req, err := h.requests.GetRequest(r.Context(), requestID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(req))
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var body service.CreateRequestInput
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	req, err := h.requests.CreateRequest(r.Context(), actor, body)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(req))
}

type requestPatchBody struct {
	PatientName     *string `json:"patient_name"`
	BloodType       *string `json:"blood_group"`
	UnitsRequired   *int    `json:"units_required"`
	Urgency         *string `json:"urgency"`
	Status          *string `json:"status"`
	HospitalName    *string `json:"hospital_name"`
	HospitalAddress *string `json:"hospital_address"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	ContactPerson   *string `json:"contact_person"`
	ContactPhone    *string `json:"contact_phone"`
	RequiredBy      *string `json:"required_by"`
	Description     *string `json:"description"`
}

func (b requestPatchBody) toPatch() repository.RequestPatch {
	patch := repository.RequestPatch{
		PatientName:     b.PatientName,
		UnitsRequired:   b.UnitsRequired,
		HospitalName:    b.HospitalName,
		HospitalAddress: b.HospitalAddress,
		City:            b.City,
		State:           b.State,
		ContactPerson:   b.ContactPerson,
		ContactPhone:    b.ContactPhone,
		RequiredBy:      b.RequiredBy,
		Description:     b.Description,
	}
	if b.BloodType != nil {
		bt := domain.BloodType(*b.BloodType)
		patch.BloodType = &bt
	}
	if b.Urgency != nil {
		u := domain.Urgency(*b.Urgency)
		patch.Urgency = &u
	}
	if b.Status != nil {
		st := domain.RequestStatus(*b.Status)
		patch.Status = &st
	}
	return patch
}

func (h *RequestHandler) Update(w http.ResponseWriter, r *http.Request, actor *domain.User, requestID string) {
	var body requestPatchBody
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	req, err := h.requests.UpdateRequest(r.Context(), actor, requestID, body.toPatch())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(req))
}

func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request, actor *domain.User, requestID string) {
	if err := h.requests.DeleteRequest(r.Context(), actor, requestID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
