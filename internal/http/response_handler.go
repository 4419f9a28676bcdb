package httpapi

import (
	"net/http"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"
	"bloodlink-data/internal/service"

	"go.uber.org/zap"
)

// ResponseHandler serves donation responses.
type ResponseHandler struct {
	responses service.ResponseService
	logger    *zap.Logger
}

func NewResponseHandler(responses service.ResponseService, logger *zap.Logger) *ResponseHandler {
	return &ResponseHandler{responses: responses, logger: logger}
}

func (h *ResponseHandler) Respond(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var body service.RespondInput
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	resp, err := h.responses.Respond(r.Context(), actor, body)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

func (h *ResponseHandler) ListForRequest(w http.ResponseWriter, r *http.Request, actor *domain.User, requestID string) {
	rows, err := h.responses.ListForRequest(r.Context(), actor, requestID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rows))
}

func (h *ResponseHandler) ListMine(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	rows, err := h.responses.ListMine(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rows))
}

type responsePatchBody struct {
	ResponseType      *string `json:"response_type"`
	Message           *string `json:"message"`
	Appointment       *string `json:"appointment_date"`
	DonationCompleted *bool   `json:"donation_completed"`
	DonationDate      *string `json:"donation_date"`
}

func (b responsePatchBody) toPatch() repository.ResponsePatch {
	patch := repository.ResponsePatch{
		Message:           b.Message,
		Appointment:       b.Appointment,
		DonationCompleted: b.DonationCompleted,
		DonationDate:      b.DonationDate,
	}
	if b.ResponseType != nil {
		rt := domain.ResponseType(*b.ResponseType)
		patch.ResponseType = &rt
	}
	return patch
}

func (h *ResponseHandler) Update(w http.ResponseWriter, r *http.Request, actor *domain.User, responseID string) {
	var body responsePatchBody
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	resp, err := h.responses.Update(r.Context(), actor, responseID, body.toPatch())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *ResponseHandler) Cancel(w http.ResponseWriter, r *http.Request, actor *domain.User, responseID string) {
	if err := h.responses.Cancel(r.Context(), actor, responseID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
