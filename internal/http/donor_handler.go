package httpapi

import (
	"net/http"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"
	"bloodlink-data/internal/service"

	"go.uber.org/zap"
)

// DonorHandler serves the donor directory and profile maintenance.
type DonorHandler struct {
	donors service.DonorService
	logger *zap.Logger
}

func NewDonorHandler(donors service.DonorService, logger *zap.Logger) *DonorHandler {
	return &DonorHandler{donors: donors, logger: logger}
}

func (h *DonorHandler) List(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	q := r.URL.Query()
	filters := repository.DonorFilters{
		BloodType: domain.BloodType(q.Get("blood_group")),
		City:      q.Get("city"),
	}
	if v := q.Get("available"); v != "" {
		available := v == "true"
		filters.Available = &available
	}
	donors, err := h.donors.ListDonors(r.Context(), filters)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(donors))
}

func (h *DonorHandler) Get(w http.ResponseWriter, r *http.Request, actor *domain.User, donorID string) {
	donor, err := h.donors.GetDonor(r.Context(), donorID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(donor))
}

type donorPatchBody struct {
	BloodType        *string `json:"blood_group"`
	DateOfBirth      *string `json:"date_of_birth"`
	Gender           *string `json:"gender"`
	Weight           *int    `json:"weight"`
	City             *string `json:"city"`
	State            *string `json:"state"`
	Address          *string `json:"address"`
	LastDonationDate *string `json:"last_donation_date"`
	IsAvailable      *bool   `json:"is_available"`
	MedicalNotes     *string `json:"medical_conditions"`
}

func (b donorPatchBody) toPatch() repository.DonorPatch {
	patch := repository.DonorPatch{
		DateOfBirth:      b.DateOfBirth,
		Gender:           b.Gender,
		Weight:           b.Weight,
		City:             b.City,
		State:            b.State,
		Address:          b.Address,
		LastDonationDate: b.LastDonationDate,
		IsAvailable:      b.IsAvailable,
		MedicalNotes:     b.MedicalNotes,
	}
	if b.BloodType != nil {
		bt := domain.BloodType(*b.BloodType)
		patch.BloodType = &bt
	}
	return patch
}

func (h *DonorHandler) Update(w http.ResponseWriter, r *http.Request, actor *domain.User, donorID string) {
	var body donorPatchBody
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	donor, err := h.donors.UpdateDonor(r.Context(), actor, donorID, body.toPatch())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(donor))
}

func (h *DonorHandler) Delete(w http.ResponseWriter, r *http.Request, actor *domain.User, donorID string) {
	if err := h.donors.DeleteDonor(r.Context(), actor, donorID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
