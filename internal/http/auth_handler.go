package httpapi

import (
	"net/http"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/service"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// AuthHandler serves registration, login, logout and the current profile.
type AuthHandler struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerBody struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	BloodType   string `json:"blood_group"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Weight      int    `json:"weight"`
	City        string `json:"city"`
	State       string `json:"state"`
	Address     string `json:"address"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	resp, err := h.auth.Register(r.Context(), service.RegisterRequest{
		FullName:    body.FullName,
		Email:       body.Email,
		Password:    body.Password,
		Phone:       body.Phone,
		Role:        domain.Role(body.Role),
		BloodType:   domain.BloodType(body.BloodType),
		DateOfBirth: body.DateOfBirth,
		Gender:      body.Gender,
		Weight:      body.Weight,
		City:        body.City,
		State:       body.State,
		Address:     body.Address,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	resp, err := h.auth.Login(r.Context(), service.LoginRequest{Email: body.Email, Password: body.Password})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	if err := h.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	resp, err := h.auth.Profile(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
