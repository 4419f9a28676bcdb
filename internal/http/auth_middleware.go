package httpapi

import (
	"net/http"
	"strings"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/service"

	"go.uber.org/zap"
)

// authedHandler receives the authenticated account alongside the request.
type authedHandler func(w http.ResponseWriter, r *http.Request, actor *domain.User)

// AuthMiddleware resolves bearer tokens to accounts for protected routes.
type AuthMiddleware struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthMiddleware(auth service.AuthService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

// Require wraps a handler so it only runs with a valid session.
func (m *AuthMiddleware) Require(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := m.auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, m.logger, err)
			return
		}
		h(w, r, actor)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}
