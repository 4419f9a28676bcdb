package httpapi

import (
	"net/http"
	"strings"

	"bloodlink-data/internal/domain"

	"go.uber.org/zap"
)

// Router wraps the standard library ServeMux; no third-party routing.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// pathID extracts the trailing id segment after prefix; empty when the path
// has more segments or none.
func pathID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// RegisterAuthRoutes wires registration, login, logout and profile.
func (r *Router) RegisterAuthRoutes(h *AuthHandler, mw *AuthMiddleware) {
	r.Handle("/api/v1/auth/register", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Register(w, req)
	})
	r.Handle("/api/v1/auth/login", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Login(w, req)
	})
	r.Handle("/api/v1/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		mw.Require(h.Logout)(w, req)
	})
	r.Handle("/api/v1/auth/profile", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		mw.Require(h.Profile)(w, req)
	})
}

// RegisterDonorRoutes wires the donor directory.
func (r *Router) RegisterDonorRoutes(h *DonorHandler, mw *AuthMiddleware) {
	r.Handle("/api/v1/donors", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		mw.Require(h.List)(w, req)
	})
	r.Handle("/api/v1/donors/", func(w http.ResponseWriter, req *http.Request) {
		id := pathID(req.URL.Path, "/api/v1/donors/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.Get(w, req, actor, id)
			})(w, req)
		case http.MethodPut, http.MethodPatch:
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.Update(w, req, actor, id)
			})(w, req)
		case http.MethodDelete:
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.Delete(w, req, actor, id)
			})(w, req)
		default:
			methodNotAllowed(w)
		}
	})
}

// RegisterRequestRoutes wires blood requests.
func (r *Router) RegisterRequestRoutes(h *RequestHandler, mw *AuthMiddleware) {
	r.Handle("/api/v1/requests", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			mw.Require(h.List)(w, req)
		case http.MethodPost:
			mw.Require(h.Create)(w, req)
		default:
			methodNotAllowed(w)
		}
	})
	r.Handle("/api/v1/requests/", func(w http.ResponseWriter, req *http.Request) {
		id := pathID(req.URL.Path, "/api/v1/requests/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.Get(w, req, actor, id)
			})(w, req)
		case http.MethodPut, http.MethodPatch:
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.Update(w, req, actor, id)
			})(w, req)
		case http.MethodDelete:
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.Delete(w, req, actor, id)
			})(w, req)
		default:
			methodNotAllowed(w)
		}
	})
}

// RegisterResponseRoutes wires donation responses.
func (r *Router) RegisterResponseRoutes(h *ResponseHandler, mw *AuthMiddleware) {
	r.Handle("/api/v1/responses", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		mw.Require(h.Respond)(w, req)
	})
	r.Handle("/api/v1/responses/my-responses", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		mw.Require(h.ListMine)(w, req)
	})
	r.Handle("/api/v1/responses/request/", func(w http.ResponseWriter, req *http.Request) {
		id := pathID(req.URL.Path, "/api/v1/responses/request/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
			h.ListForRequest(w, req, actor, id)
		})(w, req)
	})
	r.Handle("/api/v1/responses/", func(w http.ResponseWriter, req *http.Request) {
		id := pathID(req.URL.Path, "/api/v1/responses/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodPut, http.MethodPatch:
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.Update(w, req, actor, id)
			})(w, req)
		case http.MethodDelete:
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.Cancel(w, req, actor, id)
			})(w, req)
		default:
			methodNotAllowed(w)
		}
	})
}

// RegisterAdminRoutes wires the admin dashboard, reports and user management.
func (r *Router) RegisterAdminRoutes(h *AdminHandler, mw *AuthMiddleware) {
	r.Handle("/api/v1/admin/statistics", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		mw.Require(h.Statistics)(w, req)
	})
	r.Handle("/api/v1/admin/reports", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		mw.Require(h.Report)(w, req)
	})
	r.Handle("/api/v1/admin/reports/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		mw.Require(h.ExportReport)(w, req)
	})
	r.Handle("/api/v1/admin/users", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		mw.Require(h.ListUsers)(w, req)
	})
	r.Handle("/api/v1/admin/users/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/v1/admin/users/")
		switch {
		case strings.HasSuffix(rest, "/status"):
			id := strings.TrimSuffix(rest, "/status")
			if id == "" || strings.Contains(id, "/") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if req.Method != http.MethodPut && req.Method != http.MethodPatch {
				methodNotAllowed(w)
				return
			}
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.SetUserStatus(w, req, actor, id)
			})(w, req)
		case rest != "" && !strings.Contains(rest, "/"):
			if req.Method != http.MethodDelete {
				methodNotAllowed(w)
				return
			}
			mw.Require(func(w http.ResponseWriter, req *http.Request, actor *domain.User) {
				h.DeleteUser(w, req, actor, rest)
			})(w, req)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}
