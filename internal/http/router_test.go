package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bloodlink-data/internal/repository"
	"bloodlink-data/internal/service"
	"bloodlink-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	mem := repository.NewMemoryStore()
	logger := zap.NewNop()
	kv := store.NewMemoryKV()

	authSvc := service.NewAuthService(mem, mem, kv, 0, logger)
	donorSvc := service.NewDonorService(mem, logger)
	requestSvc := service.NewRequestService(mem, nil, logger)
	responseSvc := service.NewResponseService(mem, mem, mem, logger)
	adminSvc := service.NewAdminService(mem, mem, logger)

	mw := NewAuthMiddleware(authSvc, logger)
	router := NewRouter(logger)
	router.RegisterAuthRoutes(NewAuthHandler(authSvc, logger), mw)
	router.RegisterDonorRoutes(NewDonorHandler(donorSvc, logger), mw)
	router.RegisterRequestRoutes(NewRequestHandler(requestSvc, logger), mw)
	router.RegisterResponseRoutes(NewResponseHandler(responseSvc, logger), mw)
	router.RegisterAdminRoutes(NewAdminHandler(adminSvc, logger), mw)
	return router
}

func doJSON(t *testing.T, router *Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func registerUser(t *testing.T, router *Router, body map[string]any) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decodeResult(t, rec)["result"].(map[string]any)
	return result["token"].(string)
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	router := newTestRouter(t)

	token := registerUser(t, router, map[string]any{
		"full_name":   "Alice Donor",
		"email":       "alice@example.com",
		"password":    "secret1",
		"phone":       "5550001",
		"role":        "donor",
		"blood_group": "O-",
		"city":        "Springfield",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResult(t, rec)
	assert.Equal(t, float64(ResultSuccess), body["code"])
	result := body["result"].(map[string]any)
	assert.Equal(t, "alice@example.com", result["email"])
	donor := result["donor"].(map[string]any)
	assert.Equal(t, "O-", donor["blood_group"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/donors", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/donors", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestResponseFlow(t *testing.T) {
	router := newTestRouter(t)

	hospitalToken := registerUser(t, router, map[string]any{
		"full_name": "City Hospital",
		"email":     "hosp@example.com",
		"password":  "secret1",
		"phone":     "5550002",
		"role":      "hospital",
	})
	donorToken := registerUser(t, router, map[string]any{
		"full_name":   "Bob Donor",
		"email":       "bob@example.com",
		"password":    "secret1",
		"phone":       "5550003",
		"role":        "donor",
		"blood_group": "O-",
		"city":        "Springfield",
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", hospitalToken, map[string]any{
		"patient_name":     "John Doe",
		"blood_group":      "AB+",
		"units_required":   2,
		"urgency":          "Critical",
		"hospital_name":    "City Hospital",
		"hospital_address": "1 Main St",
		"city":             "Springfield",
		"contact_person":   "Dr. Smith",
		"contact_phone":    "5551234",
		"required_by":      "2030-01-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeResult(t, rec)["result"].(map[string]any)
	requestID := created["request_id"].(string)
	assert.Equal(t, "Open", created["status"])

	// donors cannot post requests
	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests", donorToken, map[string]any{
		"patient_name": "X",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// hospitals cannot respond, and the reason reaches the client
	rec = doJSON(t, router, http.MethodPost, "/api/v1/responses", hospitalToken, map[string]any{
		"request_id": requestID,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, decodeResult(t, rec)["message"], "only donors may respond")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/responses", donorToken, map[string]any{
		"request_id":    requestID,
		"response_type": "Interested",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// second response conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/v1/responses", donorToken, map[string]any{
		"request_id": requestID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// hospital sees the response
	rec = doJSON(t, router, http.MethodGet, "/api/v1/responses/request/"+requestID, hospitalToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decodeResult(t, rec)["result"].([]any)
	require.Len(t, rows, 1)

	// donor sees it under my-responses
	rec = doJSON(t, router, http.MethodGet, "/api/v1/responses/my-responses", donorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows = decodeResult(t, rec)["result"].([]any)
	assert.Len(t, rows, 1)
}

func TestIncompatibleResponseRejected(t *testing.T) {
	router := newTestRouter(t)

	hospitalToken := registerUser(t, router, map[string]any{
		"full_name": "City Hospital",
		"email":     "hosp@example.com",
		"password":  "secret1",
		"phone":     "5550002",
		"role":      "hospital",
	})
	donorToken := registerUser(t, router, map[string]any{
		"full_name":   "Bob Donor",
		"email":       "bob@example.com",
		"password":    "secret1",
		"phone":       "5550003",
		"role":        "donor",
		"blood_group": "B+",
		"city":        "Springfield",
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", hospitalToken, map[string]any{
		"patient_name":     "John Doe",
		"blood_group":      "A+",
		"units_required":   1,
		"hospital_name":    "City Hospital",
		"hospital_address": "1 Main St",
		"city":             "Springfield",
		"contact_person":   "Dr. Smith",
		"contact_phone":    "5551234",
		"required_by":      "2030-01-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	requestID := decodeResult(t, rec)["result"].(map[string]any)["request_id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/responses", donorToken, map[string]any{
		"request_id": requestID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResult(t, rec)
	assert.Contains(t, body["message"], "B+")
	assert.Contains(t, body["message"], "A+")
}

func TestAdminRoutesForbiddenForOthers(t *testing.T) {
	router := newTestRouter(t)

	donorToken := registerUser(t, router, map[string]any{
		"full_name":   "Bob Donor",
		"email":       "bob@example.com",
		"password":    "secret1",
		"phone":       "5550003",
		"role":        "donor",
		"blood_group": "B+",
		"city":        "Springfield",
	})
	adminToken := registerUser(t, router, map[string]any{
		"full_name": "Root",
		"email":     "root@example.com",
		"password":  "secret1",
		"phone":     "5550004",
		"role":      "admin",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/admin/statistics", donorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/admin/statistics", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeResult(t, rec)["result"].(map[string]any)
	totals := result["totals"].(map[string]any)
	assert.Equal(t, float64(2), totals["total_users"])
}
