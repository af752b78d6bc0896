package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/api/dto"
	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/ratelimit"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/store/sqlite"
)

// testEnvelope decodes a success envelope with a typed payload.
type testEnvelope[T any] struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// testErrorEnvelope decodes an error envelope.
type testErrorEnvelope struct {
	V       int             `json:"v"`
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

type testServer struct {
	*Server
	api     humatest.TestAPI
	metrics *metrics.Metrics

	general *dto.Category // created on first use by createProduct
}

type testOption func(*Options, *domain.CategoryDeletePolicy)

func withRateLimiter(l *ratelimit.KeyedRateLimiter) testOption {
	return func(o *Options, _ *domain.CategoryDeletePolicy) { o.RateLimiter = l }
}

func withDeletePolicy(p domain.CategoryDeletePolicy) testOption {
	return func(_ *Options, policy *domain.CategoryDeletePolicy) { *policy = p }
}

// setupTestServer builds the full router over a temporary database.
func setupTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()

	log := logger.Discard().Logger

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	m := metrics.New()
	options := Options{Metrics: m}
	policy := domain.DeletePolicyOrphan
	for _, opt := range opts {
		opt(&options, &policy)
	}

	services := &Services{
		Category: service.NewCategoryService(st, log, policy),
		Product:  service.NewProductService(st, log, m),
		Tag:      service.NewTagService(st, log),
	}

	s := NewServer(st, services, options, log)
	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.API()),
		metrics: m,
	}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	require.True(t, env.Success, resp.Body.String())
	require.Equal(t, EnvelopeVersion, env.V)
	return env.Data
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) testErrorEnvelope {
	t.Helper()
	var env testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	require.False(t, env.Success, resp.Body.String())
	require.Equal(t, EnvelopeVersion, env.V)
	return env
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decode[HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, Version, health.Version)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/widgets", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeError(t, w)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestServer_RequestID(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("generated when absent", func(t *testing.T) {
		resp := ts.api.Get("/api/tags")
		assert.Regexp(t, `^req-[A-Za-z0-9_-]{21}$`, resp.Header().Get(headerRequestID))
	})

	t.Run("valid incoming id is echoed", func(t *testing.T) {
		rid := "req-V1StGXR8_Z5jdHi6B-myT"
		resp := ts.api.Get("/api/tags", headerRequestID+": "+rid)
		assert.Equal(t, rid, resp.Header().Get(headerRequestID))
	})

	t.Run("malformed incoming id is replaced", func(t *testing.T) {
		resp := ts.api.Get("/api/tags", headerRequestID+": <script>")
		got := resp.Header().Get(headerRequestID)
		assert.NotEqual(t, "<script>", got)
		assert.Regexp(t, `^req-`, got)
	})
}

func TestRequestID_TagsContextLogger(t *testing.T) {
	var buf bytes.Buffer
	s := &Server{logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	handler := s.requestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context(), nil).Info("handled")
	}))

	rid := "req-V1StGXR8_Z5jdHi6B-myT"
	req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	req.Header.Set(headerRequestID, rid)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "handled", line["msg"])
	assert.Equal(t, rid, line["request_id"])
}

func TestServer_SchemaViolationIsValidationError(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/categories", map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	env := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.NotEmpty(t, env.Details)
}

func TestServer_RateLimitsWrites(t *testing.T) {
	limiter := ratelimit.PerMinute(60, 2)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, withRateLimiter(limiter))

	for i := range 2 {
		resp := ts.api.Post("/api/tags", map[string]any{"tag_name": "tag-" + strconv.Itoa(i)})
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	}

	resp := ts.api.Post("/api/tags", map[string]any{"tag_name": "one too many"})
	require.Equal(t, http.StatusTooManyRequests, resp.Code)

	retry, err := strconv.Atoi(resp.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retry, 1)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, resp).Code)

	// Reads are never limited.
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/tags").Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	ts.api.Get("/api/products")

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `catalog_http_requests_total{method="GET",route="/api/products",status="200"} 1`)
}

func TestServer_RecoversPanics(t *testing.T) {
	ts := setupTestServer(t)
	ts.router.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL", decodeError(t, w).Code)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := setupTestServer(t)

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/tags", http.NoBody))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, w).Code)
}
