package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mw "github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/middleware"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store/memstore"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock Store ---

type failingKeyStore struct {
	*memstore.Store
}

func (f failingKeyStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, errors.New("connection refused")
}

// --- Mock Cache ---

type mockCache struct {
	counter int64
	err     error
}

func (m *mockCache) Ping(_ context.Context) error { return nil }
func (m *mockCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	m.counter++
	return m.counter, m.err
}
func (m *mockCache) AcquireLock(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "token", nil
}
func (m *mockCache) ReleaseLock(_ context.Context, _, _ string) error { return nil }

// --- helpers ---

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func storeWithKey(t *testing.T, rawKey string, scopes ...string) *memstore.Store {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.MinCost)
	require.NoError(t, err)

	s := memstore.New()
	require.NoError(t, s.CreateAPIKey(context.Background(), &models.APIKey{
		ID:        uuid.New(),
		Name:      "test-key",
		KeyHash:   string(h),
		KeyPrefix: rawKey[:8],
		Scopes:    scopes,
	}))
	return s
}

func authed(rawKey string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	return req
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"].(map[string]any)
}

// ========================================
// Auth Middleware Tests
// ========================================

func TestAuth_MissingAuthHeader(t *testing.T) {
	handler := mw.NewAuth(memstore.New()).Authenticate(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", errBody(t, w)["code"])
}

func TestAuth_InvalidBearerFormat(t *testing.T) {
	handler := mw.NewAuth(memstore.New()).Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_KeyTooShort(t *testing.T) {
	handler := mw.NewAuth(memstore.New()).Authenticate(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authed("short"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_KeyNotFound(t *testing.T) {
	handler := mw.NewAuth(memstore.New()).Authenticate(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authed("cr_test1234567890"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_LookupFailure(t *testing.T) {
	handler := mw.NewAuth(failingKeyStore{memstore.New()}).Authenticate(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authed("cr_test1234567890"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errBody(t, w)["code"])
}

func TestAuth_WrongSecret(t *testing.T) {
	s := storeWithKey(t, "cr_test1234567890abcdef", models.ScopeRead)
	handler := mw.NewAuth(s).Authenticate(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authed("cr_test1_different_secret"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidKey(t *testing.T) {
	rawKey := "cr_test1234567890abcdef"
	s := storeWithKey(t, rawKey, models.ScopeRead)

	var gotName string
	var gotOK bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName, gotOK = mw.KeyName(r)
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	mw.NewAuth(s).Authenticate(inner).ServeHTTP(w, authed(rawKey))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotOK)
	assert.Equal(t, "test-key", gotName)
}

func TestAuth_RequireScope_Allowed(t *testing.T) {
	rawKey := "cr_write_1234567890abcdef"
	s := storeWithKey(t, rawKey, models.ScopeRead, models.ScopeWrite)
	auth := mw.NewAuth(s)

	w := httptest.NewRecorder()
	auth.Authenticate(auth.RequireScope(models.ScopeWrite)(okHandler())).ServeHTTP(w, authed(rawKey))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_RequireScope_AdminImpliesAll(t *testing.T) {
	rawKey := "cr_admin_1234567890abcdef"
	s := storeWithKey(t, rawKey, models.ScopeAdmin)
	auth := mw.NewAuth(s)

	w := httptest.NewRecorder()
	auth.Authenticate(auth.RequireScope(models.ScopeWrite)(okHandler())).ServeHTTP(w, authed(rawKey))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_RequireScope_Denied(t *testing.T) {
	rawKey := "cr_read__1234567890abcdef"
	s := storeWithKey(t, rawKey, models.ScopeRead)
	auth := mw.NewAuth(s)

	w := httptest.NewRecorder()
	auth.Authenticate(auth.RequireScope(models.ScopeAdmin)(okHandler())).ServeHTTP(w, authed(rawKey))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errBody(t, w)["code"])
}

// ========================================
// Rate Limit Middleware Tests
// ========================================

func withKey(req *http.Request, prefix string) *http.Request {
	return req.WithContext(mw.WithAPIKey(req.Context(), "test-key", prefix, []string{models.ScopeRead}))
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	handler := mw.NewRateLimit(&mockCache{}, 60).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withKey(httptest.NewRequest("GET", "/test", nil), "cr_test1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	mc := &mockCache{counter: 60} // next IncrWithExpiry will return 61
	handler := mw.NewRateLimit(mc, 60).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withKey(httptest.NewRequest("GET", "/test", nil), "cr_over1"))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errBody(t, w)["code"])
}

func TestRateLimit_CounterErrorFailsOpen(t *testing.T) {
	mc := &mockCache{counter: 1000, err: errors.New("redis down")}
	handler := mw.NewRateLimit(mc, 60).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withKey(httptest.NewRequest("GET", "/test", nil), "cr_down1"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_NoKeyPrefix_PassThrough(t *testing.T) {
	handler := mw.NewRateLimit(&mockCache{}, 60).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Recovery Middleware Tests
// ========================================

func TestRecovery_CatchesPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("something went wrong")
	})

	w := httptest.NewRecorder()
	mw.Recovery(panicking).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errBody(t, w)["code"])
}

func TestRecovery_ReraisesAbort(t *testing.T) {
	aborting := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		mw.Recovery(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
	})
}

func TestRecovery_NoPanic(t *testing.T) {
	w := httptest.NewRecorder()
	mw.Recovery(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Logging Middleware Tests
// ========================================

func TestLogger_PassesStatusThrough(t *testing.T) {
	teapot := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	mw.Logger(teapot).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestLogger_ImplicitOK(t *testing.T) {
	w := httptest.NewRecorder()
	mw.Logger(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
