package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/mock"
	"github.com/koalaroute/koalaroute/internal/service"
)

const (
	testSignKey = "test-sign-key"
	testIssuer  = "koalaroute-auth"
)

// handlerMocks bundles the per-test service doubles behind the handler.
type handlerMocks struct {
	search  *mock.MockSearchService
	booking *mock.MockBookingService
	history *mock.MockHistoryService
	health  *mock.MockHealthService
}

func newTestHandler(t *testing.T) (*Handler, handlerMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mocks := handlerMocks{
		search:  mock.NewMockSearchService(ctrl),
		booking: mock.NewMockBookingService(ctrl),
		history: mock.NewMockHistoryService(ctrl),
		health:  mock.NewMockHealthService(ctrl),
	}

	services := &service.Services{
		Search:  mocks.search,
		Booking: mocks.booking,
		History: mocks.history,
		Health:  mocks.health,
	}

	auth := config.Auth{TokenSignKey: testSignKey, TokenIssuer: testIssuer}
	return NewHandler(services, auth, logger.Nop()), mocks
}

// signTestToken mints a caller token the way the external account service
// would.
func signTestToken(t *testing.T, claims jwt.RegisteredClaims, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func callerToken(t *testing.T) string {
	t.Helper()
	now := time.Now()
	return signTestToken(t, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "42",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}, testSignKey)
}

// ── auth middleware ─────────────────────────────────────────────────────────

func TestAuth_MissingHeader(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := handler.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/flights/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := handler.Init()

	for _, header := range []string{"Bearer", "Bearer ", "not-a-bearer-token"} {
		req := httptest.NewRequest(http.MethodGet, "/api/flights/history", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := handler.Init()

	expired := signTestToken(t, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}, testSignKey)

	req := httptest.NewRequest(http.MethodGet, "/api/flights/history", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ForeignSignature(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := handler.Init()

	forged := signTestToken(t, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "attacker-key")

	req := httptest.NewRequest(http.MethodGet, "/api/flights/history", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_HealthNeedsNoToken(t *testing.T) {
	handler, mocks := newTestHandler(t)
	router := handler.Init()

	mocks.health.EXPECT().Health(gomock.Any()).Return(healthyStatus())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
