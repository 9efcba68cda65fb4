package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/koalaroute/koalaroute/models"
)

func healthyStatus() models.HealthStatus {
	return models.HealthStatus{
		Status:    models.HealthOK,
		Database:  true,
		Providers: map[string]bool{"amadeus": true, "duffel": true},
	}
}

func TestHealth_OK(t *testing.T) {
	handler, mocks := newTestHandler(t)
	router := handler.Init()

	mocks.health.EXPECT().Health(gomock.Any()).Return(healthyStatus())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Database)
	assert.Equal(t, models.HealthOK, got.Status)
}

func TestHealth_Degraded(t *testing.T) {
	handler, mocks := newTestHandler(t)
	router := handler.Init()

	mocks.health.EXPECT().Health(gomock.Any()).Return(models.HealthStatus{Status: models.HealthDegraded})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
