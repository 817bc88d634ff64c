package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleamhq/estimator/internal/estimate"
	"github.com/gleamhq/estimator/internal/logger"
	"github.com/gleamhq/estimator/internal/services"
	"github.com/gleamhq/estimator/internal/session"
)

func newEstimateRouter() (*gin.Engine, services.EstimateService) {
	gin.SetMode(gin.TestMode)

	svc := services.NewEstimateService(
		estimate.NewDefaultEngine(),
		nil,
		session.NewMemoryStore(),
		logger.New("test"),
	)
	handler := NewEstimateHandler(svc)

	router := gin.New()
	router.POST("/api/v1/estimates", handler.Estimate)
	router.GET("/api/v1/handoff/:id", handler.Handoff)
	return router, svc
}

func postEstimate(t *testing.T, router *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validEstimateBody() map[string]interface{} {
	return map[string]interface{}{
		"address":        "100 Founders Pkwy, Castle Rock, CO 80109",
		"aboveGradeSqft": 3400,
		"stories":        2,
		"zipCode":        "80109",
		"yearBuilt":      1998,
		"soilingTier":    "mid",
		"services":       map[string]bool{"exterior": true},
	}
}

func TestEstimateHandler_Estimate(t *testing.T) {
	router, _ := newEstimateRouter()

	w := postEstimate(t, router, validEstimateBody())
	require.Equal(t, http.StatusOK, w.Code)

	var response services.EstimateOutcome
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.NotEmpty(t, response.SessionID)
	assert.Equal(t, 57, response.Result.Panes)
	assert.Positive(t, response.Result.PriceMid)
}

func TestEstimateHandler_Estimate_ValidationRejections(t *testing.T) {
	router, _ := newEstimateRouter()

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"sqft below minimum", func(b map[string]interface{}) { b["aboveGradeSqft"] = 499 }},
		{"sqft above maximum", func(b map[string]interface{}) { b["aboveGradeSqft"] = 10001 }},
		{"missing sqft", func(b map[string]interface{}) { delete(b, "aboveGradeSqft") }},
		{"zero stories", func(b map[string]interface{}) { b["stories"] = 0 }},
		{"four stories", func(b map[string]interface{}) { b["stories"] = 4 }},
		{"bogus soiling", func(b map[string]interface{}) { b["soilingTier"] = "filthy" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validEstimateBody()
			tt.mutate(body)

			w := postEstimate(t, router, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestEstimateHandler_Estimate_MalformedJSON(t *testing.T) {
	router, _ := newEstimateRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", bytes.NewReader([]byte(`{"sqft":`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimateHandler_Estimate_SoilingDefaultsToMid(t *testing.T) {
	router, _ := newEstimateRouter()

	withMid := postEstimate(t, router, validEstimateBody())
	require.Equal(t, http.StatusOK, withMid.Code)

	body := validEstimateBody()
	delete(body, "soilingTier")
	withDefault := postEstimate(t, router, body)
	require.Equal(t, http.StatusOK, withDefault.Code)

	var a, b services.EstimateOutcome
	require.NoError(t, json.NewDecoder(withMid.Body).Decode(&a))
	require.NoError(t, json.NewDecoder(withDefault.Body).Decode(&b))
	assert.Equal(t, a.Result.PriceMid, b.Result.PriceMid)
}

func TestEstimateHandler_Handoff(t *testing.T) {
	router, _ := newEstimateRouter()

	w := postEstimate(t, router, validEstimateBody())
	require.Equal(t, http.StatusOK, w.Code)
	var outcome services.EstimateOutcome
	require.NoError(t, json.NewDecoder(w.Body).Decode(&outcome))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/handoff/"+outcome.SessionID, nil)
	hw := httptest.NewRecorder()
	router.ServeHTTP(hw, req)

	require.Equal(t, http.StatusOK, hw.Code)
	var response HandoffResponse
	require.NoError(t, json.NewDecoder(hw.Body).Decode(&response))
	assert.False(t, response.Degraded)
	assert.Equal(t, outcome.SessionID, response.Handoff.SessionID)
	assert.Equal(t, 57, response.Handoff.Panes)
}

func TestEstimateHandler_Handoff_Expired(t *testing.T) {
	router, _ := newEstimateRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/handoff/gone", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_EXPIRED")
}

func TestEstimateHandler_Handoff_DegradedQueryFallback(t *testing.T) {
	router, _ := newEstimateRouter()

	url := fmt.Sprintf("/api/v1/handoff/gone?panes=%d&base=%s&savings=%s&onsite=%s&sqft=%d&address=%s",
		57, "640.00", "32.00", "155", 3400, "100+Founders+Pkwy")
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response HandoffResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.True(t, response.Degraded)
	assert.Equal(t, 57, response.Handoff.Panes)
	assert.EqualValues(t, 64000, response.Handoff.RawTotal)
	assert.EqualValues(t, 3200, response.Handoff.Savings)
	assert.Equal(t, 3400, response.Handoff.Sqft)
}

func TestEstimateHandler_Handoff_DegradedNeedsLoadBearingKeys(t *testing.T) {
	router, _ := newEstimateRouter()

	// Panes without a base price is not enough to reconstruct anything useful.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/handoff/gone?panes=57", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
