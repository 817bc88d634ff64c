package reconcile

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func auditRequest() AuditRequest {
	return AuditRequest{
		Address:  "100 Founders Pkwy, Castle Rock, CO 80109",
		Baseline: testBaseline(),
		Stories:  2,
		Images:   [][]byte{[]byte("front"), []byte("left"), []byte("right")},
	}
}

const validAuditBody = `{
	"reconciled_garage": 11,
	"skylights": 1,
	"has_storm_door": false,
	"levels": {
		"L1": {"standard": 20, "non_standard": 4, "slider_units": 2, "picture_units": 2},
		"L2": {"standard": 16, "non_standard": 2}
	},
	"basement": {"egress_units": 2, "standard_units": 1}
}`

func TestHTTPOracle_Audit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "oracle-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var wire map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wire))

		// The deterministic targets ride along as context for the audit.
		assert.EqualValues(t, 57, wire["house_target"])
		assert.EqualValues(t, 12, wire["garage_target"])

		images := wire["images"].([]interface{})
		require.Len(t, images, 3)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("front")), images[0])

		w.Write([]byte(validAuditBody))
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, "oracle-key", 5*time.Second)

	report, err := oracle.Audit(context.Background(), auditRequest())
	require.NoError(t, err)
	assert.Equal(t, 11, report.ReconciledGarage)
	assert.Equal(t, 20, report.Levels.L1.Standard)
}

func TestHTTPOracle_Audit_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, "oracle-key", 5*time.Second)

	_, err := oracle.Audit(context.Background(), auditRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestHTTPOracle_Audit_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`I count roughly thirty windows on the front elevation.`))
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, "oracle-key", 5*time.Second)

	_, err := oracle.Audit(context.Background(), auditRequest())
	assert.Error(t, err)
}
