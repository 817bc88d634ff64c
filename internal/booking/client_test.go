package booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gleamhq/estimator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func availabilityReq() AvailabilityRequest {
	return AvailabilityRequest{
		DurationMinutes: 155,
		EstimatedPanes:  57,
		Address:         "100 Founders Pkwy, Castle Rock, CO 80109",
	}
}

func TestClient_FetchAvailability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.Header.Get("x-gleam-auth"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"slots": [
			{"id": "s1", "day": "2026-09-14", "window": "8:00 AM - 10:00 AM", "tag": "Saver"},
			{"id": "s2", "day": "2026-09-14", "window": "12:00 PM - 2:00 PM", "tag": ""}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, "secret-token", 5*time.Second)

	slots, err := client.FetchAvailability(context.Background(), availabilityReq())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "s1", slots[0].ID)
	assert.Equal(t, "Saver", slots[0].Tag)
}

func TestClient_FetchAvailability_RetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"slots": [{"id": "s1", "day": "2026-09-15", "window": "8:00 AM - 10:00 AM", "tag": ""}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, "secret-token", 5*time.Second)

	slots, err := client.FetchAvailability(context.Background(), availabilityReq())
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_FetchAvailability_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, "secret-token", 5*time.Second)

	_, err := client.FetchAvailability(context.Background(), availabilityReq())
	require.Error(t, err)
	// Initial attempt plus three retries.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestClient_Submit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.Header.Get("x-gleam-auth"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"confirmation": "BK-2047", "payment_link": "https://pay.example.com/BK-2047"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, "secret-token", 5*time.Second)

	result, err := client.Submit(context.Background(), models.BookingPayload{Source: "Gleam Central Booking Hub"})
	require.NoError(t, err)
	assert.Equal(t, "BK-2047", result.Confirmation)
	assert.Equal(t, "https://pay.example.com/BK-2047", result.PaymentLink)
}

func TestClient_Submit_NeverRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, "secret-token", 5*time.Second)

	_, err := client.Submit(context.Background(), models.BookingPayload{})
	require.Error(t, err)
	// A failed booking surfaces to the user; it is never auto-retried.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Submit_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, "wrong-token", 5*time.Second)

	_, err := client.Submit(context.Background(), models.BookingPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
