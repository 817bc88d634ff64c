package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleamhq/estimator/internal/addons"
	"github.com/gleamhq/estimator/internal/booking"
	"github.com/gleamhq/estimator/internal/logger"
	"github.com/gleamhq/estimator/internal/models"
)

func newBookingFixture(t *testing.T, availabilityURL, bookingURL string) (BookingService, string) {
	t.Helper()

	estimates := newTestEstimateService()
	outcome, err := estimates.Estimate(context.Background(), validEstimateRequest())
	require.NoError(t, err)

	client := booking.NewClient(availabilityURL, bookingURL, "secret-token", 5*time.Second)
	return NewBookingService(estimates, client, logger.New("test")), outcome.SessionID
}

func TestBookingService_ResolveAddons(t *testing.T) {
	svc, sessionID := newBookingFixture(t, "http://unused", "http://unused")

	resolved, err := svc.ResolveAddons(context.Background(), sessionID)
	require.NoError(t, err)

	ids := make(map[string]bool, len(resolved))
	for _, def := range resolved {
		ids[def.ID] = true
	}
	// A window-cleaning quote surfaces universal and window add-ons.
	assert.True(t, ids["dv"])
	assert.True(t, ids["rescreen"])
	assert.False(t, ids["walkway_wash"])
}

func TestBookingService_ResolveAddons_SessionExpired(t *testing.T) {
	svc, _ := newBookingFixture(t, "http://unused", "http://unused")

	_, err := svc.ResolveAddons(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBookingService_Quote(t *testing.T) {
	svc, sessionID := newBookingFixture(t, "http://unused", "http://unused")

	t.Run("empty selection is the base quote", func(t *testing.T) {
		quote, err := svc.Quote(context.Background(), sessionID, nil)
		require.NoError(t, err)
		assert.Equal(t, quote.BasePrice, quote.TotalPrice)
		assert.Zero(t, quote.AddonPrice)
	})

	t.Run("selection adds on top of base", func(t *testing.T) {
		quote, err := svc.Quote(context.Background(), sessionID, map[string]addons.Selection{
			"dv": {Qty: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, 99.0, quote.AddonPrice)
		assert.Equal(t, quote.BasePrice+99.0, quote.TotalPrice)
		assert.GreaterOrEqual(t, quote.Savings, 50.0)
	})
}

func TestBookingService_Availability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// The job size rides along for route optimization.
		assert.EqualValues(t, 57, req["panes"])
		assert.NotEmpty(t, req["address"])

		w.Write([]byte(`{"slots": [{"id": "s1", "day": "2026-09-14", "window": "8:00 AM - 10:00 AM", "tag": "Saver"}]}`))
	}))
	defer server.Close()

	svc, sessionID := newBookingFixture(t, server.URL, server.URL)

	slots, err := svc.Availability(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "s1", slots[0].ID)
}

func TestBookingService_Book(t *testing.T) {
	var captured models.BookingPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.Header.Get("x-gleam-auth"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"confirmation": "BK-3051"}`))
	}))
	defer server.Close()

	svc, sessionID := newBookingFixture(t, server.URL, server.URL)

	result, err := svc.Book(context.Background(), BookRequest{
		SessionID: sessionID,
		Selection: map[string]addons.Selection{"dv": {Qty: 1}},
		Contact: models.Contact{
			FirstName: "Dana", LastName: "Whitfield",
			Email: "dana@example.com", Phone: "303-555-0184",
		},
		Slot: models.Slot{Day: "2026-09-14", Window: "8:00 AM - 10:00 AM"},
	})
	require.NoError(t, err)
	assert.Equal(t, "BK-3051", result.Confirmation)

	// The submitted contract carries the add-on row and the savings row.
	skus := make(map[string]bool, len(captured.LineItems))
	for _, li := range captured.LineItems {
		skus[li.SKU] = true
	}
	assert.True(t, skus["RES-DRY-CLN"])
	assert.True(t, skus["PROMO-BUN-DIS"])
	assert.Equal(t, "Gleam Central Booking Hub", captured.Source)

	// Address defaults to the hand-off record when the request omits it.
	assert.Equal(t, "100 Founders Pkwy, Castle Rock, CO 80109", captured.Address)
}

func TestBookingService_Book_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc, sessionID := newBookingFixture(t, server.URL, server.URL)

	_, err := svc.Book(context.Background(), BookRequest{
		SessionID: sessionID,
		Slot:      models.Slot{Day: "2026-09-14", Window: "8:00 AM - 10:00 AM"},
	})
	assert.Error(t, err)
}

func TestBookingService_Book_SessionExpired(t *testing.T) {
	svc, _ := newBookingFixture(t, "http://unused", "http://unused")

	_, err := svc.Book(context.Background(), BookRequest{SessionID: "no-such-session"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
