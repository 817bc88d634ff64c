package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gleamhq/estimator/internal/models"
)

// authHeader carries the shared webhook secret rejecting unauthorized direct
// POSTs.
const authHeader = "x-gleam-auth"

// Client talks to the external scheduling service webhooks: availability
// lookup and final booking submission.
type Client struct {
	availabilityURL string
	bookingURL      string
	authToken       string
	httpClient      *http.Client
	maxRetries      uint64
}

// NewClient builds a webhook client with a bounded request timeout.
func NewClient(availabilityURL, bookingURL, authToken string, timeout time.Duration) *Client {
	return &Client{
		availabilityURL: availabilityURL,
		bookingURL:      bookingURL,
		authToken:       authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 3,
	}
}

// AvailabilityRequest asks for route-optimized arrival windows.
type AvailabilityRequest struct {
	DurationMinutes int    `json:"duration"`
	EstimatedPanes  int    `json:"panes"`
	Address         string `json:"address"`
}

type availabilityResponse struct {
	Slots []models.Slot `json:"slots"`
}

// FetchAvailability retrieves open slots for the estimated job. The lookup is
// an idempotent read, so transient failures are retried with exponential
// backoff before giving up.
func (c *Client) FetchAvailability(ctx context.Context, req AvailabilityRequest) ([]models.Slot, error) {
	var slots []models.Slot

	operation := func() error {
		got, err := c.fetchAvailabilityOnce(ctx, req)
		if err != nil {
			return err
		}
		slots = got
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetch availability: %w", err)
	}
	return slots, nil
}

func (c *Client) fetchAvailabilityOnce(ctx context.Context, req AvailabilityRequest) ([]models.Slot, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.availabilityURL, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var decoded availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return decoded.Slots, nil
}

// SubmitResult is the scheduling service's acknowledgement of a booking.
type SubmitResult struct {
	Confirmation string `json:"confirmation"`
	PaymentLink  string `json:"payment_link,omitempty"`
}

// Submit sends the assembled booking payload. Submission happens exactly
// once per confirmation: failures are returned to the caller for a
// user-visible retry, never retried automatically.
func (c *Client) Submit(ctx context.Context, payload models.BookingPayload) (*SubmitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal booking payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bookingURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create booking request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit booking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("booking rejected with status %d", resp.StatusCode)
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode booking response: %w", err)
	}
	return &result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authHeader, c.authToken)
}
