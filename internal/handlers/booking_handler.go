package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gleamhq/estimator/internal/addons"
	apierrors "github.com/gleamhq/estimator/internal/errors"
	"github.com/gleamhq/estimator/internal/middleware"
	"github.com/gleamhq/estimator/internal/models"
	"github.com/gleamhq/estimator/internal/services"
)

// BookingHandler handles add-on resolution, quoting, availability, and final
// booking submission.
type BookingHandler struct {
	service services.BookingService
}

// NewBookingHandler creates a new BookingHandler instance.
func NewBookingHandler(service services.BookingService) *BookingHandler {
	return &BookingHandler{
		service: service,
	}
}

// AddonsResponse lists the catalog entries resolved for a session.
type AddonsResponse struct {
	Addons []addons.Definition `json:"addons"`
	Count  int                 `json:"count"`
}

// Addons handles GET /api/v1/addons?session=.
func (h *BookingHandler) Addons(c *gin.Context) {
	sessionID := c.Query("session")
	if sessionID == "" {
		apierrors.BadRequest(c, "Missing required query parameter: session", nil)
		return
	}

	resolved, err := h.service.ResolveAddons(c.Request.Context(), sessionID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to resolve add-ons")
		return
	}

	c.JSON(http.StatusOK, AddonsResponse{
		Addons: resolved,
		Count:  len(resolved),
	})
}

// QuoteRequest carries the client-held add-on selection for re-quoting.
type QuoteRequest struct {
	SessionID string                      `json:"sessionId" binding:"required"`
	Selection map[string]addons.Selection `json:"selection"`
}

// Quote handles POST /api/v1/bookings/quote.
func (h *BookingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if !h.bind(c, &req) {
		return
	}

	quote, err := h.service.Quote(c.Request.Context(), req.SessionID, req.Selection)
	if err != nil {
		h.respondServiceError(c, err, "Failed to compute quote")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// AvailabilityRequest asks for arrival windows for a session.
type AvailabilityRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// AvailabilityResponse lists the open arrival windows.
type AvailabilityResponse struct {
	Slots []models.Slot `json:"slots"`
	Count int           `json:"count"`
}

// Availability handles POST /api/v1/bookings/availability.
func (h *BookingHandler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if !h.bind(c, &req) {
		return
	}

	slots, err := h.service.Availability(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			apierrors.SessionExpired(c, "Estimation session not found or expired")
			return
		}
		apierrors.UpstreamRejected(c, "Availability service is unreachable", err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		Slots: slots,
		Count: len(slots),
	})
}

// BookRequest is the final booking confirmation body.
type BookRequest struct {
	SessionID string                      `json:"sessionId" binding:"required"`
	Selection map[string]addons.Selection `json:"selection"`
	Address   string                      `json:"address"`

	Contact struct {
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Phone     string `json:"phone" binding:"required"`
	} `json:"contact" binding:"required"`

	Slot struct {
		ID     string `json:"id"`
		Day    string `json:"day" binding:"required"`
		Window string `json:"window" binding:"required"`
		Tag    string `json:"tag"`
	} `json:"slot" binding:"required"`

	Attribution models.MarketingAttribution `json:"attribution"`
}

// BookResponse acknowledges a submitted booking.
type BookResponse struct {
	Confirmation string `json:"confirmation"`
	PaymentLink  string `json:"paymentLink,omitempty"`
}

// Book handles POST /api/v1/bookings.
// Submission is attempted exactly once; failure surfaces to the caller for a
// user-visible retry rather than being retried silently.
func (h *BookingHandler) Book(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req BookRequest
	if !h.bind(c, &req) {
		return
	}

	if log != nil {
		log.Info("Processing booking request", map[string]interface{}{
			"session_id": req.SessionID,
			"slot_day":   req.Slot.Day,
		})
	}

	result, err := h.service.Book(c.Request.Context(), services.BookRequest{
		SessionID: req.SessionID,
		Selection: req.Selection,
		Address:   req.Address,
		Contact: models.Contact{
			FirstName: req.Contact.FirstName,
			LastName:  req.Contact.LastName,
			Email:     req.Contact.Email,
			Phone:     req.Contact.Phone,
		},
		Attribution: req.Attribution,
		Slot: models.Slot{
			ID:     req.Slot.ID,
			Day:    req.Slot.Day,
			Window: req.Slot.Window,
			Tag:    req.Slot.Tag,
		},
	})
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			apierrors.SessionExpired(c, "Estimation session not found or expired")
			return
		}
		apierrors.UpstreamRejected(c, "Booking service rejected the submission", err)
		return
	}

	c.JSON(http.StatusCreated, BookResponse{
		Confirmation: result.Confirmation,
		PaymentLink:  result.PaymentLink,
	})
}

// bind decodes and validates a JSON request body, writing the error response
// itself. Returns false when the request was rejected.
func (h *BookingHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return false
	}
	return true
}

func (h *BookingHandler) respondServiceError(c *gin.Context, err error, message string) {
	if errors.Is(err, services.ErrSessionNotFound) {
		apierrors.SessionExpired(c, "Estimation session not found or expired")
		return
	}
	apierrors.InternalServerError(c, message, err)
}
