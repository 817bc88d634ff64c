package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/gleamhq/estimator/internal/errors"
	"github.com/gleamhq/estimator/internal/middleware"
	"github.com/gleamhq/estimator/internal/models"
	"github.com/gleamhq/estimator/internal/services"
)

// EstimateHandler handles estimation and hand-off HTTP requests.
type EstimateHandler struct {
	service services.EstimateService
}

// NewEstimateHandler creates a new EstimateHandler instance.
func NewEstimateHandler(service services.EstimateService) *EstimateHandler {
	return &EstimateHandler{
		service: service,
	}
}

// EstimateRequest is the request body for the estimate endpoint. Out-of-range
// values are rejected, never clamped.
type EstimateRequest struct {
	Address        string `json:"address"`
	AboveGradeSqft int    `json:"aboveGradeSqft" binding:"required,min=500,max=10000"`
	BelowGradeSqft int    `json:"belowGradeSqft" binding:"omitempty,min=0"`
	TotalBeds      int    `json:"totalBeds" binding:"omitempty,min=0,max=20"`
	BasementBeds   int    `json:"basementBeds" binding:"omitempty,min=0,max=20"`
	YearBuilt      int    `json:"yearBuilt" binding:"omitempty,min=1800,max=2100"`
	Stories        int    `json:"stories" binding:"required,min=1,max=3"`
	ZipCode        string `json:"zipCode" binding:"omitempty,len=5"`
	Soiling        string `json:"soilingTier" binding:"omitempty,oneof=low mid high"`
	HasBasement    bool   `json:"hasBasement"`
	SkylightCount  int    `json:"skylightCount" binding:"omitempty,min=0,max=20"`
	FrenchPanes    bool   `json:"frenchPanes"`

	Services  models.ServiceSelection `json:"services"`
	Reconcile bool                    `json:"reconcile"`
}

// Estimate handles POST /api/v1/estimates.
// It runs the full estimation pipeline and returns the priced result with its
// hand-off session id.
func (h *EstimateHandler) Estimate(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	soiling := models.SoilingTier(req.Soiling)
	if req.Soiling == "" {
		soiling = models.SoilingMid
	}

	if log != nil {
		log.Info("Processing estimate request", map[string]interface{}{
			"sqft":      req.AboveGradeSqft,
			"stories":   req.Stories,
			"zip":       req.ZipCode,
			"reconcile": req.Reconcile,
		})
	}

	outcome, err := h.service.Estimate(c.Request.Context(), services.EstimateRequest{
		Profile: models.PropertyProfile{
			Address:        req.Address,
			AboveGradeSqft: req.AboveGradeSqft,
			BelowGradeSqft: req.BelowGradeSqft,
			TotalBeds:      req.TotalBeds,
			BasementBeds:   req.BasementBeds,
			YearBuilt:      req.YearBuilt,
			Stories:        req.Stories,
			ZipCode:        req.ZipCode,
			Soiling:        soiling,
			HasBasement:    req.HasBasement,
			SkylightCount:  req.SkylightCount,
			FrenchPanes:    req.FrenchPanes,
		},
		Services:  req.Services,
		Reconcile: req.Reconcile,
	})
	if err != nil {
		if errors.Is(err, services.ErrSqftOutOfRange) ||
			errors.Is(err, services.ErrInvalidStories) ||
			errors.Is(err, services.ErrInvalidSoiling) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to compute estimate", err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// HandoffResponse wraps the hand-off record for the booking hub.
type HandoffResponse struct {
	Handoff  *models.HandoffRecord `json:"handoff"`
	Degraded bool                  `json:"degraded"`
}

// Handoff handles GET /api/v1/handoff/:id.
// When the structured record is gone (expired session, store outage) it falls
// back to reconstructing a degraded record from flat query keys, so the
// booking hub can still render a summary from values the estimator embedded
// in the link.
func (h *EstimateHandler) Handoff(c *gin.Context) {
	sessionID := c.Param("id")

	record, err := h.service.Handoff(c.Request.Context(), sessionID)
	if err == nil {
		c.JSON(http.StatusOK, HandoffResponse{Handoff: record})
		return
	}

	if !errors.Is(err, services.ErrSessionNotFound) {
		apierrors.InternalServerError(c, "Failed to load hand-off record", err)
		return
	}

	if fallback, ok := handoffFromQuery(c, sessionID); ok {
		if log := middleware.GetLogger(c); log != nil {
			log.Warn("Serving degraded hand-off from query keys", map[string]interface{}{
				"session_id": sessionID,
			})
		}
		c.JSON(http.StatusOK, HandoffResponse{Handoff: fallback, Degraded: true})
		return
	}

	apierrors.SessionExpired(c, "Estimation session not found or expired")
}

// handoffFromQuery rebuilds a minimal hand-off record from flat query keys.
// The pane count and base price are the load-bearing fields; everything else
// is best-effort.
func handoffFromQuery(c *gin.Context, sessionID string) (*models.HandoffRecord, bool) {
	panes, err := strconv.Atoi(c.Query("panes"))
	if err != nil || panes <= 0 {
		return nil, false
	}
	base, err := strconv.ParseFloat(c.Query("base"), 64)
	if err != nil || base <= 0 {
		return nil, false
	}

	savings, _ := strconv.ParseFloat(c.Query("savings"), 64)
	onsite, _ := strconv.ParseFloat(c.Query("onsite"), 64)
	sqft, _ := strconv.Atoi(c.Query("sqft"))

	record := &models.HandoffRecord{
		SessionID:     sessionID,
		Panes:         panes,
		ScreenCount:   panes,
		RawTotal:      models.CentsFromDollars(base),
		PriceMid:      models.CentsFromDollars(base - savings),
		Savings:       models.CentsFromDollars(savings),
		OnsiteMinutes: onsite,
		Sqft:          sqft,
		Address:       c.Query("address"),
	}

	if breakdown := c.Query("breakdown"); breakdown != "" {
		var items []models.LineItem
		if err := json.Unmarshal([]byte(breakdown), &items); err == nil {
			record.LineItems = items
		}
	}

	return record, true
}
