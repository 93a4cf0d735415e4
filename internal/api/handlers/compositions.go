package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Conceptual-Machines/moodsic-api/internal/api/middleware"
	"github.com/Conceptual-Machines/moodsic-api/internal/composer"
	"github.com/Conceptual-Machines/moodsic-api/internal/logger"
	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/Conceptual-Machines/moodsic-api/internal/predictor"
	"github.com/Conceptual-Machines/moodsic-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CompositionService is the part of services.CompositionService the handlers use
type CompositionService interface {
	Create(ctx context.Context, userID string, req models.CompositionRequest) (*models.Composition, error)
	Get(ctx context.Context, id string) (*models.Composition, error)
	List(ctx context.Context, userID string, limit, offset int) ([]models.Composition, int64, error)
	MIDI(ctx context.Context, id string) ([]byte, error)
}

type CompositionHandler struct {
	service CompositionService
}

func NewCompositionHandler(service CompositionService) *CompositionHandler {
	return &CompositionHandler{service: service}
}

// Create runs the full prompt to music pipeline
func (h *CompositionHandler) Create(c *gin.Context) {
	var req models.CompositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	composition, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		status, message := compositionErrorStatus(err)
		fields := logger.WithContext(c)
		fields["status_code"] = status
		if status >= http.StatusInternalServerError {
			logger.Error("Composition request failed", err, fields)
		} else {
			logger.Warn("Composition request rejected", fields)
		}
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, composition)
}

// List returns the caller's compositions, newest first
func (h *CompositionHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := max(queryInt(c, "offset", 0), 0)

	items, total, err := h.service.List(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		logger.Error("Failed to list compositions", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list compositions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"compositions": items,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

// Get returns one composition
func (h *CompositionHandler) Get(c *gin.Context) {
	composition, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Composition not found"})
		return
	}
	if err != nil {
		logger.Error("Failed to load composition", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load composition"})
		return
	}
	c.JSON(http.StatusOK, composition)
}

// MIDI downloads the Standard MIDI File of a composition
func (h *CompositionHandler) MIDI(c *gin.Context) {
	id := c.Param("id")
	data, err := h.service.MIDI(c.Request.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "MIDI not found"})
		return
	}
	if err != nil {
		logger.Error("Failed to load MIDI", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load MIDI"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+id+`.mid"`)
	c.Data(http.StatusOK, contentTypeMIDI, data)
}

// compositionErrorStatus maps pipeline errors onto HTTP status codes
func compositionErrorStatus(err error) (int, string) {
	var (
		infeasible *composer.InfeasibleSongLengthError
		timeout    *predictor.PredictionTimeoutError
	)
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request"
	case errors.As(err, &infeasible):
		return http.StatusUnprocessableEntity, "Song length too short for the chosen melody plan"
	case errors.As(err, &timeout):
		return http.StatusBadGateway, "Model server did not respond"
	default:
		return http.StatusInternalServerError, "Composition failed"
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
