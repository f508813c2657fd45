package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
)

type QueryService interface {
	ListAvailableByProduct(ctx context.Context, productID int) ([]dto.ProductAvailability, error)
	ListBranchStock(ctx context.Context, locationID int) ([]dto.BranchStock, error)
}

type BranchDirectory interface {
	ListBranches(ctx context.Context) ([]domain.Location, error)
}

type InventoryController struct {
	query    QueryService
	branches BranchDirectory
	logger   *zap.Logger
}

func NewInventoryController(query QueryService, branches BranchDirectory, logger *zap.Logger) *InventoryController {
	return &InventoryController{
		query:    query,
		branches: branches,
		logger:   logger,
	}
}

func (c *InventoryController) ProductAvailability(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil || productID <= 0 {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "productID must be a positive integer")
		return
	}

	views, err := c.query.ListAvailableByProduct(r.Context(), productID)
	if err != nil {
		logger.Error("failed to list product availability", zap.Int("productId", productID), zap.Error(err))
		c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list product availability")
		return
	}

	c.writeJSON(w, http.StatusOK, views)
}

func (c *InventoryController) BranchStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	locationID, err := strconv.Atoi(chi.URLParam(r, "locationID"))
	if err != nil || locationID <= 0 {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "locationID must be a positive integer")
		return
	}

	views, err := c.query.ListBranchStock(r.Context(), locationID)
	if err != nil {
		logger.Error("failed to list branch stock", zap.Int("locationId", locationID), zap.Error(err))
		c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list branch stock")
		return
	}

	c.writeJSON(w, http.StatusOK, views)
}

// Branches lists the active destinations an allocation form can offer.
func (c *InventoryController) Branches(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	branches, err := c.branches.ListBranches(r.Context())
	if err != nil {
		logger.Error("failed to list branches", zap.Error(err))
		c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list branches")
		return
	}

	type branchDTO struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	views := make([]branchDTO, len(branches))
	for i, b := range branches {
		views[i] = branchDTO{ID: b.ID, Name: b.Name}
	}

	c.writeJSON(w, http.StatusOK, views)
}

func (c *InventoryController) writeError(w http.ResponseWriter, traceID string, status int, code, message string) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *InventoryController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
