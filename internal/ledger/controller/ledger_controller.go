package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
	apperrors "stockroom/internal/errors"
)

type LedgerService interface {
	AdjustQuantity(ctx context.Context, productID int, variantID *int, locationID, delta int) (*domain.StockRecord, error)
	GetQuantity(ctx context.Context, productID int, variantID *int, locationID int) (int, error)
}

type CacheInvalidator interface {
	InvalidateProduct(ctx context.Context, productID int) error
	InvalidateLocation(ctx context.Context, locationID int) error
}

// LedgerController exposes direct quantity adjustments: stock receipts into
// the warehouse and manual corrections. Allocations never come through here.
type LedgerController struct {
	ledger      LedgerService
	invalidator CacheInvalidator
	logger      *zap.Logger
}

func NewLedgerController(ledger LedgerService, invalidator CacheInvalidator, logger *zap.Logger) *LedgerController {
	return &LedgerController{
		ledger:      ledger,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (c *LedgerController) Adjust(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var body dto.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
		return
	}

	if details := validateAdjustRequest(body); len(details) > 0 {
		c.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			TraceID:   traceID,
			Status:    http.StatusBadRequest,
			Code:      "VALIDATION_ERROR",
			Message:   "invalid stock adjustment request",
			Details:   details,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	rec, err := c.ledger.AdjustQuantity(r.Context(), body.ProductID, body.VariantID, body.LocationID, body.Delta)
	if err != nil {
		if _, ok := apperrors.IsNegativeStockError(err); ok {
			logger.Warn("stock adjustment rejected", zap.String("reason", err.Error()))
			c.writeError(w, traceID, http.StatusConflict, "NEGATIVE_STOCK", err.Error())
			return
		}
		logger.Error("stock adjustment failed", zap.Error(err))
		c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "stock adjustment failed")
		return
	}

	if err := c.invalidator.InvalidateProduct(r.Context(), body.ProductID); err != nil {
		logger.Error("failed to invalidate product projection", zap.Error(err))
	}
	if err := c.invalidator.InvalidateLocation(r.Context(), body.LocationID); err != nil {
		logger.Error("failed to invalidate location projection", zap.Error(err))
	}

	c.writeJSON(w, http.StatusOK, dto.StockRecordDTO{
		TraceID:    traceID,
		ProductID:  rec.ProductID,
		VariantID:  rec.VariantID,
		LocationID: rec.LocationID,
		Quantity:   rec.Quantity,
	})
}

func validateAdjustRequest(body dto.AdjustStockRequest) []dto.ValidationDetailDTO {
	var details []dto.ValidationDetailDTO
	if body.ProductID <= 0 {
		details = append(details, dto.ValidationDetailDTO{
			Field: "productId", Message: "productId must be a positive integer",
		})
	}
	if body.LocationID <= 0 {
		details = append(details, dto.ValidationDetailDTO{
			Field: "locationId", Message: "locationId must be a positive integer",
		})
	}
	if body.Delta == 0 {
		details = append(details, dto.ValidationDetailDTO{
			Field: "delta", Message: "delta must be a non-zero integer",
		})
	}
	return details
}

func (c *LedgerController) writeError(w http.ResponseWriter, traceID string, status int, code, message string) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *LedgerController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
