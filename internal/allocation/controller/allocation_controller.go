package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
	apperrors "stockroom/internal/errors"
)

type AllocateUseCase interface {
	Allocate(ctx context.Context, req dto.AllocationRequest) (*dto.AllocationResult, error)
	AllocateBatch(ctx context.Context, req dto.BulkAllocationRequest) ([]dto.AllocationResult, error)
}

type HistoryLister interface {
	List(ctx context.Context, filter dto.HistoryFilter) ([]domain.AllocationEntry, error)
}

type AllocationController struct {
	useCase AllocateUseCase
	history HistoryLister
	logger  *zap.Logger
}

func NewAllocationController(useCase AllocateUseCase, history HistoryLister, logger *zap.Logger) *AllocationController {
	return &AllocationController{
		useCase: useCase,
		history: history,
		logger:  logger,
	}
}

func (c *AllocationController) Allocate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var body dto.AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field: "body", Message: "request body must be valid JSON",
		})
		return
	}

	if details := validateAllocateRequest(body); len(details) > 0 {
		c.writeValidationError(w, traceID, "invalid allocation request", details...)
		return
	}

	result, err := c.useCase.Allocate(r.Context(), dto.AllocationRequest{
		ProductID:             body.ProductID,
		VariantID:             body.VariantID,
		SourceLocationID:      body.SourceLocationID,
		DestinationLocationID: body.DestinationLocationID,
		Quantity:              body.Quantity,
		Notes:                 body.Notes,
	})
	if err != nil {
		c.writeDomainError(w, traceID, err, logger)
		return
	}

	c.writeResults(w, traceID, []dto.AllocationResult{*result})
}

func (c *AllocationController) AllocateBatch(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var body dto.AllocateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field: "body", Message: "request body must be valid JSON",
		})
		return
	}

	if details := validateBatchRequest(body); len(details) > 0 {
		c.writeValidationError(w, traceID, "invalid batch allocation request", details...)
		return
	}

	items := make([]dto.BulkAllocationItem, len(body.Items))
	for i, item := range body.Items {
		items[i] = dto.BulkAllocationItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
	}

	results, err := c.useCase.AllocateBatch(r.Context(), dto.BulkAllocationRequest{
		SourceLocationID:      body.SourceLocationID,
		DestinationLocationID: body.DestinationLocationID,
		Items:                 items,
		Notes:                 body.Notes,
	})
	if err != nil {
		c.writeDomainError(w, traceID, err, logger)
		return
	}

	c.writeResults(w, traceID, results)
}

func (c *AllocationController) History(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	filter := dto.HistoryFilter{}
	query := r.URL.Query()

	if raw := query.Get("productId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.writeValidationError(w, traceID, "invalid productId", apperrors.ValidationDetail{
				Field: "productId", Message: "productId must be an integer",
			})
			return
		}
		filter.ProductID = &id
	}
	if raw := query.Get("destinationId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.writeValidationError(w, traceID, "invalid destinationId", apperrors.ValidationDetail{
				Field: "destinationId", Message: "destinationId must be an integer",
			})
			return
		}
		filter.DestinationLocationID = &id
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.writeValidationError(w, traceID, "invalid limit", apperrors.ValidationDetail{
				Field: "limit", Message: "limit must be an integer",
			})
			return
		}
		filter.Limit = limit
	}

	entries, err := c.history.List(r.Context(), filter)
	if err != nil {
		logger.Error("failed to list allocation history", zap.Error(err))
		c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list allocation history")
		return
	}

	views := make([]dto.HistoryEntryDTO, len(entries))
	for i, e := range entries {
		views[i] = dto.HistoryEntryDTO{
			ID:                    e.ID,
			ProductID:             e.ProductID,
			VariantID:             e.VariantID,
			SourceLocationID:      e.SourceLocationID,
			DestinationLocationID: e.DestinationLocationID,
			Quantity:              e.Quantity,
			Notes:                 e.Notes,
			CreatedAt:             e.CreatedAt,
		}
	}

	c.writeJSON(w, http.StatusOK, views)
}

func validateAllocateRequest(body dto.AllocateRequest) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail
	if body.ProductID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "productId", Message: "productId must be a positive integer",
		})
	}
	if body.Quantity <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "quantity", Message: "quantity must be a positive integer",
		})
	}
	if body.SourceLocationID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "sourceLocationId", Message: "sourceLocationId must be a positive integer",
		})
	}
	if body.DestinationLocationID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "destinationLocationId", Message: "destinationLocationId must be a positive integer",
		})
	}
	return details
}

func validateBatchRequest(body dto.AllocateBatchRequest) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail
	if body.SourceLocationID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "sourceLocationId", Message: "sourceLocationId must be a positive integer",
		})
	}
	if body.DestinationLocationID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "destinationLocationId", Message: "destinationLocationId must be a positive integer",
		})
	}
	if len(body.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "items", Message: "items must contain at least one entry",
		})
	}
	for i, item := range body.Items {
		if item.ProductID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field: "items[" + strconv.Itoa(i) + "].productId", Message: "productId must be a positive integer",
			})
		}
		if item.Quantity <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field: "items[" + strconv.Itoa(i) + "].quantity", Message: "quantity must be a positive integer",
			})
		}
	}
	return details
}

func (c *AllocationController) writeResults(w http.ResponseWriter, traceID string, results []dto.AllocationResult) {
	response := dto.AllocateResponse{
		TraceID:   traceID,
		Success:   true,
		Results:   make([]dto.AllocationItemDTO, len(results)),
		Timestamp: time.Now().UTC(),
	}

	status := http.StatusOK
	for i, res := range results {
		item := dto.AllocationItemDTO{
			ItemIndex: res.ItemIndex,
			ProductID: res.ProductID,
			VariantID: res.VariantID,
			Quantity:  res.Quantity,
			Success:   res.Success,
		}
		if res.Success {
			if res.Source != nil {
				q := res.Source.Quantity
				item.SourceQuantity = &q
			}
			if res.Destination != nil {
				q := res.Destination.Quantity
				item.DestinationQuantity = &q
			}
			if res.Entry != nil {
				item.AllocationID = res.Entry.ID
			}
		} else {
			response.Success = false
			if res.Error != nil {
				item.Error = toAllocationError(res.Error)
				status = statusForError(res.Error)
			}
		}
		response.Results[i] = item
	}

	c.writeJSON(w, status, response)
}

func toAllocationError(err error) *dto.AllocationError {
	out := &dto.AllocationError{
		Code:    codeForError(err),
		Message: err.Error(),
	}
	if ise, ok := apperrors.IsInsufficientStockError(err); ok {
		available := ise.Available
		out.Available = &available
	}
	return out
}

func codeForError(err error) string {
	switch {
	case isInvalidQuantity(err):
		return "INVALID_QUANTITY"
	case isInvalidLocation(err):
		return "INVALID_LOCATION"
	case isVariantMismatch(err):
		return "VARIANT_MISMATCH"
	case isInsufficientStock(err):
		return "INSUFFICIENT_STOCK"
	case isNegativeStock(err):
		return "NEGATIVE_STOCK"
	case isConcurrentModification(err):
		return "CONCURRENT_MODIFICATION"
	case isNotFound(err):
		return "NOT_FOUND"
	case isValidation(err):
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

func statusForError(err error) int {
	switch {
	case isInvalidQuantity(err), isInvalidLocation(err), isVariantMismatch(err), isValidation(err):
		return http.StatusBadRequest
	case isNotFound(err):
		return http.StatusNotFound
	case isInsufficientStock(err), isConcurrentModification(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func isInvalidQuantity(err error) bool {
	_, ok := apperrors.IsInvalidQuantityError(err)
	return ok
}

func isInvalidLocation(err error) bool {
	_, ok := apperrors.IsInvalidLocationError(err)
	return ok
}

func isVariantMismatch(err error) bool {
	_, ok := apperrors.IsVariantMismatchError(err)
	return ok
}

func isInsufficientStock(err error) bool {
	_, ok := apperrors.IsInsufficientStockError(err)
	return ok
}

func isNegativeStock(err error) bool {
	_, ok := apperrors.IsNegativeStockError(err)
	return ok
}

func isConcurrentModification(err error) bool {
	_, ok := apperrors.IsConcurrentModificationError(err)
	return ok
}

func isNotFound(err error) bool {
	_, ok := apperrors.IsNotFoundError(err)
	return ok
}

func isValidation(err error) bool {
	_, ok := apperrors.IsValidationError(err)
	return ok
}

func (c *AllocationController) writeDomainError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("allocation failed", zap.Error(err))
		c.writeError(w, traceID, status, "INTERNAL_ERROR", "allocation failed")
		return
	}

	logger.Warn("allocation rejected", zap.String("reason", err.Error()))

	response := dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      codeForError(err),
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
	if ve, ok := apperrors.IsValidationError(err); ok {
		for _, d := range ve.Details {
			response.Details = append(response.Details, dto.ValidationDetailDTO{
				Field: d.Field, Message: d.Message,
			})
		}
	}
	c.writeJSON(w, status, response)
}

func (c *AllocationController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	response := dto.ErrorResponse{
		TraceID:   traceID,
		Status:    http.StatusBadRequest,
		Code:      "VALIDATION_ERROR",
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	for _, d := range details {
		response.Details = append(response.Details, dto.ValidationDetailDTO{
			Field: d.Field, Message: d.Message,
		})
	}
	c.writeJSON(w, http.StatusBadRequest, response)
}

func (c *AllocationController) writeError(w http.ResponseWriter, traceID string, status int, code, message string) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *AllocationController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
