package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	alloccontroller "stockroom/internal/allocation/controller"
	invcontroller "stockroom/internal/inventory/controller"
	ledgercontroller "stockroom/internal/ledger/controller"
)

func NewRouter(
	allocCtrl *alloccontroller.AllocationController,
	invCtrl *invcontroller.InventoryController,
	ledgerCtrl *ledgercontroller.LedgerController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/allocations", allocCtrl.Allocate)
		r.Post("/allocations/batch", allocCtrl.AllocateBatch)
		r.Get("/allocations", allocCtrl.History)
		r.Post("/stock/adjustments", ledgerCtrl.Adjust)
		r.Get("/products/{productID}/availability", invCtrl.ProductAvailability)
		r.Get("/locations/{locationID}/stock", invCtrl.BranchStock)
		r.Get("/locations/branches", invCtrl.Branches)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
