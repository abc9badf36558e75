package handler

import (
	"net/http"

	"tillpoint/internal/idempotency"
	"tillpoint/internal/model"
	"tillpoint/internal/service"

	"github.com/rs/zerolog"
)

// SaleHandler handles sale-related HTTP requests.
type SaleHandler struct {
	service service.SaleService
	logger  zerolog.Logger
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(service service.SaleService, logger zerolog.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  logger.With().Str("handler", "sale").Logger(),
	}
}

// Create handles POST /api/sales. A request replayed through the
// Idempotency-Key header answers 200 with the original sale.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}
	req.IdempotencyKey = r.Header.Get(idempotency.HeaderKey)

	sale, replayed, err := h.service.CreateSaleIdempotent(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if replayed {
		writeSuccess(w, http.StatusOK, sale)
		return
	}
	writeSuccess(w, http.StatusCreated, sale)
}

// List handles GET /api/sales.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	sales, err := h.service.ListSales(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, sales)
}

// GetByID handles GET /api/sales/{id}.
func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sale")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, sale)
}
