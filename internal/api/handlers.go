package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/maltedev/amazon-catalog-scraper/internal/catalog"
	"github.com/maltedev/amazon-catalog-scraper/internal/database"
	"github.com/maltedev/amazon-catalog-scraper/internal/events"
	"github.com/maltedev/amazon-catalog-scraper/internal/models"
)

type Handlers struct {
	extractor *catalog.Extractor
	db        *database.DB
	publisher *events.Publisher
	logger    *slog.Logger
}

func NewHandlers(extractor *catalog.Extractor, db *database.DB, publisher *events.Publisher, logger *slog.Logger) *Handlers {
	return &Handlers{
		extractor: extractor,
		db:        db,
		publisher: publisher,
		logger:    logger,
	}
}

// SearchRequest represents a catalog search request
type SearchRequest struct {
	Query    string `json:"query"`
	MaxPages int    `json:"max_pages"`
}

// Search handles catalog search extraction requests
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	result := h.extractor.SearchProducts(r.Context(), req.Query, req.MaxPages)

	if result.Success && result.Data != nil {
		h.persistProducts(r, result.Data.Products, req.Query)
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GetProductDetails handles single product extraction requests
func (h *Handlers) GetProductDetails(w http.ResponseWriter, r *http.Request) {
	asin := chi.URLParam(r, "asin")
	if asin == "" {
		h.respondError(w, http.StatusBadRequest, "asin is required")
		return
	}

	result := h.extractor.GetProductDetails(r.Context(), asin)

	if result.Success && result.Product != nil {
		h.persistProducts(r, []*models.Product{result.Product}, "")
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GetStoredProduct returns a previously extracted product from the store
func (h *Handlers) GetStoredProduct(w http.ResponseWriter, r *http.Request) {
	asin := chi.URLParam(r, "asin")
	if asin == "" {
		h.respondError(w, http.StatusBadRequest, "asin is required")
		return
	}

	product, err := h.db.GetProduct(r.Context(), asin)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("failed to get product", "error", err, "asin", asin)
		h.respondError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// ListStoredProducts returns recently extracted products
func (h *Handlers) ListStoredProducts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	products, err := h.db.ListProducts(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	h.respondJSON(w, http.StatusOK, products)
}

// persistProducts stores extracted records and queues their events.
// Persistence failures are logged, never surfaced: the extraction
// result already in hand is the response either way.
func (h *Handlers) persistProducts(r *http.Request, products []*models.Product, query string) {
	if h.publisher == nil {
		return
	}
	for _, p := range products {
		if err := h.publisher.PublishProductExtracted(r.Context(), p, query); err != nil {
			h.logger.Error("failed to persist product", "error", err, "asin", p.ASIN)
		}
	}
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
