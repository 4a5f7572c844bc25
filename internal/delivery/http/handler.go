package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nutriscope/backend/internal/domain"
	"github.com/nutriscope/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutriscope/backend/internal/usecase"
)

// FDCBatchClient is the slice of the FDC client the batch endpoint needs
type FDCBatchClient interface {
	FetchFood(ctx context.Context, id, format string, nutrients []string) (*domain.FoodDetails, error)
	FetchFoods(ctx context.Context, ids []string) ([]domain.FoodDetails, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	combined *usecase.CombinedSearchService
	details  *usecase.DetailsService

	fdc      domain.FoodProvider
	fdcBatch FDCBatchClient
	cnf      domain.FoodProvider
	off      domain.FoodProvider
	barcodes domain.BarcodeLookup
}

// NewHandler creates a new HTTP handler
func NewHandler(
	combined *usecase.CombinedSearchService,
	details *usecase.DetailsService,
	fdc domain.FoodProvider,
	fdcBatch FDCBatchClient,
	cnf domain.FoodProvider,
	off domain.FoodProvider,
	barcodes domain.BarcodeLookup,
) *Handler {
	return &Handler{
		combined: combined,
		details:  details,
		fdc:      fdc,
		fdcBatch: fdcBatch,
		cnf:      cnf,
		off:      off,
		barcodes: barcodes,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutriscope-backend",
		"version": "1.0.0",
	})
}

// CombinedSearch fans the query out to every source and returns the
// merged ranked list. Always 200 once the query validates, no matter
// which sources failed.
func (h *Handler) CombinedSearch(c *gin.Context) {
	query := c.Query("query")
	pageSize := intQuery(c, "pageSize", 20)
	pageNumber := intQuery(c, "pageNumber", 1)

	result, err := h.combined.Search(c.Request.Context(), query, pageSize, pageNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// FDCSearch passes through to the FoodData Central adapter
func (h *Handler) FDCSearch(c *gin.Context) {
	h.providerSearch(c, h.fdc, c.Query("query"))
}

// FDCFood resolves one food by fdcId with optional format/nutrients
// passthrough, served via the detail cache
func (h *Handler) FDCFood(c *gin.Context) {
	id := c.Query("fdcId")
	if _, err := strconv.Atoi(strings.TrimSpace(id)); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	format := c.Query("format")
	nutrients := splitParam(c.Query("nutrients"))
	if format == "" && nutrients == nil {
		details, err := h.details.Lookup(c.Request.Context(), domain.SourceFDC, h.fdc, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, details)
		return
	}

	// Filtered views bypass the cache so a narrowed response is never
	// served to an unfiltered caller
	details, err := h.fdcBatch.FetchFood(c.Request.Context(), id, format, nutrients)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

type batchRequest struct {
	FdcIDs []string `json:"fdcIds"`
}

// FDCFoodsBatch resolves up to 20 foods in one call
func (h *Handler) FDCFoodsBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	foods, err := h.fdcBatch.FetchFoods(c.Request.Context(), req.FdcIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

// CNFSearch passes through to the flat-file adapter
func (h *Handler) CNFSearch(c *gin.Context) {
	h.providerSearch(c, h.cnf, c.Query("query"))
}

// CNFFood resolves one flat-file food by numeric id
func (h *Handler) CNFFood(c *gin.Context) {
	details, err := h.cnf.GetDetails(c.Request.Context(), c.Query("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// OFFSearch passes through to the barcode-product adapter
func (h *Handler) OFFSearch(c *gin.Context) {
	h.providerSearch(c, h.off, c.Query("q"))
}

// OFFProduct resolves one product by exact barcode
func (h *Handler) OFFProduct(c *gin.Context) {
	barcode := strings.TrimSpace(c.Query("barcode"))
	if !openfoodfacts.ValidBarcode(barcode) {
		respondError(c, domain.ErrInvalidBarcode)
		return
	}

	details, err := h.details.Lookup(c.Request.Context(), domain.SourceOFF, h.off, openfoodfacts.IDPrefix+barcode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// ScaleNutrition resolves a food and scales its headline nutrients to
// the requested serving size. The {calories, carbs, protein, fat}
// response shape is fixed for the UI.
func (h *Handler) ScaleNutrition(c *gin.Context) {
	source := domain.Source(c.Query("source"))
	id := c.Query("id")
	grams, err := strconv.ParseFloat(c.DefaultQuery("grams", "100"), 64)
	if err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	var provider domain.FoodProvider
	switch source {
	case domain.SourceFDC:
		provider = h.fdc
	case domain.SourceCNF:
		provider = h.cnf
	case domain.SourceOFF:
		provider = h.off
	default:
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	var details *domain.FoodDetails
	if source == domain.SourceCNF {
		details, err = provider.GetDetails(c.Request.Context(), id)
	} else {
		details, err = h.details.Lookup(c.Request.Context(), source, provider, id)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, usecase.ScaleMacros(details, grams))
}

func (h *Handler) providerSearch(c *gin.Context, provider domain.FoodProvider, query string) {
	if strings.TrimSpace(query) == "" {
		respondError(c, domain.ErrInvalidRequest)
		return
	}
	pageSize := intQuery(c, "pageSize", 25)
	pageNumber := intQuery(c, "pageNumber", 1)

	page, err := provider.Search(c.Request.Context(), query, pageSize, pageNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// respondError maps the domain error taxonomy to HTTP statuses. No
// internal detail beyond the sentinel text ever reaches the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidBarcode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFoodNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrFoodNotFound.Error()})
	case errors.Is(err, domain.ErrProviderNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrProviderNotConfigured.Error()})
	case errors.Is(err, domain.ErrProviderFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrProviderFailure.Error()})
	case errors.Is(err, domain.ErrStoreLoad):
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrStoreLoad.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func splitParam(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
