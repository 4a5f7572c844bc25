package fdc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/nutriscope/backend/internal/domain"
)

const (
	// FDC caps search pages at 200 items
	minPageSize = 1
	maxPageSize = 200

	// MaxBatchIDs is the largest id list the batch endpoint accepts
	MaxBatchIDs = 20
)

// searchDataTypes narrows results to the datasets with usable nutrients
const searchDataTypes = "Survey (FNDDS),Foundation,Branded"

// Client talks to the USDA FoodData Central API with a server-held key.
// The key travels as a query parameter, so request URLs must never reach
// error text or the retry library's logger.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *retryablehttp.Client
	rateLimiter *rate.Limiter
}

// NewClient creates an FDC client. An empty apiKey produces an
// unconfigured client whose calls fail fast without any I/O.
func NewClient(apiKey, baseURL string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = 10 * time.Second
	retryClient.Logger = nil // request URLs carry the api key

	// FDC allows 1000 requests per hour per key
	limiter := rate.NewLimiter(rate.Limit(0.278), 10)

	return &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  retryClient,
		rateLimiter: limiter,
	}
}

// Configured reports whether the provider credential is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) do(ctx context.Context, method, reqURL string, body []byte) ([]byte, int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "nutriscope/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Never echo err verbatim upward: retryablehttp errors embed the URL
		log.WithField("provider", "fdc").Warnf("request failed: %v", err)
		return nil, 0, domain.ErrProviderFailure
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body", domain.ErrProviderFailure)
	}
	return payload, resp.StatusCode, nil
}

// Search queries the FDC text-search endpoint. pageSize is clamped to
// [1,200] before dispatch.
func (c *Client) Search(ctx context.Context, query string, pageSize, pageNumber int) (*domain.SearchPage, error) {
	if !c.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}
	if pageSize < minPageSize {
		pageSize = minPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", sanitizeQuery(query))
	params.Set("dataType", searchDataTypes)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("pageNumber", strconv.Itoa(pageNumber))
	reqURL := fmt.Sprintf("%s/v1/foods/search?%s", c.baseURL, params.Encode())

	body, status, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		log.WithField("provider", "fdc").Warnf("search returned status %d", status)
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, status)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response", domain.ErrProviderFailure)
	}

	items := make([]domain.FoodRecord, 0, len(parsed.Foods))
	for _, food := range parsed.Foods {
		items = append(items, mapSearchHit(food))
	}
	return &domain.SearchPage{
		Items:       items,
		TotalHits:   parsed.TotalHits,
		CurrentPage: parsed.CurrentPage,
		TotalPages:  parsed.TotalPages,
	}, nil
}

// GetDetails resolves a numeric FDC id to its nutrient list, per-100g basis
func (c *Client) GetDetails(ctx context.Context, id string) (*domain.FoodDetails, error) {
	return c.FetchFood(ctx, id, "", nil)
}

// FetchFood resolves one food with optional format ("abridged"/"full")
// and nutrient-number filtering passed through to the API.
func (c *Client) FetchFood(ctx context.Context, id, format string, nutrients []string) (*domain.FoodDetails, error) {
	if !c.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}
	fdcID, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%w: fdcId must be numeric", domain.ErrInvalidRequest)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if format != "" {
		params.Set("format", format)
	}
	if len(nutrients) > 0 {
		params.Set("nutrients", strings.Join(nutrients, ","))
	}
	reqURL := fmt.Sprintf("%s/v1/food/%d?%s", c.baseURL, fdcID, params.Encode())

	body, status, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrFoodNotFound
	}
	if status != http.StatusOK {
		log.WithField("provider", "fdc").Warnf("food lookup returned status %d", status)
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, status)
	}

	var parsed foodDetail
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode food response", domain.ErrProviderFailure)
	}
	return mapFood(parsed), nil
}

// FetchFoods resolves up to MaxBatchIDs foods in one call
func (c *Client) FetchFoods(ctx context.Context, ids []string) ([]domain.FoodDetails, error) {
	if !c.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no fdcIds given", domain.ErrInvalidRequest)
	}
	if len(ids) > MaxBatchIDs {
		return nil, fmt.Errorf("%w: at most %d fdcIds per call", domain.ErrInvalidRequest, MaxBatchIDs)
	}

	fdcIDs := make([]int, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("%w: fdcId %q must be numeric", domain.ErrInvalidRequest, id)
		}
		fdcIDs = append(fdcIDs, n)
	}

	payload, err := json.Marshal(map[string]any{"fdcIds": fdcIDs})
	if err != nil {
		return nil, fmt.Errorf("marshal batch payload: %w", err)
	}
	reqURL := fmt.Sprintf("%s/v1/foods?api_key=%s", c.baseURL, url.QueryEscape(c.apiKey))

	body, status, err := c.do(ctx, http.MethodPost, reqURL, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		log.WithField("provider", "fdc").Warnf("batch lookup returned status %d", status)
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, status)
	}

	var parsed []foodDetail
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode batch response", domain.ErrProviderFailure)
	}

	out := make([]domain.FoodDetails, 0, len(parsed))
	for _, food := range parsed {
		out = append(out, *mapFood(food))
	}
	return out, nil
}

// sanitizeQuery strips characters that the FDC gateway rejects outright
var querySanitizer = strings.NewReplacer("&", " and ", "#", " ", "%", " ", "\\", " ")

func sanitizeQuery(query string) string {
	return strings.Join(strings.Fields(querySanitizer.Replace(query)), " ")
}

// Raw FDC shapes. Search hits carry flattened nutrient fields; the
// detail endpoint nests them under "nutrient".
type searchResponse struct {
	Foods       []searchHit `json:"foods"`
	TotalHits   int         `json:"totalHits"`
	CurrentPage int         `json:"currentPage"`
	TotalPages  int         `json:"totalPages"`
}

type searchHit struct {
	FdcID       int64  `json:"fdcId"`
	Description string `json:"description"`
	BrandOwner  string `json:"brandOwner"`
	BrandName   string `json:"brandName"`
	GtinUpc     string `json:"gtinUpc"`
}

type foodDetail struct {
	FdcID         int64                  `json:"fdcId"`
	Description   string                 `json:"description"`
	BrandOwner    string                 `json:"brandOwner"`
	GtinUpc       string                 `json:"gtinUpc"`
	FoodNutrients []foodNutrient         `json:"foodNutrients"`
	Label         *domain.LabelNutrients `json:"labelNutrients"`
}

type foodNutrient struct {
	Nutrient nutrientDef `json:"nutrient"`
	Amount   float64     `json:"amount"`
}

type nutrientDef struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	UnitName string `json:"unitName"`
}
