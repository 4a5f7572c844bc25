package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"

	"github.com/nutriscope/backend/internal/domain"
)

// IDPrefix namespaces barcode-derived ids so they can never collide
// with the numeric ids of the other sources
const IDPrefix = "off:"

// barcodePattern accepts the standard EAN-8 through EAN-14 length range
var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// ValidBarcode reports whether code is a well-formed barcode
func ValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}

// Client talks to the Open Food Facts public API. No credential is
// needed, but the API requires an identifying User-Agent.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *retryablehttp.Client
}

// NewClient creates an OFF client rooted at baseURL
func NewClient(baseURL, userAgent string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = 12 * time.Second
	retryClient.Logger = nil

	if userAgent == "" {
		userAgent = "nutriscope/1.0"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: retryClient,
	}
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithField("provider", "off").Warnf("request failed: %v", err)
		return nil, 0, domain.ErrProviderFailure
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body", domain.ErrProviderFailure)
	}
	return body, resp.StatusCode, nil
}

// Search queries the OFF text-search endpoint and maps each hit to a
// canonical record with a synthesized "off:<code>" id. Products without
// a name are dropped from the page while TotalHits/TotalPages keep the
// remote count, so a page can hold fewer items than the totals suggest.
func (c *Client) Search(ctx context.Context, query string, pageSize, pageNumber int) (*domain.SearchPage, error) {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	reqURL := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d&page=%d",
		c.baseURL, url.QueryEscape(strings.TrimSpace(query)), pageSize, pageNumber)

	body, status, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		log.WithField("provider", "off").Warnf("search returned status %d", status)
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, status)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response", domain.ErrProviderFailure)
	}

	items := make([]domain.FoodRecord, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		items = append(items, mapRecord(p))
	}
	return &domain.SearchPage{
		Items:       items,
		TotalHits:   parsed.Count,
		CurrentPage: pageNumber,
		TotalPages:  domain.TotalPages(parsed.Count, pageSize),
	}, nil
}

// GetDetails accepts an "off:<code>" id (bare barcodes also work) and
// fetches the exact product.
func (c *Client) GetDetails(ctx context.Context, id string) (*domain.FoodDetails, error) {
	return c.FetchByBarcode(ctx, strings.TrimPrefix(id, IDPrefix))
}

// FetchByBarcode resolves one product by exact barcode. The code is
// validated before any I/O; a remote "no such product" maps to
// ErrFoodNotFound rather than a provider failure.
func (c *Client) FetchByBarcode(ctx context.Context, barcode string) (*domain.FoodDetails, error) {
	barcode = strings.TrimSpace(barcode)
	if !ValidBarcode(barcode) {
		return nil, fmt.Errorf("%w: %q must be 8-14 digits", domain.ErrInvalidBarcode, barcode)
	}

	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, barcode)
	body, status, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrFoodNotFound
	}
	if status != http.StatusOK {
		log.WithField("provider", "off").Warnf("product lookup returned status %d", status)
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, status)
	}

	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode product response", domain.ErrProviderFailure)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return nil, domain.ErrFoodNotFound
	}

	if parsed.Product.Code == "" {
		parsed.Product.Code = barcode
	}
	return mapProduct(parsed.Product), nil
}

// Raw OFF shapes. Nutriments is a free-form dictionary with
// provider-controlled keys; values may arrive as numbers or strings.
type productResponse struct {
	Status  int     `json:"status"`
	Product product `json:"product"`
}

type product struct {
	Code        string         `json:"code"`
	ProductName string         `json:"product_name"`
	Brands      string         `json:"brands"`
	Nutriments  map[string]any `json:"nutriments"`
}

type searchResponse struct {
	Count    int       `json:"count"`
	Products []product `json:"products"`
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
