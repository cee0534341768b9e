package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// OFFProduct is the subset of an Open Food Facts product record we consume.
// Nutriment values are kept as a loose map since the API mixes numbers and
// numeric strings.
type OFFProduct struct {
	ProductName   string         `json:"product_name"`
	Brands        string         `json:"brands"`
	ServingSize   string         `json:"serving_size"`
	Quantity      string         `json:"quantity"`
	ImageURL      string         `json:"image_url"`
	ImageFrontURL string         `json:"image_front_url"`
	ImageSmallURL string         `json:"image_small_url"`
	Nutriments    map[string]any `json:"nutriments"`
}

type offSearchResponse struct {
	Products []OFFProduct `json:"products"`
}

type offProductResponse struct {
	Status  int         `json:"status"`
	Product *OFFProduct `json:"product"`
}

// BarcodeStatus tags the outcome of a barcode lookup so callers that want
// to can distinguish a missing product from a failed request. The default
// HTTP surface collapses both to "not found".
type BarcodeStatus int

const (
	BarcodeFound BarcodeStatus = iota
	BarcodeNotFound
	BarcodeTransportError
)

// BarcodeResult is the tagged outcome of LookupBarcode.
type BarcodeResult struct {
	Status  BarcodeStatus
	Product *NutritionInfo
	Err     error
}

// OpenFoodFactsClient is a thin client over the Open Food Facts search and
// barcode APIs. No API key is required.
type OpenFoodFactsClient struct {
	baseURL string
	client  *http.Client
}

// NewOpenFoodFactsClient creates an Open Food Facts client. A nil httpClient
// falls back to a default client with a 10 second timeout.
func NewOpenFoodFactsClient(baseURL string, httpClient *http.Client) *OpenFoodFactsClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenFoodFactsClient{
		baseURL: baseURL,
		client:  httpClient,
	}
}

// Search queries the legacy search.pl endpoint. Products that carry neither
// a name nor a nutriment block are dropped before parsing.
func (c *OpenFoodFactsClient) Search(ctx context.Context, query string) ([]NutritionInfo, error) {
	u := fmt.Sprintf(
		"%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=5",
		c.baseURL, url.QueryEscape(query),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create OFF search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call OFF search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFF search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OFF search API error %d: %s", resp.StatusCode, string(body))
	}

	var sr offSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse OFF search JSON: %w", err)
	}

	results := make([]NutritionInfo, 0, len(sr.Products))
	for _, p := range sr.Products {
		if p.ProductName == "" && len(p.Nutriments) == 0 {
			continue
		}
		results = append(results, ParseOpenFoodFactsProduct(p))
	}
	return results, nil
}

// LookupBarcode fetches a product by barcode. A status of 0 or a missing
// product block is a not-found result, not an error.
func (c *OpenFoodFactsClient) LookupBarcode(ctx context.Context, barcode string) BarcodeResult {
	u := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return BarcodeResult{Status: BarcodeTransportError, Err: fmt.Errorf("failed to create OFF product request: %w", err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return BarcodeResult{Status: BarcodeTransportError, Err: fmt.Errorf("failed to call OFF product endpoint: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return BarcodeResult{Status: BarcodeTransportError, Err: fmt.Errorf("failed to read OFF product response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return BarcodeResult{Status: BarcodeTransportError, Err: fmt.Errorf("OFF product API error %d: %s", resp.StatusCode, string(body))}
	}

	var pr offProductResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return BarcodeResult{Status: BarcodeTransportError, Err: fmt.Errorf("failed to parse OFF product JSON: %w", err)}
	}

	if pr.Status == 0 || pr.Product == nil {
		return BarcodeResult{Status: BarcodeNotFound}
	}

	info := ParseOpenFoodFactsProduct(*pr.Product)
	return BarcodeResult{Status: BarcodeFound, Product: &info}
}

// ParseOpenFoodFactsProduct maps an Open Food Facts product to the unified
// NutritionInfo shape. It never fails on partial records: the description
// falls back to "Unknown Product" and every missing nutrient stays nil
// except calories, which default to 0.
func ParseOpenFoodFactsProduct(p OFFProduct) NutritionInfo {
	info := NutritionInfo{
		Source: SourceOpenFoodFacts,
	}

	if v := offNutriment(p.Nutriments, "energy-kcal_100g"); v != nil {
		info.Calories = *v
	} else if v := offNutriment(p.Nutriments, "energy-kcal"); v != nil {
		info.Calories = *v
	}
	info.Protein = offNutriment(p.Nutriments, "proteins_100g")
	info.Carbs = offNutriment(p.Nutriments, "carbohydrates_100g")
	info.Fat = offNutriment(p.Nutriments, "fat_100g")
	info.Fiber = offNutriment(p.Nutriments, "fiber_100g")
	info.Sugar = offNutriment(p.Nutriments, "sugars_100g")
	// Left in the source unit, unlike the USDA parser. See ParseUSDAFood.
	info.Sodium = offNutriment(p.Nutriments, "sodium_100g")

	name := p.ProductName
	if name == "" {
		name = "Unknown Product"
	}
	if brand := firstBrand(p.Brands); brand != "" {
		info.Brand = brand
		info.Description = fmt.Sprintf("%s (%s)", name, brand)
	} else {
		info.Description = name
	}

	switch {
	case p.ServingSize != "":
		info.ServingSize = p.ServingSize
	case p.Quantity != "":
		info.ServingSize = p.Quantity
	default:
		info.ServingSize = "100g"
	}

	switch {
	case p.ImageURL != "":
		info.ImageURL = p.ImageURL
	case p.ImageFrontURL != "":
		info.ImageURL = p.ImageFrontURL
	case p.ImageSmallURL != "":
		info.ImageURL = p.ImageSmallURL
	}

	return info
}

// offNutriment coerces a nutriments map value to a float, tolerating the
// numeric strings the API sometimes returns.
func offNutriment(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case float64:
		return &x
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return &f
		}
	}
	return nil
}

// firstBrand picks the first entry of the comma-separated brands field.
func firstBrand(brands string) string {
	if brands == "" {
		return ""
	}
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}
