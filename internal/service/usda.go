package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// FoodData Central nutrient numbers. Lookups are by numeric identifier,
// not by nutrient name.
const (
	usdaNutrientEnergy  = 1008
	usdaNutrientProtein = 1003
	usdaNutrientCarbs   = 1005
	usdaNutrientFat     = 1004
	usdaNutrientFiber   = 1079
	usdaNutrientSugar   = 2000
	usdaNutrientSodium  = 1093
)

const defaultUSDAPageSize = 5

// USDAFoodNutrient is a single nutrient entry on a FoodData Central record.
type USDAFoodNutrient struct {
	NutrientID int64   `json:"nutrientId"`
	Value      float64 `json:"value"`
}

// USDAFood is the subset of a FoodData Central food record we consume.
type USDAFood struct {
	FdcID           int64              `json:"fdcId"`
	Description     string             `json:"description"`
	ServingSize     float64            `json:"servingSize"`
	ServingSizeUnit string             `json:"servingSizeUnit"`
	FoodNutrients   []USDAFoodNutrient `json:"foodNutrients"`
}

type usdaSearchResponse struct {
	Foods     []USDAFood `json:"foods"`
	TotalHits int        `json:"totalHits"`
}

// USDAClient is a thin client over the FoodData Central search API.
type USDAClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewUSDAClient creates a USDA FoodData Central client. A nil httpClient
// falls back to a default client with a 10 second timeout.
func NewUSDAClient(baseURL, apiKey string, httpClient *http.Client) *USDAClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &USDAClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  httpClient,
	}
}

// Search queries the FoodData Central free-text search endpoint. Transport
// failures are retried once; a non-2xx status is not retried. pageSize
// values <= 0 fall back to the default of 5.
func (c *USDAClient) Search(ctx context.Context, query string, pageSize int) ([]NutritionInfo, error) {
	if pageSize <= 0 {
		pageSize = defaultUSDAPageSize
	}

	u := fmt.Sprintf(
		"%s/foods/search?query=%s&pageSize=%d&api_key=%s",
		c.baseURL, url.QueryEscape(query), pageSize, c.apiKey,
	)

	sr, err := backoff.Retry(ctx, func() (*usdaSearchResponse, error) {
		return c.fetchSearch(ctx, u)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(2))
	if err != nil {
		return nil, err
	}

	results := make([]NutritionInfo, 0, len(sr.Foods))
	for _, food := range sr.Foods {
		results = append(results, ParseUSDAFood(food))
	}
	return results, nil
}

func (c *USDAClient) fetchSearch(ctx context.Context, u string) (*usdaSearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create USDA search request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport-level failure: eligible for one retry.
		return nil, fmt.Errorf("failed to call USDA search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to read USDA search response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("USDA search API error %d: %s", resp.StatusCode, string(body)))
	}

	var sr usdaSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to parse USDA search JSON: %w", err))
	}
	return &sr, nil
}

// GetFoodByID fetches a single FoodData Central record by its fdcId.
func (c *USDAClient) GetFoodByID(ctx context.Context, fdcID int64) (*NutritionInfo, error) {
	u := fmt.Sprintf("%s/food/%d?api_key=%s", c.baseURL, fdcID, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create USDA food request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call USDA food endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read USDA food response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("USDA food API error %d: %s", resp.StatusCode, string(body))
	}

	var food USDAFood
	if err := json.Unmarshal(body, &food); err != nil {
		return nil, fmt.Errorf("failed to parse USDA food JSON: %w", err)
	}

	info := ParseUSDAFood(food)
	return &info, nil
}

// ParseUSDAFood maps a FoodData Central record to the unified NutritionInfo
// shape. Missing nutrients stay nil, except energy which defaults to 0.
// Sodium arrives as a raw milligram magnitude and is divided by 1000 here;
// the Open Food Facts parser leaves its sodium value untouched. The
// asymmetry is kept deliberately for parity with meal records already
// stored against these values.
func ParseUSDAFood(food USDAFood) NutritionInfo {
	info := NutritionInfo{
		Description:      food.Description,
		Source:           SourceUSDA,
		FdcID:            food.FdcID,
		AllowPhotoUpload: true,
		CommunityImages:  []string{},
	}

	if v := usdaNutrient(food.FoodNutrients, usdaNutrientEnergy); v != nil {
		info.Calories = *v
	}
	info.Protein = usdaNutrient(food.FoodNutrients, usdaNutrientProtein)
	info.Carbs = usdaNutrient(food.FoodNutrients, usdaNutrientCarbs)
	info.Fat = usdaNutrient(food.FoodNutrients, usdaNutrientFat)
	info.Fiber = usdaNutrient(food.FoodNutrients, usdaNutrientFiber)
	info.Sugar = usdaNutrient(food.FoodNutrients, usdaNutrientSugar)
	if v := usdaNutrient(food.FoodNutrients, usdaNutrientSodium); v != nil {
		sodium := *v / 1000
		info.Sodium = &sodium
	}

	if food.ServingSize > 0 {
		unit := food.ServingSizeUnit
		if unit == "" {
			unit = "g"
		}
		info.ServingSize = fmt.Sprintf("%v %s", food.ServingSize, unit)
	} else {
		info.ServingSize = "100g"
	}

	return info
}

// usdaNutrient scans the nutrient list for the given nutrient number.
func usdaNutrient(nutrients []USDAFoodNutrient, id int64) *float64 {
	for _, n := range nutrients {
		if n.NutrientID == id {
			v := n.Value
			return &v
		}
	}
	return nil
}
