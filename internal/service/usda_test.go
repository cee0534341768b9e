package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUSDAFood(t *testing.T) {
	t.Run("should map nutrients by id", func(t *testing.T) {
		food := USDAFood{
			FdcID:           171688,
			Description:     "Cheddar Cheese",
			ServingSize:     28,
			ServingSizeUnit: "g",
			FoodNutrients: []USDAFoodNutrient{
				{NutrientID: 1008, Value: 402},
				{NutrientID: 1003, Value: 23.3},
				{NutrientID: 1005, Value: 3.4},
				{NutrientID: 1004, Value: 33.8},
				{NutrientID: 1093, Value: 653},
			},
		}

		info := ParseUSDAFood(food)

		assert.Equal(t, SourceUSDA, info.Source)
		assert.Equal(t, int64(171688), info.FdcID)
		assert.Equal(t, "Cheddar Cheese", info.Description)
		assert.Equal(t, 402.0, info.Calories)
		require.NotNil(t, info.Protein)
		assert.Equal(t, 23.3, *info.Protein)
		require.NotNil(t, info.Sodium)
		assert.Equal(t, 0.653, *info.Sodium)
		assert.Equal(t, "28 g", info.ServingSize)
		assert.True(t, info.AllowPhotoUpload)
		assert.NotNil(t, info.CommunityImages)
		assert.Empty(t, info.CommunityImages)
	})

	t.Run("should default calories to zero when energy is missing", func(t *testing.T) {
		food := USDAFood{
			FdcID:       100,
			Description: "Mystery Food",
			FoodNutrients: []USDAFoodNutrient{
				{NutrientID: 1003, Value: 10},
			},
		}

		info := ParseUSDAFood(food)

		assert.Equal(t, 0.0, info.Calories)
		assert.Nil(t, info.Carbs)
		assert.Nil(t, info.Fat)
		assert.Nil(t, info.Fiber)
		assert.Nil(t, info.Sugar)
		assert.Nil(t, info.Sodium)
	})

	t.Run("should default serving size to 100g", func(t *testing.T) {
		info := ParseUSDAFood(USDAFood{FdcID: 1, Description: "Plain"})
		assert.Equal(t, "100g", info.ServingSize)
	})

	t.Run("should default serving unit to grams", func(t *testing.T) {
		info := ParseUSDAFood(USDAFood{FdcID: 1, Description: "Plain", ServingSize: 55})
		assert.Equal(t, "55 g", info.ServingSize)
	})
}

func TestUSDASodiumDivergesFromOpenFoodFacts(t *testing.T) {
	// Identical raw sodium magnitude from both sources: the USDA parser
	// divides by 1000, the OFF parser does not.
	usdaInfo := ParseUSDAFood(USDAFood{
		FdcID:         1,
		FoodNutrients: []USDAFoodNutrient{{NutrientID: 1093, Value: 500}},
	})
	offInfo := ParseOpenFoodFactsProduct(OFFProduct{
		ProductName: "Salty Snack",
		Nutriments:  map[string]any{"sodium_100g": 500.0},
	})

	require.NotNil(t, usdaInfo.Sodium)
	require.NotNil(t, offInfo.Sodium)
	assert.Equal(t, *offInfo.Sodium/1000, *usdaInfo.Sodium)
}

func TestUSDAClient_Search(t *testing.T) {
	t.Run("should parse search results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/foods/search", r.URL.Path)
			assert.Equal(t, "cheddar", r.URL.Query().Get("query"))
			assert.Equal(t, "3", r.URL.Query().Get("pageSize"))
			assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

			_ = json.NewEncoder(w).Encode(usdaSearchResponse{
				Foods: []USDAFood{
					{FdcID: 1, Description: "Cheddar", FoodNutrients: []USDAFoodNutrient{{NutrientID: 1008, Value: 402}}},
					{FdcID: 2, Description: "Cheddar, reduced fat"},
				},
				TotalHits: 2,
			})
		}))
		defer srv.Close()

		client := NewUSDAClient(srv.URL, "test-key", nil)
		results, err := client.Search(context.Background(), "cheddar", 3)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Cheddar", results[0].Description)
		assert.Equal(t, 402.0, results[0].Calories)
		assert.Equal(t, 0.0, results[1].Calories)
	})

	t.Run("should not retry on non-2xx status", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		client := NewUSDAClient(srv.URL, "bad-key", nil)
		results, err := client.Search(context.Background(), "cheddar", 3)

		assert.Error(t, err)
		assert.Nil(t, results)
		assert.Equal(t, 1, calls)
	})

	t.Run("should fail after retrying a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		client := NewUSDAClient(srv.URL, "test-key", nil)
		results, err := client.Search(context.Background(), "cheddar", 3)

		assert.Error(t, err)
		assert.Nil(t, results)
	})
}

func TestUSDAClient_GetFoodByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/food/171688", r.URL.Path)
		_ = json.NewEncoder(w).Encode(USDAFood{
			FdcID:       171688,
			Description: "Cheddar Cheese",
			FoodNutrients: []USDAFoodNutrient{
				{NutrientID: 1008, Value: 402},
			},
		})
	}))
	defer srv.Close()

	client := NewUSDAClient(srv.URL, "test-key", nil)
	info, err := client.GetFoodByID(context.Background(), 171688)

	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, int64(171688), info.FdcID)
	assert.Equal(t, 402.0, info.Calories)
}
