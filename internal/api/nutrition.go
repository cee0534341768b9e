package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wellspring-app/nutrition-service/internal/service"
)

// NutritionHandler exposes the aggregation operations over HTTP.
type NutritionHandler struct {
	nutrition *service.NutritionService
}

// NewNutritionHandler creates a new nutrition handler
func NewNutritionHandler(nutrition *service.NutritionService) *NutritionHandler {
	return &NutritionHandler{nutrition: nutrition}
}

// SearchResponse wraps a unified result list.
type SearchResponse struct {
	Results []service.NutritionInfo `json:"results"`
}

// EstimateRequest is the body for the offline calorie estimate.
type EstimateRequest struct {
	Description string `json:"description" binding:"required"`
}

// Search runs the comprehensive multi-source search. An empty result list
// is a normal 200 response, presented by the front end as "no results".
func (h *NutritionHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	results := h.nutrition.ComprehensiveSearch(c.Request.Context(), query)
	c.JSON(http.StatusOK, SearchResponse{Results: results})
}

// Barcode looks up a single product by barcode. Both a missing product and
// an upstream failure surface as 404; the front end suggests searching by
// name instead.
func (h *NutritionHandler) Barcode(c *gin.Context) {
	code := c.Param("code")

	info := h.nutrition.SearchByBarcode(c.Request.Context(), code)
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, info)
}

// Estimate returns the offline keyword-based calorie estimate.
func (h *NutritionHandler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description is required"})
		return
	}

	c.JSON(http.StatusOK, service.EstimateCaloriesFromDescription(req.Description))
}
