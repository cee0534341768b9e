package service

// Source identifies which food-data source produced a NutritionInfo record.
// It is always set explicitly by the parser that built the record.
type Source string

const (
	SourceUSDA          Source = "usda"
	SourceOpenFoodFacts Source = "openfoodfacts"
	SourceEstimated     Source = "estimated"
)

// NutritionInfo is the unified food record shape produced by every source
// parser. Calories is always a finite number >= 0; the other nutrient fields
// are nil when the source omits them.
type NutritionInfo struct {
	Calories float64  `json:"calories"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`

	ServingSize string `json:"serving_size,omitempty"`
	Description string `json:"description"`
	Source      Source `json:"source"`
	ImageURL    string `json:"image_url,omitempty"`

	// Open Food Facts only
	Brand string `json:"brand,omitempty"`

	// USDA only. FdcID is the join key for community photos.
	FdcID            int64    `json:"fdc_id,omitempty"`
	CommunityImages  []string `json:"community_images,omitempty"`
	AllowPhotoUpload bool     `json:"allow_photo_upload,omitempty"`
}
