package models

import (
	"time"
)

// CommunityPhoto is one user-contributed photo for a USDA food, keyed by
// fdcId. Photos are served back in upload order.
type CommunityPhoto struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	FdcID      int64     `gorm:"index;not null" json:"fdc_id"`
	ImageURL   string    `gorm:"not null" json:"image_url"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the table name for the CommunityPhoto model
func (CommunityPhoto) TableName() string {
	return "community_photos"
}
