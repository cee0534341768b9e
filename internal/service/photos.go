package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wellspring-app/nutrition-service/config"
	"github.com/wellspring-app/nutrition-service/internal/models"
)

// PhotoStorage stores an image blob and returns its public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3PhotoStorage stores community photos in S3 behind a public-read bucket.
type S3PhotoStorage struct {
	cfg *config.S3Config
}

// NewS3PhotoStorage creates an S3-backed photo store.
func NewS3PhotoStorage(cfg *config.S3Config) *S3PhotoStorage {
	return &S3PhotoStorage{cfg: cfg}
}

// Upload puts the image into the bucket and returns its public URL.
func (s *S3PhotoStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.cfg.BucketName, key)
	log.Printf("[PhotoService] Successfully uploaded image to S3: %s", publicURL)

	return publicURL, nil
}

// CommunityPhotoService owns the fdcId -> photo association: blobs live in
// the photo storage, the URL records in Postgres.
type CommunityPhotoService struct {
	db      *gorm.DB
	storage PhotoStorage
}

// NewCommunityPhotoService creates a new community photo service.
func NewCommunityPhotoService(db *gorm.DB, storage PhotoStorage) *CommunityPhotoService {
	return &CommunityPhotoService{
		db:      db,
		storage: storage,
	}
}

// GetCommunityPhotos returns the photo URLs for a food in upload order.
// Failures degrade to an empty list; photo lookup is never fatal to search.
func (s *CommunityPhotoService) GetCommunityPhotos(ctx context.Context, fdcID int64) []string {
	var photos []models.CommunityPhoto
	err := s.db.WithContext(ctx).
		Where("fdc_id = ?", fdcID).
		Order("created_at ASC, id ASC").
		Find(&photos).Error
	if err != nil {
		log.Printf("[PhotoService] failed to list photos for %d: %v", fdcID, err)
		return []string{}
	}

	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		urls = append(urls, p.ImageURL)
	}
	return urls
}

// UploadCommunityPhoto stores the image blob and records its URL against
// the food. uploadedBy is the user identity from the validated token; this
// service performs no auth logic of its own.
func (s *CommunityPhotoService) UploadCommunityPhoto(ctx context.Context, fdcID int64, data []byte, contentType, uploadedBy string) (string, error) {
	if fdcID <= 0 {
		return "", fmt.Errorf("fdcId must be positive")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image data is empty")
	}

	key := fmt.Sprintf("community-photos/%d/%s%s", fdcID, uuid.New().String(), extensionFor(contentType))
	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store community photo: %w", err)
	}

	photo := models.CommunityPhoto{
		FdcID:      fdcID,
		ImageURL:   url,
		UploadedBy: uploadedBy,
	}
	if err := s.db.WithContext(ctx).Create(&photo).Error; err != nil {
		return "", fmt.Errorf("failed to record community photo: %w", err)
	}

	return url, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
