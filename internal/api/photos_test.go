package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wellspring-app/nutrition-service/internal/middleware"
	"github.com/wellspring-app/nutrition-service/internal/models"
	"github.com/wellspring-app/nutrition-service/internal/service"
)

type memoryPhotoStorage struct{}

func (memoryPhotoStorage) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return "https://cdn.example/" + key, nil
}

func newPhotoTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CommunityPhoto{}))

	handler := NewPhotoHandler(service.NewCommunityPhotoService(db, memoryPhotoStorage{}))
	tokenService := service.NewTokenService("test-secret")

	r := gin.New()
	r.GET("/api/v1/community-photos/:fdcId", handler.List)
	r.POST("/api/v1/community-photos", middleware.AuthMiddleware(tokenService), handler.Upload)
	return r
}

func photoUploadRequest(t *testing.T, fdcID, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("fdcId", fdcID))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/community-photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func validUploadToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  uuid.New().String(),
		"username": "casey",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestPhotoHandler_Upload(t *testing.T) {
	router := newPhotoTestRouter(t)

	t.Run("should reject uploads without a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, photoUploadRequest(t, "171688", ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should store the photo and return its URL", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, photoUploadRequest(t, "171688", validUploadToken(t)))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"imageUrl":"https://cdn.example/community-photos/171688/`)

		// The photo is now listed for the food.
		lw := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/community-photos/171688", nil)
		router.ServeHTTP(lw, req)

		require.Equal(t, http.StatusOK, lw.Code)
		assert.Contains(t, lw.Body.String(), "https://cdn.example/community-photos/171688/")
	})

	t.Run("should reject an invalid fdcId", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, photoUploadRequest(t, "not-a-number", validUploadToken(t)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPhotoHandler_List(t *testing.T) {
	router := newPhotoTestRouter(t)

	t.Run("should return an empty list for an unknown food", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/community-photos/424242", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"images":[]}`, w.Body.String())
	})

	t.Run("should reject a malformed fdcId", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/community-photos/abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
