package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"coursecatalog/internal/config"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		S3URL:       "http://localhost:9000",
		S3Bucket:    "course-images",
		S3Region:    "us-east-1",
		S3AccessKey: "minio",
		S3SecretKey: "minio-secret",
	}
}

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	cfg := testConfig()
	client, err := NewS3Client(context.Background(), cfg)
	require.NoError(t, err)
	store := NewImageStore(s3.NewPresignClient(client), cfg.S3Bucket, PublicBaseURL(cfg))
	store.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return store
}

func TestPresignCourseImage(t *testing.T) {
	store := newTestStore(t)

	upload, err := store.PresignCourseImage(context.Background(), "course-1", "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(upload.UploadURL, "http://localhost:9000/course-images/courses/course-1/"), upload.UploadURL)
	assert.Contains(t, upload.UploadURL, "X-Amz-Signature=")
	assert.True(t, strings.HasPrefix(upload.ImageURL, "http://localhost:9000/course-images/courses/course-1/"))
	assert.True(t, strings.HasSuffix(upload.ImageURL, ".png"))
	assert.Equal(t, time.Date(2024, 5, 1, 12, 15, 0, 0, time.UTC), upload.ExpiresAt)
}

func TestPresignCourseImageRejectsNonImage(t *testing.T) {
	store := newTestStore(t)
	_, err := store.PresignCourseImage(context.Background(), "course-1", "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}

func TestPublicBaseURL(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "http://localhost:9000/course-images", PublicBaseURL(cfg))

	cfg.S3PublicURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com", PublicBaseURL(cfg))

	cfg.S3PublicURL, cfg.S3URL = "", ""
	assert.Equal(t, "https://course-images.s3.us-east-1.amazonaws.com", PublicBaseURL(cfg))
}
