package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/metrics"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

const imageKeyPrefix = "recipe-images/"

var dataURIPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.*)$`)

// ObjectStore persists binary objects and reports their public address.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Store is the ObjectStore backed by an S3 bucket.
type S3Store struct {
	cfg *config.S3Config
}

func NewS3Store(cfg *config.S3Config) *S3Store {
	return &S3Store{cfg: cfg}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.cfg.BucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.cfg.PublicURL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.cfg.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// ImageService moves embedded recipe images into object storage. Without a
// store, data URIs stay inline after the size check.
type ImageService struct {
	store ObjectStore
	log   *zap.Logger
}

func NewImageService(store ObjectStore, log *zap.Logger) *ImageService {
	return &ImageService{store: store, log: log}
}

// Enabled reports whether uploads go to object storage.
func (s *ImageService) Enabled() bool {
	return s != nil && s.store != nil
}

// Attach uploads r.Image when it is a data URI and replaces it with the
// public URL. previousKey is the object the recipe pointed at before this
// write; it is removed once the recipe references something else.
func (s *ImageService) Attach(ctx context.Context, r *models.Recipe, previousKey string) error {
	if !strings.HasPrefix(r.Image, "data:image/") {
		if r.Image == "" {
			r.ImagePublicID = ""
		}
		s.release(ctx, previousKey, r.ImagePublicID)
		return nil
	}

	m := dataURIPattern.FindStringSubmatch(r.Image)
	if m == nil {
		return apperrors.Validation("Validation failed", apperrors.FieldError{
			Field: "image", Message: "Image must be a base64 encoded data URI",
		})
	}
	subtype, payload := strings.ToLower(m[1]), m[2]

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return apperrors.Validation("Validation failed", apperrors.FieldError{
			Field: "image", Message: "Image data is not valid base64",
		})
	}
	if len(data) > models.MaxImageBytes {
		return apperrors.Validation("Validation failed", apperrors.FieldError{
			Field:   "image",
			Message: fmt.Sprintf("Image size (%.1fMB) exceeds 5MB limit", float64(len(data))/(1024*1024)),
		})
	}

	if !s.Enabled() {
		return nil
	}

	key := fmt.Sprintf("%s%s-%s.%s", imageKeyPrefix, r.ID, uuid.New().String(), extension(subtype))
	url, err := s.store.Put(ctx, key, "image/"+subtype, data)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		return apperrors.Internal("Failed to upload image", err)
	}
	metrics.ImageUploads.WithLabelValues("ok").Inc()
	s.log.Info("Uploaded recipe image", zap.String("recipe_id", r.ID), zap.String("key", key), zap.Int("bytes", len(data)))

	r.Image = url
	r.ImagePublicID = key
	s.release(ctx, previousKey, key)
	return nil
}

// Remove deletes the recipe's uploaded image, if any.
func (s *ImageService) Remove(ctx context.Context, r *models.Recipe) {
	s.release(ctx, r.ImagePublicID, "")
}

func (s *ImageService) release(ctx context.Context, key, keep string) {
	if !s.Enabled() || key == "" || key == keep {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("Failed to delete recipe image", zap.String("key", key), zap.Error(err))
	}
}

func extension(subtype string) string {
	switch subtype {
	case "jpeg", "pjpeg":
		return "jpg"
	case "svg+xml":
		return "svg"
	default:
		return subtype
	}
}
