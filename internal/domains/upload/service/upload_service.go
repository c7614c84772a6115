package service

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"

	"connect-digitals-backend/internal/domains/upload"
	"connect-digitals-backend/internal/infrastructure/storage"
)

const (
	blogPrefix   = "blog"
	avatarPrefix = "avatars"

	defaultMaxBatchSize = 5
)

type uploadService struct {
	store     upload.ObjectStorage
	processor *storage.ImageProcessor
	maxFiles  int
}

func NewUploadService(store upload.ObjectStorage, processor *storage.ImageProcessor, maxFiles int) upload.Service {
	if maxFiles < 1 {
		maxFiles = defaultMaxBatchSize
	}
	return &uploadService{
		store:     store,
		processor: processor,
		maxFiles:  maxFiles,
	}
}

func (s *uploadService) UploadPostImage(ctx context.Context, data []byte) (*upload.ImageResult, error) {
	if err := s.processor.ValidateImage(data); err != nil {
		return nil, fmt.Errorf("%w: %v", upload.ErrInvalidImage, err)
	}

	processed, err := s.processor.ProcessPostImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", upload.ErrInvalidImage, err)
	}

	return s.storeImage(ctx, blogPrefix, processed)
}

func (s *uploadService) UploadPostImages(ctx context.Context, files [][]byte) ([]upload.ImageResult, error) {
	if len(files) == 0 {
		return nil, upload.ErrInvalidImage
	}
	if len(files) > s.maxFiles {
		return nil, upload.ErrTooManyFiles
	}

	results := make([]upload.ImageResult, 0, len(files))
	for _, data := range files {
		result, err := s.UploadPostImage(ctx, data)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	return results, nil
}

func (s *uploadService) UploadAvatar(ctx context.Context, data []byte) (*upload.ImageResult, error) {
	if err := s.processor.ValidateImage(data); err != nil {
		return nil, fmt.Errorf("%w: %v", upload.ErrInvalidImage, err)
	}

	processed, err := s.processor.ProcessAvatar(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", upload.ErrInvalidImage, err)
	}

	return s.storeImage(ctx, avatarPrefix, processed)
}

func (s *uploadService) DeletePostImage(ctx context.Context, publicID string) error {
	// Deleting by prefix covers the stored object regardless of
	// extension.
	return s.store.DeleteByPrefix(ctx, fmt.Sprintf("%s/%s", blogPrefix, publicID))
}

func (s *uploadService) Stats(ctx context.Context) (*upload.StorageStats, error) {
	count, size, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &upload.StorageStats{
		TotalObjects: count,
		TotalSize:    size,
	}, nil
}

// storeImage uploads processed JPEG bytes under a fresh UUID key.
func (s *uploadService) storeImage(ctx context.Context, prefix string, processed []byte) (*upload.ImageResult, error) {
	id := uuid.NewString()
	key := fmt.Sprintf("%s/%s.jpg", prefix, id)

	url, err := s.store.Upload(ctx, key, processed, "image/jpeg")
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(processed))
	if err != nil {
		return nil, fmt.Errorf("decode stored image: %w", err)
	}

	return &upload.ImageResult{
		URL:      url,
		PublicID: id,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   "jpg",
		Size:     int64(len(processed)),
	}, nil
}
