package upload

import "context"

// ObjectStorage is the subset of the storage backend the upload
// service depends on.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Stats(ctx context.Context) (int, int64, error)
}

// Service handles image uploads for posts and avatars.
type Service interface {
	// UploadPostImage validates, resizes and stores a blog image.
	UploadPostImage(ctx context.Context, data []byte) (*ImageResult, error)

	// UploadPostImages stores up to the configured number of images in
	// one call.
	UploadPostImages(ctx context.Context, files [][]byte) ([]ImageResult, error)

	// UploadAvatar stores a square profile picture.
	UploadAvatar(ctx context.Context, data []byte) (*ImageResult, error)

	// DeletePostImage removes a previously uploaded blog image by its
	// public ID.
	DeletePostImage(ctx context.Context, publicID string) error

	Stats(ctx context.Context) (*StorageStats, error)
}
