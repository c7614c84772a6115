package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	postImageWidth  = 1200
	postImageHeight = 800
	avatarSize      = 300
	jpegQuality     = 80
)

type ImageProcessor struct {
	MaxSize int64 // bytes
}

func NewImageProcessor(maxSize int64) *ImageProcessor {
	if maxSize == 0 {
		maxSize = 5 * 1024 * 1024
	}
	return &ImageProcessor{MaxSize: maxSize}
}

// ValidateImage rejects oversized payloads and anything that does not
// decode as jpeg or png.
func (p *ImageProcessor) ValidateImage(data []byte) error {
	if int64(len(data)) > p.MaxSize {
		return fmt.Errorf("image exceeds %dMB", p.MaxSize/(1024*1024))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not an image: %w", err)
	}
	switch format {
	case "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("image format %s not allowed", format)
	}
}

// ProcessPostImage fits the image inside 1200x800 without cropping and
// re-encodes as JPEG. Smaller images pass through at original size.
func (p *ImageProcessor) ProcessPostImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	resized := imaging.Fit(img, postImageWidth, postImageHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("cannot encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// ProcessAvatar center-crops to a 300x300 square JPEG.
func (p *ImageProcessor) ProcessAvatar(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	cropped := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, cropped, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("cannot encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
