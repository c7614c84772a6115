package upload

import "errors"

var (
	ErrInvalidImage  = errors.New("invalid image file")
	ErrFileTooLarge  = errors.New("file exceeds the maximum allowed size")
	ErrTooManyFiles  = errors.New("too many files in one request")
	ErrImageNotFound = errors.New("image not found")
)
