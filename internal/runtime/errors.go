package runtime

import "errors"

var (
	ErrRuntime        = errors.New("runtime error")
	ErrImageNotFound  = errors.New("image not found")
	ErrEmptyIndex     = errors.New("empty image index")
	ErrEmptyArchive   = errors.New("archive contains no images")
	ErrMultipleImages = errors.New("archive contains multiple images")
)
