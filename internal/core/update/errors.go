package update

import "errors"

var (
	ErrCancelled     = errors.New("cancelled")
	ErrInvalidConfig = errors.New("invalid compose configuration")
	ErrRemoveFailed  = errors.New("failed to remove containers")
	ErrCreateFailed  = errors.New("failed to create containers")
	ErrNoImages      = errors.New("no images found")
)
