package analyses

import "errors"

var (
	ErrNotFound         = errors.New("analysis not found")
	ErrForbidden        = errors.New("analysis belongs to another user")
	ErrInvalidInput     = errors.New("invalid input")
	ErrResumeProcessing = errors.New("resume is still being processed")
	ErrResumeFailed     = errors.New("resume could not be parsed")
)
