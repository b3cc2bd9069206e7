package resumes

import "errors"

var (
	ErrNotFound         = errors.New("resume not found")
	ErrForbidden        = errors.New("resume belongs to another user")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedType  = errors.New("only PDF, DOC and DOCX files are supported")
	ErrEmptyFile        = errors.New("file is empty")
	ErrTooLarge         = errors.New("file exceeds the upload limit")
	ErrStoreUnavailable = errors.New("resume storage not configured")
)
