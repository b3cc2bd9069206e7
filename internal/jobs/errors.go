package jobs

import "errors"

var (
	ErrNotFound     = errors.New("job not found")
	ErrForbidden    = errors.New("only the poster or an admin can change this job")
	ErrCannotPost   = errors.New("only recruiters and admins can post jobs")
	ErrInvalidInput = errors.New("invalid job")
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid job"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
