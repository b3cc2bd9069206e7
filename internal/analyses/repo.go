package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	// ListByUser returns newest first without resume text.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
}
