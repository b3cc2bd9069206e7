package resumes

import "context"

// Repo persists resume records.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	GetByID(ctx context.Context, id string) (Resume, error)
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	// SaveParseResult stores status, text, skills, error and parsed time.
	SaveParseResult(ctx context.Context, r Resume) error
	Delete(ctx context.Context, id string) error
}
