package jobs

import "context"

type Repo interface {
	Create(ctx context.Context, job Job) error
	Update(ctx context.Context, job Job) error
	GetByID(ctx context.Context, id string) (Job, error)
	ListActive(ctx context.Context, filter Filter) ([]Job, error)
	// Deactivate hides a job from the board without removing it.
	Deactivate(ctx context.Context, id string) error
}
