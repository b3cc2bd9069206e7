package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobfit-backend/internal/shared/cache"
	"jobfit-backend/internal/shared/metrics"
	"jobfit-backend/internal/shared/telemetry"
	"jobfit-backend/internal/shared/util"
	"jobfit-backend/internal/users"
)

const (
	activeKeyPrefix = "jobs:active:"
	jobKeyPrefix    = "jobs:id:"
)

// Actor is the authenticated caller performing a write.
type Actor struct {
	UserID string
	Role   users.Role
}

// Service owns job postings and the job board cache.
type Service struct {
	Repo Repo
	// Cache is optional; reads go straight to Repo when nil.
	Cache    cache.Cache
	CacheTTL time.Duration
	Now      func() time.Time
}

// ListActive returns active jobs matching filter, served from cache when possible.
func (s *Service) ListActive(ctx context.Context, filter Filter) ([]Job, error) {
	key := activeKey(filter)
	var cached []Job
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}
	list, err := s.Repo.ListActive(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, list)
	return list, nil
}

// Get returns a job by id whether or not it is still active.
func (s *Service) Get(ctx context.Context, id string) (Job, error) {
	key := jobKeyPrefix + id
	var cached Job
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}
	job, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Job{}, err
	}
	s.cacheSet(ctx, key, job)
	return job, nil
}

// Create posts a job for a recruiter or admin.
func (s *Service) Create(ctx context.Context, actor Actor, in Input) (Job, error) {
	if actor.UserID == "" || !actor.Role.CanPostJobs() {
		return Job{}, ErrCannotPost
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Job{}, err
	}
	now := s.now()
	job := Job{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		RequiredSkills: in.RequiredSkills,
		Company:        in.Company,
		Location:       in.Location,
		MinExperience:  in.MinExperience,
		Qualifications: in.Qualifications,
		PostedBy:       actor.UserID,
		PostedAt:       now,
		UpdatedAt:      now,
		IsActive:       true,
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	s.invalidate(ctx, job.ID)
	telemetry.Info("job.created", map[string]any{"job_id": job.ID, "user_id": actor.UserID, "skills": len(job.RequiredSkills)})
	return job, nil
}

// Update replaces a job's fields; only the poster or an admin may do so.
func (s *Service) Update(ctx context.Context, actor Actor, id string, in Input) (Job, error) {
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Job{}, err
	}
	if !canModify(actor, existing) {
		return Job{}, ErrForbidden
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Job{}, err
	}
	existing.Title = in.Title
	existing.Description = in.Description
	existing.RequiredSkills = in.RequiredSkills
	existing.Company = in.Company
	existing.Location = in.Location
	existing.MinExperience = in.MinExperience
	existing.Qualifications = in.Qualifications
	existing.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, existing); err != nil {
		return Job{}, err
	}
	s.invalidate(ctx, id)
	telemetry.Info("job.updated", map[string]any{"job_id": id, "user_id": actor.UserID})
	return existing, nil
}

// Delete soft-deletes the job so existing analyses can still reference it.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, existing) {
		return ErrForbidden
	}
	if err := s.Repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	telemetry.Info("job.deleted", map[string]any{"job_id": id, "user_id": actor.UserID})
	return nil
}

func canModify(actor Actor, job Job) bool {
	if actor.UserID == "" {
		return false
	}
	return actor.Role == users.RoleAdmin || job.PostedBy == actor.UserID
}

func activeKey(f Filter) string {
	n := f.normalized()
	return activeKeyPrefix + util.HashParts(n.Query, n.Skill, n.Location)
}

func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.Cache == nil {
		return false
	}
	hit, err := s.Cache.GetJSON(ctx, key, out)
	if err != nil {
		telemetry.Warn("job.cache_read_failed", map[string]any{"key": key, "error": err})
		hit = false
	}
	metrics.IncJobCache(hit)
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.SetJSON(ctx, key, value, s.CacheTTL); err != nil {
		telemetry.Warn("job.cache_write_failed", map[string]any{"key": key, "error": err})
	}
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, jobKeyPrefix+id); err != nil {
		telemetry.Warn("job.cache_invalidate_failed", map[string]any{"job_id": id, "error": err})
	}
	if err := s.Cache.DeleteByPattern(ctx, activeKeyPrefix+"*"); err != nil {
		telemetry.Warn("job.cache_invalidate_failed", map[string]any{"pattern": activeKeyPrefix + "*", "error": err})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
