package analyses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobfit-backend/internal/jobs"
	"jobfit-backend/internal/resumes"
	"jobfit-backend/internal/shared/metrics"
	"jobfit-backend/internal/shared/telemetry"
	"jobfit-backend/internal/skills"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50
)

// ResumeReader loads a resume on behalf of its owner.
type ResumeReader interface {
	Get(ctx context.Context, userID, resumeID string) (resumes.Resume, error)
}

// JobReader loads a job posting, active or not.
type JobReader interface {
	Get(ctx context.Context, id string) (jobs.Job, error)
}

// Service contains business logic for analyses.
type Service struct {
	Repo    Repo
	Resumes ResumeReader
	Jobs    JobReader
	Now     func() time.Time
}

// Analyze matches the user's resume against a job and stores the result.
func (s *Service) Analyze(ctx context.Context, userID, resumeID, jobID string) (Analysis, error) {
	resumeID = strings.TrimSpace(resumeID)
	jobID = strings.TrimSpace(jobID)
	if resumeID == "" || jobID == "" {
		return Analysis{}, fmt.Errorf("%w: resumeId and jobId are required", ErrInvalidInput)
	}

	res, err := s.Resumes.Get(ctx, userID, resumeID)
	if err != nil {
		return Analysis{}, fmt.Errorf("load resume %s: %w", resumeID, err)
	}
	switch res.Status {
	case resumes.StatusProcessing:
		return Analysis{}, ErrResumeProcessing
	case resumes.StatusFailed:
		return Analysis{}, fmt.Errorf("%w: %s", ErrResumeFailed, res.Error)
	}

	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return Analysis{}, fmt.Errorf("load job %s: %w", jobID, err)
	}

	result := skills.Match(res.Skills, job.RequiredSkills)
	analysis := Analysis{
		ID:               uuid.NewString(),
		UserID:           userID,
		ResumeID:         res.ID,
		JobID:            job.ID,
		JobTitle:         job.Title,
		MatchPercentage:  result.MatchPercentage,
		MatchedSkills:    result.MatchedSkills,
		MissingSkills:    result.MissingSkills,
		SkillSuggestions: skills.Suggestions(result.MissingSkills, job.MinExperience),
		ResumeText:       res.ExtractedText,
		CreatedAt:        s.now(),
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		metrics.IncAnalysisFailed()
		return Analysis{}, err
	}

	metrics.IncAnalysisCompleted(analysis.MatchPercentage)
	telemetry.Info("analysis.completed", map[string]any{
		"analysis_id":      analysis.ID,
		"resume_id":        res.ID,
		"job_id":           job.ID,
		"user_id":          userID,
		"match_percentage": analysis.MatchPercentage,
		"matched":          len(analysis.MatchedSkills),
		"missing":          len(analysis.MissingSkills),
	})
	return analysis, nil
}

// Get returns an analysis owned by userID.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrForbidden
	}
	return a, nil
}

// List returns the user's analysis history, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
