package analyses

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	analyses map[string]Analysis
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{analyses: make(map[string]Analysis)}
}

func (r *MemoryRepo) Create(ctx context.Context, a Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[a.ID] = cloneAnalysis(a)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyses[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return cloneAnalysis(a), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	all := make([]Analysis, 0)
	for _, a := range r.analyses {
		if a.UserID == userID {
			a = cloneAnalysis(a)
			a.ResumeText = ""
			all = append(all, a)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []Analysis{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func cloneAnalysis(a Analysis) Analysis {
	a.MatchedSkills = append([]string{}, a.MatchedSkills...)
	a.MissingSkills = append([]string{}, a.MissingSkills...)
	a.SkillSuggestions = append([]string{}, a.SkillSuggestions...)
	return a
}

var _ Repo = (*MemoryRepo)(nil)
