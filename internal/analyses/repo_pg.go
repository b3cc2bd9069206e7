package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, a Analysis) error {
	matched, err := json.Marshal(nonNil(a.MatchedSkills))
	if err != nil {
		return err
	}
	missing, err := json.Marshal(nonNil(a.MissingSkills))
	if err != nil {
		return err
	}
	suggestions, err := json.Marshal(nonNil(a.SkillSuggestions))
	if err != nil {
		return err
	}
	const query = `
INSERT INTO analyses (
    id,
    user_id,
    resume_id,
    job_id,
    job_title,
    match_percentage,
    matched_skills,
    missing_skills,
    skill_suggestions,
    resume_text,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.DB.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.ResumeID,
		a.JobID,
		a.JobTitle,
		a.MatchPercentage,
		matched,
		missing,
		suggestions,
		a.ResumeText,
		a.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = `
SELECT id, user_id, resume_id, job_id, job_title, match_percentage, matched_skills, missing_skills,
       skill_suggestions, resume_text, created_at
FROM analyses
WHERE id = $1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return a, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	const query = `
SELECT id, user_id, resume_id, job_id, job_title, match_percentage, matched_skills, missing_skills,
       skill_suggestions, '' AS resume_text, created_at
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a                             Analysis
		matched, missing, suggestions []byte
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.ResumeID,
		&a.JobID,
		&a.JobTitle,
		&a.MatchPercentage,
		&matched,
		&missing,
		&suggestions,
		&a.ResumeText,
		&a.CreatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	for _, col := range []struct {
		name string
		raw  []byte
		dst  *[]string
	}{
		{"matched_skills", matched, &a.MatchedSkills},
		{"missing_skills", missing, &a.MissingSkills},
		{"skill_suggestions", suggestions, &a.SkillSuggestions},
	} {
		*col.dst = []string{}
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return Analysis{}, fmt.Errorf("decode %s for analysis %s: %w", col.name, a.ID, err)
		}
	}
	return a, nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

var _ Repo = (*PGRepo)(nil)
