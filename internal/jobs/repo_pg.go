package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, title, description, required_skills, company, location, min_experience,
qualifications, posted_by, posted_at, updated_at, is_active`

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	required, quals, err := encodeLists(job)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO jobs (id, title, description, required_skills, company, location, min_experience,
    qualifications, posted_by, posted_at, updated_at, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.DB.ExecContext(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		required,
		job.Company,
		job.Location,
		nullInt(job.MinExperience),
		quals,
		job.PostedBy,
		job.PostedAt,
		job.UpdatedAt,
		job.IsActive,
	)
	return err
}

func (r *PGRepo) Update(ctx context.Context, job Job) error {
	required, quals, err := encodeLists(job)
	if err != nil {
		return err
	}
	const query = `
UPDATE jobs SET
  title = $2,
  description = $3,
  required_skills = $4,
  company = $5,
  location = $6,
  min_experience = $7,
  qualifications = $8,
  updated_at = $9,
  is_active = $10
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		required,
		job.Company,
		job.Location,
		nullInt(job.MinExperience),
		quals,
		job.UpdatedAt,
		job.IsActive,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return job, err
}

func (r *PGRepo) ListActive(ctx context.Context, filter Filter) ([]Job, error) {
	f := filter.normalized()
	var (
		where = []string{"is_active"}
		args  []any
	)
	if f.Query != "" {
		args = append(args, "%"+escapeLike(f.Query)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR company ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}
	if f.Location != "" {
		args = append(args, "%"+escapeLike(f.Location)+"%")
		where = append(where, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if f.Skill != "" {
		args = append(args, f.Skill)
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements_text(required_skills) s WHERE lower(s) = $%d)", len(args)))
	}
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE ` + strings.Join(where, " AND ") + ` ORDER BY posted_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *PGRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE jobs SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var (
		job      Job
		required []byte
		quals    []byte
		minExp   sql.NullInt64
	)
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&required,
		&job.Company,
		&job.Location,
		&minExp,
		&quals,
		&job.PostedBy,
		&job.PostedAt,
		&job.UpdatedAt,
		&job.IsActive,
	)
	if err != nil {
		return Job{}, err
	}
	if minExp.Valid {
		v := int(minExp.Int64)
		job.MinExperience = &v
	}
	if job.RequiredSkills, err = decodeList(required); err != nil {
		return Job{}, fmt.Errorf("decode required_skills for job %s: %w", job.ID, err)
	}
	if job.Qualifications, err = decodeList(quals); err != nil {
		return Job{}, fmt.Errorf("decode qualifications for job %s: %w", job.ID, err)
	}
	return job, nil
}

func encodeLists(job Job) ([]byte, []byte, error) {
	required, err := json.Marshal(nonNil(job.RequiredSkills))
	if err != nil {
		return nil, nil, err
	}
	quals, err := json.Marshal(nonNil(job.Qualifications))
	if err != nil {
		return nil, nil, err
	}
	return required, quals, nil
}

func decodeList(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func expectRow(res sql.Result) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ Repo = (*PGRepo)(nil)
