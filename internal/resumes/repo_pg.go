package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, file_name, storage_key, storage_provider, mime_type, size_bytes,
extracted_text, skills, status, error_message, uploaded_at, parsed_at`

func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	skills, err := encodeSkills(res.Skills)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO resumes (id, user_id, file_name, storage_key, storage_provider, mime_type, size_bytes,
    extracted_text, skills, status, error_message, uploaded_at, parsed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.DB.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.FileName,
		res.StorageKey,
		res.StorageProvider,
		res.MimeType,
		res.SizeBytes,
		res.ExtractedText,
		skills,
		string(res.Status),
		nullString(res.Error),
		res.UploadedAt,
		res.ParsedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	return res, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = $1 ORDER BY uploaded_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PGRepo) SaveParseResult(ctx context.Context, res Resume) error {
	skills, err := encodeSkills(res.Skills)
	if err != nil {
		return err
	}
	const query = `
UPDATE resumes SET
  status = $2,
  extracted_text = $3,
  skills = $4,
  error_message = $5,
  parsed_at = $6
WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query,
		res.ID,
		string(res.Status),
		res.ExtractedText,
		skills,
		nullString(res.Error),
		res.ParsedAt,
	)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		res      Resume
		status   string
		skills   []byte
		errMsg   sql.NullString
		parsedAt sql.NullTime
	)
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.FileName,
		&res.StorageKey,
		&res.StorageProvider,
		&res.MimeType,
		&res.SizeBytes,
		&res.ExtractedText,
		&skills,
		&status,
		&errMsg,
		&res.UploadedAt,
		&parsedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	res.Status = Status(status)
	res.Error = errMsg.String
	if parsedAt.Valid {
		t := parsedAt.Time
		res.ParsedAt = &t
	}
	res.Skills = []string{}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &res.Skills); err != nil {
			return Resume{}, fmt.Errorf("decode skills for resume %s: %w", res.ID, err)
		}
	}
	return res, nil
}

func encodeSkills(skills []string) ([]byte, error) {
	if skills == nil {
		skills = []string{}
	}
	return json.Marshal(skills)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
