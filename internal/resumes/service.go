package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobfit-backend/internal/extract"
	"jobfit-backend/internal/queue"
	"jobfit-backend/internal/shared/metrics"
	"jobfit-backend/internal/shared/storage/object"
	"jobfit-backend/internal/shared/telemetry"
	"jobfit-backend/internal/shared/util"
	"jobfit-backend/internal/skills"
)

// MaxUploadBytes caps the size of a single resume file.
const MaxUploadBytes int64 = 10 << 20

var allowedExtensions = []string{".pdf", ".doc", ".docx"}

// Service owns resume uploads and parsing.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
	// Queue receives parse requests; when nil resumes are parsed during upload.
	Queue    queue.Client
	MaxBytes int64
	Now      func() time.Time
}

// Upload stores the file, records the resume and either parses it inline or
// hands it to the worker queue.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader, requestID string) (Resume, error) {
	if s.Store == nil || s.Repo == nil {
		return Resume{}, ErrStoreUnavailable
	}
	if strings.TrimSpace(userID) == "" {
		return Resume{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Resume{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}
	if !util.HasExtension(fileName, allowedExtensions...) {
		return Resume{}, ErrUnsupportedType
	}

	limit := s.maxBytes()
	key, size, sniffed, err := s.Store.Save(ctx, userID, fileName, &io.LimitedReader{R: r, N: limit + 1})
	if err != nil {
		if errors.Is(err, util.ErrInvalidFileName) {
			return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return Resume{}, fmt.Errorf("store resume: %w", err)
	}
	if size == 0 || size > limit {
		_ = s.Store.Delete(ctx, key)
		if size == 0 {
			return Resume{}, ErrEmptyFile
		}
		return Resume{}, ErrTooLarge
	}

	res := Resume{
		ID:              uuid.NewString(),
		UserID:          userID,
		FileName:        fileName,
		StorageKey:      key,
		StorageProvider: s.Store.Provider(),
		MimeType:        documentMime(sniffed, fileName),
		SizeBytes:       size,
		Skills:          []string{},
		Status:          StatusProcessing,
		UploadedAt:      s.now(),
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		_ = s.Store.Delete(ctx, key)
		return Resume{}, err
	}
	metrics.IncResumeUploaded()
	telemetry.Info("resume.uploaded", map[string]any{
		"resume_id":  res.ID,
		"user_id":    userID,
		"size_bytes": size,
		"mime_type":  res.MimeType,
		"request_id": requestID,
	})

	if s.Queue != nil {
		err := s.Queue.Send(ctx, queue.NewParseMessage(res.ID, requestID))
		if err == nil {
			return res, nil
		}
		telemetry.Warn("resume.enqueue_failed", map[string]any{"resume_id": res.ID, "error": err})
	}

	if err := s.Process(ctx, res.ID); err != nil {
		// Nothing will retry an inline parse; drop the record and blob so
		// the client can upload again.
		if delErr := s.Repo.Delete(ctx, res.ID); delErr != nil {
			telemetry.Warn("resume.cleanup_failed", map[string]any{"resume_id": res.ID, "error": delErr})
		}
		if delErr := s.Store.Delete(ctx, key); delErr != nil {
			telemetry.Warn("resume.cleanup_failed", map[string]any{"resume_id": res.ID, "storage_key": key, "error": delErr})
		}
		return Resume{}, err
	}
	return s.Repo.GetByID(ctx, res.ID)
}

// Process extracts text and skills for a stored resume. Parsed resumes are
// left alone. Unreadable documents are recorded as failed and do not return
// an error; storage and database failures do.
func (s *Service) Process(ctx context.Context, resumeID string) error {
	if s.Store == nil || s.Repo == nil {
		return ErrStoreUnavailable
	}
	res, err := s.Repo.GetByID(ctx, resumeID)
	if err != nil {
		return err
	}
	if res.Status == StatusParsed {
		return nil
	}

	start := time.Now()
	text, err := extract.ExtractText(ctx, s.Store, res.StorageKey, res.MimeType, res.FileName)
	var extractErr *extract.DocumentError
	if err != nil && !errors.As(err, &extractErr) {
		return fmt.Errorf("parse resume %s: %w", res.ID, err)
	}
	parsedAt := s.now()
	res.ParsedAt = &parsedAt
	if extractErr != nil {
		res.Status = StatusFailed
		res.Error = extractErr.Error()
		res.ExtractedText = ""
		res.Skills = []string{}
	} else {
		res.Status = StatusParsed
		res.Error = ""
		res.ExtractedText = text
		res.Skills = skills.Extract(text)
	}
	if err := s.Repo.SaveParseResult(ctx, res); err != nil {
		return err
	}

	elapsed := time.Since(start)
	metrics.IncResumeParsed(extractErr == nil)
	metrics.ObserveParseDurationMs(float64(elapsed.Milliseconds()))
	fields := map[string]any{
		"resume_id":   res.ID,
		"status":      string(res.Status),
		"skills":      len(res.Skills),
		"duration_ms": elapsed.Milliseconds(),
	}
	if extractErr != nil {
		fields["error"] = extractErr
		telemetry.Warn("resume.parse_failed", fields)
		return nil
	}
	telemetry.Info("resume.parsed", fields)
	return nil
}

// ListByUser returns the user's resumes, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Get returns a resume owned by userID.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	res, err := s.Repo.GetByID(ctx, resumeID)
	if err != nil {
		return Resume{}, err
	}
	if res.UserID != userID {
		return Resume{}, ErrForbidden
	}
	return res, nil
}

// Delete removes the record and its stored file.
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	res, err := s.Get(ctx, userID, resumeID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, res.ID); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, res.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("resume.blob_delete_failed", map[string]any{"resume_id": res.ID, "error": err})
	}
	telemetry.Info("resume.deleted", map[string]any{"resume_id": res.ID, "user_id": userID})
	return nil
}

// documentMime prefers the sniffed type and falls back to the extension when
// the sniff is not one of the supported document types.
func documentMime(sniffed, fileName string) string {
	switch mime := extract.NormalizeMimeType(sniffed, fileName, nil); mime {
	case extract.MimePDF, extract.MimeDOCX, extract.MimeDOC:
		return mime
	}
	return extract.NormalizeMimeType("", fileName, nil)
}

func (s *Service) maxBytes() int64 {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return MaxUploadBytes
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
