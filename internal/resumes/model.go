package resumes

import "time"

// Status tracks where a resume is in the parse pipeline.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusParsed     Status = "parsed"
	StatusFailed     Status = "failed"
)

// Resume is an uploaded resume plus whatever text and skills were pulled from it.
type Resume struct {
	ID              string
	UserID          string
	FileName        string
	StorageKey      string
	StorageProvider string
	MimeType        string
	SizeBytes       int64
	ExtractedText   string
	Skills          []string
	Status          Status
	Error           string
	UploadedAt      time.Time
	ParsedAt        *time.Time
}

// Ready reports whether the resume can be matched against a job.
func (r Resume) Ready() bool {
	return r.Status == StatusParsed
}
