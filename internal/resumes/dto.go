package resumes

import "time"

type ResumeResponse struct {
	ID            string     `json:"id"`
	FileName      string     `json:"fileName"`
	MimeType      string     `json:"mimeType"`
	SizeBytes     int64      `json:"sizeBytes"`
	Status        Status     `json:"status"`
	Skills        []string   `json:"skills"`
	ExtractedText string     `json:"extractedText,omitempty"`
	Error         string     `json:"error,omitempty"`
	UploadedAt    time.Time  `json:"uploadedAt"`
	ParsedAt      *time.Time `json:"parsedAt,omitempty"`
}

func toResponse(r Resume, withText bool) ResumeResponse {
	resp := ResumeResponse{
		ID:         r.ID,
		FileName:   r.FileName,
		MimeType:   r.MimeType,
		SizeBytes:  r.SizeBytes,
		Status:     r.Status,
		Skills:     r.Skills,
		Error:      r.Error,
		UploadedAt: r.UploadedAt,
		ParsedAt:   r.ParsedAt,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if withText {
		resp.ExtractedText = r.ExtractedText
	}
	return resp
}
