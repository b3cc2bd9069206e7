package analyses

import "time"

// Analysis is a stored match of one resume against one job.
type Analysis struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	ResumeID         string    `json:"resumeId"`
	JobID            string    `json:"jobId"`
	JobTitle         string    `json:"jobTitle"`
	MatchPercentage  float64   `json:"matchPercentage"`
	MatchedSkills    []string  `json:"matchedSkills"`
	MissingSkills    []string  `json:"missingSkills"`
	SkillSuggestions []string  `json:"skillSuggestions"`
	ResumeText       string    `json:"resumeText,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}
