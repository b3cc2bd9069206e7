package jobs

import (
	"strings"

	"jobfit-backend/internal/skills"
)

// Input is the writable part of a job posting.
type Input struct {
	Title          string
	Description    string
	RequiredSkills []string
	Company        string
	Location       string
	MinExperience  *int
	Qualifications []string
}

// Normalize trims text fields and cleans the skill and qualification lists.
func (in Input) Normalize() Input {
	out := Input{
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Company:        strings.TrimSpace(in.Company),
		Location:       strings.TrimSpace(in.Location),
		RequiredSkills: skills.Normalize(in.RequiredSkills),
		Qualifications: skills.Normalize(in.Qualifications),
	}
	if in.MinExperience != nil {
		v := *in.MinExperience
		out.MinExperience = &v
	}
	return out
}

// Validate checks a normalized input.
func (in Input) Validate() error {
	fields := map[string]string{}
	if in.Title == "" {
		fields["title"] = "title is required"
	}
	if in.Description == "" {
		fields["description"] = "description is required"
	}
	if in.Company == "" {
		fields["company"] = "company is required"
	}
	if in.Location == "" {
		fields["location"] = "location is required"
	}
	if len(in.RequiredSkills) == 0 {
		fields["requiredSkills"] = "at least one required skill is needed"
	}
	if in.MinExperience != nil && *in.MinExperience < 0 {
		fields["minExperience"] = "minExperience must not be negative"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
