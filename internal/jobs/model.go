package jobs

import (
	"strings"
	"time"
)

// Job is a posting on the job board.
type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"requiredSkills"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	MinExperience  *int      `json:"minExperience,omitempty"`
	Qualifications []string  `json:"qualifications"`
	PostedBy       string    `json:"postedBy"`
	PostedAt       time.Time `json:"postedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	IsActive       bool      `json:"isActive"`
}

// Filter narrows the active job list. Empty fields match everything.
type Filter struct {
	Query    string
	Skill    string
	Location string
}

func (f Filter) normalized() Filter {
	return Filter{
		Query:    strings.ToLower(strings.TrimSpace(f.Query)),
		Skill:    strings.ToLower(strings.TrimSpace(f.Skill)),
		Location: strings.ToLower(strings.TrimSpace(f.Location)),
	}
}

// Matches applies the filter in memory.
func (f Filter) Matches(j Job) bool {
	n := f.normalized()
	if n.Query != "" {
		hay := strings.ToLower(j.Title + "\n" + j.Company + "\n" + j.Description)
		if !strings.Contains(hay, n.Query) {
			return false
		}
	}
	if n.Location != "" && !strings.Contains(strings.ToLower(j.Location), n.Location) {
		return false
	}
	if n.Skill != "" {
		for _, s := range j.RequiredSkills {
			if strings.ToLower(s) == n.Skill {
				return true
			}
		}
		return false
	}
	return true
}
