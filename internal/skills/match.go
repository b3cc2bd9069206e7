package skills

import (
	"fmt"
	"math"
	"strings"
)

// Extract reports every vocabulary keyword that appears in text as a literal,
// case-insensitive substring. "Go" matches "good"; that is intended.
func Extract(text string) []string {
	return ExtractFrom(text, Vocabulary)
}

// ExtractFrom is Extract against a caller-supplied vocabulary.
func ExtractFrom(text string, vocabulary []string) []string {
	found := make([]string, 0)
	lower := strings.ToLower(text)
	if lower == "" {
		return found
	}
	for _, skill := range vocabulary {
		if strings.Contains(lower, strings.ToLower(skill)) {
			found = append(found, skill)
		}
	}
	return found
}

// Result is the outcome of matching one resume against one job's requirements.
type Result struct {
	MatchPercentage float64
	MatchedSkills   []string
	MissingSkills   []string
}

// Match compares the skills extracted from a resume against a job's required
// skills. Only vocabulary hits count; the resume text itself is not searched.
func Match(resumeSkills []string, jobSkills []string) Result {
	required := Normalize(jobSkills)
	res := Result{
		MatchedSkills: make([]string, 0, len(required)),
		MissingSkills: make([]string, 0),
	}
	if len(required) == 0 {
		return res
	}

	have := make(map[string]struct{}, len(resumeSkills))
	for _, s := range resumeSkills {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	for _, skill := range required {
		if _, ok := have[strings.ToLower(skill)]; ok {
			res.MatchedSkills = append(res.MatchedSkills, skill)
			continue
		}
		res.MissingSkills = append(res.MissingSkills, skill)
	}

	res.MatchPercentage = Percentage(len(res.MatchedSkills), len(res.MissingSkills))
	return res
}

// Percentage returns matched / (matched + missing) * 100 rounded to two
// decimals, and 0 when there is nothing to match.
func Percentage(matched, missing int) float64 {
	if matched < 0 {
		matched = 0
	}
	if missing < 0 {
		missing = 0
	}
	total := matched + missing
	if total == 0 {
		return 0
	}
	pct := float64(matched) / float64(total) * 100
	return math.Round(pct*100) / 100
}

// Normalize trims the list, drops blanks and removes case-insensitive
// duplicates keeping the first spelling.
func Normalize(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Suggestions builds the advice list shown next to a match result.
func Suggestions(missing []string, minExperience *int) []string {
	out := make([]string, 0, len(missing)+1)
	for _, skill := range missing {
		out = append(out, "Consider learning or improving: "+skill)
	}
	if minExperience != nil && *minExperience > 0 {
		out = append(out, fmt.Sprintf("Gain at least %d years of relevant experience", *minExperience))
	}
	return out
}
