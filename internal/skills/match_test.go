package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIsCaseInsensitiveAndOrdered(t *testing.T) {
	text := "Built services in PYTHON and docker; deployed on aws with kubernetes."

	got := Extract(text)

	assert.Equal(t, []string{"Python", "AWS", "Docker", "Kubernetes"}, got)
}

func TestExtractIsLiteralSubstring(t *testing.T) {
	got := Extract("A good javascript developer")

	// "Go" hits "good" and "Java" hits "javascript"; the scan does no tokenising.
	assert.Contains(t, got, "Go")
	assert.Contains(t, got, "Java")
	assert.Contains(t, got, "JavaScript")
}

func TestExtractEmptyText(t *testing.T) {
	got := Extract("")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractSymbolKeywords(t *testing.T) {
	got := Extract("Worked with c++, C# and .net pipelines using ci/cd")
	assert.Subset(t, got, []string{"C++", "C#", ".NET", "CI/CD"})
}

func TestMatchComputesPercentage(t *testing.T) {
	resumeText := "Python developer with Docker and SQL experience"
	resumeSkills := Extract(resumeText)

	res := Match(resumeSkills, []string{"Python", "Docker", "Kubernetes"})

	assert.Equal(t, []string{"Python", "Docker"}, res.MatchedSkills)
	assert.Equal(t, []string{"Kubernetes"}, res.MissingSkills)
	assert.Equal(t, 66.67, res.MatchPercentage)
}

func TestMatchEmptyJobSkillsIsZero(t *testing.T) {
	res := Match([]string{"Python"}, nil)

	assert.Equal(t, 0.0, res.MatchPercentage)
	assert.Empty(t, res.MatchedSkills)
	assert.Empty(t, res.MissingSkills)
}

func TestMatchDeduplicatesJobSkills(t *testing.T) {
	res := Match([]string{"Python"}, []string{"python", "Python ", " ", "PYTHON"})

	assert.Equal(t, []string{"python"}, res.MatchedSkills)
	assert.Equal(t, 100.0, res.MatchPercentage)
}

func TestMatchIgnoresSkillsOutsideVocabulary(t *testing.T) {
	text := "Experienced in Terraform and strong communication"

	res := Match(Extract(text), []string{"Terraform", "R", "C"})

	assert.Empty(t, res.MatchedSkills)
	assert.Equal(t, []string{"Terraform", "R", "C"}, res.MissingSkills)
	assert.Equal(t, 0.0, res.MatchPercentage)
}

func TestMatchWithoutResumeSkillsIsZero(t *testing.T) {
	res := Match(nil, []string{"Python", "Docker"})

	assert.Empty(t, res.MatchedSkills)
	assert.Equal(t, 0.0, res.MatchPercentage)
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	res := Match([]string{"React", "Go"}, []string{"react", "go", "rust"})

	assert.Equal(t, []string{"react", "go"}, res.MatchedSkills)
	assert.Equal(t, []string{"rust"}, res.MissingSkills)
	assert.Equal(t, 66.67, res.MatchPercentage)
}

func TestPercentageBounds(t *testing.T) {
	tests := []struct {
		name    string
		matched int
		missing int
		want    float64
	}{
		{name: "none", matched: 0, missing: 0, want: 0},
		{name: "all", matched: 4, missing: 0, want: 100},
		{name: "nothing matched", matched: 0, missing: 3, want: 0},
		{name: "third", matched: 1, missing: 2, want: 33.33},
		{name: "negative input", matched: -1, missing: 2, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentage(tt.matched, tt.missing)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestSuggestions(t *testing.T) {
	years := 3
	got := Suggestions([]string{"Go", "Rust"}, &years)

	assert.Equal(t, []string{
		"Consider learning or improving: Go",
		"Consider learning or improving: Rust",
		"Gain at least 3 years of relevant experience",
	}, got)

	zero := 0
	assert.Empty(t, Suggestions(nil, &zero))
	assert.Empty(t, Suggestions(nil, nil))
}
