package skills

// Vocabulary is the fixed keyword list that resumes are scanned against.
// Order matters: extracted skills are reported in this order.
var Vocabulary = []string{
	"Java", "Python", "JavaScript", "React", "Angular", "Vue", "Node.js",
	"Spring Boot", "Django", "Flask", "Express", "SQL", "MySQL", "PostgreSQL",
	"MongoDB", "AWS", "Azure", "Docker", "Kubernetes", "Git", "GitHub",
	"HTML", "CSS", "Bootstrap", "TypeScript", "REST API", "GraphQL",
	"Machine Learning", "Data Science", "TensorFlow", "PyTorch",
	"C++", "C#", ".NET", "PHP", "Ruby", "Go", "Rust",
	"Agile", "Scrum", "DevOps", "CI/CD", "Jenkins", "Jira",
}
