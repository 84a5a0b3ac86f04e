package textanalysis

import "regexp"

// skillCategories fixes the iteration order of technicalSkills.
var skillCategories = []string{
	"programming_languages",
	"ml_frameworks",
	"deep_learning",
	"data_science",
	"agentic_ai",
	"cloud_platforms",
}

var technicalSkills = map[string][]string{
	"programming_languages": {"python", "java", "javascript", "c++", "sql", "scala", "golang", "rust", "swift"},
	"ml_frameworks":         {"tensorflow", "pytorch", "keras", "scikit-learn", "xgboost", "lightgbm", "pandas", "numpy"},
	"deep_learning":         {"neural networks", "cnn", "rnn", "lstm", "transformer", "bert", "gpt", "attention mechanism"},
	"data_science":          {"statistics", "machine learning", "data analysis", "data visualization", "etl", "data mining"},
	"agentic_ai": {
		"prompt engineering", "agent systems", "multi-agent coordination", "llm", "chain of thought",
		"reinforcement learning", "autonomous systems", "ai workflow automation",
	},
	"cloud_platforms": {"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "ci/cd"},
}

var skillVariations = map[string][]string{
	"python":           {"python3", "python 3"},
	"javascript":       {"node.js", "nodejs"},
	"golang":           {"go developer", "go programming"},
	"machine learning": {"machine-learning"},
	"scikit-learn":     {"sklearn"},
	"kubernetes":       {"k8s"},
}

// protectedAttributes fixes the iteration order of protectedPatterns.
var protectedAttributes = []string{"gender", "age", "race", "religion", "nationality", "disability"}

var protectedPatterns = map[string][]*regexp.Regexp{
	"gender": {regexp.MustCompile(`\b(male|female|man|woman|he|she|him|her)\b`)},
	"age": {
		regexp.MustCompile(`\b\d{2}\s*(years?|yrs?)\s*old\b`),
		regexp.MustCompile(`\b(teen|young|middle-aged|senior citizen)\b`),
	},
	"race":        {regexp.MustCompile(`\b(caucasian|african american|asian|hispanic|latino|black|white)\b`)},
	"religion":    {regexp.MustCompile(`\b(christian|muslim|jewish|hindu|buddhist|catholic)\b`)},
	"nationality": {regexp.MustCompile(`\b(american|british|indian|chinese|japanese|german)\b`)},
	"disability":  {regexp.MustCompile(`\b(disabled|disability|wheelchair|able-bodied)\b`)},
}

// ProtectedAttributes lists every attribute name DetectProtectedAttributes may return.
func ProtectedAttributes() []string {
	out := make([]string, len(protectedAttributes))
	copy(out, protectedAttributes)
	return out
}
