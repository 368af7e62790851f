package parsing

import (
	"strings"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":       "Go",
	"go lang":      "Go",
	"javascript":   "JavaScript",
	"js":           "JavaScript",
	"typescript":   "TypeScript",
	"ts":           "TypeScript",
	"k8s":          "Kubernetes",
	"kubernetes":   "Kubernetes",
	"react.js":     "React",
	"reactjs":      "React",
	"vue.js":       "Vue",
	"vuejs":        "Vue",
	"node.js":      "Node.js",
	"nodejs":       "Node.js",
	"postgres":     "PostgreSQL",
	"postgresql":   "PostgreSQL",
	"ui/ux":        "UI/UX Design",
	"ux/ui":        "UI/UX Design",
	"ui/ux design": "UI/UX Design",
	"figma":        "Figma",
	"adobe xd":     "Adobe XD",
	"xd":           "Adobe XD",
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.Join(strings.Fields(skillName), " ")
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	// Short all-caps tokens are acronyms (SQL, AWS, UX)
	if normalized == strings.ToUpper(normalized) {
		if len(normalized) <= 4 || strings.Contains(normalized, " ") {
			return normalized
		}
		return strings.ToUpper(normalized[:1]) + strings.ToLower(normalized[1:])
	}

	// Mixed case is kept as written
	if normalized != lower {
		return normalized
	}

	if !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}
	return normalized
}

// NormalizeSkills normalizes every name and drops empties and case-insensitive duplicates,
// keeping the first occurrence. The result is never nil.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		n := NormalizeSkillName(s)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// normalizeDegreeLevel normalizes degree level strings to standard values
func normalizeDegreeLevel(degree string) string {
	degree = strings.ToLower(strings.TrimSpace(degree))

	switch {
	case strings.Contains(degree, "phd") || strings.Contains(degree, "doctor"):
		return "phd"
	case strings.Contains(degree, "master"):
		return "master"
	case strings.Contains(degree, "bachelor"):
		return "bachelor"
	case strings.Contains(degree, "associate"):
		return "associate"
	case degree == "none" || degree == "n/a":
		return ""
	default:
		return degree
	}
}

// cleanList trims entries and drops empty ones. The result is never nil.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
