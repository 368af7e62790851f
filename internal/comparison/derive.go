package comparison

import (
	"fmt"
	"strings"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// Key difference categories
const (
	CategoryExperience      = "experience"
	CategoryEducation       = "education"
	CategoryTechnicalSkills = "technicalSkills"
	CategorySoftSkills      = "softSkills"
)

// Differentiator bounds
const (
	MinDifferentiators = 2
	MaxDifferentiators = 4
)

// Fallback texts
const (
	FallbackDifferentiator = "Error in analysis"
	FallbackRecommendation = "Unable to compare applicants due to an error. Please try again."
)

// Candidate is an applicant with its stored analysis, if any.
type Candidate struct {
	Applicant types.Applicant
	Analysis  *types.AiAnalysis
}

// Slot returns the anonymous name of the candidate at index i.
func Slot(i int) string {
	return fmt.Sprintf("candidate%d", i+1)
}

func score(c Candidate) int {
	if c.Applicant.MatchScore == nil {
		return 0
	}
	return *c.Applicant.MatchScore
}

// Fallback returns the comparison used when nothing can be derived.
func Fallback() types.Comparison {
	return types.Comparison{
		Differentiators: []string{FallbackDifferentiator},
		Recommendation:  FallbackRecommendation,
		KeyDifferences:  map[string]map[string]string{},
	}
}

// Derive builds a comparison from the applicant records alone. It uses whatever fields are
// present: experience years, match scores, skills, education and analysis strengths.
func Derive(candidates []Candidate) types.Comparison {
	if len(candidates) < 2 {
		return Fallback()
	}

	unique := uniqueSkills(candidates)
	var differentiators []string
	differentiators = append(differentiators, experienceDelta(candidates), scoreDelta(candidates))
	if s := specialization(candidates, unique); s != "" {
		differentiators = append(differentiators, s)
	}
	if common := commonSkills(candidates); len(common) > 0 {
		differentiators = append(differentiators, fmt.Sprintf("%s share expertise in %s", everyone(len(candidates)), joinFirst(common, 3)))
	}

	return types.Comparison{
		Differentiators: limit(differentiators, MaxDifferentiators),
		Recommendation:  recommendation(candidates, unique),
		KeyDifferences:  keyDifferences(candidates),
	}
}

func everyone(n int) string {
	if n == 2 {
		return "Both candidates"
	}
	return "All candidates"
}

func experienceDelta(candidates []Candidate) string {
	most, least := 0, 0
	for i, c := range candidates {
		if c.Applicant.Experience > candidates[most].Applicant.Experience {
			most = i
		}
		if c.Applicant.Experience < candidates[least].Applicant.Experience {
			least = i
		}
	}
	diff := candidates[most].Applicant.Experience - candidates[least].Applicant.Experience
	if diff == 0 {
		return everyone(len(candidates)) + " have equal experience"
	}
	if len(candidates) == 2 {
		return fmt.Sprintf("%s has %d more years of experience", candidates[most].Applicant.Name, diff)
	}
	return fmt.Sprintf("%s has %d more years of experience than %s",
		candidates[most].Applicant.Name, diff, candidates[least].Applicant.Name)
}

func scoreDelta(candidates []Candidate) string {
	top, bottom := 0, 0
	for i, c := range candidates {
		if score(c) > score(candidates[top]) {
			top = i
		}
		if score(c) < score(candidates[bottom]) {
			bottom = i
		}
	}
	diff := score(candidates[top]) - score(candidates[bottom])
	if diff == 0 {
		return everyone(len(candidates)) + " have equal match scores"
	}
	if len(candidates) == 2 {
		return fmt.Sprintf("%s has a higher match score by %d points", candidates[top].Applicant.Name, diff)
	}
	return fmt.Sprintf("%s has a higher match score than %s by %d points",
		candidates[top].Applicant.Name, candidates[bottom].Applicant.Name, diff)
}

func specialization(candidates []Candidate, unique [][]string) string {
	if len(candidates) == 2 && len(unique[0]) > 0 && len(unique[1]) > 0 {
		return fmt.Sprintf("%s specializes in %s while %s brings expertise in %s",
			candidates[0].Applicant.Name, joinFirst(unique[0], 2),
			candidates[1].Applicant.Name, joinFirst(unique[1], 2))
	}
	var parts []string
	for i, c := range candidates {
		if len(unique[i]) > 0 {
			parts = append(parts, fmt.Sprintf("%s (%s)", c.Applicant.Name, joinFirst(unique[i], 2)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Unique expertise: " + strings.Join(parts, ", ")
}

func recommendation(candidates []Candidate, unique [][]string) string {
	best, runnerUp := 0, -1
	for i, c := range candidates {
		if score(c) > score(candidates[best]) {
			best = i
		}
	}
	for i, c := range candidates {
		if i == best {
			continue
		}
		if runnerUp < 0 || score(c) > score(candidates[runnerUp]) {
			runnerUp = i
		}
	}

	text := fmt.Sprintf("Based on the analysis, %s appears to be the stronger candidate overall with %d%% match to the job requirements.",
		candidates[best].Applicant.Name, score(candidates[best]))
	if len(unique[runnerUp]) > 0 {
		text += fmt.Sprintf(" However, consider %s if specific skills like %s are more important for this role.",
			candidates[runnerUp].Applicant.Name, joinFirst(unique[runnerUp], 2))
	} else {
		text += fmt.Sprintf(" %s is the closest alternative.", candidates[runnerUp].Applicant.Name)
	}
	return text
}

func keyDifferences(candidates []Candidate) map[string]map[string]string {
	out := map[string]map[string]string{
		CategoryExperience:      {},
		CategoryEducation:       {},
		CategoryTechnicalSkills: {},
		CategorySoftSkills:      {},
	}
	for i, c := range candidates {
		slot := Slot(i)
		a := c.Applicant

		experience := fmt.Sprintf("%d years of professional experience", a.Experience)
		if len(a.Skills) > 0 {
			experience += ", primarily in " + joinFirst(a.Skills, 2)
		}
		out[CategoryExperience][slot] = experience

		out[CategoryEducation][slot] = "Not specified"
		if strings.TrimSpace(a.Education) != "" {
			out[CategoryEducation][slot] = a.Education
		}

		out[CategoryTechnicalSkills][slot] = "No skills listed"
		if len(a.Skills) > 0 {
			out[CategoryTechnicalSkills][slot] = "Proficient in " + strings.Join(a.Skills, ", ")
		}

		out[CategorySoftSkills][slot] = "Not assessed"
		if c.Analysis != nil && len(c.Analysis.Strengths) > 0 {
			out[CategorySoftSkills][slot] = joinFirst(c.Analysis.Strengths, 2)
		}
	}
	return out
}

// uniqueSkills returns, per candidate, the skills no other candidate lists.
func uniqueSkills(candidates []Candidate) [][]string {
	owners := make(map[string]int)
	for _, c := range candidates {
		for _, s := range dedupe(c.Applicant.Skills) {
			owners[s]++
		}
	}
	out := make([][]string, len(candidates))
	for i, c := range candidates {
		for _, s := range dedupe(c.Applicant.Skills) {
			if owners[s] == 1 {
				out[i] = append(out[i], s)
			}
		}
	}
	return out
}

// commonSkills returns skills every candidate lists, in the order of the first candidate.
func commonSkills(candidates []Candidate) []string {
	var out []string
	for _, s := range dedupe(candidates[0].Applicant.Skills) {
		shared := true
		for _, c := range candidates[1:] {
			if !contains(c.Applicant.Skills, s) {
				shared = false
				break
			}
		}
		if shared {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func contains(items []string, want string) bool {
	for _, s := range items {
		if s == want {
			return true
		}
	}
	return false
}

func joinFirst(items []string, n int) string {
	return strings.Join(limit(items, n), ", ")
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
