// Package scoring evaluates resumes against job postings in two stages: requirement extraction,
// then scoring against the extracted requirement buckets. An upstream failure never reaches the
// caller; it is replaced by a fallback analysis.
package scoring

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/parsing"
	"github.com/jonathan/applicant-tracker/internal/prompts"
	"github.com/jonathan/applicant-tracker/internal/schemas"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// Output limits and defaults
const (
	MaxStrengths    = 5
	MaxWeaknesses   = 3
	MaxSkillRating  = 10
	MaxRating       = 100
	NeutralRating   = 50
	DefaultSummary  = "No summary provided."
	FallbackSummary = "Unable to analyze resume due to an error."
	FallbackAdvice  = "Please retry the analysis."
)

// AnalysisRequest is one resume to evaluate against one job.
type AnalysisRequest struct {
	ResumeText     string
	JobDescription string
}

// Result is the outcome of Analyze. Analysis is always complete; when Fallback is set it is the
// placeholder analysis and Err holds the absorbed failure.
type Result struct {
	Analysis types.AiSummary
	Fallback bool
	Err      error
}

// Analyzer runs the two-stage evaluation.
type Analyzer struct {
	client  llm.Client
	timeout time.Duration
}

// NewAnalyzer creates an Analyzer. A non-positive timeout uses llm.DefaultCallTimeout.
func NewAnalyzer(client llm.Client, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = llm.DefaultCallTimeout
	}
	return &Analyzer{client: client, timeout: timeout}
}

// Analyze evaluates a resume. It always returns a complete analysis.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) Result {
	if a.client == nil {
		return fallbackResult(errors.New("no text-generation backend configured"))
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return fallbackResult(errors.New("resume text is empty"))
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return fallbackResult(errors.New("job description is empty"))
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	requirements, err := parsing.ExtractRequirements(reqCtx, a.client, req.JobDescription)
	cancel()
	if err != nil {
		return fallbackResult(err)
	}

	messages, err := buildAnalyzeMessages(req, requirements)
	if err != nil {
		return fallbackResult(err)
	}

	scoreCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	raw, err := a.client.GenerateJSON(scoreCtx, messages, llm.TierStandard)
	if err != nil {
		return fallbackResult(&parsing.APICallError{Message: "failed to score resume", Cause: err})
	}

	summary, err := ParseAnalysis(raw)
	if err != nil {
		return fallbackResult(err)
	}
	return Result{Analysis: summary}
}

func buildAnalyzeMessages(req AnalysisRequest, requirements *types.JobRequirements) ([]llm.Message, error) {
	system, err := prompts.Render("scoring.json", "analyze-system", nil)
	if err != nil {
		return nil, err
	}
	user, err := prompts.Render("scoring.json", "analyze-user", map[string]string{
		"JobDescription": req.JobDescription,
		"Requirements":   parsing.FormatRequirements(requirements),
		"ResumeText":     req.ResumeText,
	})
	if err != nil {
		return nil, err
	}
	return []llm.Message{llm.System(system), llm.User(user)}, nil
}

// modelAnalysis mirrors the model payload. Numbers arrive as floats and optional
// fields as pointers so absence can be told apart from zero.
type modelAnalysis struct {
	Summary         *string                          `json:"summary"`
	Strengths       []string                         `json:"strengths"`
	Weaknesses      []string                         `json:"weaknesses"`
	Skills          map[string]float64               `json:"skills"`
	Experience      map[string]types.ExperienceEntry `json:"experience"`
	Rating          *float64                         `json:"rating"`
	Recommendations string                           `json:"recommendations"`
}

// ParseAnalysis validates a model payload and normalizes it into a complete AiSummary.
// An empty payload yields the defaults.
func ParseAnalysis(raw string) (types.AiSummary, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		cleaned = "{}"
	}
	if err := schemas.Validate(schemas.AiSummary, cleaned); err != nil {
		return types.AiSummary{}, &parsing.ParseError{Message: "analysis payload does not match schema", Cause: err}
	}

	var m modelAnalysis
	if err := llm.DecodeObject(cleaned, &m); err != nil {
		return types.AiSummary{}, &parsing.ParseError{Message: "failed to parse analysis JSON", Cause: err}
	}
	return normalize(m), nil
}

func normalize(m modelAnalysis) types.AiSummary {
	out := types.AiSummary{
		Summary:         DefaultSummary,
		Strengths:       limit(cleanPhrases(m.Strengths), MaxStrengths),
		Weaknesses:      limit(cleanPhrases(m.Weaknesses), MaxWeaknesses),
		Skills:          make(map[string]int, len(m.Skills)),
		Experience:      make(map[string]types.ExperienceEntry, len(m.Experience)),
		Rating:          NeutralRating,
		Recommendations: strings.TrimSpace(m.Recommendations),
	}

	if m.Summary != nil && strings.TrimSpace(*m.Summary) != "" {
		out.Summary = strings.TrimSpace(*m.Summary)
	}
	if m.Rating != nil {
		out.Rating = clamp(int(math.Round(*m.Rating)), 0, MaxRating)
	}

	for name, rating := range m.Skills {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out.Skills[name] = clamp(int(math.Round(rating)), 0, MaxSkillRating)
	}

	for title, entry := range m.Experience {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		out.Experience[title] = types.ExperienceEntry{
			Company:    strings.TrimSpace(entry.Company),
			Highlights: cleanPhrases(entry.Highlights),
		}
	}
	return out
}

// Fallback returns the placeholder analysis used when the backend cannot produce one.
func Fallback() types.AiSummary {
	return types.AiSummary{
		Summary:         FallbackSummary,
		Strengths:       []string{},
		Weaknesses:      []string{},
		Skills:          map[string]int{},
		Experience:      map[string]types.ExperienceEntry{},
		Rating:          NeutralRating,
		Recommendations: FallbackAdvice,
	}
}

func fallbackResult(err error) Result {
	return Result{Analysis: Fallback(), Fallback: true, Err: err}
}

func cleanPhrases(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
