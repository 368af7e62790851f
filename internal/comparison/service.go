// Package comparison produces head-to-head comparisons of applicants. A deterministic comparison
// is always derived from the records; the model narrative refines it when available.
package comparison

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/parsing"
	"github.com/jonathan/applicant-tracker/internal/prompts"
	"github.com/jonathan/applicant-tracker/internal/schemas"
	"github.com/jonathan/applicant-tracker/internal/store"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// InsufficientCandidatesError is returned when fewer than two distinct applicants are given.
type InsufficientCandidatesError struct {
	Got int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("at least 2 applicants are required for comparison, got %d", e.Got)
}

// NotFoundError reports an applicant id that does not resolve.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("applicant %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == store.ErrNotFound }

// Service compares applicants.
type Service struct {
	store   store.Store
	client  llm.Client
	timeout time.Duration
}

// NewService creates a Service. A nil client yields deterministic comparisons only.
func NewService(s store.Store, client llm.Client, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = llm.DefaultCallTimeout
	}
	return &Service{store: s, client: client, timeout: timeout}
}

// Compare loads the applicants and their analyses and compares them. Duplicate ids count once.
// Input problems are returned as errors; upstream failures are absorbed.
func (s *Service) Compare(ctx context.Context, ids []int64) (*types.Comparison, error) {
	ids = dedupeIDs(ids)
	if len(ids) < 2 {
		return nil, &InsufficientCandidatesError{Got: len(ids)}
	}

	candidates, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	derived := Derive(candidates)
	if s.client == nil {
		return &derived, nil
	}

	narrative, err := s.narrate(ctx, candidates)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("operation", "compare").
			Ints64("applicant_ids", ids).
			Msg("upstream failure, returning derived comparison")
		return &derived, nil
	}

	merged := Merge(derived, narrative, len(candidates))
	return &merged, nil
}

func (s *Service) load(ctx context.Context, ids []int64) ([]Candidate, error) {
	var applicants []types.Applicant
	analyses := make([]*types.AiAnalysis, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		applicants, err = s.store.GetApplicantsByIDs(gctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load applicants: %w", err)
		}
		return nil
	})
	for i, id := range ids {
		g.Go(func() error {
			a, err := s.store.GetAiAnalysis(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load analysis of applicant %d: %w", id, err)
			}
			analyses[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int64]types.Applicant, len(applicants))
	for _, a := range applicants {
		byID[a.ID] = a
	}
	candidates := make([]Candidate, 0, len(ids))
	for i, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, &NotFoundError{ID: id}
		}
		candidates = append(candidates, Candidate{Applicant: a, Analysis: analyses[i]})
	}
	return candidates, nil
}

// candidateView is what the model sees of a candidate. Names and contact details are left out.
type candidateView struct {
	Slot       string           `json:"slot"`
	Experience int              `json:"experienceYears"`
	Education  string           `json:"education,omitempty"`
	Skills     []string         `json:"skills"`
	MatchScore *int             `json:"matchScore,omitempty"`
	Analysis   *types.AiSummary `json:"analysis,omitempty"`
}

func (s *Service) narrate(ctx context.Context, candidates []Candidate) (types.Comparison, error) {
	views := make([]candidateView, len(candidates))
	for i, c := range candidates {
		views[i] = candidateView{
			Slot:       Slot(i),
			Experience: c.Applicant.Experience,
			Education:  c.Applicant.Education,
			Skills:     c.Applicant.Skills,
			MatchScore: c.Applicant.MatchScore,
		}
		if c.Analysis != nil {
			views[i].Analysis = &c.Analysis.AiSummary
		}
	}
	candidatesJSON, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return types.Comparison{}, fmt.Errorf("failed to encode candidates: %w", err)
	}

	jobContext, err := s.jobContext(ctx, candidates)
	if err != nil {
		return types.Comparison{}, err
	}

	system, err := prompts.Render("comparison.json", "compare-system", nil)
	if err != nil {
		return types.Comparison{}, err
	}
	user, err := prompts.Render("comparison.json", "compare-user", map[string]string{
		"JobContext": jobContext,
		"Candidates": string(candidatesJSON),
	})
	if err != nil {
		return types.Comparison{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.client.GenerateJSON(callCtx, []llm.Message{llm.System(system), llm.User(user)}, llm.TierStandard)
	if err != nil {
		return types.Comparison{}, &parsing.APICallError{Message: "failed to compare applicants", Cause: err}
	}
	return ParseComparison(raw)
}

// jobContext describes the listings the candidates applied to.
func (s *Service) jobContext(ctx context.Context, candidates []Candidate) (string, error) {
	seen := make(map[int64]bool)
	var parts []string
	for _, c := range candidates {
		id := c.Applicant.JobListingID
		if seen[id] {
			continue
		}
		seen[id] = true
		job, err := s.store.GetJobListing(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to load job listing %d: %w", id, err)
		}
		if job == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("Title: %s\nRequirements: %s", job.Title, job.Requirements))
	}
	if len(parts) == 0 {
		return "Not specified", nil
	}
	return strings.Join(parts, "\n\n"), nil
}

// ParseComparison validates and decodes a model comparison payload.
func ParseComparison(raw string) (types.Comparison, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		cleaned = "{}"
	}
	if err := schemas.Validate(schemas.Comparison, cleaned); err != nil {
		return types.Comparison{}, &parsing.ParseError{Message: "comparison payload does not match schema", Cause: err}
	}
	var c types.Comparison
	if err := llm.DecodeObject(cleaned, &c); err != nil {
		return types.Comparison{}, &parsing.ParseError{Message: "failed to parse comparison JSON", Cause: err}
	}
	return c, nil
}

// Merge overlays a model comparison on the derived one. Model text wins where present; categories
// and slots the model left out keep their derived values. Differentiators end up between
// MinDifferentiators and MaxDifferentiators when the derived side allows it.
func Merge(derived, model types.Comparison, n int) types.Comparison {
	out := types.Comparison{
		Recommendation: derived.Recommendation,
		KeyDifferences: make(map[string]map[string]string, len(derived.KeyDifferences)),
	}

	var diffs []string
	for _, d := range model.Differentiators {
		if d = strings.TrimSpace(d); d != "" {
			diffs = append(diffs, d)
		}
	}
	for _, d := range derived.Differentiators {
		if len(diffs) >= MinDifferentiators {
			break
		}
		if !contains(diffs, d) {
			diffs = append(diffs, d)
		}
	}
	out.Differentiators = limit(diffs, MaxDifferentiators)
	if out.Differentiators == nil {
		out.Differentiators = []string{}
	}

	if r := strings.TrimSpace(model.Recommendation); r != "" {
		out.Recommendation = r
	}

	valid := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		valid[Slot(i)] = true
	}
	for category, slots := range derived.KeyDifferences {
		out.KeyDifferences[category] = make(map[string]string, len(slots))
		for slot, text := range slots {
			out.KeyDifferences[category][slot] = text
		}
	}
	for category, slots := range model.KeyDifferences {
		for slot, text := range slots {
			if !valid[slot] || strings.TrimSpace(text) == "" {
				continue
			}
			if out.KeyDifferences[category] == nil {
				out.KeyDifferences[category] = make(map[string]string, n)
			}
			out.KeyDifferences[category][slot] = strings.TrimSpace(text)
		}
	}
	return out
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
