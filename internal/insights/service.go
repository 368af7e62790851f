// Package insights computes pool-level statistics for job listings and asks the model to
// narrate them. Statistics are always returned; narratives are cached and fall back to
// placeholders when the model is unavailable.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonathan/applicant-tracker/internal/cache"
	"github.com/jonathan/applicant-tracker/internal/ingestion"
	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/parsing"
	"github.com/jonathan/applicant-tracker/internal/prompts"
	"github.com/jonathan/applicant-tracker/internal/schemas"
	"github.com/jonathan/applicant-tracker/internal/store"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// Placeholder texts
const (
	SkillGapPlaceholder = "Unable to generate skill gap analysis due to an error. Please try again."
	InsightsPlaceholder = "Unable to generate application insights due to an error. Please try again."
)

// NotFoundError reports an unknown job listing.
type NotFoundError struct {
	JobID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job listing %d not found", e.JobID)
}

func (e *NotFoundError) Is(target error) bool { return target == store.ErrNotFound }

// Options tune a Service.
type Options struct {
	// CacheTTL is how long narratives are kept. Non-positive means cache.DefaultTTL.
	CacheTTL time.Duration
	// CallTimeout bounds each model call. Non-positive means llm.DefaultCallTimeout.
	CallTimeout time.Duration
}

// Service computes job insights.
type Service struct {
	store   store.Store
	client  llm.Client
	cache   cache.Cache
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

// NewService creates a Service. A nil client always yields placeholders; a nil cache disables caching.
func NewService(s store.Store, client llm.Client, c cache.Cache, opts Options) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = llm.DefaultCallTimeout
	}
	return &Service{
		store:   s,
		client:  client,
		cache:   c,
		ttl:     opts.CacheTTL,
		timeout: opts.CallTimeout,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for trends. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// skillGapNarrative is the model part of a SkillGapAnalysis.
type skillGapNarrative struct {
	CriticalGaps []struct {
		Skill    string  `json:"skill"`
		Coverage float64 `json:"coverage"`
	} `json:"criticalGaps"`
	SemanticMatches  []types.SemanticMatch `json:"semanticMatches"`
	Recommendations  string                `json:"recommendations"`
	SourcingStrategy string                `json:"sourcingStrategy"`
}

// SkillGap returns the skill coverage of the job's applicant pool with a narrative on its gaps.
func (s *Service) SkillGap(ctx context.Context, jobID int64) (*types.SkillGapAnalysis, error) {
	job, pool, err := s.loadPool(ctx, jobID)
	if err != nil {
		return nil, err
	}

	counts := store.SkillCounts(pool)
	result := &types.SkillGapAnalysis{
		Skills:           SkillCoverage(counts, len(pool)),
		CriticalGaps:     []types.CriticalGap{},
		SemanticMatches:  []types.SemanticMatch{},
		Recommendations:  SkillGapPlaceholder,
		SourcingStrategy: SkillGapPlaceholder,
	}

	distribution := formatDistribution(store.Distribution(counts), len(pool))
	key := fmt.Sprintf("skillgap:%d:%s", jobID, ingestion.ContentHash(jobFingerprint(job)+distribution))

	var narrative types.SkillGapAnalysis
	if hit, err := s.cache.GetJSON(ctx, key, &narrative); err == nil && hit {
		narrative.Skills = result.Skills
		return &narrative, nil
	}

	raw, err := s.generate(ctx, "skill-gap", map[string]string{
		"JobTitle":        job.Title,
		"JobDescription":  job.Description,
		"JobRequirements": job.Requirements,
		"PoolSize":        fmt.Sprint(len(pool)),
		"Distribution":    distribution,
	})
	if err == nil {
		err = parseSkillGap(raw, result)
	}
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("operation", "skill_gap").
			Int64("job_id", jobID).
			Msg("upstream failure, returning placeholder narrative")
		return result, nil
	}

	if err := s.cache.SetJSON(ctx, key, result, s.ttl); err != nil {
		logger.FromContext(ctx).Debug().Err(err).Str("key", key).Msg("failed to cache skill gap narrative")
	}
	return result, nil
}

func parseSkillGap(raw string, into *types.SkillGapAnalysis) error {
	if err := schemas.Validate(schemas.SkillGap, orEmpty(raw)); err != nil {
		return &parsing.ParseError{Message: "skill gap payload does not match schema", Cause: err}
	}
	var n skillGapNarrative
	if err := llm.DecodeObject(raw, &n); err != nil {
		return &parsing.ParseError{Message: "failed to parse skill gap JSON", Cause: err}
	}

	for _, g := range n.CriticalGaps {
		if skill := strings.TrimSpace(g.Skill); skill != "" {
			into.CriticalGaps = append(into.CriticalGaps, types.CriticalGap{
				Skill:    skill,
				Coverage: clampPercent(int(math.Round(g.Coverage))),
			})
		}
	}
	for _, m := range n.SemanticMatches {
		m.Requirement = strings.TrimSpace(m.Requirement)
		m.ApplicantSkill = strings.TrimSpace(m.ApplicantSkill)
		if m.Requirement != "" && m.ApplicantSkill != "" {
			into.SemanticMatches = append(into.SemanticMatches, m)
		}
	}
	if r := strings.TrimSpace(n.Recommendations); r != "" {
		into.Recommendations = r
	}
	if r := strings.TrimSpace(n.SourcingStrategy); r != "" {
		into.SourcingStrategy = r
	}
	return nil
}

// ApplicationInsights returns pipeline statistics, a narrative and the monthly trend of a job.
func (s *Service) ApplicationInsights(ctx context.Context, jobID int64) (*types.ApplicationInsights, error) {
	job, pool, err := s.loadPool(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result := &types.ApplicationInsights{
		Stats: Stats(pool),
		Insights: types.InsightNarrative{
			Summary:         InsightsPlaceholder,
			Highlights:      []string{},
			Recommendations: InsightsPlaceholder,
		},
		Trends: MonthlyTrend(pool, s.now()),
	}

	statsJSON, err := json.MarshalIndent(result.Stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode stats: %w", err)
	}
	key := fmt.Sprintf("insights:%d:%s", jobID, ingestion.ContentHash(jobFingerprint(job)+string(statsJSON)))

	var cached types.InsightNarrative
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		result.Insights = cached
		return result, nil
	}

	raw, err := s.generate(ctx, "insights", map[string]string{
		"JobTitle":        job.Title,
		"JobRequirements": job.Requirements,
		"Stats":           string(statsJSON),
	})
	if err == nil {
		err = parseInsights(raw, &result.Insights)
	}
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("operation", "application_insights").
			Int64("job_id", jobID).
			Msg("upstream failure, returning placeholder narrative")
		return result, nil
	}

	if err := s.cache.SetJSON(ctx, key, result.Insights, s.ttl); err != nil {
		logger.FromContext(ctx).Debug().Err(err).Str("key", key).Msg("failed to cache insights narrative")
	}
	return result, nil
}

func parseInsights(raw string, into *types.InsightNarrative) error {
	if err := schemas.Validate(schemas.Insights, orEmpty(raw)); err != nil {
		return &parsing.ParseError{Message: "insights payload does not match schema", Cause: err}
	}
	var n types.InsightNarrative
	if err := llm.DecodeObject(raw, &n); err != nil {
		return &parsing.ParseError{Message: "failed to parse insights JSON", Cause: err}
	}
	if v := strings.TrimSpace(n.Summary); v != "" {
		into.Summary = v
	}
	if v := strings.TrimSpace(n.Recommendations); v != "" {
		into.Recommendations = v
	}
	for _, h := range n.Highlights {
		if h = strings.TrimSpace(h); h != "" {
			into.Highlights = append(into.Highlights, h)
		}
	}
	return nil
}

// DashboardMetrics returns the headline numbers across every job.
func (s *Service) DashboardMetrics(ctx context.Context) (*types.DashboardMetrics, error) {
	total, err := s.store.CountApplicants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count applicants: %w", err)
	}
	topTier, err := s.store.CountApplicantsByMatchScore(ctx, TopTierScore)
	if err != nil {
		return nil, fmt.Errorf("failed to count top tier applicants: %w", err)
	}
	waitlist, err := s.store.CountApplicantsByStatus(ctx, types.StatusNew)
	if err != nil {
		return nil, fmt.Errorf("failed to count waitlisted applicants: %w", err)
	}
	return &types.DashboardMetrics{
		TotalApplicants:   total,
		TopTierCount:      topTier,
		TopTierPercentage: percent(topTier, total),
		WaitlistCount:     waitlist,
	}, nil
}

// ApplicationTrends returns applications per weekday, for one job or for all when jobID is nil.
func (s *Service) ApplicationTrends(ctx context.Context, jobID *int64) ([]types.NamedValue, error) {
	filter := store.ApplicantFilter{}
	if jobID != nil {
		job, err := s.store.GetJobListing(ctx, *jobID)
		if err != nil {
			return nil, fmt.Errorf("failed to load job listing: %w", err)
		}
		if job == nil {
			return nil, &NotFoundError{JobID: *jobID}
		}
		filter.JobListingID = jobID
	}
	pool, err := s.store.ListApplicants(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	return WeekdayTrend(pool), nil
}

// Invalidate drops every cached narrative of a job.
func (s *Service) Invalidate(ctx context.Context, jobID int64) {
	for _, prefix := range []string{"skillgap", "insights"} {
		pattern := fmt.Sprintf("%s:%d:*", prefix, jobID)
		if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
			logger.FromContext(ctx).Debug().Err(err).Str("pattern", pattern).Msg("failed to invalidate cached narratives")
		}
	}
}

func (s *Service) loadPool(ctx context.Context, jobID int64) (*types.JobListing, []types.Applicant, error) {
	job, err := s.store.GetJobListing(ctx, jobID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load job listing: %w", err)
	}
	if job == nil {
		return nil, nil, &NotFoundError{JobID: jobID}
	}
	pool, err := s.store.ListApplicants(ctx, store.ApplicantFilter{JobListingID: &jobID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	return job, pool, nil
}

// generate renders the <name>-system and <name>-user prompts and asks for a JSON object.
func (s *Service) generate(ctx context.Context, name string, data map[string]string) (string, error) {
	if s.client == nil {
		return "", &parsing.APICallError{Message: "no text generation backend configured"}
	}
	system, err := prompts.Render("insights.json", name+"-system", nil)
	if err != nil {
		return "", err
	}
	user, err := prompts.Render("insights.json", name+"-user", data)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.client.GenerateJSON(callCtx, []llm.Message{llm.System(system), llm.User(user)}, llm.TierLite)
	if err != nil {
		return "", &parsing.APICallError{Message: "failed to generate " + name + " narrative", Cause: err}
	}
	return raw, nil
}

func formatDistribution(distribution []types.NamedValue, poolSize int) string {
	if len(distribution) == 0 {
		return "(no skills listed)"
	}
	var b strings.Builder
	for _, d := range distribution {
		fmt.Fprintf(&b, "- %s: %d%%\n", d.Name, percent(d.Value, poolSize))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// jobFingerprint changes whenever the job text the narratives are based on changes.
func jobFingerprint(job *types.JobListing) string {
	return job.Title + "\x00" + job.Description + "\x00" + job.Requirements + "\x00"
}

func orEmpty(raw string) string {
	raw = llm.CleanJSONBlock(raw)
	if raw == "" {
		return "{}"
	}
	return raw
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
