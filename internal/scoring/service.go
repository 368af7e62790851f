package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/applicant-tracker/internal/cache"
	"github.com/jonathan/applicant-tracker/internal/ingestion"
	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/parsing"
	"github.com/jonathan/applicant-tracker/internal/store"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// ErrAnalysisInProgress is returned when another process holds the analysis lock of an
// applicant that has no stored analysis yet.
var ErrAnalysisInProgress = errors.New("analysis already in progress")

// lockMargin covers store reads and writes around the model calls of one run.
const lockMargin = 15 * time.Second

// LockTTL returns how long the analysis lock of an applicant is held. A run makes
// two sequential model calls, each bounded by callTimeout.
func LockTTL(callTimeout time.Duration) time.Duration {
	if callTimeout <= 0 {
		callTimeout = llm.DefaultCallTimeout
	}
	return 2*callTimeout + lockMargin
}

// NotFoundError reports an unknown applicant or job listing.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == store.ErrNotFound }

// ResumeAnalyzer is the evaluation step used by Service.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) Result
}

// Service produces and stores analyses for applicants.
type Service struct {
	store    store.Store
	analyzer ResumeAnalyzer
	locker   *cache.Locker
	group    singleflight.Group
}

// NewService creates a Service. A nil locker disables cross-process locking.
func NewService(s store.Store, analyzer ResumeAnalyzer, locker *cache.Locker) *Service {
	return &Service{store: s, analyzer: analyzer, locker: locker}
}

// AnalyzeResume evaluates free text, plain or HTML, without touching the store.
func (s *Service) AnalyzeResume(ctx context.Context, resumeText, jobDescription string) types.AiSummary {
	res := s.analyzer.Analyze(ctx, AnalysisRequest{
		ResumeText:     ingestion.NormalizeDocument(resumeText),
		JobDescription: ingestion.NormalizeDocument(jobDescription),
	})
	if res.Fallback {
		logger.FromContext(ctx).Warn().Err(res.Err).
			Str("operation", "analyze_resume").
			Msg("upstream failure, returning fallback analysis")
	}
	return res.Analysis
}

// AnalyzeApplicant evaluates the resume of an applicant against its job listing, stores the
// analysis and sets the match score. A fallback analysis is returned but not stored, so an
// earlier real analysis survives an outage. Concurrent calls for one applicant share one run.
func (s *Service) AnalyzeApplicant(ctx context.Context, applicantID int64, resumeText string) (*types.AiAnalysis, error) {
	key := strconv.FormatInt(applicantID, 10)
	v, err, _ := s.group.Do(key, func() (any, error) {
		// the shared run outlives any single caller
		return s.analyzeApplicant(context.WithoutCancel(ctx), applicantID, resumeText)
	})
	if err != nil {
		return nil, err
	}
	analysis := *v.(*types.AiAnalysis)
	return &analysis, nil
}

func (s *Service) analyzeApplicant(ctx context.Context, applicantID int64, resumeText string) (*types.AiAnalysis, error) {
	log := logger.FromContext(ctx).With().Int64("applicant_id", applicantID).Logger()

	applicant, err := s.store.GetApplicant(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applicant: %w", err)
	}
	if applicant == nil {
		return nil, &NotFoundError{Entity: "applicant", ID: applicantID}
	}
	job, err := s.store.GetJobListing(ctx, applicant.JobListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job listing: %w", err)
	}
	if job == nil {
		return nil, &NotFoundError{Entity: "job listing", ID: applicant.JobListingID}
	}

	if s.locker != nil {
		unlock, ok := s.locker.TryLock(ctx, "lock:analysis:"+strconv.FormatInt(applicantID, 10))
		if !ok {
			existing, err := s.store.GetAiAnalysis(ctx, applicantID)
			if err != nil {
				return nil, fmt.Errorf("failed to load analysis: %w", err)
			}
			if existing == nil {
				return nil, ErrAnalysisInProgress
			}
			log.Info().Msg("analysis running elsewhere, returning stored analysis")
			return existing, nil
		}
		defer unlock()
	}

	res := s.analyzer.Analyze(ctx, AnalysisRequest{
		ResumeText:     ingestion.NormalizeDocument(resumeText),
		JobDescription: parsing.JobText(job.Description, job.Requirements),
	})
	if res.Fallback {
		log.Warn().Err(res.Err).
			Str("operation", "analyze_applicant").
			Int64("job_id", job.ID).
			Msg("upstream failure, returning fallback analysis without storing it")
		return &types.AiAnalysis{ApplicantID: applicantID, AiSummary: res.Analysis}, nil
	}

	stored, err := s.store.UpsertAiAnalysis(ctx, &types.AiAnalysis{
		ApplicantID: applicantID,
		AiSummary:   res.Analysis,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}
	if _, err := s.store.UpdateApplicantMatchScore(ctx, applicantID, res.Analysis.Rating); err != nil {
		return nil, fmt.Errorf("failed to update match score: %w", err)
	}

	log.Info().Int("rating", res.Analysis.Rating).Msg("applicant analyzed")
	return stored, nil
}

// GetAnalysis returns the stored analysis of an applicant.
func (s *Service) GetAnalysis(ctx context.Context, applicantID int64) (*types.AiAnalysis, error) {
	analysis, err := s.store.GetAiAnalysis(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}
	if analysis == nil {
		return nil, &NotFoundError{Entity: "analysis for applicant", ID: applicantID}
	}
	return analysis, nil
}
