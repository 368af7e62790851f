package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applicant-tracker/internal/cache"
	"github.com/jonathan/applicant-tracker/internal/store"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// stubAnalyzer counts calls and delegates to fn.
type stubAnalyzer struct {
	fn    func(ctx context.Context, req AnalysisRequest) Result
	calls atomic.Int32
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req AnalysisRequest) Result {
	s.calls.Add(1)
	return s.fn(ctx, req)
}

func summaryWithRating(rating int) types.AiSummary {
	s := Fallback()
	s.Summary = "Solid candidate."
	s.Recommendations = "Interview."
	s.Rating = rating
	return s
}

func newFixture(t *testing.T) (*store.MemStore, *types.JobListing, *types.Applicant) {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemStore()

	company, err := s.CreateCompany(ctx, &types.Company{Name: "TechCorp"})
	require.NoError(t, err)
	job, err := s.CreateJobListing(ctx, &types.JobListing{
		Title:        "Senior UX Designer",
		Description:  "Design delightful products.",
		Requirements: "Figma, user research",
		Status:       types.JobStatusActive,
		CompanyID:    company.ID,
	})
	require.NoError(t, err)
	applicant, err := s.CreateApplicant(ctx, &types.Applicant{
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		Experience:   6,
		Skills:       []string{"Figma"},
		JobListingID: job.ID,
	})
	require.NoError(t, err)
	return s, job, applicant
}

func TestAnalyzeApplicant_StoresAnalysisAndScore(t *testing.T) {
	ctx := context.Background()
	s, job, applicant := newFixture(t)

	var got AnalysisRequest
	analyzer := &stubAnalyzer{fn: func(_ context.Context, req AnalysisRequest) Result {
		got = req
		return Result{Analysis: summaryWithRating(91)}
	}}
	svc := NewService(s, analyzer, nil)

	analysis, err := svc.AnalyzeApplicant(ctx, applicant.ID, "<p>Jane   Doe</p>")
	require.NoError(t, err)

	assert.NotZero(t, analysis.ID)
	assert.Equal(t, applicant.ID, analysis.ApplicantID)
	assert.Equal(t, 91, analysis.Rating)
	assert.Equal(t, "Jane Doe", got.ResumeText, "resume HTML is normalized")
	assert.Contains(t, got.JobDescription, job.Description)
	assert.Contains(t, got.JobDescription, job.Requirements)

	stored, err := s.GetAiAnalysis(ctx, applicant.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, analysis.ID, stored.ID)

	updated, err := s.GetApplicant(ctx, applicant.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.MatchScore)
	assert.Equal(t, 91, *updated.MatchScore)
}

func TestAnalyzeApplicant_ReanalysisReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	s, _, applicant := newFixture(t)

	rating := 60
	svc := NewService(s, &stubAnalyzer{fn: func(context.Context, AnalysisRequest) Result {
		return Result{Analysis: summaryWithRating(rating)}
	}}, nil)

	first, err := svc.AnalyzeApplicant(ctx, applicant.ID, "resume")
	require.NoError(t, err)
	rating = 75
	second, err := svc.AnalyzeApplicant(ctx, applicant.ID, "resume")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "analysis is a 1:1 upsert")
	assert.Equal(t, 75, second.Rating)
	updated, _ := s.GetApplicant(ctx, applicant.ID)
	assert.Equal(t, 75, *updated.MatchScore)
}

func TestAnalyzeApplicant_FallbackIsNotStored(t *testing.T) {
	ctx := context.Background()
	s, _, applicant := newFixture(t)

	fail := false
	svc := NewService(s, &stubAnalyzer{fn: func(context.Context, AnalysisRequest) Result {
		if fail {
			return fallbackResult(errors.New("timeout"))
		}
		return Result{Analysis: summaryWithRating(82)}
	}}, nil)

	_, err := svc.AnalyzeApplicant(ctx, applicant.ID, "resume")
	require.NoError(t, err)

	fail = true
	analysis, err := svc.AnalyzeApplicant(ctx, applicant.ID, "resume")
	require.NoError(t, err, "upstream failure is absorbed")
	assert.Zero(t, analysis.ID)
	assert.Equal(t, FallbackSummary, analysis.Summary)

	stored, _ := s.GetAiAnalysis(ctx, applicant.ID)
	assert.Equal(t, "Solid candidate.", stored.Summary, "earlier analysis survives")
	updated, _ := s.GetApplicant(ctx, applicant.ID)
	assert.Equal(t, 82, *updated.MatchScore)
}

func TestAnalyzeApplicant_FallbackWithoutHistoryLeavesScoreNil(t *testing.T) {
	ctx := context.Background()
	s, _, applicant := newFixture(t)

	svc := NewService(s, &stubAnalyzer{fn: func(context.Context, AnalysisRequest) Result {
		return fallbackResult(errors.New("unreachable"))
	}}, nil)

	analysis, err := svc.AnalyzeApplicant(ctx, applicant.ID, "resume")
	require.NoError(t, err)
	assert.Equal(t, NeutralRating, analysis.Rating)

	stored, _ := s.GetAiAnalysis(ctx, applicant.ID)
	assert.Nil(t, stored)
	updated, _ := s.GetApplicant(ctx, applicant.ID)
	assert.Nil(t, updated.MatchScore)
}

func TestAnalyzeApplicant_NotFound(t *testing.T) {
	s, _, _ := newFixture(t)
	analyzer := &stubAnalyzer{fn: func(context.Context, AnalysisRequest) Result { return Result{} }}
	svc := NewService(s, analyzer, nil)

	_, err := svc.AnalyzeApplicant(context.Background(), 999, "resume")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, int64(999), nf.ID)
	assert.Equal(t, "applicant 999 not found", nf.Error())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, analyzer.calls.Load())
}

func TestAnalyzeApplicant_ConcurrentCallsShareOneRun(t *testing.T) {
	s, _, applicant := newFixture(t)

	release := make(chan struct{})
	analyzer := &stubAnalyzer{fn: func(context.Context, AnalysisRequest) Result {
		<-release
		return Result{Analysis: summaryWithRating(70)}
	}}
	svc := NewService(s, analyzer, cache.NewLocker(cache.NewMemory(), time.Minute, zerolog.Nop()))

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*types.AiAnalysis, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.AnalyzeApplicant(context.Background(), applicant.ID, "resume")
		}(i)
	}

	require.Eventually(t, func() bool { return analyzer.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), analyzer.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 70, results[i].Rating)
	}
	// callers get independent copies
	results[0].Summary = "mutated"
	assert.NotEqual(t, "mutated", results[1].Summary)
}

func TestAnalyzeApplicant_LockHeldElsewhere(t *testing.T) {
	ctx := context.Background()
	s, _, applicant := newFixture(t)
	mem := cache.NewMemory()
	svc := NewService(s, &stubAnalyzer{fn: func(context.Context, AnalysisRequest) Result {
		return Result{Analysis: summaryWithRating(66)}
	}}, cache.NewLocker(mem, time.Minute, zerolog.Nop()))

	lockKey := fmt.Sprintf("lock:analysis:%d", applicant.ID)
	ok, err := mem.SetIfNotExists(ctx, lockKey, "other-process", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.AnalyzeApplicant(ctx, applicant.ID, "resume")
	assert.ErrorIs(t, err, ErrAnalysisInProgress)

	stored, err := s.UpsertAiAnalysis(ctx, &types.AiAnalysis{ApplicantID: applicant.ID, AiSummary: summaryWithRating(40)})
	require.NoError(t, err)

	analysis, err := svc.AnalyzeApplicant(ctx, applicant.ID, "resume")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, analysis.ID)
	assert.Equal(t, 40, analysis.Rating)

	require.NoError(t, mem.Delete(ctx, lockKey))
	analysis, err = svc.AnalyzeApplicant(ctx, applicant.ID, "resume")
	require.NoError(t, err)
	assert.Equal(t, 66, analysis.Rating)
}

func TestAnalyzeResume_NormalizesAndNeverFails(t *testing.T) {
	var got AnalysisRequest
	svc := NewService(store.NewMemStore(), &stubAnalyzer{fn: func(_ context.Context, req AnalysisRequest) Result {
		got = req
		return fallbackResult(errors.New("down"))
	}}, nil)

	summary := svc.AnalyzeResume(context.Background(), "<ul><li>Figma</li></ul>", "  Designer  ")

	assert.Equal(t, "- Figma", got.ResumeText)
	assert.Equal(t, "Designer", got.JobDescription)
	assert.Equal(t, Fallback(), summary)
}

func TestGetAnalysis(t *testing.T) {
	ctx := context.Background()
	s, _, applicant := newFixture(t)
	svc := NewService(s, &stubAnalyzer{}, nil)

	_, err := svc.GetAnalysis(ctx, applicant.ID)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))

	_, err = s.UpsertAiAnalysis(ctx, &types.AiAnalysis{ApplicantID: applicant.ID, AiSummary: summaryWithRating(55)})
	require.NoError(t, err)

	analysis, err := svc.GetAnalysis(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, 55, analysis.Rating)
}

func TestLockTTL(t *testing.T) {
	tests := []struct {
		name        string
		callTimeout time.Duration
		want        time.Duration
	}{
		{name: "configured timeout", callTimeout: 30 * time.Second, want: 75 * time.Second},
		{name: "short timeout", callTimeout: 5 * time.Second, want: 25 * time.Second},
		{name: "unset uses default", callTimeout: 0, want: 75 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LockTTL(tt.callTimeout)
			assert.Equal(t, tt.want, got)
			assert.Greater(t, got, 2*tt.callTimeout, "lock must outlive both model calls")
		})
	}
}
