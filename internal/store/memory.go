package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// MemStore is a Store kept in process memory. Ids come from atomic counters and every
// write replaces a whole record under the lock, so concurrent writers are last-write-wins.
type MemStore struct {
	mu         sync.RWMutex
	users      map[int64]*types.User
	companies  map[int64]*types.Company
	jobs       map[int64]*types.JobListing
	applicants map[int64]*types.Applicant
	notes      map[int64]*types.ApplicantNote
	analyses   map[int64]*types.AiAnalysis // keyed by applicant id

	userSeq      atomic.Int64
	companySeq   atomic.Int64
	jobSeq       atomic.Int64
	applicantSeq atomic.Int64
	noteSeq      atomic.Int64
	analysisSeq  atomic.Int64

	now func() time.Time
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:      make(map[int64]*types.User),
		companies:  make(map[int64]*types.Company),
		jobs:       make(map[int64]*types.JobListing),
		applicants: make(map[int64]*types.Applicant),
		notes:      make(map[int64]*types.ApplicantNote),
		analyses:   make(map[int64]*types.AiAnalysis),
		now:        time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *MemStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Users

func (s *MemStore) GetUser(_ context.Context, id int64) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) GetUserByUsername(_ context.Context, username string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemStore) CreateUser(_ context.Context, u *types.User) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return nil, fmt.Errorf("username %q already exists", u.Username)
		}
	}
	cp := *u
	cp.ID = s.userSeq.Add(1)
	s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

// Companies

func (s *MemStore) GetCompany(_ context.Context, id int64) (*types.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) CreateCompany(_ context.Context, c *types.Company) (*types.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.ID = s.companySeq.Add(1)
	s.companies[cp.ID] = &cp
	out := cp
	return &out, nil
}

// Job listings

func (s *MemStore) GetJobListing(_ context.Context, id int64) (*types.JobListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if j, ok := s.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) ListJobListings(_ context.Context) ([]types.JobListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.JobListing, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *MemStore) ListJobListingsByCompany(ctx context.Context, companyID int64) ([]types.JobListing, error) {
	all, err := s.ListJobListings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.JobListing, 0, len(all))
	for _, j := range all {
		if j.CompanyID == companyID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *MemStore) CreateJobListing(_ context.Context, j *types.JobListing) (*types.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *j
	if cp.Status == "" {
		cp.Status = types.JobStatusActive
	}
	now := s.now()
	cp.ID = s.jobSeq.Add(1)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.jobs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemStore) UpdateJobListing(_ context.Context, j *types.JobListing) (*types.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.jobs[j.ID]
	if !ok {
		return nil, nil
	}
	cp := *j
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = s.now()
	s.jobs[cp.ID] = &cp
	out := cp
	return &out, nil
}

// Applicants

func cloneApplicant(a *types.Applicant) types.Applicant {
	cp := *a
	cp.Skills = append([]string(nil), a.Skills...)
	if cp.Skills == nil {
		cp.Skills = []string{}
	}
	if a.MatchScore != nil {
		score := *a.MatchScore
		cp.MatchScore = &score
	}
	return cp
}

func (s *MemStore) GetApplicant(_ context.Context, id int64) (*types.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.applicants[id]; ok {
		cp := cloneApplicant(a)
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) GetApplicantsByIDs(_ context.Context, ids []int64) ([]types.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Applicant, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.applicants[id]; ok {
			out = append(out, cloneApplicant(a))
		}
	}
	return out, nil
}

func (s *MemStore) ListApplicants(_ context.Context, filter ApplicantFilter) ([]types.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(filter), nil
}

func (s *MemStore) listLocked(filter ApplicantFilter) []types.Applicant {
	out := make([]types.Applicant, 0, len(s.applicants))
	for _, a := range s.applicants {
		if filter.Matches(a) {
			out = append(out, cloneApplicant(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) CreateApplicant(_ context.Context, a *types.Applicant) (*types.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[a.JobListingID]; !ok {
		return nil, fmt.Errorf("%w: job listing %d does not exist", ErrInvalidReference, a.JobListingID)
	}
	cp := cloneApplicant(a)
	if cp.Status == "" {
		cp.Status = types.StatusNew
	}
	cp.ID = s.applicantSeq.Add(1)
	cp.CreatedAt = s.now()
	cp.MatchScore = nil
	s.applicants[cp.ID] = &cp
	out := cloneApplicant(&cp)
	return &out, nil
}

func (s *MemStore) UpdateApplicantStatus(_ context.Context, id int64, status types.ApplicantStatus) (*types.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.applicants[id]
	if !ok {
		return nil, nil
	}
	cp := cloneApplicant(existing)
	cp.Status = status
	s.applicants[id] = &cp
	out := cloneApplicant(&cp)
	return &out, nil
}

func (s *MemStore) UpdateApplicantMatchScore(_ context.Context, id int64, score int) (*types.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.applicants[id]
	if !ok {
		return nil, nil
	}
	cp := cloneApplicant(existing)
	cp.MatchScore = &score
	s.applicants[id] = &cp
	out := cloneApplicant(&cp)
	return &out, nil
}

func (s *MemStore) TopApplicantsByMatchScore(ctx context.Context, n int) ([]types.Applicant, error) {
	all, err := s.ListApplicants(ctx, ApplicantFilter{})
	if err != nil {
		return nil, err
	}
	return RankByMatchScore(all, n), nil
}

func (s *MemStore) TopApplicantsByJobIDAndMatchScore(ctx context.Context, jobID int64, n int) ([]types.Applicant, error) {
	pool, err := s.ListApplicants(ctx, ApplicantFilter{JobListingID: &jobID})
	if err != nil {
		return nil, err
	}
	return RankByMatchScore(pool, n), nil
}

// Counts

func (s *MemStore) count(match func(a *types.Applicant) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.applicants {
		if match(a) {
			n++
		}
	}
	return n
}

func (s *MemStore) CountApplicants(_ context.Context) (int, error) {
	return s.count(func(*types.Applicant) bool { return true }), nil
}

func (s *MemStore) CountApplicantsByStatus(_ context.Context, status types.ApplicantStatus) (int, error) {
	return s.count(func(a *types.Applicant) bool { return a.Status == status }), nil
}

func (s *MemStore) CountApplicantsByJobID(_ context.Context, jobID int64) (int, error) {
	return s.count(func(a *types.Applicant) bool { return a.JobListingID == jobID }), nil
}

// CountApplicantsByMatchScore counts applicants scoring at least minScore; unscored count as 0.
func (s *MemStore) CountApplicantsByMatchScore(_ context.Context, minScore int) (int, error) {
	return s.count(func(a *types.Applicant) bool {
		score := 0
		if a.MatchScore != nil {
			score = *a.MatchScore
		}
		return score >= minScore
	}), nil
}

// Notes

func (s *MemStore) ListNotes(_ context.Context, applicantID int64) ([]types.ApplicantNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ApplicantNote, 0)
	for _, n := range s.notes {
		if n.ApplicantID == applicantID {
			out = append(out, *n)
		}
	}
	SortNotesNewestFirst(out)
	return out, nil
}

func (s *MemStore) CreateNote(_ context.Context, n *types.ApplicantNote) (*types.ApplicantNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applicants[n.ApplicantID]; !ok {
		return nil, fmt.Errorf("%w: applicant %d does not exist", ErrInvalidReference, n.ApplicantID)
	}
	if _, ok := s.users[n.UserID]; !ok {
		return nil, fmt.Errorf("%w: user %d does not exist", ErrInvalidReference, n.UserID)
	}
	cp := *n
	cp.ID = s.noteSeq.Add(1)
	cp.CreatedAt = s.now()
	s.notes[cp.ID] = &cp
	out := cp
	return &out, nil
}

// SortNotesNewestFirst orders notes by creation time descending, newest id first on ties.
func SortNotesNewestFirst(notes []types.ApplicantNote) {
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].ID > notes[j].ID
	})
}

// AI analyses

func cloneAnalysis(a *types.AiAnalysis) types.AiAnalysis {
	cp := *a
	cp.Strengths = append([]string{}, a.Strengths...)
	cp.Weaknesses = append([]string{}, a.Weaknesses...)
	cp.Skills = make(map[string]int, len(a.Skills))
	for k, v := range a.Skills {
		cp.Skills[k] = v
	}
	cp.Experience = make(map[string]types.ExperienceEntry, len(a.Experience))
	for k, v := range a.Experience {
		v.Highlights = append([]string{}, v.Highlights...)
		cp.Experience[k] = v
	}
	return cp
}

func (s *MemStore) GetAiAnalysis(_ context.Context, applicantID int64) (*types.AiAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.analyses[applicantID]; ok {
		cp := cloneAnalysis(a)
		return &cp, nil
	}
	return nil, nil
}

// UpsertAiAnalysis stores the analysis of an applicant, replacing any previous one.
// The id of a replaced analysis is kept.
func (s *MemStore) UpsertAiAnalysis(_ context.Context, a *types.AiAnalysis) (*types.AiAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applicants[a.ApplicantID]; !ok {
		return nil, fmt.Errorf("%w: applicant %d does not exist", ErrInvalidReference, a.ApplicantID)
	}
	cp := cloneAnalysis(a)
	if existing, ok := s.analyses[a.ApplicantID]; ok {
		cp.ID = existing.ID
	} else {
		cp.ID = s.analysisSeq.Add(1)
	}
	cp.CreatedAt = s.now()
	s.analyses[a.ApplicantID] = &cp
	out := cloneAnalysis(&cp)
	return &out, nil
}

// Skills

func (s *MemStore) ListSkills(ctx context.Context) ([]string, error) {
	all, err := s.ListApplicants(ctx, ApplicantFilter{})
	if err != nil {
		return nil, err
	}
	return UniqueSkills(all), nil
}

func (s *MemStore) ListSkillsByJobID(ctx context.Context, jobID int64) ([]string, error) {
	pool, err := s.ListApplicants(ctx, ApplicantFilter{JobListingID: &jobID})
	if err != nil {
		return nil, err
	}
	return UniqueSkills(pool), nil
}

func (s *MemStore) SkillsDistributionByJobID(ctx context.Context, jobID int64) ([]types.NamedValue, error) {
	pool, err := s.ListApplicants(ctx, ApplicantFilter{JobListingID: &jobID})
	if err != nil {
		return nil, err
	}
	return Distribution(SkillCounts(pool)), nil
}
