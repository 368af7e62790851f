// Package store defines the repository used by every service and an in-memory implementation of it.
//
// Lookups of unknown ids return a nil record and a nil error; callers translate that into their
// own not-found condition.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// ErrInvalidReference is returned when a record points at an entity that does not exist.
var ErrInvalidReference = errors.New("invalid reference")

// ErrNotFound is matched by the not-found errors of the services built on a Store.
var ErrNotFound = errors.New("not found")

// ApplicantFilter narrows ListApplicants. Nil fields do not filter.
type ApplicantFilter struct {
	Status       *types.ApplicantStatus
	JobListingID *int64
}

// Matches reports whether a passes the filter.
func (f ApplicantFilter) Matches(a *types.Applicant) bool {
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.JobListingID != nil && a.JobListingID != *f.JobListingID {
		return false
	}
	return true
}

// Store is the persistence contract of the applicant tracker.
type Store interface {
	GetUser(ctx context.Context, id int64) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)

	GetCompany(ctx context.Context, id int64) (*types.Company, error)
	CreateCompany(ctx context.Context, c *types.Company) (*types.Company, error)

	GetJobListing(ctx context.Context, id int64) (*types.JobListing, error)
	ListJobListings(ctx context.Context) ([]types.JobListing, error)
	ListJobListingsByCompany(ctx context.Context, companyID int64) ([]types.JobListing, error)
	CreateJobListing(ctx context.Context, j *types.JobListing) (*types.JobListing, error)
	UpdateJobListing(ctx context.Context, j *types.JobListing) (*types.JobListing, error)

	GetApplicant(ctx context.Context, id int64) (*types.Applicant, error)
	GetApplicantsByIDs(ctx context.Context, ids []int64) ([]types.Applicant, error)
	ListApplicants(ctx context.Context, filter ApplicantFilter) ([]types.Applicant, error)
	CreateApplicant(ctx context.Context, a *types.Applicant) (*types.Applicant, error)
	UpdateApplicantStatus(ctx context.Context, id int64, status types.ApplicantStatus) (*types.Applicant, error)
	UpdateApplicantMatchScore(ctx context.Context, id int64, score int) (*types.Applicant, error)
	// TopApplicantsByMatchScore ranks scored applicants as RankByMatchScore does.
	// A negative n returns every scored applicant.
	TopApplicantsByMatchScore(ctx context.Context, n int) ([]types.Applicant, error)
	TopApplicantsByJobIDAndMatchScore(ctx context.Context, jobID int64, n int) ([]types.Applicant, error)

	CountApplicants(ctx context.Context) (int, error)
	CountApplicantsByStatus(ctx context.Context, status types.ApplicantStatus) (int, error)
	CountApplicantsByJobID(ctx context.Context, jobID int64) (int, error)
	CountApplicantsByMatchScore(ctx context.Context, minScore int) (int, error)

	ListNotes(ctx context.Context, applicantID int64) ([]types.ApplicantNote, error)
	CreateNote(ctx context.Context, n *types.ApplicantNote) (*types.ApplicantNote, error)

	GetAiAnalysis(ctx context.Context, applicantID int64) (*types.AiAnalysis, error)
	UpsertAiAnalysis(ctx context.Context, a *types.AiAnalysis) (*types.AiAnalysis, error)

	ListSkills(ctx context.Context) ([]string, error)
	ListSkillsByJobID(ctx context.Context, jobID int64) ([]string, error)
	SkillsDistributionByJobID(ctx context.Context, jobID int64) ([]types.NamedValue, error)
}

// RankByMatchScore drops unscored applicants, orders the rest by score descending then id
// ascending, and truncates to n. A negative n keeps everything.
func RankByMatchScore(applicants []types.Applicant, n int) []types.Applicant {
	ranked := make([]types.Applicant, 0, len(applicants))
	for _, a := range applicants {
		if a.MatchScore != nil {
			ranked = append(ranked, a)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := *ranked[i].MatchScore, *ranked[j].MatchScore
		if si != sj {
			return si > sj
		}
		return ranked[i].ID < ranked[j].ID
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// SkillCounts returns how many applicants list each skill. An applicant listing a skill
// twice is counted once.
func SkillCounts(applicants []types.Applicant) map[string]int {
	counts := make(map[string]int)
	for _, a := range applicants {
		seen := make(map[string]bool, len(a.Skills))
		for _, skill := range a.Skills {
			if skill == "" || seen[skill] {
				continue
			}
			seen[skill] = true
			counts[skill]++
		}
	}
	return counts
}

// Distribution turns skill counts into chart pairs ordered by count descending then name.
func Distribution(counts map[string]int) []types.NamedValue {
	out := make([]types.NamedValue, 0, len(counts))
	for name, value := range counts {
		out = append(out, types.NamedValue{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// UniqueSkills returns the distinct skills of applicants in first-seen order.
func UniqueSkills(applicants []types.Applicant) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, a := range applicants {
		for _, skill := range a.Skills {
			if skill == "" || seen[skill] {
				continue
			}
			seen[skill] = true
			out = append(out, skill)
		}
	}
	return out
}
