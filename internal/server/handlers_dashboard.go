package server

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// topPickCount is how many applicants the top-picks panels show.
const topPickCount = 5

func (s *Server) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.insights.DashboardMetrics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, metrics)
}

func (s *Server) handleTopPicks(w http.ResponseWriter, r *http.Request) {
	applicants, err := s.store.TopApplicantsByMatchScore(r.Context(), topPickCount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	picks, err := s.withSummaries(r.Context(), applicants)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, picks)
}

func (s *Server) handleJobTopPicks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.loadJob(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	applicants, err := s.store.TopApplicantsByJobIDAndMatchScore(r.Context(), id, topPickCount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	picks, err := s.withSummaries(r.Context(), applicants)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, picks)
}

// withSummaries attaches the stored analysis summary of each applicant, loaded concurrently.
func (s *Server) withSummaries(ctx context.Context, applicants []types.Applicant) ([]types.TopPick, error) {
	picks := make([]types.TopPick, len(applicants))
	g, ctx := errgroup.WithContext(ctx)
	for i := range applicants {
		picks[i].Applicant = applicants[i]
		g.Go(func() error {
			analysis, err := s.store.GetAiAnalysis(ctx, applicants[i].ID)
			if err != nil {
				return err
			}
			if analysis != nil {
				summary := analysis.Summary
				picks[i].Summary = &summary
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return picks, nil
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.store.ListSkills(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, skills)
}

func (s *Server) handleApplicationTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := s.insights.ApplicationTrends(r.Context(), nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, trends)
}

func (s *Server) handleJobApplicationTrends(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	trends, err := s.insights.ApplicationTrends(r.Context(), &id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, trends)
}
