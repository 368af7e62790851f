package server

import (
	"context"
	"net/http"

	"github.com/jonathan/applicant-tracker/internal/server/middleware"
	"github.com/jonathan/applicant-tracker/internal/types"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListJobListings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]types.JobListingWithCount, 0, len(jobs))
	for _, job := range jobs {
		count, err := s.store.CountApplicantsByJobID(r.Context(), job.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out = append(out, types.JobListingWithCount{JobListing: job, ApplicantsCount: count})
	}

	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.loadJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleCreateJob creates a listing. The signed-in user becomes its hiring manager and, when
// the body names no company, lends it their own.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.createJob(w, r, &types.JobListing{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Status:       req.Status,
		CompanyID:    req.CompanyID,
	})
}

// handleImportJob creates a listing from a posting on a job board.
func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	var req types.ImportJobRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	posting, err := s.importer.Fetch(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	title := posting.Title
	if title == "" {
		title = req.URL
	}
	s.createJob(w, r, &types.JobListing{
		Title:        title,
		Description:  posting.Text,
		Requirements: posting.Requirements,
		Status:       req.Status,
		CompanyID:    req.CompanyID,
	})
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request, job *types.JobListing) {
	if userID, err := middleware.GetUserID(r); err == nil {
		job.HiringManagerID = userID
		if job.CompanyID == 0 {
			if user, err := s.store.GetUser(r.Context(), userID); err == nil && user != nil && user.CompanyID != nil {
				job.CompanyID = *user.CompanyID
			}
		}
	}
	if job.CompanyID == 0 {
		s.writeError(w, r, &ErrValidation{Field: "CompanyID", Message: "required"})
		return
	}

	created, err := s.store.CreateJobListing(r.Context(), job)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, created)
}

func (s *Server) handleListJobApplicants(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter, err := statusFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.loadJob(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	filter.JobListingID = &id
	applicants, err := s.store.ListApplicants(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, applicants)
}

func (s *Server) handleJobSkills(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.loadJob(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	skills, err := s.store.ListSkillsByJobID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, skills)
}

func (s *Server) handleJobSkillsDistribution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.loadJob(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	distribution, err := s.store.SkillsDistributionByJobID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, distribution)
}

func (s *Server) loadJob(ctx context.Context, id int64) (*types.JobListing, error) {
	job, err := s.store.GetJobListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &ErrNotFound{Entity: "job listing", ID: id}
	}
	return job, nil
}
