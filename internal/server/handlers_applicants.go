package server

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/server/middleware"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// applicantDetail is an applicant with its stored analysis, if any.
type applicantDetail struct {
	types.Applicant
	AiAnalysis *types.AiAnalysis `json:"aiAnalysis"`
}

func (s *Server) handleListApplicants(w http.ResponseWriter, r *http.Request) {
	filter, err := statusFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	applicants, err := s.store.ListApplicants(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, applicants)
}

// handleApplicantDetails returns the requested applicants with their analyses, in request
// order. Unknown ids are skipped.
func (s *Server) handleApplicantDetails(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	applicants, err := s.store.GetApplicantsByIDs(r.Context(), ids)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]applicantDetail, len(applicants))
	g, ctx := errgroup.WithContext(r.Context())
	for i := range applicants {
		out[i].Applicant = applicants[i]
		g.Go(func() error {
			analysis, err := s.store.GetAiAnalysis(ctx, applicants[i].ID)
			if err != nil {
				return err
			}
			out[i].AiAnalysis = analysis
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleGetApplicant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	applicant, err := s.loadApplicant(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, applicant)
}

func (s *Server) handleGetApplicantJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	applicant, err := s.loadApplicant(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.loadJob(r.Context(), applicant.JobListingID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.store.UpdateApplicantStatus(r.Context(), id, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if updated == nil {
		s.writeError(w, r, &ErrNotFound{Entity: "applicant", ID: id})
		return
	}
	s.insights.Invalidate(r.Context(), updated.JobListingID)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Status updated successfully",
		"status":  updated.Status,
	})
}

// handleCreateApplicant stores a new application. When the body carries resume text the
// applicant is scored before responding; a scoring failure does not fail the creation.
func (s *Server) handleCreateApplicant(w http.ResponseWriter, r *http.Request) {
	var req types.CreateApplicantRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.store.CreateApplicant(r.Context(), &types.Applicant{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Experience:    req.Experience,
		Education:     req.Education,
		Skills:        req.Skills,
		ResumeURL:     req.ResumeURL,
		ProfilePicURL: req.ProfilePicURL,
		JobListingID:  req.JobListingID,
		Status:        req.Status,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.ResumeText != "" {
		if _, err := s.scoring.AnalyzeApplicant(r.Context(), created.ID, req.ResumeText); err != nil {
			logger.FromContext(r.Context()).Warn().Err(err).
				Int64("applicant_id", created.ID).
				Msg("initial analysis failed")
		} else if scored, err := s.store.GetApplicant(r.Context(), created.ID); err == nil && scored != nil {
			created = scored
		}
	}
	s.insights.Invalidate(r.Context(), created.JobListingID)

	s.jsonResponse(w, http.StatusCreated, created)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.loadApplicant(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	notes, err := s.store.ListNotes(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	authors := make(map[int64]*types.NoteAuthor)
	out := make([]types.NoteWithAuthor, 0, len(notes))
	for _, note := range notes {
		author, ok := authors[note.UserID]
		if !ok {
			user, err := s.store.GetUser(r.Context(), note.UserID)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			if user != nil {
				author = &types.NoteAuthor{ID: user.ID, FullName: user.FullName, AvatarURL: user.AvatarURL}
			}
			authors[note.UserID] = author
		}
		out = append(out, types.NoteWithAuthor{ApplicantNote: note, User: author})
	}

	s.jsonResponse(w, http.StatusOK, out)
}

// handleCreateNote appends a note authored by the signed-in user.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, r, &ErrUnauthenticated{})
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.CreateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.loadApplicant(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	note, err := s.store.CreateNote(r.Context(), &types.ApplicantNote{
		Content:     req.Content,
		ApplicantID: id,
		UserID:      userID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, note)
}

func (s *Server) loadApplicant(ctx context.Context, id int64) (*types.Applicant, error) {
	applicant, err := s.store.GetApplicant(ctx, id)
	if err != nil {
		return nil, err
	}
	if applicant == nil {
		return nil, &ErrNotFound{Entity: "applicant", ID: id}
	}
	return applicant, nil
}
