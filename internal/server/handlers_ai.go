package server

import (
	"net/http"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// handleAnalyzeResume scores free text against a job description without storing anything.
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeResumeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.scoring.AnalyzeResume(r.Context(), req.ResumeText, req.JobDescription))
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	analysis, err := s.scoring.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

func (s *Server) handleAnalyzeApplicant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.AnalyzeApplicantRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	analysis, err := s.scoring.AnalyzeApplicant(r.Context(), id, req.ResumeText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if applicant, err := s.store.GetApplicant(r.Context(), id); err == nil && applicant != nil {
		s.insights.Invalidate(r.Context(), applicant.JobListingID)
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req types.CompareRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.comparison.Compare(r.Context(), req.ApplicantIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleSkillGap(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.insights.SkillGap(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleApplicationInsights(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.insights.ApplicationInsights(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleChat always answers 200 once the body is valid; upstream failures become a canned reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.ChatResponse{
		Response: s.assistant.Reply(r.Context(), req.Messages, req.JobID),
	})
}
