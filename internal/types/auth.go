package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoginRequest represents the login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the signed-in user and the session token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// CreateJobRequest is the body of POST /api/jobs.
type CreateJobRequest struct {
	Title        string `json:"title" validate:"required,min=1,max=200"`
	Description  string `json:"description" validate:"required"`
	Requirements string `json:"requirements" validate:"required"`
	Status       string `json:"status,omitempty" validate:"omitempty,oneof=active closed draft"`
	CompanyID    int64  `json:"companyId,omitempty" validate:"omitempty,gt=0"`
}

// ImportJobRequest is the body of POST /api/jobs/import.
type ImportJobRequest struct {
	URL       string `json:"url" validate:"required,url,startswith=http"`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=active closed draft"`
	CompanyID int64  `json:"companyId,omitempty" validate:"omitempty,gt=0"`
}

// CreateApplicantRequest is the body of POST /api/applicants.
// ResumeText, when present, triggers an analysis right after creation.
type CreateApplicantRequest struct {
	Name          string          `json:"name" validate:"required,min=1"`
	Email         string          `json:"email" validate:"required,email"`
	Phone         string          `json:"phone,omitempty"`
	Experience    int             `json:"experience" validate:"gte=0,lte=80"`
	Education     string          `json:"education,omitempty"`
	Skills        []string        `json:"skills,omitempty" validate:"dive,required"`
	ResumeURL     string          `json:"resumeUrl,omitempty" validate:"omitempty,url"`
	ProfilePicURL string          `json:"profilePicUrl,omitempty" validate:"omitempty,url"`
	JobListingID  int64           `json:"jobListingId" validate:"required,gt=0"`
	Status        ApplicantStatus `json:"status,omitempty" validate:"omitempty,oneof=new shortlisted approved rejected"`
	ResumeText    string          `json:"resumeText,omitempty"`
}

// UpdateStatusRequest is the body of PATCH /api/applicants/{id}/status.
type UpdateStatusRequest struct {
	Status ApplicantStatus `json:"status" validate:"required,oneof=new shortlisted approved rejected"`
}

// CreateNoteRequest is the body of POST /api/applicants/{id}/notes.
type CreateNoteRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// AnalyzeResumeRequest is the body of POST /api/ai/analyze-resume.
type AnalyzeResumeRequest struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
}

// AnalyzeApplicantRequest is the body of POST /api/applicants/{id}/ai-analysis.
type AnalyzeApplicantRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
}

// CompareRequest is the body of POST /api/ai/compare.
// The minimum candidate count is enforced by the comparison service.
type CompareRequest struct {
	ApplicantIDs []int64 `json:"applicantIds" validate:"max=10,dive,gt=0"`
}

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is the body of POST /api/ai/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	JobID    *int64        `json:"jobId,omitempty"`
}

// ChatResponse is the assistant answer.
type ChatResponse struct {
	Response string `json:"response"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error { return validate.Struct(r) }

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error { return validate.Struct(r) }

// Validate validates the ImportJobRequest using the validator.
func (r *ImportJobRequest) Validate() error { return validate.Struct(r) }

// Validate validates the CreateApplicantRequest using the validator.
func (r *CreateApplicantRequest) Validate() error { return validate.Struct(r) }

// Validate validates the UpdateStatusRequest using the validator.
func (r *UpdateStatusRequest) Validate() error { return validate.Struct(r) }

// Validate validates the CreateNoteRequest using the validator.
func (r *CreateNoteRequest) Validate() error { return validate.Struct(r) }

// Validate validates the AnalyzeResumeRequest using the validator.
func (r *AnalyzeResumeRequest) Validate() error { return validate.Struct(r) }

// Validate validates the AnalyzeApplicantRequest using the validator.
func (r *AnalyzeApplicantRequest) Validate() error { return validate.Struct(r) }

// Validate validates the CompareRequest using the validator.
func (r *CompareRequest) Validate() error { return validate.Struct(r) }

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error { return validate.Struct(r) }
