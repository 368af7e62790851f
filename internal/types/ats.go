// Package types provides type definitions for the entities and payloads shared across the applicant tracker.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// ApplicantStatus is the review state of an applicant. Any state may move to any other.
type ApplicantStatus string

// Applicant review states
const (
	StatusNew         ApplicantStatus = "new"
	StatusShortlisted ApplicantStatus = "shortlisted"
	StatusApproved    ApplicantStatus = "approved"
	StatusRejected    ApplicantStatus = "rejected"
)

// AllStatuses lists every review state in display order.
var AllStatuses = []ApplicantStatus{StatusNew, StatusShortlisted, StatusApproved, StatusRejected}

// Valid reports whether s is a known review state.
func (s ApplicantStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Job listing states
const (
	JobStatusActive = "active"
	JobStatusClosed = "closed"
	JobStatusDraft  = "draft"
)

// User is a hiring-team member who can sign in and write notes.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	CompanyID    *int64 `json:"companyId,omitempty"`
}

// Company owns job listings.
type Company struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// JobListing is an open position. Description and requirements are free text.
type JobListing struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Requirements    string    `json:"requirements"`
	Status          string    `json:"status"`
	CompanyID       int64     `json:"companyId"`
	HiringManagerID int64     `json:"hiringManagerId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// JobListingWithCount decorates a listing with the size of its applicant pool.
type JobListingWithCount struct {
	JobListing
	ApplicantsCount int `json:"applicantsCount"`
}

// Applicant is one application to one job listing.
// Only Status and MatchScore change after creation.
type Applicant struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone,omitempty"`
	Experience    int             `json:"experience"`
	Education     string          `json:"education,omitempty"`
	Skills        []string        `json:"skills"`
	ResumeURL     string          `json:"resumeUrl,omitempty"`
	ProfilePicURL string          `json:"profilePicUrl,omitempty"`
	JobListingID  int64           `json:"jobListingId"`
	Status        ApplicantStatus `json:"status"`
	MatchScore    *int            `json:"matchScore"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TopPick is an applicant with the summary of its stored analysis, if any.
type TopPick struct {
	Applicant
	Summary *string `json:"summary"`
}

// ApplicantNote is an append-only reviewer annotation.
type ApplicantNote struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	ApplicantID int64     `json:"applicantId"`
	UserID      int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NoteAuthor is the public part of a User shown next to a note.
type NoteAuthor struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// NoteWithAuthor is a note as rendered in the review timeline.
type NoteWithAuthor struct {
	ApplicantNote
	User *NoteAuthor `json:"user"`
}

// ExperienceEntry is one role extracted from a resume.
type ExperienceEntry struct {
	Company    string   `json:"company"`
	Highlights []string `json:"highlights"`
}

// AiSummary is the structured result of evaluating one resume against one job.
// Every field is always populated; collections are never nil.
type AiSummary struct {
	Summary         string                     `json:"summary"`
	Strengths       []string                   `json:"strengths"`
	Weaknesses      []string                   `json:"weaknesses"`
	Skills          map[string]int             `json:"skills"`
	Experience      map[string]ExperienceEntry `json:"experience"`
	Rating          int                        `json:"rating"`
	Recommendations string                     `json:"recommendations"`
}

// AiAnalysis is the stored AiSummary of an applicant. There is at most one per applicant.
type AiAnalysis struct {
	ID          int64 `json:"id"`
	ApplicantID int64 `json:"applicantId"`
	AiSummary
	CreatedAt time.Time `json:"createdAt"`
}

// NamedValue is a generic label/count pair used by charts.
type NamedValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
