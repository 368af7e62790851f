//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Username: "katy", Password: "password"}).Validate())
	assert.Error(t, (&LoginRequest{Username: "katy"}).Validate())
	assert.Error(t, (&LoginRequest{Password: "password"}).Validate())
}

func TestCreateApplicantRequest_Validate(t *testing.T) {
	valid := func() CreateApplicantRequest {
		return CreateApplicantRequest{
			Name:         "Jordan Lee",
			Email:        "jordan@example.com",
			Experience:   4,
			Skills:       []string{"Figma", "Sketch"},
			JobListingID: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateApplicantRequest)
		wantErr bool
	}{
		{name: "valid request", mutate: func(*CreateApplicantRequest) {}},
		{name: "missing name", mutate: func(r *CreateApplicantRequest) { r.Name = "" }, wantErr: true},
		{name: "bad email", mutate: func(r *CreateApplicantRequest) { r.Email = "not-an-email" }, wantErr: true},
		{name: "negative experience", mutate: func(r *CreateApplicantRequest) { r.Experience = -1 }, wantErr: true},
		{name: "missing job", mutate: func(r *CreateApplicantRequest) { r.JobListingID = 0 }, wantErr: true},
		{name: "empty skill entry", mutate: func(r *CreateApplicantRequest) { r.Skills = []string{"Go", ""} }, wantErr: true},
		{name: "unknown status", mutate: func(r *CreateApplicantRequest) { r.Status = "hired" }, wantErr: true},
		{name: "explicit status", mutate: func(r *CreateApplicantRequest) { r.Status = StatusShortlisted }},
		{name: "bad resume url", mutate: func(r *CreateApplicantRequest) { r.ResumeURL = "resume" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateStatusRequest_Validate(t *testing.T) {
	for _, s := range AllStatuses {
		assert.NoError(t, (&UpdateStatusRequest{Status: s}).Validate(), s)
	}
	assert.Error(t, (&UpdateStatusRequest{Status: "archived"}).Validate())
	assert.Error(t, (&UpdateStatusRequest{}).Validate())
}

func TestChatRequest_Validate(t *testing.T) {
	ok := ChatRequest{Messages: []ChatMessage{{Role: "user", Content: "Who is strongest?"}}}
	assert.NoError(t, ok.Validate())

	empty := ChatRequest{}
	assert.Error(t, empty.Validate())

	badRole := ChatRequest{Messages: []ChatMessage{{Role: "tool", Content: "x"}}}
	assert.Error(t, badRole.Validate())
}

func TestCompareRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CompareRequest{ApplicantIDs: []int64{1}}).Validate())
	assert.Error(t, (&CompareRequest{ApplicantIDs: []int64{1, 0}}).Validate())
	assert.Error(t, (&CompareRequest{ApplicantIDs: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}}).Validate())
}

func TestApplicantStatus_Valid(t *testing.T) {
	assert.True(t, StatusRejected.Valid())
	assert.False(t, ApplicantStatus("hired").Valid())
}

func TestAiAnalysis_JSONIsFlat(t *testing.T) {
	a := AiAnalysis{
		ID:          3,
		ApplicantID: 9,
		AiSummary: AiSummary{
			Summary:    "Strong fit",
			Strengths:  []string{},
			Weaknesses: []string{},
			Skills:     map[string]int{"Figma": 9},
			Experience: map[string]ExperienceEntry{},
			Rating:     91,
		},
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Strong fit", out["summary"])
	assert.EqualValues(t, 91, out["rating"])
	assert.EqualValues(t, 9, out["applicantId"])
	assert.NotContains(t, out, "AiSummary")
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	data, err := json.Marshal(User{ID: 1, Username: "katy", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}
