package parsing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/llm/llmtest"
)

const jobPosting = "Senior UX Designer. Must know Figma and user research. Bachelor's in design preferred."

func TestExtractRequirements_Success(t *testing.T) {
	mock := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, messages []llm.Message, tier llm.ModelTier) (string, error) {
			assert.Equal(t, llm.TierLite, tier)
			return "```json\n" + `{
				"explicit_skills": ["figma", "User Research", "Figma"],
				"implicit_skills": ["Prototyping", "FIGMA", "design systems"],
				"responsibilities": ["Lead design reviews", "  "],
				"education": {"min_degree": "Bachelor's degree", "fields": ["Design"], "required": false}
			}` + "\n```", nil
		},
	}

	reqs, err := ExtractRequirements(context.Background(), mock, jobPosting)
	require.NoError(t, err)

	assert.Equal(t, []string{"Figma", "User Research"}, reqs.ExplicitSkills)
	assert.Equal(t, []string{"Prototyping", "design systems"}, reqs.ImplicitSkills)
	assert.Equal(t, []string{"Lead design reviews"}, reqs.Responsibilities)
	assert.Equal(t, "bachelor", reqs.Education.MinDegree)
	assert.Equal(t, []string{"Design"}, reqs.Education.Fields)
	assert.False(t, reqs.Education.Required)
}

func TestExtractRequirements_PromptContents(t *testing.T) {
	mock := &llmtest.MockClient{}

	_, err := ExtractRequirements(context.Background(), mock, jobPosting)
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, llm.RoleSystem, calls[0][0].Role)
	assert.Contains(t, calls[0][0].Content, "ETHICAL GUIDELINES")
	assert.Equal(t, llm.RoleUser, calls[0][1].Role)
	assert.Contains(t, calls[0][1].Content, jobPosting)
	assert.NotContains(t, calls[0][1].Content, "{{.")
}

func TestExtractRequirements_EmptyPayloadYieldsEmptyLists(t *testing.T) {
	mock := &llmtest.MockClient{
		GenerateJSONFunc: func(context.Context, []llm.Message, llm.ModelTier) (string, error) {
			return "", nil
		},
	}

	reqs, err := ExtractRequirements(context.Background(), mock, jobPosting)
	require.NoError(t, err)
	assert.NotNil(t, reqs.ExplicitSkills)
	assert.NotNil(t, reqs.ImplicitSkills)
	assert.NotNil(t, reqs.Responsibilities)
	assert.Empty(t, reqs.ExplicitSkills)
}

func TestExtractRequirements_Errors(t *testing.T) {
	tests := []struct {
		name     string
		client   llm.Client
		jobText  string
		wantType any
	}{
		{
			name:     "nil client",
			client:   nil,
			jobText:  jobPosting,
			wantType: &APICallError{},
		},
		{
			name:     "empty job text",
			client:   &llmtest.MockClient{},
			jobText:  "   ",
			wantType: &ParseError{},
		},
		{
			name: "upstream failure",
			client: &llmtest.MockClient{
				GenerateJSONFunc: func(context.Context, []llm.Message, llm.ModelTier) (string, error) {
					return "", errors.New("503 service unavailable")
				},
			},
			jobText:  jobPosting,
			wantType: &APICallError{},
		},
		{
			name: "not JSON",
			client: &llmtest.MockClient{
				GenerateJSONFunc: func(context.Context, []llm.Message, llm.ModelTier) (string, error) {
					return "I cannot help with that.", nil
				},
			},
			jobText:  jobPosting,
			wantType: &ParseError{},
		},
		{
			name: "wrong shape",
			client: &llmtest.MockClient{
				GenerateJSONFunc: func(context.Context, []llm.Message, llm.ModelTier) (string, error) {
					return `{"explicit_skills": "Figma"}`, nil
				},
			},
			jobText:  jobPosting,
			wantType: &ParseError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs, err := ExtractRequirements(context.Background(), tt.client, tt.jobText)
			require.Error(t, err)
			assert.Nil(t, reqs)

			switch tt.wantType.(type) {
			case *APICallError:
				var target *APICallError
				assert.True(t, errors.As(err, &target), "expected APICallError, got %T", err)
			case *ParseError:
				var target *ParseError
				assert.True(t, errors.As(err, &target), "expected ParseError, got %T", err)
			}
		})
	}
}

func TestFormatRequirements(t *testing.T) {
	assert.Equal(t, "{}", FormatRequirements(nil))

	out := FormatRequirements(&jobRequirementsFixture)
	assert.True(t, strings.HasPrefix(out, "{\n"))
	assert.Contains(t, out, `"explicit_skills"`)
	assert.Contains(t, out, "Figma")
}

func TestJobText(t *testing.T) {
	assert.Equal(t, "desc", JobText(" desc ", ""))
	assert.Equal(t, "reqs", JobText("", "reqs"))
	assert.Equal(t, "desc\n\nRequirements:\nreqs", JobText("desc", "reqs"))
}
