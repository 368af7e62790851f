package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{AiSummary, Comparison, Insights, JobRequirements, SkillGap}, Names())
}

func TestEmbeddedSchemas_Compile(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			raw, err := Raw(name)
			require.NoError(t, err)

			var v map[string]any
			require.NoError(t, json.Unmarshal([]byte(raw), &v), "schema should be valid JSON")

			// an empty object satisfies every schema; defaults fill the rest
			assert.NoError(t, Validate(name, `{}`))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		payload string
		wantErr bool
	}{
		{
			name:   "complete analysis",
			schema: AiSummary,
			payload: `{"summary":"Strong fit","strengths":["Go"],"weaknesses":[],
				"skills":{"Go":9,"SQL":7.5},"experience":{"Engineer":{"company":"Acme","highlights":["Shipped"]}},
				"rating":88,"recommendations":"Interview"}`,
		},
		{name: "rating as string", schema: AiSummary, payload: `{"rating":"high"}`, wantErr: true},
		{name: "skills as list", schema: AiSummary, payload: `{"skills":["Go"]}`, wantErr: true},
		{name: "strengths with numbers", schema: AiSummary, payload: `{"strengths":[1,2]}`, wantErr: true},
		{name: "array root", schema: AiSummary, payload: `[]`, wantErr: true},
		{
			name:    "requirements",
			schema:  JobRequirements,
			payload: `{"explicit_skills":["Figma"],"education":{"min_degree":"bachelor","required":true}}`,
		},
		{name: "requirements education as string", schema: JobRequirements, payload: `{"education":"BA"}`, wantErr: true},
		{
			name:    "comparison",
			schema:  Comparison,
			payload: `{"differentiators":["a","b"],"keyDifferences":{"experience":{"candidate1":"5y"}}}`,
		},
		{name: "comparison nested number", schema: Comparison, payload: `{"keyDifferences":{"experience":{"candidate1":5}}}`, wantErr: true},
		{
			name:    "skill gap",
			schema:  SkillGap,
			payload: `{"criticalGaps":[{"skill":"Figma","coverage":0}],"semanticMatches":[{"requirement":"UX","applicantSkill":"UI Design"}]}`,
		},
		{name: "skill gap missing skill", schema: SkillGap, payload: `{"criticalGaps":[{"coverage":10}]}`, wantErr: true},
		{name: "insights", schema: Insights, payload: `{"summary":"ok","highlights":["x"]}`},
		{name: "insights highlights as string", schema: Insights, payload: `{"highlights":"x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema, tt.payload)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.schema, ve.Schema)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", `{}`)
	require.Error(t, err)

	var le *SchemaLoadError
	assert.True(t, errors.As(err, &le))
	assert.Equal(t, "nope", le.Name)
}

func TestValidate_MalformedPayload(t *testing.T) {
	err := Validate(AiSummary, `{ not json`)
	assert.Error(t, err)
}

func TestValidateJSONString(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	assert.NoError(t, ValidateJSONString(schemaContent, `{"name": "test"}`))

	err := ValidateJSONString(schemaContent, `{"age": 30}`)
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Schema: AiSummary,
		Errors: []FieldError{
			{Field: "rating", Message: "Invalid type. Expected: number, given: string"},
			{Field: "skills", Message: "Invalid type. Expected: object, given: array"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "ai_summary validation failed")
	assert.Contains(t, errorMsg, "rating")
	assert.Contains(t, errorMsg, "skills")
}
