// Package parsing turns free-text job postings into structured requirements using the text-generation backend.
package parsing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/prompts"
	"github.com/jonathan/applicant-tracker/internal/schemas"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// ExtractRequirements extracts explicit skills, implicit skills, responsibilities and education
// expectations from a job posting. Skill names come back normalized and deduplicated.
func ExtractRequirements(ctx context.Context, client llm.Client, jobText string) (*types.JobRequirements, error) {
	if client == nil {
		return nil, &APICallError{Message: "LLM client is required"}
	}
	if strings.TrimSpace(jobText) == "" {
		return nil, &ParseError{Message: "job text is empty"}
	}

	messages, err := buildRequirementsMessages(jobText)
	if err != nil {
		return nil, err
	}

	// TierLite is enough for extraction
	responseText, err := client.GenerateJSON(ctx, messages, llm.TierLite)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to extract job requirements",
			Cause:   err,
		}
	}

	reqs, err := parseRequirements(responseText)
	if err != nil {
		return nil, err
	}
	postProcessRequirements(reqs)
	return reqs, nil
}

func buildRequirementsMessages(jobText string) ([]llm.Message, error) {
	system, err := prompts.Render("scoring.json", "requirements-system", nil)
	if err != nil {
		return nil, &ParseError{Message: "failed to build requirements prompt", Cause: err}
	}
	user, err := prompts.Render("scoring.json", "requirements-user", map[string]string{
		"JobText": jobText,
	})
	if err != nil {
		return nil, &ParseError{Message: "failed to build requirements prompt", Cause: err}
	}
	return []llm.Message{llm.System(system), llm.User(user)}, nil
}

// parseRequirements validates and decodes the model payload
func parseRequirements(responseText string) (*types.JobRequirements, error) {
	cleaned := llm.CleanJSONBlock(responseText)
	if cleaned == "" {
		cleaned = "{}"
	}
	if err := schemas.Validate(schemas.JobRequirements, cleaned); err != nil {
		return nil, &ParseError{Message: "requirements payload does not match schema", Cause: err}
	}

	var reqs types.JobRequirements
	if err := llm.DecodeObject(cleaned, &reqs); err != nil {
		return nil, &ParseError{Message: "failed to parse requirements JSON", Cause: err}
	}
	return &reqs, nil
}

// postProcessRequirements normalizes names and guarantees non-nil lists.
// A skill listed as explicit is removed from the implicit bucket.
func postProcessRequirements(reqs *types.JobRequirements) {
	reqs.ExplicitSkills = NormalizeSkills(reqs.ExplicitSkills)

	explicit := make(map[string]bool, len(reqs.ExplicitSkills))
	for _, s := range reqs.ExplicitSkills {
		explicit[strings.ToLower(s)] = true
	}
	implicit := NormalizeSkills(reqs.ImplicitSkills)
	reqs.ImplicitSkills = implicit[:0]
	for _, s := range implicit {
		if !explicit[strings.ToLower(s)] {
			reqs.ImplicitSkills = append(reqs.ImplicitSkills, s)
		}
	}

	reqs.Responsibilities = cleanList(reqs.Responsibilities)
	reqs.Education.MinDegree = normalizeDegreeLevel(reqs.Education.MinDegree)
	reqs.Education.Fields = cleanList(reqs.Education.Fields)
}

// FormatRequirements renders requirements as indented JSON for inclusion in a scoring prompt.
func FormatRequirements(reqs *types.JobRequirements) string {
	if reqs == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", *reqs)
	}
	return string(data)
}

// JobText joins the description and requirements of a listing into the text given to extraction.
func JobText(description, requirements string) string {
	description = strings.TrimSpace(description)
	requirements = strings.TrimSpace(requirements)
	switch {
	case requirements == "":
		return description
	case description == "":
		return requirements
	default:
		return description + "\n\nRequirements:\n" + requirements
	}
}
