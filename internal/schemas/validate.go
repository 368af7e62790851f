// Package schemas validates model payloads against the embedded JSON Schemas before they are decoded.
package schemas

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed json/*.schema.json
var files embed.FS

// Names of the embedded schemas
const (
	AiSummary       = "ai_summary"
	JobRequirements = "job_requirements"
	Comparison      = "comparison"
	SkillGap        = "skill_gap"
	Insights        = "insights"
)

var (
	compiled   = map[string]*gojsonschema.Schema{}
	compiledMu sync.Mutex
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Schema != "" {
		sb.WriteString(fmt.Sprintf("%s validation failed:\n", ve.Schema))
	} else {
		sb.WriteString("validation failed:\n")
	}
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Names lists the embedded schemas.
func Names() []string {
	entries, err := files.ReadDir("json")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".schema.json"))
	}
	sort.Strings(names)
	return names
}

// Raw returns the source of an embedded schema.
func Raw(name string) (string, error) {
	data, err := files.ReadFile("json/" + name + ".schema.json")
	if err != nil {
		return "", &SchemaLoadError{Name: name, Message: "unknown schema", Cause: err}
	}
	return string(data), nil
}

func load(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}

	raw, err := Raw(name)
	if err != nil {
		return nil, err
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Name: name, Message: "invalid schema", Cause: err}
	}
	compiled[name] = s
	return s, nil
}

// Validate checks a JSON payload against the named embedded schema.
func Validate(name, jsonContent string) error {
	s, err := load(name)
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return fmt.Errorf("failed to read %s payload: %w", name, err)
	}
	return toValidationError(name, result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Name:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toValidationError("", result)
}

func toValidationError(name string, result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
