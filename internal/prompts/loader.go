// Package prompts provides a loader for the LLM instruction templates.
// Templates are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

var placeholderPattern = regexp.MustCompile(`\{\{\.[A-Za-z]+\}\}`)

// Get retrieves a prompt by filename and key, e.g. Get("scoring.json", "analyze-user").
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces placeholders in the form {{.Key}} with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result
}

// Render loads a prompt, fills it, and fails if any placeholder is left unfilled.
// The shared ethical guidelines are always available as {{.Guidelines}}.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}

	if strings.Contains(template, "{{.Guidelines}}") {
		guidelines, err := Guidelines()
		if err != nil {
			return "", err
		}
		template = strings.ReplaceAll(template, "{{.Guidelines}}", guidelines)
	}

	var missing []string
	for _, placeholder := range placeholderPattern.FindAllString(template, -1) {
		name := strings.TrimSuffix(strings.TrimPrefix(placeholder, "{{."), "}}")
		if _, ok := data[name]; !ok {
			missing = append(missing, placeholder)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s/%s has unfilled placeholders: %s", filename, key, strings.Join(missing, ", "))
	}
	return Format(template, data), nil
}

// Guidelines returns the fairness instruction shared by every evaluation prompt.
func Guidelines() (string, error) {
	return Get("common.json", "ethical-guidelines")
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}

// List returns all prompt keys in a file, sorted.
func List(filename string) ([]string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
