package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Endpoint classes
const (
	// ClassAI covers every request that reaches the text-generation backend.
	ClassAI = "ai"
	// ClassWrite covers mutations that stay local.
	ClassWrite = "write"
	// ClassImport covers requests that fetch a job posting from another site.
	ClassImport = "import"
	// ClassDefault covers everything else.
	ClassDefault = "default"
)

// EndpointConfig represents rate limiting configuration for a class of endpoints.
type EndpointConfig struct {
	// Path is an exact path, a path.Match glob such as "/api/applicants/*/notes",
	// or a prefix ending in "/".
	Path   string
	Method string
	Class  string
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	aiLimit := getEnvInt("RATE_LIMIT_AI_LIMIT", 30)
	aiWindow := getEnvDuration("RATE_LIMIT_AI_WINDOW", time.Minute)

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(aiLimit, aiWindow),
	}
}

// DefaultEndpointConfigs returns the endpoint classes of the tracker API. aiLimit and aiWindow
// tune the strict class.
func DefaultEndpointConfigs(aiLimit int, aiWindow time.Duration) []EndpointConfig {
	aiBurst := max(1, aiLimit/6)
	return []EndpointConfig{
		// Model-backed operations (strictest limits)
		{Path: "/api/ai/", Method: "POST", Class: ClassAI, Limit: aiLimit, Window: aiWindow, Burst: aiBurst},
		{Path: "/api/applicants/*/ai-analysis", Method: "POST", Class: ClassAI, Limit: aiLimit, Window: aiWindow, Burst: aiBurst},
		{Path: "/api/jobs/*/skill-gap-analysis", Method: "GET", Class: ClassAI, Limit: aiLimit, Window: aiWindow, Burst: aiBurst},
		{Path: "/api/jobs/*/application-insights", Method: "GET", Class: ClassAI, Limit: aiLimit, Window: aiWindow, Burst: aiBurst},
		{Path: "/api/applicants", Method: "POST", Class: ClassAI, Limit: aiLimit, Window: aiWindow, Burst: aiBurst},

		// Posting imports reach third-party job boards
		{Path: "/api/jobs/import", Method: "POST", Class: ClassImport, Limit: 20, Window: time.Minute, Burst: 5},

		// Login attempts
		{Path: "/api/auth/login", Method: "POST", Class: "login", Limit: 10, Window: time.Minute, Burst: 5},

		// Local writes (moderate limits)
		{Path: "/api/jobs", Method: "POST", Class: ClassWrite, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/applicants/", Method: "PATCH", Class: ClassWrite, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/applicants/", Method: "POST", Class: ClassWrite, Limit: 100, Window: time.Minute, Burst: 10},

		// Reads use the default limit; /health is unlimited.
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
