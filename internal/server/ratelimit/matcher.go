package ratelimit

import (
	"path"
	"strings"
)

// unlimited is returned for endpoints that are never limited.
var unlimited = EndpointConfig{Class: "unlimited"}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Exact paths win over globs, and globs win over prefixes. It returns nil when nothing matches.
func MatchEndpoint(p string, method string, configs []EndpointConfig) *EndpointConfig {
	if p == "/health" && method == "GET" {
		cfg := unlimited
		return &cfg
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == p {
			return &configs[i]
		}
	}

	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method || !strings.Contains(cfg.Path, "*") {
			continue
		}
		if ok, err := path.Match(cfg.Path, p); err == nil && ok {
			return cfg
		}
	}

	for i := range configs {
		cfg := &configs[i]
		if cfg.Method == method && strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(p, cfg.Path) {
			return cfg
		}
	}

	return nil
}
