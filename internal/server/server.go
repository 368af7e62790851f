package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/fetch"
	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/server/middleware"
	"github.com/jonathan/applicant-tracker/internal/server/ratelimit"
	"github.com/jonathan/applicant-tracker/internal/store"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// Scorer evaluates resumes and persists applicant analyses.
type Scorer interface {
	AnalyzeResume(ctx context.Context, resumeText, jobDescription string) types.AiSummary
	AnalyzeApplicant(ctx context.Context, applicantID int64, resumeText string) (*types.AiAnalysis, error)
	GetAnalysis(ctx context.Context, applicantID int64) (*types.AiAnalysis, error)
}

// Comparer builds side-by-side candidate comparisons.
type Comparer interface {
	Compare(ctx context.Context, ids []int64) (*types.Comparison, error)
}

// InsightsProvider computes pool statistics and their narratives.
type InsightsProvider interface {
	SkillGap(ctx context.Context, jobID int64) (*types.SkillGapAnalysis, error)
	ApplicationInsights(ctx context.Context, jobID int64) (*types.ApplicationInsights, error)
	DashboardMetrics(ctx context.Context) (*types.DashboardMetrics, error)
	ApplicationTrends(ctx context.Context, jobID *int64) ([]types.NamedValue, error)
	Invalidate(ctx context.Context, jobID int64)
}

// Assistant answers recruiter chat conversations.
type Assistant interface {
	Reply(ctx context.Context, messages []types.ChatMessage, jobID *int64) string
}

// PostingImporter pulls a job posting from a job board.
type PostingImporter interface {
	Fetch(ctx context.Context, url string) (*fetch.Posting, error)
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	SecureCookies  bool
}

// Deps are the collaborators the handlers delegate to.
type Deps struct {
	Store      store.Store
	Scoring    Scorer
	Comparison Comparer
	Insights   InsightsProvider
	Assistant  Assistant
	Importer   PostingImporter
	JWT        *JWTService
	Passwords  *config.PasswordConfig
	Limiter    *ratelimit.Limiter
	Logger     zerolog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	store          store.Store
	scoring        Scorer
	comparison     Comparer
	insights       InsightsProvider
	assistant      Assistant
	importer       PostingImporter
	jwtService     *JWTService
	passwords      *config.PasswordConfig
	rateLimiter    *ratelimit.Limiter
	log            zerolog.Logger
	allowedOrigins []string
	secureCookies  bool
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		store:          deps.Store,
		scoring:        deps.Scoring,
		comparison:     deps.Comparison,
		insights:       deps.Insights,
		assistant:      deps.Assistant,
		importer:       deps.Importer,
		jwtService:     deps.JWT,
		passwords:      deps.Passwords,
		rateLimiter:    deps.Limiter,
		log:            deps.Logger,
		allowedOrigins: cfg.AllowedOrigins,
		secureCookies:  cfg.SecureCookies,
	}
	if s.importer == nil {
		s.importer = fetch.NewImporter(nil, 0, nil)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // two sequential model calls
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed API wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)

	// Dashboard
	mux.HandleFunc("GET /api/dashboard/metrics", s.handleDashboardMetrics)
	mux.HandleFunc("GET /api/top-picks", s.handleTopPicks)
	mux.HandleFunc("GET /api/skills", s.handleListSkills)
	mux.HandleFunc("GET /api/application-trends", s.handleApplicationTrends)

	// Jobs
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("POST /api/jobs", s.handleCreateJob)
	mux.HandleFunc("POST /api/jobs/import", s.handleImportJob)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /api/jobs/{id}/applicants", s.handleListJobApplicants)
	mux.HandleFunc("GET /api/jobs/{id}/top-picks", s.handleJobTopPicks)
	mux.HandleFunc("GET /api/jobs/{id}/skills", s.handleJobSkills)
	mux.HandleFunc("GET /api/jobs/{id}/skills-distribution", s.handleJobSkillsDistribution)
	mux.HandleFunc("GET /api/jobs/{id}/application-trends", s.handleJobApplicationTrends)
	mux.HandleFunc("GET /api/jobs/{id}/skill-gap-analysis", s.handleSkillGap)
	mux.HandleFunc("GET /api/jobs/{id}/application-insights", s.handleApplicationInsights)

	// Applicants
	mux.HandleFunc("GET /api/applicants", s.handleListApplicants)
	mux.HandleFunc("POST /api/applicants", s.handleCreateApplicant)
	mux.HandleFunc("GET /api/applicants/details", s.handleApplicantDetails)
	mux.HandleFunc("GET /api/applicants/{id}", s.handleGetApplicant)
	mux.HandleFunc("GET /api/applicants/{id}/job", s.handleGetApplicantJob)
	mux.HandleFunc("PATCH /api/applicants/{id}/status", s.handleUpdateStatus)
	mux.HandleFunc("GET /api/applicants/{id}/notes", s.handleListNotes)
	mux.Handle("POST /api/applicants/{id}/notes", middleware.RequireUser(http.HandlerFunc(s.handleCreateNote)))
	mux.HandleFunc("GET /api/applicants/{id}/ai-analysis", s.handleGetAnalysis)
	mux.HandleFunc("POST /api/applicants/{id}/ai-analysis", s.handleAnalyzeApplicant)

	// AI
	mux.HandleFunc("POST /api/ai/analyze-resume", s.handleAnalyzeResume)
	mux.HandleFunc("POST /api/ai/compare", s.handleCompare)
	mux.HandleFunc("POST /api/ai/chat", s.handleChat)

	session := middleware.Session(s.jwtService.AsTokenValidator())
	requestID := middleware.RequestID(s.log)
	return requestID(s.withRateLimit(s.withLogging(s.withCORS(session(mux)))))
}

// Start serves until ctx is cancelled or the process receives SIGINT/SIGTERM, then drains
// in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.log.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers. A specific allowed origin is echoed so cookies can be sent.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.FromContext(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code. Internal failures are logged and their details withheld.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	logger.FromContext(r.Context()).Warn().
		Str("class", info.Class).
		Int("limit", info.Limit).
		Time("reset_at", info.ResetTime).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
