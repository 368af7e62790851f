package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/applicant-tracker/internal/logger"
)

// RequestIDHeader carries the correlation id of a request.
const RequestIDHeader = "X-Request-ID"

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID assigns every request a correlation id and a logger tagged with it. A well-formed
// id sent by the client is kept; anything else is replaced by a new UUID.
func RequestID(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if !validRequestID.MatchString(id) {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			l := base.With().Str("request_id", id).Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
		})
	}
}
