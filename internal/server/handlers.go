package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/applicant-tracker/internal/store"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// maxBodyBytes bounds request bodies; resumes pasted as text are the largest payloads.
const maxBodyBytes = 1 << 20

type validatable interface {
	Validate() error
}

// decodeJSON reads the request body into v and validates it.
func decodeJSON(r *http.Request, v validatable) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := v.Validate(); err != nil {
		return validationError(err)
	}
	return nil
}

// pathID parses the {id} path value as a positive integer.
func pathID(r *http.Request) (int64, error) {
	return parseID("id", r.PathValue("id"))
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ErrValidation{Field: field, Message: "must be a positive integer"}
	}
	return id, nil
}

// queryIDs collects ids given either comma-separated or as repeated ?ids= parameters.
func queryIDs(r *http.Request) ([]int64, error) {
	var ids []int64
	for _, raw := range r.URL.Query()["ids"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID("ids", part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, &ErrValidation{Field: "ids", Message: "required"}
	}
	return ids, nil
}

// statusFilter builds an applicant filter from ?status=. "all" and empty do not filter.
func statusFilter(r *http.Request) (store.ApplicantFilter, error) {
	var filter store.ApplicantFilter
	raw := r.URL.Query().Get("status")
	if raw == "" || raw == "all" {
		return filter, nil
	}
	status := types.ApplicantStatus(raw)
	if !status.Valid() {
		return filter, &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", raw)}
	}
	filter.Status = &status
	return filter, nil
}
