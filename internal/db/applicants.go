package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applicant-tracker/internal/store"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// -----------------------------------------------------------------------------
// Applicants
// -----------------------------------------------------------------------------

const applicantColumns = `id, name, email, phone, experience, education, skills, resume_url,
	profile_pic_url, job_listing_id, status, match_score, created_at`

func scanApplicant(row interface{ Scan(...any) error }) (*types.Applicant, error) {
	var a types.Applicant
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Experience, &a.Education, &a.Skills,
		&a.ResumeURL, &a.ProfilePicURL, &a.JobListingID, &a.Status, &a.MatchScore, &a.CreatedAt); err != nil {
		return nil, err
	}
	if a.Skills == nil {
		a.Skills = []string{}
	}
	return &a, nil
}

func collectApplicants(rows pgx.Rows) ([]types.Applicant, error) {
	defer rows.Close()
	out := make([]types.Applicant, 0)
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (db *DB) queryApplicants(ctx context.Context, op, query string, args ...any) ([]types.Applicant, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	out, err := collectApplicants(rows)
	if err != nil {
		return nil, translate(op, err)
	}
	return out, nil
}

// GetApplicant retrieves an applicant by id
func (db *DB) GetApplicant(ctx context.Context, id int64) (*types.Applicant, error) {
	a, err := scanApplicant(db.pool.QueryRow(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, translate("get applicant", err)
	}
	return a, nil
}

// GetApplicantsByIDs returns the applicants that exist, in the order requested
func (db *DB) GetApplicantsByIDs(ctx context.Context, ids []int64) ([]types.Applicant, error) {
	if len(ids) == 0 {
		return []types.Applicant{}, nil
	}
	found, err := db.queryApplicants(ctx, "get applicants by ids",
		`SELECT `+applicantColumns+` FROM applicants WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]types.Applicant, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	out := make([]types.Applicant, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListApplicants returns applicants matching the filter, ordered by id
func (db *DB) ListApplicants(ctx context.Context, filter store.ApplicantFilter) ([]types.Applicant, error) {
	var where []string
	var args []any
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.JobListingID != nil {
		args = append(args, *filter.JobListingID)
		where = append(where, fmt.Sprintf("job_listing_id = $%d", len(args)))
	}

	query := `SELECT ` + applicantColumns + ` FROM applicants`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	return db.queryApplicants(ctx, "list applicants", query, args...)
}

// CreateApplicant inserts an applicant; the job listing must exist
func (db *DB) CreateApplicant(ctx context.Context, a *types.Applicant) (*types.Applicant, error) {
	status := a.Status
	if status == "" {
		status = types.StatusNew
	}
	skills := a.Skills
	if skills == nil {
		skills = []string{}
	}
	created, err := scanApplicant(db.pool.QueryRow(ctx,
		`INSERT INTO applicants (name, email, phone, experience, education, skills, resume_url,
		                         profile_pic_url, job_listing_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+applicantColumns,
		a.Name, a.Email, a.Phone, a.Experience, a.Education, skills, a.ResumeURL,
		a.ProfilePicURL, a.JobListingID, string(status),
	))
	if err != nil {
		return nil, translate("create applicant", err)
	}
	return created, nil
}

// UpdateApplicantStatus sets the review status; any transition is allowed
func (db *DB) UpdateApplicantStatus(ctx context.Context, id int64, status types.ApplicantStatus) (*types.Applicant, error) {
	a, err := scanApplicant(db.pool.QueryRow(ctx,
		`UPDATE applicants SET status = $2 WHERE id = $1 RETURNING `+applicantColumns,
		id, string(status),
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, translate("update applicant status", err)
	}
	return a, nil
}

// UpdateApplicantMatchScore caches the analysis rating on the applicant
func (db *DB) UpdateApplicantMatchScore(ctx context.Context, id int64, score int) (*types.Applicant, error) {
	a, err := scanApplicant(db.pool.QueryRow(ctx,
		`UPDATE applicants SET match_score = $2 WHERE id = $1 RETURNING `+applicantColumns,
		id, score,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, translate("update applicant match score", err)
	}
	return a, nil
}

// limitArg binds n to a LIMIT placeholder. A negative n becomes NULL, which
// Postgres reads as LIMIT ALL.
func limitArg(n int) any {
	if n < 0 {
		return nil
	}
	return n
}

// TopApplicantsByMatchScore returns the n best scored applicants
func (db *DB) TopApplicantsByMatchScore(ctx context.Context, n int) ([]types.Applicant, error) {
	return db.queryApplicants(ctx, "top applicants",
		`SELECT `+applicantColumns+` FROM applicants
		 WHERE match_score IS NOT NULL
		 ORDER BY match_score DESC, id ASC
		 LIMIT $1`, limitArg(n))
}

// TopApplicantsByJobIDAndMatchScore returns the n best scored applicants of a job
func (db *DB) TopApplicantsByJobIDAndMatchScore(ctx context.Context, jobID int64, n int) ([]types.Applicant, error) {
	return db.queryApplicants(ctx, "top applicants by job",
		`SELECT `+applicantColumns+` FROM applicants
		 WHERE match_score IS NOT NULL AND job_listing_id = $1
		 ORDER BY match_score DESC, id ASC
		 LIMIT $2`, jobID, limitArg(n))
}

func (db *DB) count(ctx context.Context, op, query string, args ...any) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, translate(op, err)
	}
	return n, nil
}

// CountApplicants counts every applicant
func (db *DB) CountApplicants(ctx context.Context) (int, error) {
	return db.count(ctx, "count applicants", `SELECT COUNT(*) FROM applicants`)
}

// CountApplicantsByStatus counts applicants in a review state
func (db *DB) CountApplicantsByStatus(ctx context.Context, status types.ApplicantStatus) (int, error) {
	return db.count(ctx, "count applicants by status", `SELECT COUNT(*) FROM applicants WHERE status = $1`, string(status))
}

// CountApplicantsByJobID counts the pool of a job
func (db *DB) CountApplicantsByJobID(ctx context.Context, jobID int64) (int, error) {
	return db.count(ctx, "count applicants by job", `SELECT COUNT(*) FROM applicants WHERE job_listing_id = $1`, jobID)
}

// CountApplicantsByMatchScore counts applicants scoring at least minScore; unscored count as 0
func (db *DB) CountApplicantsByMatchScore(ctx context.Context, minScore int) (int, error) {
	return db.count(ctx, "count applicants by match score",
		`SELECT COUNT(*) FROM applicants WHERE COALESCE(match_score, 0) >= $1`, minScore)
}
