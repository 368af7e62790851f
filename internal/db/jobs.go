package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// -----------------------------------------------------------------------------
// Job listings
// -----------------------------------------------------------------------------

const jobColumns = `id, title, description, requirements, status, company_id, hiring_manager_id, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*types.JobListing, error) {
	var j types.JobListing
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Requirements, &j.Status,
		&j.CompanyID, &j.HiringManagerID, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

func collectJobs(rows pgx.Rows) ([]types.JobListing, error) {
	defer rows.Close()
	out := make([]types.JobListing, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// GetJobListing retrieves a job listing by id
func (db *DB) GetJobListing(ctx context.Context, id int64) (*types.JobListing, error) {
	j, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM job_listings WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, translate("get job listing", err)
	}
	return j, nil
}

// ListJobListings returns all job listings ordered by id
func (db *DB) ListJobListings(ctx context.Context) ([]types.JobListing, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+jobColumns+` FROM job_listings ORDER BY id`)
	if err != nil {
		return nil, translate("list job listings", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, translate("scan job listings", err)
	}
	return jobs, nil
}

// ListJobListingsByCompany returns the listings owned by a company
func (db *DB) ListJobListingsByCompany(ctx context.Context, companyID int64) ([]types.JobListing, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+jobColumns+` FROM job_listings WHERE company_id = $1 ORDER BY id`, companyID)
	if err != nil {
		return nil, translate("list job listings by company", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, translate("scan job listings", err)
	}
	return jobs, nil
}

// CreateJobListing inserts a job listing
func (db *DB) CreateJobListing(ctx context.Context, j *types.JobListing) (*types.JobListing, error) {
	status := j.Status
	if status == "" {
		status = types.JobStatusActive
	}
	created, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO job_listings (title, description, requirements, status, company_id, hiring_manager_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+jobColumns,
		j.Title, j.Description, j.Requirements, status, j.CompanyID, j.HiringManagerID,
	))
	if err != nil {
		return nil, translate("create job listing", err)
	}
	return created, nil
}

// UpdateJobListing replaces the editable fields of a listing
func (db *DB) UpdateJobListing(ctx context.Context, j *types.JobListing) (*types.JobListing, error) {
	updated, err := scanJob(db.pool.QueryRow(ctx,
		`UPDATE job_listings
		 SET title = $2, description = $3, requirements = $4, status = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+jobColumns,
		j.ID, j.Title, j.Description, j.Requirements, j.Status,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, translate("update job listing", err)
	}
	return updated, nil
}
