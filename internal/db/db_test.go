package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/applicant-tracker/internal/store"
)

func TestSchemaDefinesAllTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"companies", "users", "job_listings", "applicants", "applicant_notes", "ai_analyses"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
	// One analysis per applicant is what makes the upsert possible.
	assert.Contains(t, schema, "applicant_id    INTEGER NOT NULL UNIQUE REFERENCES applicants(id)")
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantReference bool
		wantContains  string
	}{
		{
			name:          "foreign key violation",
			err:           &pgconn.PgError{Code: codeForeignKeyViolation, Detail: "Key (job_listing_id)=(9) is not present"},
			wantReference: true,
			wantContains:  "job_listing_id",
		},
		{
			name:         "unique violation",
			err:          &pgconn.PgError{Code: codeUniqueViolation, Detail: "Key (username)=(katy) already exists"},
			wantContains: "duplicate value",
		},
		{
			name:         "wrapped other error",
			err:          fmt.Errorf("conn: %w", errors.New("broken pipe")),
			wantContains: "broken pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate("create applicant", tt.err)
			assert.Equal(t, tt.wantReference, errors.Is(got, store.ErrInvalidReference))
			assert.Contains(t, got.Error(), tt.wantContains)
		})
	}
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(pgx.ErrNoRows))
	assert.True(t, isNoRows(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)))
	assert.False(t, isNoRows(errors.New("other")))
}

func TestLimitArg(t *testing.T) {
	assert.Equal(t, 5, limitArg(5))
	assert.Equal(t, 0, limitArg(0))
	assert.Nil(t, limitArg(-1), "negative limit binds NULL for LIMIT ALL")
}
