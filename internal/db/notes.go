package db

import (
	"context"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// ListNotes returns the notes of an applicant, newest first
func (db *DB) ListNotes(ctx context.Context, applicantID int64) ([]types.ApplicantNote, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, content, applicant_id, user_id, created_at
		 FROM applicant_notes WHERE applicant_id = $1
		 ORDER BY created_at DESC, id DESC`,
		applicantID,
	)
	if err != nil {
		return nil, translate("list notes", err)
	}
	defer rows.Close()

	out := make([]types.ApplicantNote, 0)
	for rows.Next() {
		var n types.ApplicantNote
		if err := rows.Scan(&n.ID, &n.Content, &n.ApplicantID, &n.UserID, &n.CreatedAt); err != nil {
			return nil, translate("scan note", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list notes", err)
	}
	return out, nil
}

// CreateNote appends a note; applicant and author must exist
func (db *DB) CreateNote(ctx context.Context, n *types.ApplicantNote) (*types.ApplicantNote, error) {
	out := *n
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applicant_notes (content, applicant_id, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		n.Content, n.ApplicantID, n.UserID,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, translate("create note", err)
	}
	return &out, nil
}
