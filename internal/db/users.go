package db

import (
	"context"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// -----------------------------------------------------------------------------
// Users and companies
// -----------------------------------------------------------------------------

const userColumns = `id, username, password_hash, full_name, email, role, avatar_url, company_id`

func scanUser(row interface{ Scan(...any) error }) (*types.User, error) {
	var u types.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Role, &u.AvatarURL, &u.CompanyID); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user by id
func (db *DB) GetUser(ctx context.Context, id int64) (*types.User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, translate("get user", err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by login name
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, translate("get user by username", err)
	}
	return u, nil
}

// CreateUser inserts a user
func (db *DB) CreateUser(ctx context.Context, u *types.User) (*types.User, error) {
	role := u.Role
	if role == "" {
		role = "hiring_manager"
	}
	created, err := scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, full_name, email, role, avatar_url, company_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		u.Username, u.PasswordHash, u.FullName, u.Email, role, u.AvatarURL, u.CompanyID,
	))
	if err != nil {
		return nil, translate("create user", err)
	}
	return created, nil
}

// GetCompany retrieves a company by id
func (db *DB) GetCompany(ctx context.Context, id int64) (*types.Company, error) {
	var c types.Company
	err := db.pool.QueryRow(ctx, `SELECT id, name, domain FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Domain)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, translate("get company", err)
	}
	return &c, nil
}

// CreateCompany inserts a company
func (db *DB) CreateCompany(ctx context.Context, c *types.Company) (*types.Company, error) {
	out := *c
	err := db.pool.QueryRow(ctx,
		`INSERT INTO companies (name, domain) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Domain,
	).Scan(&out.ID)
	if err != nil {
		return nil, translate("create company", err)
	}
	return &out, nil
}
