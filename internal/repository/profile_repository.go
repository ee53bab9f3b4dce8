package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hadirot/functions/internal/database"
)

// ProfileRepository reads the profiles table directly
type ProfileRepository struct {
	db    *database.Postgres
	query string
}

// NewProfileRepository creates a new ProfileRepository for the given table
func NewProfileRepository(db *database.Postgres, table string) *ProfileRepository {
	if table == "" {
		table = "profiles"
	}
	return &ProfileRepository{
		db:    db,
		query: fmt.Sprintf(`SELECT COALESCE(is_admin, false) FROM %s WHERE id = $1`, pq.QuoteIdentifier(table)),
	}
}

// IsAdmin reports whether userID's profile carries the admin flag.
// A missing row reads as false. The token argument is unused: the database
// connection is already privileged and row level security does not apply.
func (r *ProfileRepository) IsAdmin(ctx context.Context, _ string, userID string) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRowContext(ctx, r.query, userID).Scan(&isAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load profile: %w", err)
	}
	return isAdmin, nil
}
