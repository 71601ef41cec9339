package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// IdentityRepository provides PostgreSQL-backed identity storage
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Upsert inserts an identity or replaces its display name by external id
func (r *IdentityRepository) Upsert(ctx context.Context, identity database.Identity) error {
	query := `
		INSERT INTO identities (external_id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (external_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, identity.ExternalID, identity.DisplayName)
	if err != nil {
		return fmt.Errorf("upsert identity: %w", err)
	}
	return nil
}

// Get retrieves an identity by external id, returns nil if not found
func (r *IdentityRepository) Get(ctx context.Context, externalID string) (*database.Identity, error) {
	query := `
		SELECT external_id, display_name, created_at, updated_at
		FROM identities
		WHERE external_id = $1
	`

	var id database.Identity
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&id.ExternalID,
		&id.DisplayName,
		&id.CreatedAt,
		&id.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}

	return &id, nil
}

// List returns all identities ordered by external id
func (r *IdentityRepository) List(ctx context.Context) ([]database.Identity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT external_id, display_name, created_at, updated_at
		FROM identities
		ORDER BY external_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []database.Identity
	for rows.Next() {
		var id database.Identity
		if err := rows.Scan(&id.ExternalID, &id.DisplayName, &id.CreatedAt, &id.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}
