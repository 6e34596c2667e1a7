package release

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
	txcontext "heirloom/pkg/platform/tx"
)

// PostgresStore persists releases.
//
//	CREATE TABLE releases (
//	    id           UUID PRIMARY KEY,
//	    vault_id     UUID NOT NULL,
//	    status       TEXT NOT NULL,
//	    triggered_at TIMESTAMPTZ NOT NULL,
//	    updated_at   TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX releases_vault_idx ON releases (vault_id, triggered_at DESC);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Save(ctx context.Context, release *Release) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO releases (id, vault_id, status, triggered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(release.ID), uuid.UUID(release.VaultID), string(release.Status),
		release.TriggeredAt, release.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert release: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, releaseID id.ReleaseID) (*Release, error) {
	release := &Release{ID: releaseID}
	var vaultID uuid.UUID
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT vault_id, status, triggered_at, updated_at
		FROM releases WHERE id = $1
	`, uuid.UUID(releaseID)).Scan(&vaultID, &status, &release.TriggeredAt, &release.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find release: %w", err)
	}
	release.VaultID = id.VaultID(vaultID)
	release.Status = Status(status)
	return release, nil
}

func (s *PostgresStore) Update(ctx context.Context, release *Release) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE releases SET status = $2, updated_at = $3 WHERE id = $1
	`, uuid.UUID(release.ID), string(release.Status), release.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update release: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update release: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByVault(ctx context.Context, vaultID id.VaultID) ([]*Release, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, triggered_at, updated_at
		FROM releases WHERE vault_id = $1
		ORDER BY triggered_at DESC
	`, uuid.UUID(vaultID))
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	var out []*Release
	for rows.Next() {
		release := &Release{VaultID: vaultID}
		var releaseID uuid.UUID
		var status string
		if err := rows.Scan(&releaseID, &status, &release.TriggeredAt, &release.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		release.ID = id.ReleaseID(releaseID)
		release.Status = Status(status)
		out = append(out, release)
	}
	return out, rows.Err()
}
