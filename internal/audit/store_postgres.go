package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
	txcontext "heirloom/pkg/platform/tx"
)

// PostgresStore persists chain entries in the audit_entries table, keyed by an
// opaque global sequence. Timestamps are stored at microsecond precision; the
// recorder truncates before hashing so digests survive the round trip.
//
//	CREATE TABLE audit_entries (
//	    seq        BIGSERIAL PRIMARY KEY,
//	    id         UUID NOT NULL UNIQUE,
//	    actor_id   UUID NULL,
//	    action     TEXT NOT NULL,
//	    details    JSONB NOT NULL,
//	    vault_id   UUID NULL,
//	    ts         TIMESTAMPTZ NOT NULL,
//	    prev_hash  TEXT NOT NULL,
//	    hash       TEXT NOT NULL
//	);
//	CREATE INDEX audit_entries_vault_idx ON audit_entries (vault_id, seq DESC);
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

func (s *PostgresStore) Append(ctx context.Context, entry *Entry) error {
	payload, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	var actorID *uuid.UUID
	if entry.Actor != nil {
		u := uuid.UUID(*entry.Actor)
		actorID = &u
	}
	var vaultID *uuid.UUID
	if scoped, ok := entry.VaultID(); ok {
		u := uuid.UUID(scoped)
		vaultID = &u
	}

	query := `
		INSERT INTO audit_entries (id, actor_id, action, details, vault_id, ts, prev_hash, hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		entry.ID, actorID, string(entry.Action), payload, vaultID,
		entry.Timestamp, entry.PrevHash, entry.Hash,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w: %w", err, sentinel.ErrUnavailable)
	}
	return nil
}

func (s *PostgresStore) TailHash(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT hash FROM audit_entries ORDER BY seq DESC LIMIT 1`,
	).Scan(&hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("read chain tail: %w", err)
	}
	return hash, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, action, details, ts, prev_hash, hash
		FROM audit_entries
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *PostgresStore) ListByVault(ctx context.Context, vaultID id.VaultID) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, action, details, ts, prev_hash, hash
		FROM audit_entries
		WHERE vault_id = $1
		ORDER BY seq DESC
	`, uuid.UUID(vaultID))
	if err != nil {
		return nil, fmt.Errorf("list vault audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var out []*Entry
	for rows.Next() {
		var (
			entry   Entry
			actorID *uuid.UUID
			action  string
			payload []byte
		)
		if err := rows.Scan(&entry.ID, &actorID, &action, &payload,
			&entry.Timestamp, &entry.PrevHash, &entry.Hash); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Action = Action(action)
		if actorID != nil {
			actor := id.UserID(*actorID)
			entry.Actor = &actor
		}
		details, err := decodeDetails(entry.Action, payload)
		if err != nil {
			return nil, fmt.Errorf("decode audit details: %w", err)
		}
		entry.Details = details
		out = append(out, &entry)
	}
	return out, rows.Err()
}
