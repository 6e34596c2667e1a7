package keystore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
	txcontext "heirloom/pkg/platform/tx"
)

// PostgresStore persists envelopes in sealed_key_envelopes, unique per
// (vault_id, participant_id). The unique constraint makes Insert atomic with
// its duplicate check.
//
//	CREATE TABLE sealed_key_envelopes (
//	    vault_id       UUID NOT NULL,
//	    participant_id UUID NOT NULL,
//	    ciphertext     BYTEA,
//	    status         TEXT NOT NULL,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    sealed_at      TIMESTAMPTZ NULL,
//	    PRIMARY KEY (vault_id, participant_id)
//	);
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

func (s *PostgresStore) Insert(ctx context.Context, envelope *Envelope) error {
	query := `
		INSERT INTO sealed_key_envelopes (vault_id, participant_id, ciphertext, status, created_at, sealed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (vault_id, participant_id) DO NOTHING
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(envelope.VaultID), uuid.UUID(envelope.ParticipantID),
		envelope.Ciphertext, string(envelope.Status), envelope.CreatedAt, envelope.SealedAt,
	)
	if err != nil {
		return fmt.Errorf("insert envelope: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert envelope: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, vaultID id.VaultID, participantID id.UserID) (*Envelope, error) {
	envelope := &Envelope{VaultID: vaultID, ParticipantID: participantID}
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT ciphertext, status, created_at, sealed_at
		FROM sealed_key_envelopes
		WHERE vault_id = $1 AND participant_id = $2
	`, uuid.UUID(vaultID), uuid.UUID(participantID)).Scan(
		&envelope.Ciphertext, &status, &envelope.CreatedAt, &envelope.SealedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find envelope: %w", err)
	}
	envelope.Status = EnvelopeStatus(status)
	return envelope, nil
}

// MarkSealed is conditional on the stored status: zero rows affected means no
// pending envelope remained, so a concurrent seal already won.
func (s *PostgresStore) MarkSealed(ctx context.Context, envelope *Envelope) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE sealed_key_envelopes
		SET ciphertext = $3, status = $4, sealed_at = $5
		WHERE vault_id = $1 AND participant_id = $2 AND status = $6
	`, uuid.UUID(envelope.VaultID), uuid.UUID(envelope.ParticipantID),
		envelope.Ciphertext, string(envelope.Status), envelope.SealedAt,
		string(StatusPending),
	)
	if err != nil {
		return fmt.Errorf("seal envelope: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("seal envelope: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, vaultID id.VaultID, participantID id.UserID) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		DELETE FROM sealed_key_envelopes
		WHERE vault_id = $1 AND participant_id = $2
	`, uuid.UUID(vaultID), uuid.UUID(participantID))
	if err != nil {
		return fmt.Errorf("delete envelope: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete envelope: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
