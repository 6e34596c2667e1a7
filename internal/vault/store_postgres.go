package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
	txcontext "heirloom/pkg/platform/tx"
)

// PostgresStore persists vaults with participants and items as JSONB
// documents. Membership lists are small and always read whole, so document
// columns beat join tables here.
//
//	CREATE TABLE vaults (
//	    id           UUID PRIMARY KEY,
//	    owner_id     UUID NOT NULL,
//	    title        TEXT NOT NULL,
//	    description  TEXT NOT NULL DEFAULT '',
//	    rule_set_id  TEXT NOT NULL DEFAULT '',
//	    participants JSONB NOT NULL DEFAULT '[]',
//	    items        JSONB NOT NULL DEFAULT '[]',
//	    created_at   TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX vaults_owner_idx ON vaults (owner_id);
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

func marshalCollections(vault *Vault) ([]byte, []byte, error) {
	participants, err := json.Marshal(vault.Participants)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal participants: %w", err)
	}
	items, err := json.Marshal(vault.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal items: %w", err)
	}
	return participants, items, nil
}

func (s *PostgresStore) Save(ctx context.Context, vault *Vault) error {
	participants, items, err := marshalCollections(vault)
	if err != nil {
		return err
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO vaults (id, owner_id, title, description, rule_set_id, participants, items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(vault.ID), uuid.UUID(vault.OwnerID), vault.Title, vault.Description,
		vault.RuleSetID, participants, items, vault.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert vault: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, vaultID id.VaultID) (*Vault, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, rule_set_id, participants, items, created_at
		FROM vaults WHERE id = $1
	`, uuid.UUID(vaultID))
	vault, err := scanVault(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return vault, nil
}

func (s *PostgresStore) Update(ctx context.Context, vault *Vault) error {
	participants, items, err := marshalCollections(vault)
	if err != nil {
		return err
	}
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE vaults SET title = $2, description = $3, rule_set_id = $4, participants = $5, items = $6
		WHERE id = $1
	`, uuid.UUID(vault.ID), vault.Title, vault.Description, vault.RuleSetID, participants, items)
	if err != nil {
		return fmt.Errorf("update vault: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vault: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*Vault, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, description, rule_set_id, participants, items, created_at
		FROM vaults WHERE owner_id = $1
		ORDER BY created_at DESC
	`, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	defer rows.Close()

	var out []*Vault
	for rows.Next() {
		vault, err := scanVault(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, vault)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVault(row rowScanner) (*Vault, error) {
	var (
		vault        Vault
		vaultID      uuid.UUID
		ownerID      uuid.UUID
		participants []byte
		items        []byte
	)
	err := row.Scan(&vaultID, &ownerID, &vault.Title, &vault.Description,
		&vault.RuleSetID, &participants, &items, &vault.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan vault: %w", err)
	}
	vault.ID = id.VaultID(vaultID)
	vault.OwnerID = id.UserID(ownerID)
	if err := json.Unmarshal(participants, &vault.Participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	if err := json.Unmarshal(items, &vault.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return &vault, nil
}
