package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"caplock/internal/roles/models"
	"caplock/pkg/domain"
	"caplock/pkg/platform/sentinel"
)

// Postgres persists the registry as a single row. The Execute callback runs
// inside a transaction holding a FOR UPDATE lock on that row, which gives the
// same validate-then-mutate atomicity as the in-memory store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema is applied by deployment tooling; kept here so tests can create the
// table against a disposable container.
const Schema = `
CREATE TABLE IF NOT EXISTS role_registry (
	singleton            boolean PRIMARY KEY DEFAULT true CHECK (singleton),
	primary_admin        text NOT NULL,
	minting_admin        text NOT NULL,
	governance_authority text NOT NULL
);
`

func (s *Postgres) Init(ctx context.Context, registry models.Registry) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO role_registry (singleton, primary_admin, minting_admin, governance_authority)
		VALUES (true, $1, $2, $3)
		ON CONFLICT (singleton) DO NOTHING
	`, registry.PrimaryAdmin, registry.MintingAdmin, registry.GovernanceAuthority)
	if err != nil {
		return fmt.Errorf("init role registry: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("init role registry: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context) (models.Registry, error) {
	return scanRegistry(s.db.QueryRowContext(ctx, `
		SELECT primary_admin, minting_admin, governance_authority FROM role_registry
	`))
}

func (s *Postgres) Execute(ctx context.Context, validate func(*models.Registry) error, mutate func(*models.Registry)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registry tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	registry, err := scanRegistry(tx.QueryRowContext(ctx, `
		SELECT primary_admin, minting_admin, governance_authority
		FROM role_registry FOR UPDATE
	`))
	if err != nil {
		return err
	}
	if err := validate(&registry); err != nil {
		return err
	}
	mutate(&registry)

	if _, err := tx.ExecContext(ctx, `
		UPDATE role_registry
		SET primary_admin = $1, minting_admin = $2, governance_authority = $3
	`, registry.PrimaryAdmin, registry.MintingAdmin, registry.GovernanceAuthority); err != nil {
		return fmt.Errorf("update role registry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registry tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistry(row rowScanner) (models.Registry, error) {
	var primary, minting, authority domain.Address
	if err := row.Scan(&primary, &minting, &authority); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Registry{}, sentinel.ErrNotFound
		}
		return models.Registry{}, fmt.Errorf("scan role registry: %w", err)
	}
	return models.Registry{
		PrimaryAdmin:        primary,
		MintingAdmin:        minting,
		GovernanceAuthority: authority,
	}, nil
}
