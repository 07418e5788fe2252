package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	_ "github.com/lib/pq"

	"caplock/internal/ledger/models"
	"caplock/pkg/domain"
	"caplock/pkg/platform/sentinel"
)

// Postgres persists the ledger. Amounts travel as NUMERIC(78,0) strings so
// the full 256-bit range survives the round trip. Each mutation runs in one
// transaction with guarded UPDATEs: a precondition failure rolls the whole
// call back.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema is applied by deployment tooling; kept here so integration tests can
// create the tables against a disposable container.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_meta (
	singleton    boolean PRIMARY KEY DEFAULT true CHECK (singleton),
	total_supply numeric(78,0) NOT NULL,
	supply_cap   numeric(78,0) NOT NULL,
	CHECK (total_supply >= 0 AND total_supply <= supply_cap)
);

CREATE TABLE IF NOT EXISTS balances (
	address text PRIMARY KEY,
	balance numeric(78,0) NOT NULL CHECK (balance >= 0)
);

CREATE TABLE IF NOT EXISTS allowances (
	owner   text NOT NULL,
	spender text NOT NULL,
	amount  numeric(78,0) NOT NULL CHECK (amount >= 0),
	PRIMARY KEY (owner, spender)
);
`

func (s *Postgres) Init(ctx context.Context, cap *uint256.Int) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_meta (singleton, total_supply, supply_cap)
		VALUES (true, 0, $1::numeric)
		ON CONFLICT (singleton) DO NOTHING
	`, cap.Dec())
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *Postgres) Mint(ctx context.Context, to domain.Address, amount *uint256.Int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE ledger_meta
			SET total_supply = total_supply + $1::numeric
			WHERE total_supply + $1::numeric <= supply_cap
		`, amount.Dec())
		if err != nil {
			return fmt.Errorf("raise supply: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("raise supply: %w", err)
		}
		if rows == 0 {
			if err := s.requireInitialized(ctx, tx); err != nil {
				return err
			}
			return ErrCapExceeded
		}
		return creditTx(ctx, tx, to, amount)
	})
}

func (s *Postgres) Transfer(ctx context.Context, from, to domain.Address, amount *uint256.Int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return transferTx(ctx, tx, from, to, amount)
	})
}

func (s *Postgres) SetAllowance(ctx context.Context, owner, spender domain.Address, amount *uint256.Int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO allowances (owner, spender, amount)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (owner, spender) DO UPDATE SET amount = EXCLUDED.amount
	`, owner, spender, amount.Dec())
	if err != nil {
		return fmt.Errorf("set allowance: %w", err)
	}
	return nil
}

func (s *Postgres) TransferFrom(ctx context.Context, spender, from, to domain.Address, amount *uint256.Int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE allowances
			SET amount = amount - $3::numeric
			WHERE owner = $1 AND spender = $2 AND amount >= $3::numeric
		`, from, spender, amount.Dec())
		if err != nil {
			return fmt.Errorf("debit allowance: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("debit allowance: %w", err)
		}
		if rows == 0 {
			return ErrInsufficientAllowance
		}
		return transferTx(ctx, tx, from, to, amount)
	})
}

func (s *Postgres) Balance(ctx context.Context, addr domain.Address) (*uint256.Int, error) {
	var dec string
	err := s.db.QueryRowContext(ctx,
		`SELECT balance::text FROM balances WHERE address = $1`, addr,
	).Scan(&dec)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uint256.NewInt(0), nil
		}
		return nil, fmt.Errorf("read balance: %w", err)
	}
	return parseAmount(dec)
}

func (s *Postgres) Allowance(ctx context.Context, owner, spender domain.Address) (*uint256.Int, error) {
	var dec string
	err := s.db.QueryRowContext(ctx,
		`SELECT amount::text FROM allowances WHERE owner = $1 AND spender = $2`, owner, spender,
	).Scan(&dec)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uint256.NewInt(0), nil
		}
		return nil, fmt.Errorf("read allowance: %w", err)
	}
	return parseAmount(dec)
}

func (s *Postgres) Supply(ctx context.Context) (models.Supply, error) {
	var totalDec, capDec string
	err := s.db.QueryRowContext(ctx,
		`SELECT total_supply::text, supply_cap::text FROM ledger_meta`,
	).Scan(&totalDec, &capDec)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Supply{}, sentinel.ErrNotFound
		}
		return models.Supply{}, fmt.Errorf("read supply: %w", err)
	}
	total, err := parseAmount(totalDec)
	if err != nil {
		return models.Supply{}, err
	}
	supplyCap, err := parseAmount(capDec)
	if err != nil {
		return models.Supply{}, err
	}
	return models.Supply{Total: total, Cap: supplyCap}, nil
}

func (s *Postgres) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

func (s *Postgres) requireInitialized(ctx context.Context, tx *sql.Tx) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM ledger_meta)`).Scan(&exists); err != nil {
		return fmt.Errorf("check ledger meta: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return nil
}

func transferTx(ctx context.Context, tx *sql.Tx, from, to domain.Address, amount *uint256.Int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE balances
		SET balance = balance - $2::numeric
		WHERE address = $1 AND balance >= $2::numeric
	`, from, amount.Dec())
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if rows == 0 {
		return ErrInsufficientBalance
	}
	return creditTx(ctx, tx, to, amount)
}

func creditTx(ctx context.Context, tx *sql.Tx, to domain.Address, amount *uint256.Int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO balances (address, balance)
		VALUES ($1, $2::numeric)
		ON CONFLICT (address) DO UPDATE SET balance = balances.balance + EXCLUDED.balance
	`, to, amount.Dec())
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

func parseAmount(dec string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(dec)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", dec, err)
	}
	return amount, nil
}
