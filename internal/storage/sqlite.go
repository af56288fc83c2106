package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kasklub/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert implements Store. ID and CreatedAt are assigned here when the
// caller left them empty; both are immutable afterwards.
func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, occurred_on, description, category, amount_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID,
		tx.OccurredOn.UTC().Format(time.RFC3339),
		tx.Description,
		string(tx.Category),
		tx.Amount.Cents,
		tx.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents)

	return tx, nil
}

// ListAll implements Store. Most recent transaction date first; rows on the
// same date come back newest-inserted first.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, occurred_on, description, category, amount_cents, created_at
		 FROM transactions
		 ORDER BY occurred_on DESC, created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

// GetByID implements Store.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, occurred_on, description, category, amount_cents, created_at
		 FROM transactions WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// DeleteByID implements Store. A single-row DELETE keyed by id; the driver's
// affected-row count distinguishes success from not-found.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx         core.Transaction
		occurredOn string
		category   string
		createdAt  string
	)
	err := row.Scan(&tx.ID, &occurredOn, &tx.Description, &category, &tx.Amount.Cents, &createdAt)
	if err == sql.ErrNoRows {
		return core.Transaction{}, err
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Category = core.Category(category)
	if tx.OccurredOn, err = time.Parse(time.RFC3339, occurredOn); err != nil {
		return core.Transaction{}, fmt.Errorf("parse occurred_on %q: %w", occurredOn, err)
	}
	if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return tx, nil
}
