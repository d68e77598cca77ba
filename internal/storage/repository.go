// Package storage persists expense records in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kakeibo/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an expense id does not exist.
var ErrNotFound = errors.New("expense not found")

const dateLayout = "2006-01-02 15:04:05"

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

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateExpense inserts a record and returns it with its assigned id.
// A record without a date gets the current time.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, rec core.Record) (core.Record, error) {
	if rec.Date.IsZero() {
		rec.Date = core.Date{Time: time.Now()}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, amount_cents, category, memo) VALUES (?, ?, ?, ?)`,
		rec.Date.Format(dateLayout), rec.Amount.Cents, rec.Category, rec.Memo)
	if err != nil {
		return core.Record{}, fmt.Errorf("create expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Record{}, fmt.Errorf("read insert id: %w", err)
	}
	rec.ID = id

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", rec.ID,
		"amount_cents", rec.Amount.Cents,
		"category", rec.Category)

	return rec, nil
}

// ListExpenses returns every record, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, category, memo FROM expenses ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return records, nil
}

// GetExpense fetches a single record by id.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, date, amount_cents, category, memo FROM expenses WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ErrNotFound
	}
	if err != nil {
		return core.Record{}, err
	}
	return rec, nil
}

// UpdateExpense replaces the mutable fields of an existing record.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, rec core.Record) (core.Record, error) {
	if rec.Date.IsZero() {
		rec.Date = core.Date{Time: time.Now()}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET date = ?, amount_cents = ?, category = ?, memo = ?, updated_at = datetime('now', 'localtime') WHERE id = ?`,
		rec.Date.Format(dateLayout), rec.Amount.Cents, rec.Category, rec.Memo, rec.ID)
	if err != nil {
		return core.Record{}, fmt.Errorf("update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Record{}, fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return core.Record{}, ErrNotFound
	}
	return rec, nil
}

// DeleteExpense removes a record by id.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		rec     core.Record
		rawDate string
	)
	if err := row.Scan(&rec.ID, &rawDate, &rec.Amount.Cents, &rec.Category, &rec.Memo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Record{}, err
		}
		return core.Record{}, fmt.Errorf("scan expense: %w", err)
	}
	// Rows written before the schema enforced a format keep the record
	// usable with an absent date.
	date, err := core.ParseDate(rawDate)
	if err == nil {
		rec.Date = date
	}
	return rec, nil
}
