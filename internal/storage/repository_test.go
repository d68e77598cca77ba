package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kakeibo/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndGetExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, core.Record{
		Date:     core.NewDate(2024, 1, 5),
		Amount:   core.Money{Cents: 100000},
		Category: "food",
		Memo:     "groceries",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != 100000 || got.Category != "food" || got.Memo != "groceries" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.MonthKey() != "2024-01" {
		t.Fatalf("expected month 2024-01, got %q", got.MonthKey())
	}
}

func TestCreateExpenseDefaultsDate(t *testing.T) {
	repo := newTestRepo(t)
	created, err := repo.CreateExpense(context.Background(), core.Record{
		Amount:   core.Money{Cents: 500},
		Category: "misc",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Date.IsZero() {
		t.Fatalf("expected a defaulted date")
	}
}

func TestListExpensesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older, _ := repo.CreateExpense(ctx, core.Record{
		Date: core.NewDate(2024, 1, 5), Amount: core.Money{Cents: 100}, Category: "food",
	})
	newer, _ := repo.CreateExpense(ctx, core.Record{
		Date: core.NewDate(2024, 2, 10), Amount: core.Money{Cents: 200}, Category: "food",
	})

	records, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != newer.ID || records[1].ID != older.ID {
		t.Fatalf("expected newest first, got %v then %v", records[0].ID, records[1].ID)
	}
}

func TestUpdateExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, _ := repo.CreateExpense(ctx, core.Record{
		Date: core.NewDate(2024, 1, 5), Amount: core.Money{Cents: 100}, Category: "food",
	})

	created.Amount = core.Money{Cents: 250}
	created.Memo = "corrected"
	if _, err := repo.UpdateExpense(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != 250 || got.Memo != "corrected" {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestUpdateMissingExpense(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.UpdateExpense(context.Background(), core.Record{
		ID: 999, Date: core.NewDate(2024, 1, 1), Amount: core.Money{Cents: 1}, Category: "food",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, _ := repo.CreateExpense(ctx, core.Record{
		Date: core.NewDate(2024, 1, 5), Amount: core.Money{Cents: 100}, Category: "food",
	})
	if err := repo.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetExpense(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteExpense(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}
