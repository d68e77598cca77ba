package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

// ExpenseRepository is the storage surface the service needs.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, rec core.Record) (core.Record, error)
	ListExpenses(ctx context.Context) ([]core.Record, error)
	GetExpense(ctx context.Context, id int64) (core.Record, error)
	UpdateExpense(ctx context.Context, rec core.Record) (core.Record, error)
	DeleteExpense(ctx context.Context, id int64) error
	Close() error
}

// EventPublisher publishes expense lifecycle events.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, id int64, action amqp.Action) error
	Close() error
}

// ExpenseService orchestrates expense operations across SQLite and AMQP.
// Records are saved locally first; event publishing is best-effort and
// never fails the request.
type ExpenseService struct {
	repo      ExpenseRepository
	publisher EventPublisher
}

func NewExpenseService(repo ExpenseRepository, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		repo:      repo,
		publisher: publisher,
	}
}

// Create saves a record and publishes a created event.
func (s *ExpenseService) Create(ctx context.Context, rec core.Record) (core.Record, error) {
	saved, err := s.repo.CreateExpense(ctx, rec)
	if err != nil {
		return core.Record{}, fmt.Errorf("save expense: %w", err)
	}

	if err := s.publishEvent(ctx, saved.ID, amqp.ActionCreated); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", saved.ID, "action", amqp.ActionCreated, "error", err)
		// Don't fail the request, the record is saved locally
	}

	return saved, nil
}

// List returns every record, newest first.
func (s *ExpenseService) List(ctx context.Context) ([]core.Record, error) {
	return s.repo.ListExpenses(ctx)
}

// Get fetches a single record by id. Returns storage.ErrNotFound when
// the id does not exist.
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Record, error) {
	return s.repo.GetExpense(ctx, id)
}

// Update replaces an existing record and publishes an updated event.
func (s *ExpenseService) Update(ctx context.Context, rec core.Record) (core.Record, error) {
	saved, err := s.repo.UpdateExpense(ctx, rec)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.Record{}, err
		}
		return core.Record{}, fmt.Errorf("update expense: %w", err)
	}

	if err := s.publishEvent(ctx, saved.ID, amqp.ActionUpdated); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", saved.ID, "action", amqp.ActionUpdated, "error", err)
	}

	return saved, nil
}

// Delete removes a record and publishes a deleted event.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}

	if err := s.publishEvent(ctx, id, amqp.ActionDeleted); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id, "action", amqp.ActionDeleted, "error", err)
	}

	return nil
}

func (s *ExpenseService) publishEvent(ctx context.Context, id int64, action amqp.Action) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event", "id", id, "action", action)
		return nil
	}
	return s.publisher.PublishExpenseEvent(ctx, id, action)
}

// Close closes both storage and AMQP connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
