// Package services holds the application logic between HTTP handlers and
// storage: ownership enforcement, validation, and aggregation.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// TransactionService performs transaction operations on behalf of an
// authenticated user. Every read and write of an existing row checks that
// the row's owner matches the caller before touching it; a mismatch is
// core.ErrForbidden, distinct from core.ErrNotFound.
type TransactionService struct {
	storage *storage.SQLiteRepository
}

func NewTransactionService(storage *storage.SQLiteRepository) *TransactionService {
	return &TransactionService{storage: storage}
}

// Create records a new transaction owned by userID.
func (s *TransactionService) Create(ctx context.Context, userID int64, amount core.Money, category string, date core.Date, kind core.Kind) (int64, error) {
	t := core.Transaction{
		UserID:   userID,
		Amount:   amount,
		Category: category,
		Date:     date,
		Kind:     kind,
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return id, nil
}

// Get returns one transaction after verifying ownership.
func (s *TransactionService) Get(ctx context.Context, id, userID int64) (core.Transaction, error) {
	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := checkOwnership(ctx, t, userID); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Update overwrites the four mutable fields of an owned transaction.
func (s *TransactionService) Update(ctx context.Context, id, userID int64, amount core.Money, category string, date core.Date, kind core.Kind) error {
	existing, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwnership(ctx, existing, userID); err != nil {
		return err
	}

	updated := core.Transaction{
		ID:       id,
		UserID:   existing.UserID,
		Amount:   amount,
		Category: category,
		Date:     date,
		Kind:     kind,
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	if err := s.storage.UpdateTransaction(ctx, updated); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", "transaction_id", id, "user_id", userID)
	return nil
}

// Delete removes an owned transaction. Removal is immediate and
// irreversible; there is no soft delete.
func (s *TransactionService) Delete(ctx context.Context, id, userID int64) error {
	existing, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwnership(ctx, existing, userID); err != nil {
		return err
	}

	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id, "user_id", userID)
	return nil
}

// List returns the user's transactions narrowed by the filter, newest first.
func (s *TransactionService) List(ctx context.Context, userID int64, f core.Filter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID, f)
}

// Recent returns at most n of the user's most recent transactions.
func (s *TransactionService) Recent(ctx context.Context, userID int64, n int) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID, core.Filter{Limit: n})
}

func checkOwnership(ctx context.Context, t core.Transaction, userID int64) error {
	if t.UserID != userID {
		slog.WarnContext(ctx, "Ownership check failed",
			"transaction_id", t.ID,
			"owner_id", t.UserID,
			"user_id", userID)
		return core.ErrForbidden
	}
	return nil
}
