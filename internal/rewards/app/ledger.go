package app

import (
	"context"
	"fmt"
	"time"

	"restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
	"restaurant-waste/internal/shared/util"
)

// Ledger is the only writer of reward balances. Each call updates the
// balance and appends one transaction atomically, joining the caller's
// transaction when ctx carries one.
type Ledger struct {
	repo   domain.Repository
	tx     db.Transactor
	logger *util.Logger
	now    func() time.Time
}

func NewLedger(repo domain.Repository, tx db.Transactor, logger *util.Logger) *Ledger {
	return &Ledger{repo: repo, tx: tx, logger: logger, now: time.Now}
}

// AddPoints credits (or, with a negative amount, debits) userID and returns
// the new balance. The balance never drops below zero; the logged delta is
// the requested amount even when the floor swallowed part of it.
func (l *Ledger) AddPoints(ctx context.Context, userID string, amount int, description string, src domain.Source) (int, error) {
	instance := "Ledger.AddPoints"

	if userID == "" {
		return 0, apperrors.Validation("user is required")
	}
	if amount == 0 {
		return 0, apperrors.Validation("amount must not be zero")
	}
	if src.Type == "" {
		src.Type = domain.SourceAdjustment
	}

	var balance int
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = l.repo.AddPoints(ctx, userID, amount)
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		t := &domain.Transaction{
			ID:          util.GenerateUUID(),
			UserID:      userID,
			Points:      amount,
			Description: description,
			SourceType:  src.Type,
			CreatedAt:   l.now(),
		}
		if src.ID != "" {
			id := src.ID
			t.SourceID = &id
		}
		if err := l.repo.InsertTransaction(ctx, t); err != nil {
			return fmt.Errorf("log transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		l.logger.Error(instance, "ledger update failed", err, "user_id", userID, "amount", amount)
		return 0, err
	}

	l.logger.OK(instance, "points applied", "user_id", userID, "amount", amount,
		"balance", balance, "source", string(src.Type))
	return balance, nil
}
