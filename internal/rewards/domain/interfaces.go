package domain

import (
	"context"
	"time"
)

// Repository methods run on the transaction carried by ctx when there is one.
type Repository interface {
	// AddPoints applies delta and floors the balance at zero in one statement.
	AddPoints(ctx context.Context, userID string, delta int) (int, error)
	InsertTransaction(ctx context.Context, t *Transaction) error
	Balance(ctx context.Context, userID string) (*Balance, error)
	// LockBalance reads the balance for update; a missing row reads as zero.
	LockBalance(ctx context.Context, userID string) (int, error)
	Transactions(ctx context.Context, userID string) ([]Transaction, error)

	CreateVoucher(ctx context.Context, v *Voucher) error
	ListActiveVouchers(ctx context.Context, now time.Time) ([]Voucher, error)
	LockVoucher(ctx context.Context, id string) (*Voucher, error)
	LockVoucherByCode(ctx context.Context, code string) (*Voucher, error)
	DeactivateVoucher(ctx context.Context, id string) error

	InsertRedemption(ctx context.Context, r *Redemption) error
	Redemptions(ctx context.Context, userID string) ([]Redemption, error)
}
