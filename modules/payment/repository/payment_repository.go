package repository

import (
	"context"
	"database/sql"

	"lawlink-api/core/database"
	"lawlink-api/core/logger"
	"lawlink-api/modules/payment/entity"

	"github.com/google/uuid"
)

type PaymentRepositoryInterface interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	GetByOrderRef(ctx context.Context, orderRef string) (*entity.Payment, error)
	GetByProviderTxnID(ctx context.Context, providerTxnID string) (*entity.Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
	SetProviderTxn(ctx context.Context, id uuid.UUID, providerTxnID string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	SettleByTxn(ctx context.Context, providerTxnID, status string, payload entity.JSONB) (bool, error)
	RefundCAS(ctx context.Context, id uuid.UUID) (bool, error)
	ListCompletedWithPendingBooking(ctx context.Context) ([]entity.Payment, error)
}

type PaymentRepository struct {
	db database.Database
}

func NewPaymentRepository(db database.Database) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (booking_id, amount, status, order_ref, provider_txn_id, provider_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	row := r.db.SQLx().QueryRowxContext(ctx, query,
		payment.BookingID, payment.Amount, payment.Status, payment.OrderRef, payment.ProviderTxnID, payment.ProviderPayload)
	if err := row.Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
		logger.Error("PaymentRepository:Create:Error:", err)
		return err
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	query := `SELECT * FROM payments WHERE id = $1`
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		logger.Error("PaymentRepository:GetByID:Error:", err)
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByOrderRef(ctx context.Context, orderRef string) (*entity.Payment, error) {
	var payment entity.Payment
	query := `SELECT * FROM payments WHERE order_ref = $1`
	if err := r.db.GetContext(ctx, &payment, query, orderRef); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("PaymentRepository:GetByOrderRef:Error:", err)
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByProviderTxnID(ctx context.Context, providerTxnID string) (*entity.Payment, error) {
	var payment entity.Payment
	query := `SELECT * FROM payments WHERE provider_txn_id = $1`
	if err := r.db.GetContext(ctx, &payment, query, providerTxnID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("PaymentRepository:GetByProviderTxnID:Error:", err)
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	query := `SELECT * FROM payments WHERE booking_id = $1 ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &payment, query, bookingID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("PaymentRepository:GetByBookingID:Error:", err)
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) SetProviderTxn(ctx context.Context, id uuid.UUID, providerTxnID string) error {
	query := `UPDATE payments SET provider_txn_id = $2, updated_at = NOW() WHERE id = $1`
	if err := r.db.ExecContext(ctx, query, id, providerTxnID); err != nil {
		logger.Error("PaymentRepository:SetProviderTxn:Error:", err)
		return err
	}
	return nil
}

// MarkFailed is used when the gateway rejects the create call, so no pending
// row is left waiting for a callback that will never arrive.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`
	if err := r.db.ExecContext(ctx, query, id, entity.StatusFailed); err != nil {
		logger.Error("PaymentRepository:MarkFailed:Error:", err)
		return err
	}
	return nil
}

// SettleByTxn moves a pending payment to its settled status keyed by the
// provider transaction id. Zero rows means another callback already settled
// it, which the caller treats as a duplicate.
func (r *PaymentRepository) SettleByTxn(ctx context.Context, providerTxnID, status string, payload entity.JSONB) (bool, error) {
	query := `
		UPDATE payments SET status = $2, provider_payload = $3, updated_at = NOW()
		WHERE provider_txn_id = $1 AND status = $4
	`
	res, err := r.db.SQLx().ExecContext(ctx, query, providerTxnID, status, payload, entity.StatusPending)
	if err != nil {
		logger.Error("PaymentRepository:SettleByTxn:Error:", err)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListCompletedWithPendingBooking returns settled payments whose booking is
// still pending, meaning the confirm step after settlement never landed.
func (r *PaymentRepository) ListCompletedWithPendingBooking(ctx context.Context) ([]entity.Payment, error) {
	var payments []entity.Payment
	query := `
		SELECT p.* FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE p.status = $1 AND b.status = 'pending'
	`
	if err := r.db.SelectContext(ctx, &payments, query, entity.StatusCompleted); err != nil {
		logger.Error("PaymentRepository:ListCompletedWithPendingBooking:Error:", err)
		return nil, err
	}
	return payments, nil
}

// RefundCAS flips a completed payment to refunded exactly once.
func (r *PaymentRepository) RefundCAS(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE payments SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`
	res, err := r.db.SQLx().ExecContext(ctx, query, id, entity.StatusRefunded, entity.StatusCompleted)
	if err != nil {
		logger.Error("PaymentRepository:RefundCAS:Error:", err)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
