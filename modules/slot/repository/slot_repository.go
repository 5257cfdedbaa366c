package repository

import (
	"context"
	"fmt"
	"time"

	"lawlink-api/core/database"
	"lawlink-api/core/errors"
	"lawlink-api/core/logger"
	"lawlink-api/modules/slot/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// pgLockNotAvailable is returned by FOR UPDATE NOWAIT when the row is locked.
const pgLockNotAvailable = "55P03"

type SlotRepositoryInterface interface {
	Create(ctx context.Context, slot *entity.Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, from, to *time.Time, onlyFree bool) ([]entity.Slot, error)
	ReserveTx(ctx context.Context, tx *sqlx.Tx, slotID uuid.UUID) error
	ReleaseTx(ctx context.Context, tx *sqlx.Tx, slotID uuid.UUID) error
	Release(ctx context.Context, slotID uuid.UUID) error
	CountBookingReferences(ctx context.Context, slotID uuid.UUID) (int, error)
	Delete(ctx context.Context, slotID uuid.UUID) error
}

type SlotRepository struct {
	db database.Database
}

func NewSlotRepository(db database.Database) *SlotRepository {
	return &SlotRepository{db: db}
}

// Create inserts the slot after checking for overlap with the provider's
// existing slots. Both steps run in one transaction so two concurrent creates
// cannot both pass the check.
func (r *SlotRepository) Create(ctx context.Context, slot *entity.Slot) error {
	return r.db.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var overlapping int
		checkQuery := `
			SELECT COUNT(*) FROM slots
			WHERE provider_id = $1 AND start_time < $3 AND end_time > $2
		`
		if err := tx.GetContext(ctx, &overlapping, checkQuery, slot.ProviderID, slot.StartTime, slot.EndTime); err != nil {
			logger.Error("SlotRepository:Create:OverlapCheck:Error:", err)
			return err
		}
		if overlapping > 0 {
			return errors.NewAppError(errors.ErrAlreadyExists, "Khung giờ bị trùng với lịch đã có", nil)
		}

		insertQuery := `
			INSERT INTO slots (provider_id, start_time, end_time, price, is_booked, created_at, updated_at)
			VALUES ($1, $2, $3, $4, false, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		row := tx.QueryRowxContext(ctx, insertQuery, slot.ProviderID, slot.StartTime, slot.EndTime, slot.Price)
		if err := row.Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
			logger.Error("SlotRepository:Create:Insert:Error:", err)
			return err
		}
		return nil
	})
}

func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	var slot entity.Slot
	query := `SELECT * FROM slots WHERE id = $1`
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		logger.Error("SlotRepository:GetByID:Error:", err)
		return nil, err
	}
	return &slot, nil
}

func (r *SlotRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, from, to *time.Time, onlyFree bool) ([]entity.Slot, error) {
	query := `SELECT * FROM slots WHERE provider_id = $1`
	args := []any{providerID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND start_time >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND end_time <= $%d`, len(args))
	}
	if onlyFree {
		query += ` AND is_booked = false`
	}
	query += ` ORDER BY start_time ASC`

	var slots []entity.Slot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		logger.Error("SlotRepository:ListByProvider:Error:", err)
		return nil, err
	}
	return slots, nil
}

// ReserveTx locks the slot row and flips is_booked inside the caller's
// transaction. A held lock or an already-booked slot both surface as
// ErrSlotUnavailable so callers fail fast instead of queueing on the row.
func (r *SlotRepository) ReserveTx(ctx context.Context, tx *sqlx.Tx, slotID uuid.UUID) error {
	var slot entity.Slot
	lockQuery := `SELECT * FROM slots WHERE id = $1 FOR UPDATE NOWAIT`
	if err := tx.GetContext(ctx, &slot, lockQuery, slotID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pgLockNotAvailable {
			return errors.NewAppError(errors.ErrSlotUnavailable, "Khung giờ đang được người khác giữ", nil)
		}
		logger.Error("SlotRepository:ReserveTx:Lock:Error:", err)
		return err
	}

	if slot.IsBooked {
		return errors.NewAppError(errors.ErrSlotUnavailable, "Khung giờ đã được đặt", nil)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE slots SET is_booked = true, updated_at = NOW() WHERE id = $1`, slotID); err != nil {
		logger.Error("SlotRepository:ReserveTx:Update:Error:", err)
		return err
	}
	return nil
}

// ReleaseTx clears is_booked inside the caller's transaction. Releasing a
// free slot is a no-op.
func (r *SlotRepository) ReleaseTx(ctx context.Context, tx *sqlx.Tx, slotID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `UPDATE slots SET is_booked = false, updated_at = NOW() WHERE id = $1`, slotID); err != nil {
		logger.Error("SlotRepository:ReleaseTx:Error:", err)
		return err
	}
	return nil
}

func (r *SlotRepository) Release(ctx context.Context, slotID uuid.UUID) error {
	if err := r.db.ExecContext(ctx, `UPDATE slots SET is_booked = false, updated_at = NOW() WHERE id = $1`, slotID); err != nil {
		logger.Error("SlotRepository:Release:Error:", err)
		return err
	}
	return nil
}

func (r *SlotRepository) CountBookingReferences(ctx context.Context, slotID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE slot_id = $1`
	if err := r.db.GetContext(ctx, &count, query, slotID); err != nil {
		logger.Error("SlotRepository:CountBookingReferences:Error:", err)
		return 0, err
	}
	return count, nil
}

func (r *SlotRepository) Delete(ctx context.Context, slotID uuid.UUID) error {
	if err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, slotID); err != nil {
		logger.Error("SlotRepository:Delete:Error:", err)
		return err
	}
	return nil
}
