package repository

import (
	"context"
	"database/sql"
	"time"

	"lawlink-api/core/database"
	"lawlink-api/core/logger"
	"lawlink-api/modules/booking/entity"
	slotRepository "lawlink-api/modules/slot/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ReminderRow is what the reminder sweep needs per due booking.
type ReminderRow struct {
	BookingID   uuid.UUID `db:"id"`
	ProviderID  uuid.UUID `db:"provider_id"`
	RequesterID uuid.UUID `db:"requester_id"`
	StartTime   time.Time `db:"start_time"`
}

type BookingRepositoryInterface interface {
	CreateWithSlot(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.BookingDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error)
	CancelWithSlot(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error
	MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error)
	ListDueReminders(ctx context.Context, from, to time.Time) ([]ReminderRow, error)
	RepairLedger(ctx context.Context) (released, rebooked int, err error)
	ExpirePending(ctx context.Context, olderThan time.Duration) (int, error)
}

type BookingRepository struct {
	db    database.Database
	slots slotRepository.SlotRepositoryInterface
}

func NewBookingRepository(db database.Database, slots slotRepository.SlotRepositoryInterface) *BookingRepository {
	return &BookingRepository{db: db, slots: slots}
}

// CreateWithSlot reserves the slot and inserts the pending booking in one
// transaction. Either both happen or neither does.
func (r *BookingRepository) CreateWithSlot(ctx context.Context, booking *entity.Booking) error {
	return r.db.WithinTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.slots.ReserveTx(ctx, tx, booking.SlotID); err != nil {
			return err
		}

		query := `
			INSERT INTO bookings (provider_id, requester_id, slot_id, status, reminder_sent, created_at, updated_at)
			VALUES ($1, $2, $3, $4, false, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		row := tx.QueryRowxContext(ctx, query, booking.ProviderID, booking.RequesterID, booking.SlotID, entity.StatusPending)
		if err := row.Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
			logger.Error("BookingRepository:CreateWithSlot:Insert:Error:", err)
			return err
		}
		booking.Status = entity.StatusPending
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	query := `SELECT * FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		logger.Error("BookingRepository:GetByID:Error:", err)
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetDetail(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	var detail entity.BookingDetail
	query := `
		SELECT b.*, s.start_time, s.end_time, s.price
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		WHERE b.id = $1
	`
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		logger.Error("BookingRepository:GetDetail:Error:", err)
		return nil, err
	}
	return &detail, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.BookingDetail, error) {
	var bookings []entity.BookingDetail
	query := `
		SELECT b.*, s.start_time, s.end_time, s.price
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		WHERE b.provider_id = $1 OR b.requester_id = $1
		ORDER BY s.start_time DESC
	`
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		logger.Error("BookingRepository:ListByUser:Error:", err)
		return nil, err
	}
	return bookings, nil
}

// UpdateStatus moves the booking to a new state only when it currently sits
// in one of the expected source states. Zero rows means a concurrent caller
// won the transition.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	query := `
		UPDATE bookings SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
	`
	res, err := r.db.SQLx().ExecContext(ctx, query, id, to, pq.Array(from))
	if err != nil {
		logger.Error("BookingRepository:UpdateStatus:Error:", err)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CancelWithSlot cancels the booking and frees its slot atomically. Returns
// false when the booking was already terminal.
func (r *BookingRepository) CancelWithSlot(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	cancelled := false
	err := r.db.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var slotID uuid.UUID
		query := `
			UPDATE bookings SET status = $2, cancel_reason = $3, updated_at = NOW()
			WHERE id = $1 AND status IN ($4, $5)
			RETURNING slot_id
		`
		err := tx.QueryRowxContext(ctx, query, id, entity.StatusCancelled, reason, entity.StatusPending, entity.StatusConfirmed).Scan(&slotID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			logger.Error("BookingRepository:CancelWithSlot:Update:Error:", err)
			return err
		}

		if err := r.slots.ReleaseTx(ctx, tx, slotID); err != nil {
			return err
		}
		cancelled = true
		return nil
	})
	return cancelled, err
}

func (r *BookingRepository) SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error {
	query := `UPDATE bookings SET calendar_event_id = $2, updated_at = NOW() WHERE id = $1`
	if err := r.db.ExecContext(ctx, query, id, eventID); err != nil {
		logger.Error("BookingRepository:SetCalendarEventID:Error:", err)
		return err
	}
	return nil
}

// MarkReminderSent flips reminder_sent once. Zero rows means another sweep
// already claimed this booking.
func (r *BookingRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings SET reminder_sent = true, updated_at = NOW()
		WHERE id = $1 AND reminder_sent = false
	`
	res, err := r.db.SQLx().ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("BookingRepository:MarkReminderSent:Error:", err)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *BookingRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]ReminderRow, error) {
	var rows []ReminderRow
	query := `
		SELECT b.id, b.provider_id, b.requester_id, s.start_time
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		WHERE b.status = $1 AND b.reminder_sent = false
		  AND s.start_time >= $2 AND s.start_time <= $3
		ORDER BY s.start_time ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query, entity.StatusConfirmed, from, to); err != nil {
		logger.Error("BookingRepository:ListDueReminders:Error:", err)
		return nil, err
	}
	return rows, nil
}

// RepairLedger reconciles the slot ledger with the booking table after a
// crash between the two writes. Booked slots without a live booking are
// released; slots with a live booking are re-marked booked.
func (r *BookingRepository) RepairLedger(ctx context.Context) (released, rebooked int, err error) {
	err = r.db.WithinTx(ctx, func(tx *sqlx.Tx) error {
		releaseQuery := `
			UPDATE slots SET is_booked = false, updated_at = NOW()
			WHERE is_booked = true
			  AND NOT EXISTS (
				SELECT 1 FROM bookings b
				WHERE b.slot_id = slots.id AND b.status IN ($1, $2)
			  )
		`
		res, err := tx.ExecContext(ctx, releaseQuery, entity.StatusPending, entity.StatusConfirmed)
		if err != nil {
			logger.Error("BookingRepository:RepairLedger:Release:Error:", err)
			return err
		}
		n, _ := res.RowsAffected()
		released = int(n)

		rebookQuery := `
			UPDATE slots SET is_booked = true, updated_at = NOW()
			WHERE is_booked = false
			  AND EXISTS (
				SELECT 1 FROM bookings b
				WHERE b.slot_id = slots.id AND b.status IN ($1, $2)
			  )
		`
		res, err = tx.ExecContext(ctx, rebookQuery, entity.StatusPending, entity.StatusConfirmed)
		if err != nil {
			logger.Error("BookingRepository:RepairLedger:Rebook:Error:", err)
			return err
		}
		n, _ = res.RowsAffected()
		rebooked = int(n)
		return nil
	})
	return released, rebooked, err
}

// ExpirePending cancels pending bookings older than the TTL and frees their
// slots. Used by the expiry sweep so abandoned checkouts do not hold slots.
func (r *BookingRepository) ExpirePending(ctx context.Context, olderThan time.Duration) (int, error) {
	expired := 0
	err := r.db.WithinTx(ctx, func(tx *sqlx.Tx) error {
		// A booking whose payment already settled is waiting on the repair
		// sweep to confirm it, not abandoned, so it is never expired.
		query := `
			UPDATE bookings SET status = $1, cancel_reason = $2, updated_at = NOW()
			WHERE status = $3 AND created_at < $4
			  AND NOT EXISTS (
				SELECT 1 FROM payments p
				WHERE p.booking_id = bookings.id AND p.status = 'completed'
			  )
			RETURNING slot_id
		`
		rows, err := tx.QueryxContext(ctx, query, entity.StatusCancelled, "Hết hạn thanh toán", entity.StatusPending, time.Now().Add(-olderThan))
		if err != nil {
			logger.Error("BookingRepository:ExpirePending:Update:Error:", err)
			return err
		}
		defer rows.Close()

		var slotIDs []uuid.UUID
		for rows.Next() {
			var slotID uuid.UUID
			if err := rows.Scan(&slotID); err != nil {
				return err
			}
			slotIDs = append(slotIDs, slotID)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, slotID := range slotIDs {
			if err := r.slots.ReleaseTx(ctx, tx, slotID); err != nil {
				return err
			}
		}
		expired = len(slotIDs)
		return nil
	})
	return expired, err
}
