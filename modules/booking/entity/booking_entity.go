package entity

import (
	"time"

	"lawlink-api/core/entity"

	"github.com/google/uuid"
)

// Booking states. Cancelled and completed are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the state machine allows from → to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a state absorbs all further transitions.
func IsTerminal(status string) bool {
	return status == StatusCancelled || status == StatusCompleted
}

type Booking struct {
	ProviderID      uuid.UUID `db:"provider_id" json:"provider_id"`
	RequesterID     uuid.UUID `db:"requester_id" json:"requester_id"`
	SlotID          uuid.UUID `db:"slot_id" json:"slot_id"`
	Status          string    `db:"status" json:"status"`
	CancelReason    *string   `db:"cancel_reason" json:"cancel_reason,omitempty"`
	ReminderSent    bool      `db:"reminder_sent" json:"reminder_sent"`
	CalendarEventID *string   `db:"calendar_event_id" json:"calendar_event_id,omitempty"`
	// CalendarSyncWarning is set on the confirm response when the booking
	// confirmed but its calendar event could not be created. Not persisted.
	CalendarSyncWarning string `db:"-" json:"calendar_sync_warning,omitempty"`
	entity.BaseEntity
}

// BookingDetail is a booking joined with its slot interval, used wherever the
// consultation time matters (calendar sync, reminders, responses).
type BookingDetail struct {
	Booking
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Price     int64     `db:"price" json:"price"`
}

type PaginatedBookingEntity = entity.Pagination[BookingDetail]
