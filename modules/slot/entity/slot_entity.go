package entity

import (
	"time"

	"lawlink-api/core/entity"

	"github.com/google/uuid"
)

// Slot is one bookable consultation window in a provider's calendar.
// Price is VND, no decimals.
type Slot struct {
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
	Price      int64     `db:"price" json:"price"`
	IsBooked   bool      `db:"is_booked" json:"is_booked"`
	entity.BaseEntity
}

type PaginatedSlotEntity = entity.Pagination[Slot]
