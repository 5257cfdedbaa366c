package dto

import (
	"time"
)

type CreateSlotRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Price     int64     `json:"price" validate:"required,gt=0"`
}

type ListSlotsRequest struct {
	ProviderID string     `query:"provider_id" validate:"required,uuid"`
	From       *time.Time `query:"from"`
	To         *time.Time `query:"to"`
	OnlyFree   bool       `query:"only_free"`
}
