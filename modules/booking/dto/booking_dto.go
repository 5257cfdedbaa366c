package dto

type CreateBookingRequest struct {
	SlotID string `json:"slot_id" validate:"required,uuid"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// RepairSummary reports what a ledger repair pass found and fixed.
type RepairSummary struct {
	ReleasedSlots int `json:"released_slots"`
	RebookedSlots int `json:"rebooked_slots"`
}
