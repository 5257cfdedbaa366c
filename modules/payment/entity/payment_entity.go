package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"lawlink-api/core/entity"

	"github.com/google/uuid"
)

// Payment states. Completed, failed and refunded are terminal for the
// reconciler; refund is a separate explicit operation from completed.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

// Payment records one charge attempt. Amount is VND as int64, never floats.
type Payment struct {
	BookingID       *uuid.UUID `db:"booking_id" json:"booking_id"`
	Amount          int64      `db:"amount" json:"amount"`
	Status          string     `db:"status" json:"status"`
	OrderRef        string     `db:"order_ref" json:"order_ref"`
	ProviderTxnID   *string    `db:"provider_txn_id" json:"provider_txn_id,omitempty"`
	ProviderPayload JSONB      `db:"provider_payload" json:"provider_payload,omitempty"`
	entity.BaseEntity
}

func (p *Payment) IsTerminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusFailed || p.Status == StatusRefunded
}

type JSONB map[string]interface{}

func (a JSONB) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *JSONB) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &a)
}
