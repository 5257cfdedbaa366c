package entity

import (
	"time"

	"lawlink-api/core/entity"

	"github.com/google/uuid"
)

const ProviderGoogle = "google"

// Credential stores one user's OAuth tokens for an external provider.
// Token columns hold ciphertext with an enc: marker, or legacy plaintext.
type Credential struct {
	OwnerID       uuid.UUID `db:"owner_id" json:"owner_id"`
	ProviderName  string    `db:"provider_name" json:"provider_name"`
	AccessToken   string    `db:"access_token" json:"-"`
	RefreshToken  *string   `db:"refresh_token" json:"-"`
	ExpiresAt     time.Time `db:"expires_at" json:"expires_at"`
	CalendarEmail string    `db:"calendar_email" json:"calendar_email"`
	entity.BaseEntity
}

// OAuthState is a one-time CSRF nonce bound to the user who started the flow.
type OAuthState struct {
	State     string    `db:"state" json:"state"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	entity.BaseEntity
}
