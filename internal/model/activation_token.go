package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivationTokenKind Enum Simulation
const (
	TokenKindEmailConfirm  = "email_confirm"
	TokenKindPasswordReset = "password_reset"
)

// ActivationToken is a single-use, time-limited artifact backing the
// invite/activate flow. Only a SHA-256 hash of the raw value is stored.
// Re-inviting a user issues fresh tokens without revoking earlier ones;
// old tokens stay usable until their own expiry.
type ActivationToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash  string     `gorm:"type:varchar(64);not null;index" json:"-"`
	Kind       string     `gorm:"type:varchar(30);not null;index" json:"kind"` // email_confirm, password_reset
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
