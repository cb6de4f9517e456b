package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionRegisterCompany    = "REGISTER_COMPANY"
	ActionCreateUser         = "CREATE_USER"
	ActionReplacePermissions = "REPLACE_PERMISSIONS"
	ActionInviteUser         = "INVITE_USER"
	ActionActivateUser       = "ACTIVATE_USER"
)

// AuditLog tracks Who, What, and When for user-management changes within a company
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID  uint       `gorm:"not null;index" json:"company_id"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"` // nil for anonymous flows (registration, activation)
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
