package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents the central user entity for logic and database structure.
// CompanyID == 0 means the user is not attached to any tenant.
type User struct {
	ID               uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email            string            `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash     string            `gorm:"type:varchar(255)" json:"-"` // empty until the user sets a password
	EmailConfirmed   bool              `gorm:"default:false" json:"email_confirmed"`
	CompanyID        uint              `gorm:"index;default:0" json:"company_id"`
	Roles            []Role            `gorm:"many2many:user_roles;" json:"roles"`
	PermissionClaims []PermissionClaim `gorm:"foreignKey:UserID" json:"permission_claims"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// Fixed role names, seeded at startup
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Role represents a named role assignable to users
type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PermissionClaim attaches a single granted permission to a user.
// Value is validated against the permission catalog when written; existing rows
// are never retroactively cleaned if the catalog changes.
type PermissionClaim struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Value  string    `gorm:"type:varchar(100);not null" json:"value"`
}

// ExternalLogin links a federated identity (e.g. Google) to a local user
type ExternalLogin struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Provider    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_key" json:"provider"`
	ProviderKey string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_key" json:"provider_key"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
