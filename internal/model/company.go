package model

import (
	"time"
)

// Company is the tenant boundary: every scoped entity carries its ID
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null;index" json:"name"` // uniqueness checked at registration, not at DB level
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
