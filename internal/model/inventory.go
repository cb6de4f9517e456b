package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem represents a stocked item scoped to one company.
// CompanyID is set from the acting user's tenant at creation and never changes.
type InventoryItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	SKU            string          `gorm:"type:varchar(64);index" json:"sku"` // optional; unique per company, checked in service
	Name           string          `gorm:"type:varchar(200);not null" json:"name"`
	Description    string          `gorm:"type:varchar(1000)" json:"description"`
	Category       string          `gorm:"type:varchar(100)" json:"category"`
	QuantityOnHand int             `gorm:"type:int;default:0;not null" json:"quantity_on_hand"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	ReorderLevel   *int            `gorm:"type:int" json:"reorder_level"`
	CompanyID      uint            `gorm:"not null;index" json:"company_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
