package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// InventoryRepository defines company-scoped data access for inventory items.
// Every operation filters by the caller's company id; there is no unscoped
// read path for request handling.
type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	FindByID(ctx context.Context, companyID uint, id uint) (*model.InventoryItem, error)
	List(ctx context.Context, companyID uint, offset, limit int) ([]model.InventoryItem, int64, error)
	Update(ctx context.Context, item *model.InventoryItem) error
	Delete(ctx context.Context, companyID uint, id uint) error
	SKUTaken(ctx context.Context, companyID uint, sku string, excludeID uint) (bool, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository returns a new instance of InventoryRepository
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *inventoryRepository) FindByID(ctx context.Context, companyID uint, id uint) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).First(&item, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) List(ctx context.Context, companyID uint, offset, limit int) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("company_id = ?", companyID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *inventoryRepository) Delete(ctx context.Context, companyID uint, id uint) error {
	return GetDB(ctx, r.db).Where("id = ? AND company_id = ?", id, companyID).Delete(&model.InventoryItem{}).Error
}

func (r *inventoryRepository) SKUTaken(ctx context.Context, companyID uint, sku string, excludeID uint) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.InventoryItem{}).
		Where("company_id = ? AND sku = ? AND id <> ?", companyID, sku, excludeID).
		Count(&count).Error
	return count > 0, err
}
