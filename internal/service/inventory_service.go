package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateInventoryItemRequest struct {
	SKU            string          `json:"sku" binding:"max=64"`
	Name           string          `json:"name" binding:"required,max=200"`
	Description    string          `json:"description" binding:"max=1000"`
	Category       string          `json:"category" binding:"max=100"`
	QuantityOnHand int             `json:"quantity_on_hand" binding:"min=0"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ReorderLevel   *int            `json:"reorder_level" binding:"omitempty,min=0"`
}

type UpdateInventoryItemRequest struct {
	SKU            *string         `json:"sku" binding:"omitempty,max=64"`
	Name           string          `json:"name" binding:"required,max=200"`
	Description    string          `json:"description" binding:"max=1000"`
	Category       string          `json:"category" binding:"max=100"`
	QuantityOnHand int             `json:"quantity_on_hand" binding:"min=0"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ReorderLevel   *int            `json:"reorder_level" binding:"omitempty,min=0"`
}

type InventoryItemResponse struct {
	ID             uint            `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	QuantityOnHand int             `json:"quantity_on_hand"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ReorderLevel   *int            `json:"reorder_level"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// Websocket payload
type InventoryEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// InventoryService provides company-scoped inventory CRUD. The company id is
// always the acting user's tenant, passed explicitly to every repository call.
type InventoryService interface {
	List(ctx context.Context, companyID uint, offset, limit int) ([]InventoryItemResponse, int64, error)
	Get(ctx context.Context, companyID uint, id uint) (*InventoryItemResponse, error)
	Create(ctx context.Context, companyID uint, req CreateInventoryItemRequest) (*InventoryItemResponse, error)
	Update(ctx context.Context, companyID uint, id uint, req UpdateInventoryItemRequest) (*InventoryItemResponse, error)
	Delete(ctx context.Context, companyID uint, id uint) error
}

type inventoryService struct {
	repo repository.InventoryRepository
	hub  *ws.Hub
}

// NewInventoryService returns a new instance of InventoryService
func NewInventoryService(repo repository.InventoryRepository, hub *ws.Hub) InventoryService {
	return &inventoryService{repo: repo, hub: hub}
}

func (s *inventoryService) List(ctx context.Context, companyID uint, offset, limit int) ([]InventoryItemResponse, int64, error) {
	items, total, err := s.repo.List(ctx, companyID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]InventoryItemResponse, 0, len(items))
	for i := range items {
		res = append(res, toInventoryResponse(&items[i]))
	}
	return res, total, nil
}

func (s *inventoryService) Get(ctx context.Context, companyID uint, id uint) (*InventoryItemResponse, error) {
	item, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	res := toInventoryResponse(item)
	return &res, nil
}

func (s *inventoryService) Create(ctx context.Context, companyID uint, req CreateInventoryItemRequest) (*InventoryItemResponse, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku != "" {
		taken, err := s.repo.SKUTaken(ctx, companyID, sku, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to check SKU: %w", err)
		}
		if taken {
			return nil, model.ErrSKUExists
		}
	}

	item := model.InventoryItem{
		SKU:            sku,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Category:       strings.TrimSpace(req.Category),
		QuantityOnHand: req.QuantityOnHand,
		UnitPrice:      req.UnitPrice,
		ReorderLevel:   req.ReorderLevel,
		CompanyID:      companyID,
	}

	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	s.publish(companyID, "inventory.created", &item)
	s.checkReorder(companyID, &item)

	res := toInventoryResponse(&item)
	return &res, nil
}

func (s *inventoryService) Update(ctx context.Context, companyID uint, id uint, req UpdateInventoryItemRequest) (*InventoryItemResponse, error) {
	item, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.SKU != nil {
		newSKU := strings.TrimSpace(*req.SKU)
		if newSKU != item.SKU {
			if newSKU != "" {
				taken, err := s.repo.SKUTaken(ctx, companyID, newSKU, item.ID)
				if err != nil {
					return nil, fmt.Errorf("failed to check SKU: %w", err)
				}
				if taken {
					return nil, model.ErrSKUExists
				}
			}
			item.SKU = newSKU // allow clearing to empty
		}
	}

	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.Category = strings.TrimSpace(req.Category)
	item.QuantityOnHand = req.QuantityOnHand
	item.UnitPrice = req.UnitPrice
	item.ReorderLevel = req.ReorderLevel

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	s.publish(companyID, "inventory.updated", item)
	s.checkReorder(companyID, item)

	res := toInventoryResponse(item)
	return &res, nil
}

func (s *inventoryService) Delete(ctx context.Context, companyID uint, id uint) error {
	item, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.repo.Delete(ctx, companyID, item.ID); err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}

	s.publish(companyID, "inventory.deleted", item)
	return nil
}

// publish sends an event to the item's company only
func (s *inventoryService) publish(companyID uint, event string, item *model.InventoryItem) {
	if s.hub == nil {
		return
	}

	payload, _ := json.Marshal(InventoryEvent{
		Event: event,
		Data: map[string]interface{}{
			"id":               item.ID,
			"sku":              item.SKU,
			"name":             item.Name,
			"quantity_on_hand": item.QuantityOnHand,
		},
	})
	s.hub.Publish(companyID, payload)
}

// checkReorder raises a low-stock event when quantity dips to the reorder level
func (s *inventoryService) checkReorder(companyID uint, item *model.InventoryItem) {
	if item.ReorderLevel == nil || item.QuantityOnHand > *item.ReorderLevel {
		return
	}
	s.publish(companyID, "inventory.low_stock", item)
}

func toInventoryResponse(item *model.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:             item.ID,
		SKU:            item.SKU,
		Name:           item.Name,
		Description:    item.Description,
		Category:       item.Category,
		QuantityOnHand: item.QuantityOnHand,
		UnitPrice:      item.UnitPrice,
		ReorderLevel:   item.ReorderLevel,
		CreatedAt:      item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      item.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
