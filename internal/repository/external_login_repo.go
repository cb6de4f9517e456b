package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// ExternalLoginRepository persists links between local users and federated identities
type ExternalLoginRepository interface {
	Create(ctx context.Context, login *model.ExternalLogin) error
	FindByProviderKey(ctx context.Context, provider, providerKey string) (*model.ExternalLogin, error)
}

type externalLoginRepository struct {
	db *gorm.DB
}

func NewExternalLoginRepository(db *gorm.DB) ExternalLoginRepository {
	return &externalLoginRepository{db: db}
}

func (r *externalLoginRepository) Create(ctx context.Context, login *model.ExternalLogin) error {
	return GetDB(ctx, r.db).Create(login).Error
}

func (r *externalLoginRepository) FindByProviderKey(ctx context.Context, provider, providerKey string) (*model.ExternalLogin, error) {
	var login model.ExternalLogin
	err := GetDB(ctx, r.db).
		Where("provider = ? AND provider_key = ?", provider, providerKey).
		First(&login).Error
	if err != nil {
		return nil, err
	}
	return &login, nil
}
