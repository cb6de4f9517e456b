package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// RoleRepository defines the interface for data access of Role entities
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*model.Role, error)
	EnsureDefaultRoles(ctx context.Context) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// EnsureDefaultRoles seeds the fixed Admin and User roles if missing
func (r *roleRepository) EnsureDefaultRoles(ctx context.Context) error {
	for _, name := range []string{model.RoleAdmin, model.RoleUser} {
		role := model.Role{Name: name}
		if err := GetDB(ctx, r.db).Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}
