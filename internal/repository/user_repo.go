package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the interface for data access of User entities.
// Company-scoped reads take the tenant id explicitly; there is no ambient
// tenant state anywhere in the data layer.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListByCompany(ctx context.Context, companyID uint, offset, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	AddRole(ctx context.Context, user *model.User, role *model.Role) error
	ReplacePermissionClaims(ctx context.Context, userID uuid.UUID, values []string) error
	GetPermissionClaims(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).Preload("Roles").Preload("PermissionClaims").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).Preload("Roles").Preload("PermissionClaims").First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByCompany(ctx context.Context, companyID uint, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := GetDB(ctx, r.db).Model(&model.User{}).Where("company_id = ?", companyID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Roles").Preload("PermissionClaims").
		Order("email asc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Save(user).Error
}

func (r *userRepository) AddRole(ctx context.Context, user *model.User, role *model.Role) error {
	return GetDB(ctx, r.db).Model(user).Association("Roles").Append(role)
}

// ReplacePermissionClaims swaps the user's entire claim set for values inside
// a single transaction; an empty slice clears all claims.
func (r *userRepository) ReplacePermissionClaims(ctx context.Context, userID uuid.UUID, values []string) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.PermissionClaim{}).Error; err != nil {
			return err
		}
		for _, v := range values {
			claim := model.PermissionClaim{UserID: userID, Value: v}
			if err := tx.Create(&claim).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *userRepository) GetPermissionClaims(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var values []string
	err := GetDB(ctx, r.db).Model(&model.PermissionClaim{}).
		Where("user_id = ?", userID).Pluck("value", &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}
