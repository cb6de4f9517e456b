package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// CompanyRepository defines the interface for data access of Company entities
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	GetByID(ctx context.Context, id uint) (*model.Company, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository returns a new instance of CompanyRepository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return GetDB(ctx, r.db).Create(company).Error
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Company{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}
