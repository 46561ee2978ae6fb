package db

import (
	"context"
	"errors"
	"fmt"

	"roboterms/internal/domain"

	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := CompanyModel{Name: company.Name, Website: company.Website}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return wrapWriteErr("create company", err)
	}
	company.ID = model.ID
	return nil
}

func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Delete(&CompanyModel{}, id)
	if res.Error != nil {
		return wrapWriteErr("delete company", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete company %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *CompanyRepository) Get(ctx context.Context, id int64) (domain.Company, bool, error) {
	if r.db == nil {
		return domain.Company{}, false, errDBUnavailable
	}
	var model CompanyModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Company{}, false, nil
		}
		return domain.Company{}, false, fmt.Errorf("get company %d: %w", id, err)
	}
	return model.toDomain(), true, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]domain.Company, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []CompanyModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	out := make([]domain.Company, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// FindConflicting returns every company that already uses name or website.
func (r *CompanyRepository) FindConflicting(ctx context.Context, name, website string) ([]domain.Company, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []CompanyModel
	err := r.db.WithContext(ctx).Where("name = ? OR website = ?", name, website).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("find conflicting companies: %w", err)
	}
	out := make([]domain.Company, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}
