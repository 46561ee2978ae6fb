package db

import (
	"context"
	"errors"
	"fmt"

	"roboterms/internal/domain"

	"gorm.io/gorm"
)

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Create(ctx context.Context, policy *domain.Policy) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := PolicyModel{Name: policy.Name, Body: policy.Body}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return wrapWriteErr("create policy", err)
	}
	policy.ID = model.ID
	return nil
}

// Update writes name and body of an existing policy.
func (r *PolicyRepository) Update(ctx context.Context, policy domain.Policy) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&PolicyModel{ID: policy.ID}).
		Updates(map[string]any{"name": policy.Name, "body": policy.Body})
	if res.Error != nil {
		return wrapWriteErr("update policy", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update policy %d: %w", policy.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *PolicyRepository) Get(ctx context.Context, id int64) (domain.Policy, bool, error) {
	if r.db == nil {
		return domain.Policy{}, false, errDBUnavailable
	}
	var model PolicyModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Policy{}, false, nil
		}
		return domain.Policy{}, false, fmt.Errorf("get policy %d: %w", id, err)
	}
	return model.toDomain(), true, nil
}

func (r *PolicyRepository) List(ctx context.Context) ([]domain.Policy, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []PolicyModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	out := make([]domain.Policy, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// NameTaken reports whether a policy other than excludeID already uses name.
func (r *PolicyRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&PolicyModel{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check policy name: %w", err)
	}
	return n > 0, nil
}
