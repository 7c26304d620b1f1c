package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriorityRepository interface {
	Create(ctx context.Context, priority *model.Priority) error
	Update(ctx context.Context, priority *model.Priority) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Priority, error)
	FindByCode(ctx context.Context, code string) (*model.Priority, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Priority, error)
	List(ctx context.Context) ([]model.Priority, error)
	FindReplacement(ctx context.Context, excludeID uuid.UUID) (*model.Priority, error)
}

type priorityRepository struct {
	db *gorm.DB
}

func NewPriorityRepository(db *gorm.DB) PriorityRepository {
	return &priorityRepository{db: db}
}

func (r *priorityRepository) Create(ctx context.Context, priority *model.Priority) error {
	return GetDB(ctx, r.db).Create(priority).Error
}

func (r *priorityRepository) Update(ctx context.Context, priority *model.Priority) error {
	return GetDB(ctx, r.db).Save(priority).Error
}

func (r *priorityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Priority{}).Error
}

func (r *priorityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Priority, error) {
	var priority model.Priority
	if err := GetDB(ctx, r.db).First(&priority, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *priorityRepository) FindByCode(ctx context.Context, code string) (*model.Priority, error) {
	var priority model.Priority
	if err := GetDB(ctx, r.db).Where("priority_code = ?", code).First(&priority).Error; err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *priorityRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Priority, error) {
	var priorities []model.Priority
	if len(ids) == 0 {
		return priorities, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Order("priority_code ASC").Find(&priorities).Error; err != nil {
		return nil, err
	}
	return priorities, nil
}

func (r *priorityRepository) List(ctx context.Context) ([]model.Priority, error) {
	var priorities []model.Priority
	if err := GetDB(ctx, r.db).Order("priority_code ASC").Find(&priorities).Error; err != nil {
		return nil, err
	}
	return priorities, nil
}

// FindReplacement returns the priority with the lowest code other than excludeID.
func (r *priorityRepository) FindReplacement(ctx context.Context, excludeID uuid.UUID) (*model.Priority, error) {
	var priority model.Priority
	if err := GetDB(ctx, r.db).
		Where("id <> ?", excludeID).
		Order("priority_code ASC").
		First(&priority).Error; err != nil {
		return nil, err
	}
	return &priority, nil
}
