package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, inquiry *model.ContactInquiry) error
	List(ctx context.Context, handled *bool, page, limit int) ([]model.ContactInquiry, int64, error)
	MarkHandled(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, inquiry *model.ContactInquiry) error {
	return GetDB(ctx, r.db).Create(inquiry).Error
}

func (r *contactRepository) List(ctx context.Context, handled *bool, page, limit int) ([]model.ContactInquiry, int64, error) {
	var inquiries []model.ContactInquiry
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ContactInquiry{})
	if handled != nil {
		db = db.Where("is_handled = ?", *handled)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&inquiries).Error; err != nil {
		return nil, 0, err
	}
	return inquiries, total, nil
}

func (r *contactRepository) MarkHandled(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.ContactInquiry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_handled": true, "handled_at": at})
	return res.RowsAffected, res.Error
}

func (r *contactRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ContactInquiry{}).Where("is_handled = ?", false).Count(&count).Error
	return count, err
}
