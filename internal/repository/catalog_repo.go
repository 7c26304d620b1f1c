package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogFilter narrows catalog listings
type CatalogFilter struct {
	Search      string
	AccessLevel string
	IsActive    *bool
}

type CatalogRepository interface {
	Create(ctx context.Context, catalog *model.Catalog) error
	Update(ctx context.Context, catalog *model.Catalog) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Catalog, error)
	FindByCode(ctx context.Context, code string) (*model.Catalog, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Catalog, error)
	List(ctx context.Context, filter CatalogFilter, page, limit int) ([]model.Catalog, int64, error)
	ListActive(ctx context.Context) ([]model.Catalog, error)
	ReplaceProducts(ctx context.Context, catalogID uuid.UUID, entries []model.CatalogProduct) error
	SetProductActive(ctx context.Context, catalogID, productID uuid.UUID, active bool) (int64, error)
	RenameAccessLevel(ctx context.Context, from, to string) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Create(ctx context.Context, catalog *model.Catalog) error {
	return GetDB(ctx, r.db).Create(catalog).Error
}

func (r *catalogRepository) Update(ctx context.Context, catalog *model.Catalog) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(catalog).Error
}

// Delete removes the catalog, its entries, and every retailer link pointing at it.
func (r *catalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	for _, table := range []string{retailerAccessTable, retailerOverridesTable} {
		if err := db.Table(table).Where("catalog_id = ?", id).Delete(&retailerCatalogLink{}).Error; err != nil {
			return err
		}
	}
	if err := db.Where("catalog_id = ?", id).Delete(&model.CatalogProduct{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Catalog{}).Error
}

func withOrderedProducts(db *gorm.DB) *gorm.DB {
	return db.Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *catalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Catalog, error) {
	var catalog model.Catalog
	if err := withOrderedProducts(GetDB(ctx, r.db)).First(&catalog, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (r *catalogRepository) FindByCode(ctx context.Context, code string) (*model.Catalog, error) {
	var catalog model.Catalog
	if err := withOrderedProducts(GetDB(ctx, r.db)).Where("catalog_code = ?", code).First(&catalog).Error; err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (r *catalogRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Catalog, error) {
	var catalogs []model.Catalog
	if len(ids) == 0 {
		return catalogs, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Order("catalog_name ASC").Find(&catalogs).Error; err != nil {
		return nil, err
	}
	return catalogs, nil
}

func (r *catalogRepository) List(ctx context.Context, filter CatalogFilter, page, limit int) ([]model.Catalog, int64, error) {
	var catalogs []model.Catalog
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Catalog{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("catalog_name ILIKE ? OR catalog_code ILIKE ?", like, like)
	}
	if filter.AccessLevel != "" {
		query = query.Where("access_level = ?", filter.AccessLevel)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := withOrderedProducts(query).Order("created_at DESC").Offset(offset).Limit(limit).Find(&catalogs).Error; err != nil {
		return nil, 0, err
	}

	return catalogs, total, nil
}

func (r *catalogRepository) ListActive(ctx context.Context) ([]model.Catalog, error) {
	var catalogs []model.Catalog
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("catalog_name ASC").Find(&catalogs).Error; err != nil {
		return nil, err
	}
	return catalogs, nil
}

func (r *catalogRepository) ReplaceProducts(ctx context.Context, catalogID uuid.UUID, entries []model.CatalogProduct) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("catalog_id = ?", catalogID).Delete(&model.CatalogProduct{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		entries[i].CatalogID = catalogID
		entries[i].Position = i
	}
	return db.Create(&entries).Error
}

func (r *catalogRepository) SetProductActive(ctx context.Context, catalogID, productID uuid.UUID, active bool) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.CatalogProduct{}).
		Where("catalog_id = ? AND product_id = ?", catalogID, productID).
		Update("is_active", active)
	return res.RowsAffected, res.Error
}

// RenameAccessLevel moves every catalog gated on from to to and reports how many moved.
func (r *catalogRepository) RenameAccessLevel(ctx context.Context, from, to string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Catalog{}).Where("access_level = ?", from).Update("access_level", to)
	return res.RowsAffected, res.Error
}

func (r *catalogRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Catalog{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
