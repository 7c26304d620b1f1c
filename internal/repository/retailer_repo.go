package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	retailerPrioritiesTable = "retailer_priorities"
	retailerAccessTable     = "retailer_accessible_catalogs"
	retailerOverridesTable  = "retailer_catalog_overrides"
)

type retailerPriorityLink struct {
	RetailerID uuid.UUID `gorm:"column:retailer_id"`
	PriorityID uuid.UUID `gorm:"column:priority_id"`
}

type retailerCatalogLink struct {
	RetailerID uuid.UUID `gorm:"column:retailer_id"`
	CatalogID  uuid.UUID `gorm:"column:catalog_id"`
}

// RetailerFilter narrows retailer listings
type RetailerFilter struct {
	Search   string
	IsActive *bool
}

type RetailerRepository interface {
	Create(ctx context.Context, retailer *model.Retailer) error
	Update(ctx context.Context, retailer *model.Retailer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Retailer, error)
	FindByPhone(ctx context.Context, phone string) (*model.Retailer, error)
	List(ctx context.Context, filter RetailerFilter, page, limit int) ([]model.Retailer, int64, error)
	ListActiveWithAccess(ctx context.Context) ([]model.Retailer, error)
	ReplacePriorities(ctx context.Context, retailerID uuid.UUID, priorityIDs []uuid.UUID) error
	ReplaceCatalogOverrides(ctx context.Context, retailerID uuid.UUID, catalogIDs []uuid.UUID) error
	ReplaceAccessibleCatalogs(ctx context.Context, retailerID uuid.UUID, catalogIDs []uuid.UUID, syncedAt time.Time) error
	CountByPriority(ctx context.Context, priorityID uuid.UUID) (int64, error)
	ReassignPriority(ctx context.Context, fromID, toID uuid.UUID) (int64, error)
	DeactivateByPriority(ctx context.Context, priorityID uuid.UUID) (int64, error)
	UnlinkPriority(ctx context.Context, priorityID uuid.UUID) error
	CountActive(ctx context.Context) (int64, error)
}

type retailerRepository struct {
	db *gorm.DB
}

func NewRetailerRepository(db *gorm.DB) RetailerRepository {
	return &retailerRepository{db: db}
}

func (r *retailerRepository) Create(ctx context.Context, retailer *model.Retailer) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(retailer).Error
}

func (r *retailerRepository) Update(ctx context.Context, retailer *model.Retailer) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(retailer).Error
}

// Delete soft-deletes the retailer and drops its priority and catalog links,
// so the linked priorities and catalogs stay deletable.
func (r *retailerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Table(retailerPrioritiesTable).Where("retailer_id = ?", id).Delete(&retailerPriorityLink{}).Error; err != nil {
		return err
	}
	for _, table := range []string{retailerAccessTable, retailerOverridesTable} {
		if err := db.Table(table).Where("retailer_id = ?", id).Delete(&retailerCatalogLink{}).Error; err != nil {
			return err
		}
	}
	return db.Where("id = ?", id).Delete(&model.Retailer{}).Error
}

func (r *retailerRepository) withAccess(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Priorities", func(db *gorm.DB) *gorm.DB { return db.Order("priority_code ASC") }).
		Preload("AccessibleCatalogs").
		Preload("CatalogOverrides")
}

func (r *retailerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Retailer, error) {
	var retailer model.Retailer
	if err := r.withAccess(GetDB(ctx, r.db)).First(&retailer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &retailer, nil
}

func (r *retailerRepository) FindByPhone(ctx context.Context, phone string) (*model.Retailer, error) {
	var retailer model.Retailer
	if err := r.withAccess(GetDB(ctx, r.db)).Where("phone_number = ?", phone).First(&retailer).Error; err != nil {
		return nil, err
	}
	return &retailer, nil
}

func (r *retailerRepository) List(ctx context.Context, filter RetailerFilter, page, limit int) ([]model.Retailer, int64, error) {
	var retailers []model.Retailer
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Retailer{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("business_name ILIKE ? OR phone_number ILIKE ? OR contact_person ILIKE ?", like, like, like)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := r.withAccess(query).Order("created_at DESC").Offset(offset).Limit(limit).Find(&retailers).Error; err != nil {
		return nil, 0, err
	}

	return retailers, total, nil
}

func (r *retailerRepository) ListActiveWithAccess(ctx context.Context) ([]model.Retailer, error) {
	var retailers []model.Retailer
	if err := r.withAccess(GetDB(ctx, r.db)).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&retailers).Error; err != nil {
		return nil, err
	}
	return retailers, nil
}

func (r *retailerRepository) ReplacePriorities(ctx context.Context, retailerID uuid.UUID, priorityIDs []uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Table(retailerPrioritiesTable).Where("retailer_id = ?", retailerID).Delete(&retailerPriorityLink{}).Error; err != nil {
		return err
	}
	if len(priorityIDs) == 0 {
		return nil
	}
	links := make([]retailerPriorityLink, 0, len(priorityIDs))
	for _, id := range priorityIDs {
		links = append(links, retailerPriorityLink{RetailerID: retailerID, PriorityID: id})
	}
	return db.Table(retailerPrioritiesTable).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

func (r *retailerRepository) replaceCatalogLinks(ctx context.Context, table string, retailerID uuid.UUID, catalogIDs []uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Table(table).Where("retailer_id = ?", retailerID).Delete(&retailerCatalogLink{}).Error; err != nil {
		return err
	}
	if len(catalogIDs) == 0 {
		return nil
	}
	links := make([]retailerCatalogLink, 0, len(catalogIDs))
	for _, id := range catalogIDs {
		links = append(links, retailerCatalogLink{RetailerID: retailerID, CatalogID: id})
	}
	return db.Table(table).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

func (r *retailerRepository) ReplaceCatalogOverrides(ctx context.Context, retailerID uuid.UUID, catalogIDs []uuid.UUID) error {
	return r.replaceCatalogLinks(ctx, retailerOverridesTable, retailerID, catalogIDs)
}

func (r *retailerRepository) ReplaceAccessibleCatalogs(ctx context.Context, retailerID uuid.UUID, catalogIDs []uuid.UUID, syncedAt time.Time) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		if err := r.replaceCatalogLinks(txCtx, retailerAccessTable, retailerID, catalogIDs); err != nil {
			return err
		}
		return tx.Model(&model.Retailer{}).Where("id = ?", retailerID).Update("last_synced_at", syncedAt).Error
	})
}

func (r *retailerRepository) CountByPriority(ctx context.Context, priorityID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Table(retailerPrioritiesTable).
		Joins("JOIN retailers ON retailers.id = retailer_priorities.retailer_id AND retailers.deleted_at IS NULL").
		Where("retailer_priorities.priority_id = ?", priorityID).
		Count(&count).Error
	return count, err
}

// ReassignPriority moves every link from fromID to toID, skipping retailers that already hold toID.
func (r *retailerRepository) ReassignPriority(ctx context.Context, fromID, toID uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db)
	var affected int64
	if err := db.Table(retailerPrioritiesTable).Where("priority_id = ?", fromID).Count(&affected).Error; err != nil {
		return 0, err
	}
	if err := db.Exec(`
		INSERT INTO retailer_priorities (retailer_id, priority_id)
		SELECT retailer_id, ? FROM retailer_priorities WHERE priority_id = ?
		ON CONFLICT DO NOTHING
	`, toID, fromID).Error; err != nil {
		return 0, err
	}
	if err := db.Table(retailerPrioritiesTable).Where("priority_id = ?", fromID).Delete(&retailerPriorityLink{}).Error; err != nil {
		return 0, err
	}
	return affected, nil
}

// DeactivateByPriority marks every retailer holding the priority inactive and drops the links.
func (r *retailerRepository) DeactivateByPriority(ctx context.Context, priorityID uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db)
	res := db.Model(&model.Retailer{}).
		Where("id IN (?)", db.Table(retailerPrioritiesTable).Select("retailer_id").Where("priority_id = ?", priorityID)).
		Update("is_active", false)
	if res.Error != nil {
		return 0, res.Error
	}
	if err := db.Table(retailerPrioritiesTable).Where("priority_id = ?", priorityID).Delete(&retailerPriorityLink{}).Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// UnlinkPriority drops every remaining link to the priority, including links
// held by soft-deleted retailers.
func (r *retailerRepository) UnlinkPriority(ctx context.Context, priorityID uuid.UUID) error {
	return GetDB(ctx, r.db).Table(retailerPrioritiesTable).Where("priority_id = ?", priorityID).Delete(&retailerPriorityLink{}).Error
}

func (r *retailerRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Retailer{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
