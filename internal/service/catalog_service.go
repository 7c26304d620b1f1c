package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- DTOs ---

type CatalogProductInput struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	IsActive  *bool  `json:"isActive"`
}

type CreateCatalogRequest struct {
	CatalogName string                `json:"catalogName" binding:"required"`
	CatalogCode string                `json:"catalogCode" binding:"required"`
	Description string                `json:"description"`
	AccessLevel string                `json:"accessLevel" binding:"required"`
	IsActive    *bool                 `json:"isActive"`
	Products    []CatalogProductInput `json:"products" binding:"dive"`
}

type UpdateCatalogRequest struct {
	CatalogName *string `json:"catalogName"`
	CatalogCode *string `json:"catalogCode"`
	Description *string `json:"description"`
	AccessLevel *string `json:"accessLevel"`
	IsActive    *bool   `json:"isActive"`
}

type SetCatalogProductsRequest struct {
	Products []CatalogProductInput `json:"products" binding:"dive"`
}

type SetCatalogEntryRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// CatalogEntry is a catalog member with its product resolved.
type CatalogEntry struct {
	ProductID uuid.UUID     `json:"productId"`
	IsActive  bool          `json:"isActive"`
	Product   model.Product `json:"product"`
}

type CatalogDetail struct {
	ID          uuid.UUID      `json:"id"`
	CatalogName string         `json:"catalogName"`
	CatalogCode string         `json:"catalogCode"`
	Description string         `json:"description"`
	AccessLevel string         `json:"accessLevel"`
	IsActive    bool           `json:"isActive"`
	Products    []CatalogEntry `json:"products"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type CatalogMutationResult struct {
	Catalog *CatalogDetail `json:"catalog,omitempty"`
	Sync    *SyncSummary   `json:"sync,omitempty"`
}

type CatalogFilter struct {
	Search      string
	AccessLevel string
	IsActive    *bool
	Page        int
	Limit       int
}

// --- Interface ---

type CatalogService interface {
	ListCatalogs(ctx context.Context, filter CatalogFilter) ([]model.Catalog, int64, error)
	GetCatalog(ctx context.Context, id uuid.UUID) (*CatalogDetail, error)
	CreateCatalog(ctx context.Context, actor string, req CreateCatalogRequest) (*CatalogMutationResult, error)
	UpdateCatalog(ctx context.Context, actor string, id uuid.UUID, req UpdateCatalogRequest) (*CatalogMutationResult, error)
	DeleteCatalog(ctx context.Context, actor string, id uuid.UUID) (*CatalogMutationResult, error)
	SetCatalogProducts(ctx context.Context, actor string, id uuid.UUID, req SetCatalogProductsRequest) (*CatalogMutationResult, error)
	SetCatalogEntryActive(ctx context.Context, actor string, id, productID uuid.UUID, active bool) (*CatalogDetail, error)
}

type catalogService struct {
	catalogRepo  repository.CatalogRepository
	priorityRepo repository.PriorityRepository
	productRepo  repository.ProductRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	access       AccessService
	log          *zap.Logger
}

func NewCatalogService(
	catalogRepo repository.CatalogRepository,
	priorityRepo repository.PriorityRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	access AccessService,
	log *zap.Logger,
) CatalogService {
	return &catalogService{
		catalogRepo:  catalogRepo,
		priorityRepo: priorityRepo,
		productRepo:  productRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		access:       access,
		log:          log,
	}
}

// --- Implementation ---

func (s *catalogService) ListCatalogs(ctx context.Context, filter CatalogFilter) ([]model.Catalog, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	catalogs, total, err := s.catalogRepo.List(ctx, repository.CatalogFilter{
		Search:      filter.Search,
		AccessLevel: strings.ToUpper(strings.TrimSpace(filter.AccessLevel)),
		IsActive:    filter.IsActive,
	}, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, ErrInternal("failed to fetch catalogs", err)
	}
	return catalogs, total, nil
}

func (s *catalogService) GetCatalog(ctx context.Context, id uuid.UUID) (*CatalogDetail, error) {
	catalog, err := s.catalogRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Catalog not found", "load catalog")
	}
	return s.toDetail(ctx, catalog)
}

// toDetail resolves catalog entries, dropping entries whose product is gone.
func (s *catalogService) toDetail(ctx context.Context, catalog *model.Catalog) (*CatalogDetail, error) {
	ids := make([]uuid.UUID, 0, len(catalog.Products))
	for _, e := range catalog.Products {
		ids = append(ids, e.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, ErrInternal("failed to load catalog products", err)
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	entries := make([]CatalogEntry, 0, len(catalog.Products))
	for _, e := range catalog.Products {
		p, ok := byID[e.ProductID]
		if !ok {
			continue
		}
		entries = append(entries, CatalogEntry{ProductID: e.ProductID, IsActive: e.IsActive, Product: p})
	}

	return &CatalogDetail{
		ID:          catalog.ID,
		CatalogName: catalog.CatalogName,
		CatalogCode: catalog.CatalogCode,
		Description: catalog.Description,
		AccessLevel: catalog.AccessLevel,
		IsActive:    catalog.IsActive,
		Products:    entries,
		CreatedAt:   catalog.CreatedAt,
		UpdatedAt:   catalog.UpdatedAt,
	}, nil
}

func normalizeCatalogCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrValidation("catalogCode is required")
	}
	return code, nil
}

// resolveAccessLevel accepts GENERAL or the code of an existing priority.
func (s *catalogService) resolveAccessLevel(ctx context.Context, level string) (string, error) {
	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "" {
		return "", ErrValidation("accessLevel is required")
	}
	if level == model.AccessLevelGeneral {
		return level, nil
	}
	if _, err := s.priorityRepo.FindByCode(ctx, level); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrValidation("accessLevel must be GENERAL or an existing priority code: " + level)
		}
		return "", ErrInternal("failed to check access level", err)
	}
	return level, nil
}

func (s *catalogService) ensureCodeFree(ctx context.Context, code string, self uuid.UUID) error {
	existing, err := s.catalogRepo.FindByCode(ctx, code)
	if err == nil && existing.ID != self {
		return ErrConflict("catalog code already exists: " + code)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInternal("failed to check catalog code", err)
	}
	return nil
}

// buildEntries validates product references and keeps the caller's order.
func (s *catalogService) buildEntries(ctx context.Context, inputs []CatalogProductInput) ([]model.CatalogProduct, error) {
	entries := make([]model.CatalogProduct, 0, len(inputs))
	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]struct{}, len(inputs))
	for _, in := range inputs {
		id, err := uuid.Parse(in.ProductID)
		if err != nil {
			return nil, ErrValidation("invalid productId: " + in.ProductID)
		}
		if _, dup := seen[id]; dup {
			return nil, ErrValidation("duplicate productId: " + in.ProductID)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		entries = append(entries, model.CatalogProduct{ProductID: id, IsActive: in.IsActive == nil || *in.IsActive})
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, ErrInternal("failed to load products", err)
	}
	if len(products) != len(ids) {
		found := make(map[uuid.UUID]struct{}, len(products))
		for _, p := range products {
			found[p.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return nil, ErrValidation("product not found: " + id.String())
			}
		}
	}
	return entries, nil
}

func (s *catalogService) CreateCatalog(ctx context.Context, actor string, req CreateCatalogRequest) (*CatalogMutationResult, error) {
	code, err := normalizeCatalogCode(req.CatalogCode)
	if err != nil {
		return nil, err
	}

	var catalog *model.Catalog
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		level, err := s.resolveAccessLevel(txCtx, req.AccessLevel)
		if err != nil {
			return err
		}
		if err := s.ensureCodeFree(txCtx, code, uuid.Nil); err != nil {
			return err
		}
		entries, err := s.buildEntries(txCtx, req.Products)
		if err != nil {
			return err
		}

		catalog = &model.Catalog{
			CatalogName: strings.TrimSpace(req.CatalogName),
			CatalogCode: code,
			Description: req.Description,
			AccessLevel: level,
			IsActive:    req.IsActive == nil || *req.IsActive,
		}
		if err := s.catalogRepo.Create(txCtx, catalog); err != nil {
			return storeErr(err, "", "create catalog")
		}
		if err := s.catalogRepo.ReplaceProducts(txCtx, catalog.ID, entries); err != nil {
			return ErrInternal("failed to save catalog products", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateCatalog, catalog.ID.String(), catalog.CatalogCode, map[string]interface{}{
			"catalogName": catalog.CatalogName,
			"accessLevel": catalog.AccessLevel,
			"products":    len(entries),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.mutationResult(ctx, actor, catalog.ID)
}

func (s *catalogService) UpdateCatalog(ctx context.Context, actor string, id uuid.UUID, req UpdateCatalogRequest) (*CatalogMutationResult, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		catalog, err := s.catalogRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Catalog not found", "load catalog")
		}
		before := map[string]interface{}{
			"catalogCode": catalog.CatalogCode,
			"accessLevel": catalog.AccessLevel,
			"isActive":    catalog.IsActive,
		}

		if req.CatalogCode != nil {
			code, err := normalizeCatalogCode(*req.CatalogCode)
			if err != nil {
				return err
			}
			if err := s.ensureCodeFree(txCtx, code, catalog.ID); err != nil {
				return err
			}
			catalog.CatalogCode = code
		}
		if req.AccessLevel != nil {
			level, err := s.resolveAccessLevel(txCtx, *req.AccessLevel)
			if err != nil {
				return err
			}
			catalog.AccessLevel = level
		}
		if req.CatalogName != nil {
			catalog.CatalogName = strings.TrimSpace(*req.CatalogName)
		}
		if req.Description != nil {
			catalog.Description = *req.Description
		}
		if req.IsActive != nil {
			catalog.IsActive = *req.IsActive
		}

		if err := s.catalogRepo.Update(txCtx, catalog); err != nil {
			return storeErr(err, "", "update catalog")
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateCatalog, catalog.ID.String(), catalog.CatalogCode, map[string]interface{}{
			"before": before,
			"after": map[string]interface{}{
				"catalogCode": catalog.CatalogCode,
				"accessLevel": catalog.AccessLevel,
				"isActive":    catalog.IsActive,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return s.mutationResult(ctx, actor, id)
}

func (s *catalogService) DeleteCatalog(ctx context.Context, actor string, id uuid.UUID) (*CatalogMutationResult, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		catalog, err := s.catalogRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Catalog not found", "load catalog")
		}
		if err := s.catalogRepo.Delete(txCtx, catalog.ID); err != nil {
			return ErrInternal("failed to delete catalog", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionDeleteCatalog, catalog.ID.String(), catalog.CatalogCode, map[string]interface{}{
			"deleted": true,
		})
	})
	if err != nil {
		return nil, err
	}

	return &CatalogMutationResult{Sync: propagateAfterChange(ctx, s.access, s.log, actor)}, nil
}

func (s *catalogService) SetCatalogProducts(ctx context.Context, actor string, id uuid.UUID, req SetCatalogProductsRequest) (*CatalogMutationResult, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		catalog, err := s.catalogRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Catalog not found", "load catalog")
		}
		entries, err := s.buildEntries(txCtx, req.Products)
		if err != nil {
			return err
		}
		if err := s.catalogRepo.ReplaceProducts(txCtx, catalog.ID, entries); err != nil {
			return ErrInternal("failed to save catalog products", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionSetCatalogProducts, catalog.ID.String(), catalog.CatalogCode, map[string]interface{}{
			"products": len(entries),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.mutationResult(ctx, actor, id)
}

func (s *catalogService) SetCatalogEntryActive(ctx context.Context, actor string, id, productID uuid.UUID, active bool) (*CatalogDetail, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		catalog, err := s.catalogRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Catalog not found", "load catalog")
		}
		n, err := s.catalogRepo.SetProductActive(txCtx, catalog.ID, productID, active)
		if err != nil {
			return ErrInternal("failed to update catalog entry", err)
		}
		if n == 0 {
			return ErrNotFound("Product is not part of this catalog")
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionSetCatalogProducts, catalog.ID.String(), catalog.CatalogCode, map[string]interface{}{
			"productId": productID.String(),
			"isActive":  active,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetCatalog(ctx, id)
}

// mutationResult propagates access, then reloads the catalog for the response.
func (s *catalogService) mutationResult(ctx context.Context, actor string, id uuid.UUID) (*CatalogMutationResult, error) {
	sync := propagateAfterChange(ctx, s.access, s.log, actor)
	detail, err := s.GetCatalog(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CatalogMutationResult{Catalog: detail, Sync: sync}, nil
}
