package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	ItemCode      string          `json:"itemCode" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Color         string          `json:"color"`
	Fabric        string          `json:"fabric"`
	PricePerPiece decimal.Decimal `json:"pricePerPiece"`
	PricePerSet   decimal.Decimal `json:"pricePerSet"`
	Category      string          `json:"category"`
	Sizes         []string        `json:"sizes"`
	Images        []string        `json:"images"`
	IsActive      *bool           `json:"isActive"`
}

type UpdateProductRequest struct {
	ItemCode      *string          `json:"itemCode"`
	Name          *string          `json:"name"`
	Color         *string          `json:"color"`
	Fabric        *string          `json:"fabric"`
	PricePerPiece *decimal.Decimal `json:"pricePerPiece"`
	PricePerSet   *decimal.Decimal `json:"pricePerSet"`
	Category      *string          `json:"category"`
	Sizes         []string         `json:"sizes"`
	Images        []string         `json:"images"`
	IsActive      *bool            `json:"isActive"`
}

type ProductFilter struct {
	Search   string
	Category string
	IsActive *bool
	Page     int
	Limit    int
}

// --- Interface ---

type ProductService interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	CreateProduct(ctx context.Context, actor string, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor string, id uuid.UUID, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, actor string, id uuid.UUID) error
}

type productService struct {
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewProductService(productRepo repository.ProductRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) ProductService {
	return &productService{
		productRepo: productRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func validatePrice(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrValidation(field + " must not be negative")
	}
	return nil
}

func cleanList(values []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *productService) ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		Search:   filter.Search,
		Category: filter.Category,
		IsActive: filter.IsActive,
	}, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, ErrInternal("failed to fetch products", err)
	}
	return products, total, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product not found", "load product")
	}
	return product, nil
}

func (s *productService) ensureItemCodeFree(ctx context.Context, code string, self uuid.UUID) error {
	existing, err := s.productRepo.FindByItemCode(ctx, code)
	if err == nil && existing.ID != self {
		return ErrConflict("item code already exists: " + code)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInternal("failed to check item code", err)
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, actor string, req CreateProductRequest) (*model.Product, error) {
	if err := validatePrice("pricePerPiece", req.PricePerPiece); err != nil {
		return nil, err
	}
	if err := validatePrice("pricePerSet", req.PricePerSet); err != nil {
		return nil, err
	}

	product := &model.Product{
		ItemCode:      strings.TrimSpace(req.ItemCode),
		Name:          strings.TrimSpace(req.Name),
		Color:         req.Color,
		Fabric:        req.Fabric,
		PricePerPiece: req.PricePerPiece,
		PricePerSet:   req.PricePerSet,
		Category:      req.Category,
		Sizes:         cleanList(req.Sizes),
		Images:        cleanList(req.Images),
		IsActive:      req.IsActive == nil || *req.IsActive,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureItemCodeFree(txCtx, product.ItemCode, uuid.Nil); err != nil {
			return err
		}
		if err := s.productRepo.Create(txCtx, product); err != nil {
			return storeErr(err, "", "create product")
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateProduct, product.ID.String(), product.Name, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, actor string, id uuid.UUID, req UpdateProductRequest) (*model.Product, error) {
	var product *model.Product

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		product, err = s.productRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Product not found", "load product")
		}

		if req.ItemCode != nil {
			code := strings.TrimSpace(*req.ItemCode)
			if code == "" {
				return ErrValidation("itemCode must not be empty")
			}
			if err := s.ensureItemCodeFree(txCtx, code, product.ID); err != nil {
				return err
			}
			product.ItemCode = code
		}
		if req.Name != nil {
			product.Name = strings.TrimSpace(*req.Name)
		}
		if req.Color != nil {
			product.Color = *req.Color
		}
		if req.Fabric != nil {
			product.Fabric = *req.Fabric
		}
		if req.PricePerPiece != nil {
			if err := validatePrice("pricePerPiece", *req.PricePerPiece); err != nil {
				return err
			}
			product.PricePerPiece = *req.PricePerPiece
		}
		if req.PricePerSet != nil {
			if err := validatePrice("pricePerSet", *req.PricePerSet); err != nil {
				return err
			}
			product.PricePerSet = *req.PricePerSet
		}
		if req.Category != nil {
			product.Category = *req.Category
		}
		if req.Sizes != nil {
			product.Sizes = cleanList(req.Sizes)
		}
		if req.Images != nil {
			product.Images = cleanList(req.Images)
		}
		if req.IsActive != nil {
			product.IsActive = *req.IsActive
		}

		if err := s.productRepo.Update(txCtx, product); err != nil {
			return storeErr(err, "", "update product")
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateProduct, product.ID.String(), product.Name, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes the product. Catalog entries pointing at it are
// left in place and filtered out when catalogs are read.
func (s *productService) DeleteProduct(ctx context.Context, actor string, id uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Product not found", "load product")
		}
		if err := s.productRepo.Delete(txCtx, product.ID); err != nil {
			return ErrInternal("failed to delete product", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionDeleteProduct, product.ID.String(), product.Name, map[string]interface{}{
			"itemCode": product.ItemCode,
			"deleted":  true,
		})
	})
}
