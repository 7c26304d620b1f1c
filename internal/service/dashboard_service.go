package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/repository"
)

type DashboardService interface {
	GetDashboard(ctx context.Context) (*model.DashboardStats, error)
}

type dashboardService struct {
	retailerRepo repository.RetailerRepository
	catalogRepo  repository.CatalogRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	poRepo       repository.PurchaseOrderRepository
	contactRepo  repository.ContactRepository
}

func NewDashboardService(
	retailerRepo repository.RetailerRepository,
	catalogRepo repository.CatalogRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	poRepo repository.PurchaseOrderRepository,
	contactRepo repository.ContactRepository,
) DashboardService {
	return &dashboardService{
		retailerRepo: retailerRepo,
		catalogRepo:  catalogRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		poRepo:       poRepo,
		contactRepo:  contactRepo,
	}
}

// GetDashboard collects the admin overview counters
func (s *dashboardService) GetDashboard(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	var err error

	if stats.ActiveRetailers, err = s.retailerRepo.CountActive(ctx); err != nil {
		return nil, ErrInternal("failed to count retailers", err)
	}
	if stats.ActiveCatalogs, err = s.catalogRepo.CountActive(ctx); err != nil {
		return nil, ErrInternal("failed to count catalogs", err)
	}
	if stats.Products, err = s.productRepo.Count(ctx); err != nil {
		return nil, ErrInternal("failed to count products", err)
	}
	if stats.OrdersByStatus, err = s.orderRepo.CountByStatus(ctx); err != nil {
		return nil, ErrInternal("failed to count orders", err)
	}
	if stats.PurchaseOrders, stats.PurchaseOrderValue, err = s.poRepo.Totals(ctx); err != nil {
		return nil, ErrInternal("failed to total purchase orders", err)
	}
	if stats.PendingContactLeads, err = s.contactRepo.CountPending(ctx); err != nil {
		return nil, ErrInternal("failed to count inquiries", err)
	}

	return &stats, nil
}
