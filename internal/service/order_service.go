package service

import (
	"context"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxNumberAttempts = 5

// orderTransitions lists the review moves an admin may make. PO_GENERATED is
// only set by purchase order generation.
var orderTransitions = map[string][]string{
	model.OrderStatusSubmitted:   {model.OrderStatusUnderReview, model.OrderStatusApproved, model.OrderStatusRejected},
	model.OrderStatusUnderReview: {model.OrderStatusApproved, model.OrderStatusRejected},
}

// --- DTOs ---

type OrderItemInput struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Pieces    int    `json:"pieces" binding:"min=0"`
	Sets      int    `json:"sets" binding:"min=0"`
}

type SubmitOrderRequest struct {
	PhoneNumber     string           `json:"phoneNumber" binding:"required"`
	Items           []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Notes           string           `json:"notes"`
	IsGSTApplicable *bool            `json:"isGSTApplicable"`
}

type UpdateOrderStatusRequest struct {
	Status          string `json:"status" binding:"required,oneof=UNDER_REVIEW APPROVED REJECTED"`
	RejectionReason string `json:"rejectionReason"`
}

// --- Interface ---

type OrderService interface {
	SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*model.Order, error)
	ListOrders(ctx context.Context, status string, page, limit int) ([]model.Order, int64, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, actor string, id uuid.UUID, req UpdateOrderStatusRequest) (*model.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	retailerRepo repository.RetailerRepository
	productRepo  repository.ProductRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	events       EventPublisher
	log          *zap.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	retailerRepo repository.RetailerRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	log *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		retailerRepo: retailerRepo,
		productRepo:  productRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		events:       events,
		log:          log,
	}
}

// --- Implementation ---

func snapshotRetailer(r *model.Retailer) model.RetailerSnapshot {
	return model.RetailerSnapshot{
		RetailerID:    r.ID,
		PhoneNumber:   r.PhoneNumber,
		BusinessName:  r.BusinessName,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Address:       r.Address,
		GSTNumber:     r.GSTNumber,
	}
}

func (s *orderService) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*model.Order, error) {
	phone := NormalizePhone(req.PhoneNumber)
	retailer, err := s.retailerRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, storeErr(err, "Retailer not found", "load retailer")
	}
	if !retailer.IsActive {
		return nil, ErrForbidden("Retailer account is inactive")
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]struct{}, len(req.Items))
	for _, in := range req.Items {
		id, err := uuid.Parse(in.ProductID)
		if err != nil {
			return nil, ErrValidation("invalid productId: " + in.ProductID)
		}
		if _, dup := seen[id]; dup {
			return nil, ErrValidation("duplicate productId: " + in.ProductID)
		}
		if in.Pieces <= 0 && in.Sets <= 0 {
			return nil, ErrValidation("each item needs at least one piece or set")
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, ErrInternal("failed to load products", err)
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]model.LineItem, 0, len(req.Items))
	for i, in := range req.Items {
		p, ok := byID[ids[i]]
		if !ok || !p.IsActive {
			return nil, ErrValidation("product is not available: " + in.ProductID)
		}
		line := model.LineItem{
			ProductID:     p.ID,
			ItemCode:      p.ItemCode,
			ProductName:   p.Name,
			Color:         p.Color,
			Fabric:        p.Fabric,
			PricePerPiece: p.PricePerPiece,
			PricePerSet:   p.PricePerSet,
			Pieces:        in.Pieces,
			Sets:          in.Sets,
		}
		line.LineTotal = lineTotal(line)
		lines = append(lines, line)
	}

	gstApplicable := req.IsGSTApplicable == nil || *req.IsGSTApplicable
	now := time.Now()
	order := &model.Order{
		RetailerInfo:    snapshotRetailer(retailer),
		Summary:         summarize(lines, gstApplicable),
		Status:          model.OrderStatusSubmitted,
		IsGSTApplicable: gstApplicable,
		Notes:           strings.TrimSpace(req.Notes),
		SubmittedAt:     now,
	}
	for _, l := range lines {
		order.Items = append(order.Items, model.OrderItem{LineItem: l})
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, err := s.nextOrderNumber(txCtx, now)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return storeErr(err, "", "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order submitted",
		zap.String("order_number", order.OrderNumber),
		zap.String("retailer_id", retailer.ID.String()),
	)
	s.events.Publish(EventOrderSubmitted, map[string]interface{}{
		"orderId":      order.ID,
		"orderNumber":  order.OrderNumber,
		"businessName": retailer.BusinessName,
		"total":        order.Summary.TotalAmountAfterGST,
	})
	return order, nil
}

func (s *orderService) nextOrderNumber(ctx context.Context, now time.Time) (string, error) {
	for i := 0; i < maxNumberAttempts; i++ {
		number, err := newDocumentNumber(orderNumberPrefix, now)
		if err != nil {
			return "", ErrInternal("failed to generate order number", err)
		}
		exists, err := s.orderRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return "", ErrInternal("failed to check order number", err)
		}
		if !exists {
			return number, nil
		}
	}
	return "", ErrInternal("failed to generate a unique order number", nil)
}

func (s *orderService) ListOrders(ctx context.Context, status string, page, limit int) ([]model.Order, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	orders, total, err := s.orderRepo.List(ctx, strings.ToUpper(status), page, limit)
	if err != nil {
		return nil, 0, ErrInternal("failed to fetch orders", err)
	}
	return orders, total, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order not found", "load order")
	}
	return order, nil
}

func canTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, actor string, id uuid.UUID, req UpdateOrderStatusRequest) (*model.Order, error) {
	var order *model.Order

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return storeErr(err, "Order not found", "load order")
		}

		from := order.Status
		if !canTransition(from, req.Status) {
			return ErrValidation("cannot move order from " + from + " to " + req.Status)
		}

		now := time.Now()
		order.Status = req.Status
		order.ReviewedAt = &now
		switch req.Status {
		case model.OrderStatusApproved:
			order.ApprovedAt = &now
		case model.OrderStatusRejected:
			order.RejectionReason = strings.TrimSpace(req.RejectionReason)
		}

		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return ErrInternal("failed to update order", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateOrderStatus, order.ID.String(), order.OrderNumber, map[string]interface{}{
			"from": from,
			"to":   order.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
