package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// DefaultPOTerms is printed on every generated purchase order.
var DefaultPOTerms = model.POTerms{
	Payment:      "Payment due within 30 days of invoice date.",
	Delivery:     "Dispatch within 15-20 working days of PO acknowledgement.",
	Pricing:      "Prices are ex-works and exclusive of freight.",
	Taxes:        "GST as applicable at the time of invoicing.",
	Returns:      "Goods once sold will not be taken back or exchanged.",
	Jurisdiction: "Subject to local jurisdiction only.",
}

var poTransitions = map[string][]string{
	model.POStatusGenerated: {model.POStatusSent, model.POStatusCancelled},
	model.POStatusSent:      {model.POStatusAcknowledged, model.POStatusCancelled},
}

// --- DTOs ---

type GeneratePORequest struct {
	OrderID         string `json:"orderId" binding:"required,uuid"`
	GeneratedBy     string `json:"generatedBy"`
	IsGSTApplicable *bool  `json:"isGSTApplicable"`
}

type UpdatePOStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=SENT ACKNOWLEDGED CANCELLED"`
}

// --- Interface ---

type PurchaseOrderService interface {
	GeneratePurchaseOrder(ctx context.Context, actor string, req GeneratePORequest) (*model.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, status string, page, limit int) ([]model.PurchaseOrder, int64, error)
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.PurchaseOrder, error)
	UpdatePOStatus(ctx context.Context, actor string, id uuid.UUID, req UpdatePOStatusRequest) (*model.PurchaseOrder, error)
}

type purchaseOrderService struct {
	poRepo    repository.PurchaseOrderRepository
	orderRepo repository.OrderRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	events    EventPublisher
	log       *zap.Logger
}

func NewPurchaseOrderService(
	poRepo repository.PurchaseOrderRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	log *zap.Logger,
) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:    poRepo,
		orderRepo: orderRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		events:    events,
		log:       log,
	}
}

// --- Implementation ---

// GeneratePurchaseOrder turns an approved order into its purchase order. The
// order row is locked, the PO inserted and the order moved to PO_GENERATED in
// one transaction.
func (s *purchaseOrderService) GeneratePurchaseOrder(ctx context.Context, actor string, req GeneratePORequest) (*model.PurchaseOrder, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, ErrValidation("invalid orderId")
	}
	generatedBy := strings.TrimSpace(req.GeneratedBy)
	if generatedBy == "" {
		generatedBy = actor
	}
	gstApplicable := req.IsGSTApplicable == nil || *req.IsGSTApplicable

	var po *model.PurchaseOrder
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDForUpdate(txCtx, orderID)
		if err != nil {
			return storeErr(err, "Order not found", "load order")
		}
		if order.Status != model.OrderStatusApproved {
			return ErrValidation("Order must be approved before generating a purchase order (current status: " + order.Status + ")")
		}

		exists, err := s.poRepo.ExistsByOrderID(txCtx, order.ID)
		if err != nil {
			return ErrInternal("failed to check existing purchase order", err)
		}
		if exists {
			return &AppError{Kind: KindConflict, Status: http.StatusBadRequest, Message: "Purchase order already exists for this order"}
		}

		if !order.Summary.TotalAmountBeforeGST.Valid {
			return ErrValidation("Order summary has no valid pre-GST total")
		}
		before := order.Summary.TotalAmountBeforeGST.Decimal
		rate, gstAmount, after := ComputeGST(before, gstApplicable)

		number, err := s.nextPONumber(txCtx, time.Now())
		if err != nil {
			return err
		}

		po = &model.PurchaseOrder{
			PONumber:     number,
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			RetailerInfo: order.RetailerInfo,
			Summary: model.Summary{
				TotalPieces:          order.Summary.TotalPieces,
				TotalSets:            order.Summary.TotalSets,
				TotalAmountBeforeGST: order.Summary.TotalAmountBeforeGST,
				GSTRate:              rate,
				GSTAmount:            gstAmount,
				TotalAmountAfterGST:  after,
			},
			Terms:       datatypes.NewJSONType(DefaultPOTerms),
			Status:      model.POStatusGenerated,
			GeneratedBy: generatedBy,
		}
		for _, it := range order.Items {
			po.Items = append(po.Items, model.PurchaseOrderItem{LineItem: it.LineItem})
		}

		if err := s.poRepo.Create(txCtx, po); err != nil {
			return storeErr(err, "", "create purchase order")
		}
		if err := s.orderRepo.UpdateStatus(txCtx, order.ID, model.OrderStatusPOGenerated); err != nil {
			return ErrInternal("failed to update order status", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionGeneratePurchaseOrder, po.ID.String(), po.PONumber, map[string]interface{}{
			"orderId":             order.ID.String(),
			"orderNumber":         order.OrderNumber,
			"isGSTApplicable":     gstApplicable,
			"totalAmountAfterGST": after,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase order generated",
		zap.String("po_number", po.PONumber),
		zap.String("order_number", po.OrderNumber),
	)
	s.events.Publish(EventPurchaseOrderGenerated, map[string]interface{}{
		"purchaseOrderId": po.ID,
		"poNumber":        po.PONumber,
		"orderNumber":     po.OrderNumber,
		"total":           po.Summary.TotalAmountAfterGST,
	})
	return po, nil
}

// nextPONumber draws random PO numbers until one is unused.
func (s *purchaseOrderService) nextPONumber(ctx context.Context, now time.Time) (string, error) {
	for i := 0; i < maxNumberAttempts; i++ {
		number, err := newDocumentNumber(poNumberPrefix, now)
		if err != nil {
			return "", ErrInternal("failed to generate PO number", err)
		}
		exists, err := s.poRepo.ExistsByPONumber(ctx, number)
		if err != nil {
			return "", ErrInternal("failed to check PO number", err)
		}
		if !exists {
			return number, nil
		}
	}
	return "", ErrInternal("failed to generate a unique PO number", nil)
}

func (s *purchaseOrderService) ListPurchaseOrders(ctx context.Context, status string, page, limit int) ([]model.PurchaseOrder, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	pos, total, err := s.poRepo.List(ctx, strings.ToUpper(status), page, limit)
	if err != nil {
		return nil, 0, ErrInternal("failed to fetch purchase orders", err)
	}
	return pos, total, nil
}

func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Purchase order not found", "load purchase order")
	}
	return po, nil
}

func (s *purchaseOrderService) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.PurchaseOrder, error) {
	po, err := s.poRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, "Purchase order not found", "load purchase order")
	}
	return po, nil
}

func (s *purchaseOrderService) UpdatePOStatus(ctx context.Context, actor string, id uuid.UUID, req UpdatePOStatusRequest) (*model.PurchaseOrder, error) {
	var po *model.PurchaseOrder

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		po, err = s.poRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Purchase order not found", "load purchase order")
		}

		from := po.Status
		allowed := false
		for _, next := range poTransitions[from] {
			if next == req.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrValidation("cannot move purchase order from " + from + " to " + req.Status)
		}

		if err := s.poRepo.UpdateStatus(txCtx, po.ID, req.Status); err != nil {
			return ErrInternal("failed to update purchase order status", err)
		}
		po.Status = req.Status
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdatePOStatus, po.ID.String(), po.PONumber, map[string]interface{}{
			"from": from,
			"to":   req.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}
