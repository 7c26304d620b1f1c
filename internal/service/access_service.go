package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"storefront/internal/lock"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const propagationLockKey = "catalog-access:propagation"

// --- DTOs ---

type CatalogAccessRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	CatalogCode string `json:"catalogCode" binding:"required"`
}

type CatalogSummary struct {
	ID          uuid.UUID `json:"id"`
	CatalogName string    `json:"catalogName"`
	CatalogCode string    `json:"catalogCode"`
	Description string    `json:"description"`
	AccessLevel string    `json:"accessLevel"`
}

type RetailerSummary struct {
	ID            uuid.UUID `json:"id"`
	PhoneNumber   string    `json:"phoneNumber"`
	BusinessName  string    `json:"businessName"`
	ContactPerson string    `json:"contactPerson"`
	PriorityCodes []string  `json:"priorityCodes"`
}

type CatalogAccessResponse struct {
	Catalog  CatalogSummary  `json:"catalog"`
	Retailer RetailerSummary `json:"retailer"`
	Products []model.Product `json:"products"`
}

type SyncFailure struct {
	RetailerID string `json:"retailerId"`
	Error      string `json:"error"`
}

type SyncChange struct {
	RetailerID   string   `json:"retailerId"`
	BusinessName string   `json:"businessName"`
	Before       []string `json:"before"`
	After        []string `json:"after"`
	Changed      bool     `json:"changed"`
}

// SyncSummary reports one propagation run.
type SyncSummary struct {
	TotalRetailers int           `json:"totalRetailers"`
	Updated        int           `json:"updated"`
	Skipped        int           `json:"skipped"`
	Failed         []SyncFailure `json:"failed"`
	Changes        []SyncChange  `json:"changes"`
	SyncedAt       time.Time     `json:"syncedAt"`
}

type AccessOptions struct {
	LockTTL     time.Duration
	LockTimeout time.Duration
}

// --- Interface ---

type AccessService interface {
	SyncAll(ctx context.Context, actor string) (*SyncSummary, error)
	SyncRetailer(ctx context.Context, retailerID uuid.UUID) error
	CheckAccess(ctx context.Context, req CatalogAccessRequest) (*CatalogAccessResponse, error)
	ListAccessibleCatalogs(ctx context.Context, phone string) ([]CatalogSummary, error)
}

type accessService struct {
	retailerRepo repository.RetailerRepository
	catalogRepo  repository.CatalogRepository
	productRepo  repository.ProductRepository
	auditRepo    repository.AuditRepository
	locker       lock.Locker
	events       EventPublisher
	log          *zap.Logger
	opts         AccessOptions
}

func NewAccessService(
	retailerRepo repository.RetailerRepository,
	catalogRepo repository.CatalogRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	locker lock.Locker,
	events EventPublisher,
	log *zap.Logger,
	opts AccessOptions,
) AccessService {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Minute
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 10 * time.Second
	}
	return &accessService{
		retailerRepo: retailerRepo,
		catalogRepo:  catalogRepo,
		productRepo:  productRepo,
		auditRepo:    auditRepo,
		locker:       locker,
		events:       events,
		log:          log,
		opts:         opts,
	}
}

// --- Implementation ---

// SyncAll recomputes the derived catalog set of every active retailer holding
// at least one priority. Per-retailer failures are collected, not fatal.
func (s *accessService) SyncAll(ctx context.Context, actor string) (*SyncSummary, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.opts.LockTimeout)
	unlock, err := s.locker.Acquire(acquireCtx, propagationLockKey, s.opts.LockTTL)
	cancel()
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrConflict("catalog access propagation already in progress")
		}
		return nil, ErrInternal("failed to acquire propagation lock", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release propagation lock", zap.Error(err))
		}
	}()

	catalogs, err := s.catalogRepo.ListActive(ctx)
	if err != nil {
		return nil, ErrInternal("failed to load catalogs", err)
	}
	retailers, err := s.retailerRepo.ListActiveWithAccess(ctx)
	if err != nil {
		return nil, ErrInternal("failed to load retailers", err)
	}

	idx := BuildAccessIndex(catalogs)
	now := time.Now()
	summary := &SyncSummary{
		TotalRetailers: len(retailers),
		Failed:         []SyncFailure{},
		Changes:        []SyncChange{},
		SyncedAt:       now,
	}

	for i := range retailers {
		r := &retailers[i]
		if len(r.Priorities) == 0 {
			summary.Skipped++
			continue
		}

		before := r.AccessibleCatalogIDs()
		after := idx.Resolve(r.PriorityCodes())
		if err := s.retailerRepo.ReplaceAccessibleCatalogs(ctx, r.ID, after, now); err != nil {
			s.log.Warn("catalog access propagation failed for retailer",
				zap.String("retailer_id", r.ID.String()),
				zap.Error(err),
			)
			summary.Failed = append(summary.Failed, SyncFailure{RetailerID: r.ID.String(), Error: err.Error()})
			continue
		}

		summary.Updated++
		summary.Changes = append(summary.Changes, SyncChange{
			RetailerID:   r.ID.String(),
			BusinessName: r.BusinessName,
			Before:       idStrings(before),
			After:        idStrings(after),
			Changed:      !sameIDSet(before, after),
		})
	}

	s.log.Info("catalog access propagation finished",
		zap.Int("total", summary.TotalRetailers),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failed)),
	)

	if err := writeAudit(ctx, s.auditRepo, actor, model.ActionSyncCatalogAccess, "", "catalog access", map[string]interface{}{
		"totalRetailers": summary.TotalRetailers,
		"updated":        summary.Updated,
		"skipped":        summary.Skipped,
		"failed":         len(summary.Failed),
	}); err != nil {
		s.log.Warn("failed to audit catalog access propagation", zap.Error(err))
	}

	s.events.Publish(EventCatalogAccessSynced, map[string]interface{}{
		"updated":  summary.Updated,
		"skipped":  summary.Skipped,
		"failed":   len(summary.Failed),
		"syncedAt": now,
	})

	return summary, nil
}

// SyncRetailer recomputes a single retailer's derived set. Retailers without
// priorities keep their stored set.
func (s *accessService) SyncRetailer(ctx context.Context, retailerID uuid.UUID) error {
	retailer, err := s.retailerRepo.FindByID(ctx, retailerID)
	if err != nil {
		return storeErr(err, "Retailer not found", "load retailer")
	}
	if !retailer.IsActive || len(retailer.Priorities) == 0 {
		return nil
	}

	catalogs, err := s.catalogRepo.ListActive(ctx)
	if err != nil {
		return ErrInternal("failed to load catalogs", err)
	}
	after := BuildAccessIndex(catalogs).Resolve(retailer.PriorityCodes())
	if err := s.retailerRepo.ReplaceAccessibleCatalogs(ctx, retailer.ID, after, time.Now()); err != nil {
		return ErrInternal("failed to update accessible catalogs", err)
	}
	return nil
}

func (s *accessService) CheckAccess(ctx context.Context, req CatalogAccessRequest) (*CatalogAccessResponse, error) {
	phone := NormalizePhone(req.PhoneNumber)
	code := strings.ToUpper(strings.TrimSpace(req.CatalogCode))
	if phone == "" || code == "" {
		return nil, ErrValidation("phoneNumber and catalogCode are required")
	}

	retailer, err := s.retailerRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, storeErr(err, "Retailer not found", "load retailer")
	}
	catalog, err := s.catalogRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, storeErr(err, "Catalog not found", "load catalog")
	}
	if !catalog.IsActive {
		return nil, ErrNotFound("Catalog not found")
	}
	if !retailer.IsActive {
		return nil, ErrForbidden("Retailer account is inactive")
	}
	if !CanAccessCatalog(retailer, catalog) {
		return nil, ErrForbidden("You do not have access to this catalog")
	}

	products, err := s.productRepo.FindByIDs(ctx, catalog.ActiveProductIDs())
	if err != nil {
		return nil, ErrInternal("failed to load catalog products", err)
	}
	visible := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.IsActive {
			visible = append(visible, p)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Name < visible[j].Name })

	return &CatalogAccessResponse{
		Catalog:  toCatalogSummary(catalog),
		Retailer: toRetailerSummary(retailer),
		Products: visible,
	}, nil
}

func (s *accessService) ListAccessibleCatalogs(ctx context.Context, phone string) ([]CatalogSummary, error) {
	retailer, err := s.retailerRepo.FindByPhone(ctx, NormalizePhone(phone))
	if err != nil {
		return nil, storeErr(err, "Retailer not found", "load retailer")
	}
	if !retailer.IsActive {
		return nil, ErrForbidden("Retailer account is inactive")
	}

	catalogs, err := s.catalogRepo.ListActive(ctx)
	if err != nil {
		return nil, ErrInternal("failed to load catalogs", err)
	}
	res := make([]CatalogSummary, 0, len(catalogs))
	for i := range catalogs {
		if CanAccessCatalog(retailer, &catalogs[i]) {
			res = append(res, toCatalogSummary(&catalogs[i]))
		}
	}
	return res, nil
}

// propagateAfterChange runs access propagation after a committed admin change.
// A failed run is logged and reported as a nil summary; the change itself stands.
func propagateAfterChange(ctx context.Context, access AccessService, log *zap.Logger, actor string) *SyncSummary {
	summary, err := access.SyncAll(ctx, actor)
	if err != nil {
		log.Warn("catalog access propagation after admin change failed", zap.Error(err))
		return nil
	}
	return summary
}

func toCatalogSummary(c *model.Catalog) CatalogSummary {
	return CatalogSummary{
		ID:          c.ID,
		CatalogName: c.CatalogName,
		CatalogCode: c.CatalogCode,
		Description: c.Description,
		AccessLevel: c.AccessLevel,
	}
}

func toRetailerSummary(r *model.Retailer) RetailerSummary {
	return RetailerSummary{
		ID:            r.ID,
		PhoneNumber:   r.PhoneNumber,
		BusinessName:  r.BusinessName,
		ContactPerson: r.ContactPerson,
		PriorityCodes: r.PriorityCodes(),
	}
}
