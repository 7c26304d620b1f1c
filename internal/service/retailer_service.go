package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRetailerRequest struct {
	PhoneNumber   string   `json:"phoneNumber" binding:"required"`
	BusinessName  string   `json:"businessName" binding:"required"`
	ContactPerson string   `json:"contactPerson"`
	Email         string   `json:"email" binding:"omitempty,email"`
	Address       string   `json:"address"`
	GSTNumber     string   `json:"gstNumber"`
	IsActive      *bool    `json:"isActive"`
	PriorityIDs   []string `json:"priorityIds"`
}

type UpdateRetailerRequest struct {
	PhoneNumber   *string `json:"phoneNumber"`
	BusinessName  *string `json:"businessName"`
	ContactPerson *string `json:"contactPerson"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Address       *string `json:"address"`
	GSTNumber     *string `json:"gstNumber"`
	IsActive      *bool   `json:"isActive"`
}

type AssignPrioritiesRequest struct {
	PriorityIDs []string `json:"priorityIds"`
}

type SetCatalogOverridesRequest struct {
	CatalogIDs []string `json:"catalogIds"`
}

type RetailerFilter struct {
	Search   string
	IsActive *bool
	Page     int
	Limit    int
}

// --- Interface ---

type RetailerService interface {
	ListRetailers(ctx context.Context, filter RetailerFilter) ([]model.Retailer, int64, error)
	GetRetailer(ctx context.Context, id uuid.UUID) (*model.Retailer, error)
	CreateRetailer(ctx context.Context, actor string, req CreateRetailerRequest) (*model.Retailer, error)
	UpdateRetailer(ctx context.Context, actor string, id uuid.UUID, req UpdateRetailerRequest) (*model.Retailer, error)
	DeleteRetailer(ctx context.Context, actor string, id uuid.UUID) error
	AssignPriorities(ctx context.Context, actor string, id uuid.UUID, req AssignPrioritiesRequest) (*model.Retailer, error)
	SetCatalogOverrides(ctx context.Context, actor string, id uuid.UUID, req SetCatalogOverridesRequest) (*model.Retailer, error)
}

type retailerService struct {
	retailerRepo repository.RetailerRepository
	priorityRepo repository.PriorityRepository
	catalogRepo  repository.CatalogRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	access       AccessService
	log          *zap.Logger
}

func NewRetailerService(
	retailerRepo repository.RetailerRepository,
	priorityRepo repository.PriorityRepository,
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	access AccessService,
	log *zap.Logger,
) RetailerService {
	return &retailerService{
		retailerRepo: retailerRepo,
		priorityRepo: priorityRepo,
		catalogRepo:  catalogRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		access:       access,
		log:          log,
	}
}

// NormalizePhone keeps digits and a leading '+'.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

func parseIDs(raw []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]struct{}, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, ErrValidation("invalid " + field + ": " + s)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// --- Implementation ---

func (s *retailerService) ListRetailers(ctx context.Context, filter RetailerFilter) ([]model.Retailer, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	retailers, total, err := s.retailerRepo.List(ctx, repository.RetailerFilter{
		Search:   filter.Search,
		IsActive: filter.IsActive,
	}, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, ErrInternal("failed to fetch retailers", err)
	}
	return retailers, total, nil
}

func (s *retailerService) GetRetailer(ctx context.Context, id uuid.UUID) (*model.Retailer, error) {
	retailer, err := s.retailerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Retailer not found", "load retailer")
	}
	return retailer, nil
}

func (s *retailerService) ensurePhoneFree(ctx context.Context, phone string, self uuid.UUID) error {
	existing, err := s.retailerRepo.FindByPhone(ctx, phone)
	if err == nil && existing.ID != self {
		return ErrConflict("retailer with this phone number already exists")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInternal("failed to check phone number", err)
	}
	return nil
}

func (s *retailerService) lookupPriorities(ctx context.Context, raw []string) ([]uuid.UUID, error) {
	ids, err := parseIDs(raw, "priorityId")
	if err != nil {
		return nil, err
	}
	priorities, err := s.priorityRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, ErrInternal("failed to load priorities", err)
	}
	if len(priorities) != len(ids) {
		return nil, ErrValidation("one or more priorities do not exist")
	}
	return ids, nil
}

func (s *retailerService) CreateRetailer(ctx context.Context, actor string, req CreateRetailerRequest) (*model.Retailer, error) {
	phone := NormalizePhone(req.PhoneNumber)
	if phone == "" {
		return nil, ErrValidation("phoneNumber is required")
	}

	retailer := &model.Retailer{
		PhoneNumber:   phone,
		BusinessName:  strings.TrimSpace(req.BusinessName),
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Address:       req.Address,
		GSTNumber:     strings.ToUpper(strings.TrimSpace(req.GSTNumber)),
		IsActive:      req.IsActive == nil || *req.IsActive,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensurePhoneFree(txCtx, phone, uuid.Nil); err != nil {
			return err
		}
		priorityIDs, err := s.lookupPriorities(txCtx, req.PriorityIDs)
		if err != nil {
			return err
		}
		if err := s.retailerRepo.Create(txCtx, retailer); err != nil {
			return storeErr(err, "", "create retailer")
		}
		if err := s.retailerRepo.ReplacePriorities(txCtx, retailer.ID, priorityIDs); err != nil {
			return ErrInternal("failed to assign priorities", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateRetailer, retailer.ID.String(), retailer.BusinessName, map[string]interface{}{
			"phoneNumber": retailer.PhoneNumber,
			"priorityIds": idStrings(priorityIDs),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.resync(ctx, retailer.ID)
}

func (s *retailerService) UpdateRetailer(ctx context.Context, actor string, id uuid.UUID, req UpdateRetailerRequest) (*model.Retailer, error) {
	var retailer *model.Retailer

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		retailer, err = s.retailerRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Retailer not found", "load retailer")
		}

		if req.PhoneNumber != nil {
			phone := NormalizePhone(*req.PhoneNumber)
			if phone == "" {
				return ErrValidation("phoneNumber must not be empty")
			}
			if err := s.ensurePhoneFree(txCtx, phone, retailer.ID); err != nil {
				return err
			}
			retailer.PhoneNumber = phone
		}
		if req.BusinessName != nil {
			retailer.BusinessName = strings.TrimSpace(*req.BusinessName)
		}
		if req.ContactPerson != nil {
			retailer.ContactPerson = *req.ContactPerson
		}
		if req.Email != nil {
			retailer.Email = *req.Email
		}
		if req.Address != nil {
			retailer.Address = *req.Address
		}
		if req.GSTNumber != nil {
			retailer.GSTNumber = strings.ToUpper(strings.TrimSpace(*req.GSTNumber))
		}
		if req.IsActive != nil {
			retailer.IsActive = *req.IsActive
		}

		if err := s.retailerRepo.Update(txCtx, retailer); err != nil {
			return storeErr(err, "", "update retailer")
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateRetailer, retailer.ID.String(), retailer.BusinessName, req)
	})
	if err != nil {
		return nil, err
	}

	return s.resync(ctx, id)
}

func (s *retailerService) DeleteRetailer(ctx context.Context, actor string, id uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		retailer, err := s.retailerRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Retailer not found", "load retailer")
		}
		if err := s.retailerRepo.Delete(txCtx, retailer.ID); err != nil {
			return ErrInternal("failed to delete retailer", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionDeleteRetailer, retailer.ID.String(), retailer.BusinessName, map[string]interface{}{
			"phoneNumber": retailer.PhoneNumber,
			"deleted":     true,
		})
	})
}

func (s *retailerService) AssignPriorities(ctx context.Context, actor string, id uuid.UUID, req AssignPrioritiesRequest) (*model.Retailer, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		retailer, err := s.retailerRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Retailer not found", "load retailer")
		}
		priorityIDs, err := s.lookupPriorities(txCtx, req.PriorityIDs)
		if err != nil {
			return err
		}
		if err := s.retailerRepo.ReplacePriorities(txCtx, retailer.ID, priorityIDs); err != nil {
			return ErrInternal("failed to assign priorities", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionAssignPriorities, retailer.ID.String(), retailer.BusinessName, map[string]interface{}{
			"before": retailer.PriorityCodes(),
			"after":  idStrings(priorityIDs),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.resync(ctx, id)
}

// SetCatalogOverrides replaces the admin-managed catalog grants. The derived
// set maintained by propagation is not touched.
func (s *retailerService) SetCatalogOverrides(ctx context.Context, actor string, id uuid.UUID, req SetCatalogOverridesRequest) (*model.Retailer, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		retailer, err := s.retailerRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Retailer not found", "load retailer")
		}
		catalogIDs, err := parseIDs(req.CatalogIDs, "catalogId")
		if err != nil {
			return err
		}
		catalogs, err := s.catalogRepo.FindByIDs(txCtx, catalogIDs)
		if err != nil {
			return ErrInternal("failed to load catalogs", err)
		}
		if len(catalogs) != len(catalogIDs) {
			return ErrValidation("one or more catalogs do not exist")
		}
		if err := s.retailerRepo.ReplaceCatalogOverrides(txCtx, retailer.ID, catalogIDs); err != nil {
			return ErrInternal("failed to save catalog overrides", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionSetCatalogOverrides, retailer.ID.String(), retailer.BusinessName, map[string]interface{}{
			"before": idStrings(retailer.OverrideCatalogIDs()),
			"after":  idStrings(catalogIDs),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetRetailer(ctx, id)
}

// resync recomputes the retailer's derived catalogs and reloads it.
func (s *retailerService) resync(ctx context.Context, id uuid.UUID) (*model.Retailer, error) {
	if err := s.access.SyncRetailer(ctx, id); err != nil {
		s.log.Warn("failed to sync retailer catalog access",
			zap.String("retailer_id", id.String()),
			zap.Error(err),
		)
	}
	return s.GetRetailer(ctx, id)
}
