package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CascadeDeleted     = "deleted"
	CascadeReassigned  = "reassigned"
	CascadeDeactivated = "deactivated"
)

var hundred = decimal.NewFromInt(100)

// --- DTOs ---

type CreatePriorityRequest struct {
	PriorityCode       string          `json:"priorityCode" binding:"required"`
	Name               string          `json:"name" binding:"required"`
	Description        string          `json:"description"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	IsActive           *bool           `json:"isActive"`
}

type UpdatePriorityRequest struct {
	PriorityCode       *string          `json:"priorityCode"`
	Name               *string          `json:"name"`
	Description        *string          `json:"description"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
	IsActive           *bool            `json:"isActive"`
}

type PriorityMutationResult struct {
	Priority *model.Priority `json:"priority"`
	Sync     *SyncSummary    `json:"sync,omitempty"`
}

// DeletePriorityResult reports what happened to retailers and catalogs gated on
// the deleted priority. MovedCatalogs were re-gated on CatalogAccessLevel;
// UngatedCatalogs still carry the deleted code because no priority remains.
type DeletePriorityResult struct {
	AffectedRetailers       int64        `json:"affectedRetailers"`
	Action                  string       `json:"action"`
	ReplacementPriorityCode string       `json:"replacementPriorityCode,omitempty"`
	MovedCatalogs           int64        `json:"movedCatalogs"`
	CatalogAccessLevel      string       `json:"catalogAccessLevel,omitempty"`
	UngatedCatalogs         int64        `json:"ungatedCatalogs"`
	Sync                    *SyncSummary `json:"sync,omitempty"`
}

// --- Interface ---

type PriorityService interface {
	ListPriorities(ctx context.Context) ([]model.Priority, error)
	GetPriority(ctx context.Context, id uuid.UUID) (*model.Priority, error)
	CreatePriority(ctx context.Context, actor string, req CreatePriorityRequest) (*PriorityMutationResult, error)
	UpdatePriority(ctx context.Context, actor string, id uuid.UUID, req UpdatePriorityRequest) (*PriorityMutationResult, error)
	DeletePriority(ctx context.Context, actor string, id uuid.UUID) (*DeletePriorityResult, error)
}

type priorityService struct {
	priorityRepo repository.PriorityRepository
	retailerRepo repository.RetailerRepository
	catalogRepo  repository.CatalogRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	access       AccessService
	log          *zap.Logger
}

func NewPriorityService(
	priorityRepo repository.PriorityRepository,
	retailerRepo repository.RetailerRepository,
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	access AccessService,
	log *zap.Logger,
) PriorityService {
	return &priorityService{
		priorityRepo: priorityRepo,
		retailerRepo: retailerRepo,
		catalogRepo:  catalogRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		access:       access,
		log:          log,
	}
}

// --- Implementation ---

func normalizePriorityCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrValidation("priorityCode is required")
	}
	if code == model.AccessLevelGeneral {
		return "", ErrValidation("priorityCode GENERAL is reserved")
	}
	return code, nil
}

func validateDiscount(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(hundred) {
		return ErrValidation("discountPercentage must be between 0 and 100")
	}
	return nil
}

func (s *priorityService) ListPriorities(ctx context.Context) ([]model.Priority, error) {
	priorities, err := s.priorityRepo.List(ctx)
	if err != nil {
		return nil, ErrInternal("failed to fetch priorities", err)
	}
	return priorities, nil
}

func (s *priorityService) GetPriority(ctx context.Context, id uuid.UUID) (*model.Priority, error) {
	priority, err := s.priorityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Priority not found", "load priority")
	}
	return priority, nil
}

func (s *priorityService) ensureCodeFree(ctx context.Context, code string, self uuid.UUID) error {
	existing, err := s.priorityRepo.FindByCode(ctx, code)
	if err == nil && existing.ID != self {
		return ErrConflict("priority code already exists: " + code)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInternal("failed to check priority code", err)
	}
	return nil
}

func (s *priorityService) CreatePriority(ctx context.Context, actor string, req CreatePriorityRequest) (*PriorityMutationResult, error) {
	code, err := normalizePriorityCode(req.PriorityCode)
	if err != nil {
		return nil, err
	}
	if err := validateDiscount(req.DiscountPercentage); err != nil {
		return nil, err
	}

	priority := &model.Priority{
		PriorityCode:       code,
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		DiscountPercentage: req.DiscountPercentage,
		IsActive:           req.IsActive == nil || *req.IsActive,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureCodeFree(txCtx, code, uuid.Nil); err != nil {
			return err
		}
		if err := s.priorityRepo.Create(txCtx, priority); err != nil {
			return storeErr(err, "", "create priority")
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreatePriority, priority.ID.String(), priority.PriorityCode, priority)
	})
	if err != nil {
		return nil, err
	}

	return &PriorityMutationResult{Priority: priority, Sync: s.propagate(ctx, actor)}, nil
}

func (s *priorityService) UpdatePriority(ctx context.Context, actor string, id uuid.UUID, req UpdatePriorityRequest) (*PriorityMutationResult, error) {
	var priority *model.Priority

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		priority, err = s.priorityRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Priority not found", "load priority")
		}
		oldCode := priority.PriorityCode

		if req.PriorityCode != nil {
			code, err := normalizePriorityCode(*req.PriorityCode)
			if err != nil {
				return err
			}
			if code != oldCode {
				if err := s.ensureCodeFree(txCtx, code, priority.ID); err != nil {
					return err
				}
				// Catalogs gated on the old code follow the rename.
				if _, err := s.catalogRepo.RenameAccessLevel(txCtx, oldCode, code); err != nil {
					return ErrInternal("failed to rename catalog access level", err)
				}
				priority.PriorityCode = code
			}
		}
		if req.Name != nil {
			priority.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			priority.Description = *req.Description
		}
		if req.DiscountPercentage != nil {
			if err := validateDiscount(*req.DiscountPercentage); err != nil {
				return err
			}
			priority.DiscountPercentage = *req.DiscountPercentage
		}
		if req.IsActive != nil {
			priority.IsActive = *req.IsActive
		}

		if err := s.priorityRepo.Update(txCtx, priority); err != nil {
			return storeErr(err, "", "update priority")
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdatePriority, priority.ID.String(), priority.PriorityCode, map[string]interface{}{
			"previousCode": oldCode,
			"priority":     priority,
		})
	})
	if err != nil {
		return nil, err
	}

	return &PriorityMutationResult{Priority: priority, Sync: s.propagate(ctx, actor)}, nil
}

// DeletePriority removes a priority without leaving retailers or catalogs
// pointing at it. Holders and catalogs move to the remaining priority with the
// lowest code; when none remains holders are deactivated and the catalogs are
// reported as ungated.
func (s *priorityService) DeletePriority(ctx context.Context, actor string, id uuid.UUID) (*DeletePriorityResult, error) {
	result := &DeletePriorityResult{Action: CascadeDeleted}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		priority, err := s.priorityRepo.FindByID(txCtx, id)
		if err != nil {
			return storeErr(err, "Priority not found", "load priority")
		}

		holders, err := s.retailerRepo.CountByPriority(txCtx, priority.ID)
		if err != nil {
			return ErrInternal("failed to count retailers", err)
		}

		replacement, err := s.priorityRepo.FindReplacement(txCtx, priority.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			replacement = nil
		case err != nil:
			return ErrInternal("failed to find replacement priority", err)
		}

		if holders > 0 {
			if replacement != nil {
				affected, err := s.retailerRepo.ReassignPriority(txCtx, priority.ID, replacement.ID)
				if err != nil {
					return ErrInternal("failed to reassign retailers", err)
				}
				result.Action = CascadeReassigned
				result.AffectedRetailers = affected
				result.ReplacementPriorityCode = replacement.PriorityCode
			} else {
				affected, err := s.retailerRepo.DeactivateByPriority(txCtx, priority.ID)
				if err != nil {
					return ErrInternal("failed to deactivate retailers", err)
				}
				result.Action = CascadeDeactivated
				result.AffectedRetailers = affected
			}
		}

		if replacement != nil {
			moved, err := s.catalogRepo.RenameAccessLevel(txCtx, priority.PriorityCode, replacement.PriorityCode)
			if err != nil {
				return ErrInternal("failed to move catalog access level", err)
			}
			if moved > 0 {
				result.MovedCatalogs = moved
				result.CatalogAccessLevel = replacement.PriorityCode
			}
		} else {
			_, gated, err := s.catalogRepo.List(txCtx, repository.CatalogFilter{AccessLevel: priority.PriorityCode}, 1, 1)
			if err != nil {
				return ErrInternal("failed to count gated catalogs", err)
			}
			result.UngatedCatalogs = gated
		}

		// Soft-deleted retailers can still hold links.
		if err := s.retailerRepo.UnlinkPriority(txCtx, priority.ID); err != nil {
			return ErrInternal("failed to unlink priority", err)
		}
		if err := s.priorityRepo.Delete(txCtx, priority.ID); err != nil {
			return ErrInternal("failed to delete priority", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionDeletePriority, priority.ID.String(), priority.PriorityCode, map[string]interface{}{
			"action":            result.Action,
			"affectedRetailers": result.AffectedRetailers,
			"replacement":       result.ReplacementPriorityCode,
			"movedCatalogs":     result.MovedCatalogs,
			"ungatedCatalogs":   result.UngatedCatalogs,
		})
	})
	if err != nil {
		return nil, err
	}

	if result.UngatedCatalogs > 0 {
		s.log.Warn("catalogs left gated on a deleted priority",
			zap.String("priority_id", id.String()),
			zap.Int64("catalogs", result.UngatedCatalogs))
	}
	result.Sync = s.propagate(ctx, actor)
	return result, nil
}

func (s *priorityService) propagate(ctx context.Context, actor string) *SyncSummary {
	return propagateAfterChange(ctx, s.access, s.log, actor)
}
