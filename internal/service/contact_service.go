package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/ratelimit"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContactRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	PhoneNumber  string `json:"phoneNumber" binding:"required"`
	BusinessName string `json:"businessName" binding:"max=255"`
	City         string `json:"city" binding:"max=100"`
	Message      string `json:"message" binding:"required,max=2000"`
}

// ContactLimiter is the rate limit contract the contact form relies on.
type ContactLimiter interface {
	Allow(ctx context.Context, ip, phone string) (ratelimit.Decision, error)
	Record(ctx context.Context, ip, phone string) error
}

type ContactService interface {
	Submit(ctx context.Context, clientIP string, req ContactRequest) (*model.ContactInquiry, error)
	ListInquiries(ctx context.Context, handled *bool, page, limit int) ([]model.ContactInquiry, int64, error)
	MarkHandled(ctx context.Context, actor string, id uuid.UUID) error
}

type contactService struct {
	contactRepo repository.ContactRepository
	limiter     ContactLimiter
	log         *zap.Logger
}

func NewContactService(contactRepo repository.ContactRepository, limiter ContactLimiter, log *zap.Logger) ContactService {
	return &contactService{contactRepo: contactRepo, limiter: limiter, log: log}
}

func rateLimitMessage(d ratelimit.Decision) string {
	switch d.Reason {
	case ratelimit.ReasonLifetimeCap:
		return "Submission limit reached for this phone number. Please call us directly."
	case ratelimit.ReasonDailyCap:
		return fmt.Sprintf("Daily submission limit reached. Please try again in %d hours.", int(math.Ceil(d.RetryAfter.Hours())))
	default:
		return fmt.Sprintf("Please wait %d seconds before submitting again.", int(math.Ceil(d.RetryAfter.Seconds())))
	}
}

// Submit stores a contact inquiry. Limiter outages are logged and the
// submission is let through.
func (s *contactService) Submit(ctx context.Context, clientIP string, req ContactRequest) (*model.ContactInquiry, error) {
	phone := NormalizePhone(req.PhoneNumber)
	if phone == "" {
		return nil, ErrValidation("phoneNumber is required")
	}

	decision, err := s.limiter.Allow(ctx, clientIP, phone)
	limiterUp := err == nil
	if err != nil {
		s.log.Warn("contact rate limiter unavailable", zap.Error(err))
	} else if !decision.Allowed {
		s.log.Info("contact submission throttled",
			zap.String("ip", clientIP),
			zap.String("reason", decision.Reason),
		)
		return nil, ErrTooManyRequests(rateLimitMessage(decision))
	}

	inquiry := &model.ContactInquiry{
		Name:         strings.TrimSpace(req.Name),
		PhoneNumber:  phone,
		BusinessName: strings.TrimSpace(req.BusinessName),
		City:         strings.TrimSpace(req.City),
		Message:      strings.TrimSpace(req.Message),
		ClientIP:     clientIP,
	}
	if err := s.contactRepo.Create(ctx, inquiry); err != nil {
		return nil, ErrInternal("failed to save inquiry", err)
	}

	if limiterUp {
		if err := s.limiter.Record(ctx, clientIP, phone); err != nil {
			s.log.Warn("failed to record contact submission", zap.Error(err))
		}
	}
	return inquiry, nil
}

func (s *contactService) ListInquiries(ctx context.Context, handled *bool, page, limit int) ([]model.ContactInquiry, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	inquiries, total, err := s.contactRepo.List(ctx, handled, page, limit)
	if err != nil {
		return nil, 0, ErrInternal("failed to fetch inquiries", err)
	}
	return inquiries, total, nil
}

func (s *contactService) MarkHandled(ctx context.Context, actor string, id uuid.UUID) error {
	n, err := s.contactRepo.MarkHandled(ctx, id, time.Now())
	if err != nil {
		return ErrInternal("failed to update inquiry", err)
	}
	if n == 0 {
		return ErrNotFound("Inquiry not found")
	}
	s.log.Info("contact inquiry handled", zap.String("inquiry_id", id.String()), zap.String("actor", actor))
	return nil
}
