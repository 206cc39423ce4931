package advance

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/phone"
	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	"github.com/frahmantamala/salary-advance/internal/core/events"
	"github.com/frahmantamala/salary-advance/internal/employee"
	"github.com/frahmantamala/salary-advance/internal/notification"
)

type EmployeeReader interface {
	GetByID(ctx context.Context, id string) (*employee.Employee, error)
}

type Service struct {
	repo        RepositoryAPI
	employees   EmployeeReader
	notifier    Notifier
	eventBus    *events.EventBus
	countryCode string
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo RepositoryAPI, employees EmployeeReader, notifier Notifier, eventBus *events.EventBus, countryCode string, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		employees:   employees,
		notifier:    notifier,
		eventBus:    eventBus,
		countryCode: countryCode,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Decision, error) {
	if err := req.Validate(s.countryCode); err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive {
		return nil, internal.NewValidationFieldError("employee_id", "employee is not active", internal.ErrCodeValidationFailed)
	}

	rawPhone := req.Phone
	if rawPhone == "" {
		rawPhone = emp.Phone
	}
	localPhone, err := phone.Normalize(rawPhone, s.countryCode)
	if err != nil {
		return nil, internal.NewValidationFieldError("phone", err.Error(), internal.ErrCodeInvalidPhone)
	}

	adv := &AdvanceRequest{
		ID:         uuid.New().String(),
		EmployeeID: emp.ID,
		PartnerID:  emp.PartnerID,
		Amount:     req.Amount,
		Reason:     strings.TrimSpace(req.Reason),
		Status:     advanceDatamodel.StatusPending,
		Phone:      localPhone,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, adv); err != nil {
		s.logger.Error("failed to create advance request", "error", err, "employee_id", emp.ID)
		return nil, internal.NewInternalError("failed to create advance request", err)
	}

	s.logger.Info("advance request submitted",
		"advance_id", adv.ID,
		"employee_id", adv.EmployeeID,
		"partner_id", adv.PartnerID,
		"amount", adv.Amount)

	decision := &Decision{Advance: adv}
	s.attachNotification(decision, func() (*notification.Result, error) {
		return s.notifier.RequestReceived(ctx, adv.ID)
	})
	s.publish(ctx, events.EventTypeAdvanceRequestReceived, adv, "")

	return decision, nil
}

func (s *Service) Get(ctx context.Context, id string) (*AdvanceRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*AdvanceRequest, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// Approve moves a PENDING request to APPROVED, then notifies the employee and
// staff.
func (s *Service) Approve(ctx context.Context, id string) (*Decision, error) {
	processedAt := s.now()
	adv, err := s.transition(ctx, id, advanceDatamodel.StatusPending, advanceDatamodel.StatusApproved, &processedAt, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("advance request approved", "advance_id", id, "amount", adv.Amount, "operator_id", internal.OperatorIDFromContext(ctx))

	decision := &Decision{Advance: adv}
	s.attachNotification(decision, func() (*notification.Result, error) {
		return s.notifier.Approved(ctx, id)
	})
	s.publish(ctx, events.EventTypeAdvanceApproved, adv, "")

	return decision, nil
}

// Reject moves a PENDING request to REJECTED. The reason is mandatory.
func (s *Service) Reject(ctx context.Context, id, reason string) (*Decision, error) {
	if err := (RejectRequest{Reason: reason}).Validate(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)

	processedAt := s.now()
	adv, err := s.transition(ctx, id, advanceDatamodel.StatusPending, advanceDatamodel.StatusRejected, &processedAt, &reason)
	if err != nil {
		return nil, err
	}

	s.logger.Info("advance request rejected", "advance_id", id, "operator_id", internal.OperatorIDFromContext(ctx))

	decision := &Decision{Advance: adv}
	s.attachNotification(decision, func() (*notification.Result, error) {
		return s.notifier.Rejected(ctx, id, reason)
	})
	s.publish(ctx, events.EventTypeAdvanceRejected, adv, reason)

	return decision, nil
}

// MarkPaid moves an APPROVED request to PAID. Calling it again is a no-op.
func (s *Service) MarkPaid(ctx context.Context, id string) error {
	adv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if adv.Status == advanceDatamodel.StatusPaid {
		return nil
	}

	_, err = s.transition(ctx, id, advanceDatamodel.StatusApproved, advanceDatamodel.StatusPaid, nil, nil)
	if err != nil {
		return err
	}

	s.logger.Info("advance request marked paid", "advance_id", id)
	return nil
}

func (s *Service) transition(ctx context.Context, id, from, to string, processedAt *time.Time, comment *string) (*AdvanceRequest, error) {
	changed, err := s.repo.TransitionStatus(ctx, id, from, to, processedAt, comment)
	if err != nil {
		s.logger.Error("failed to update advance status", "error", err, "advance_id", id, "to", to)
		return nil, internal.NewInternalError("failed to update advance request", err)
	}

	adv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !changed {
		s.logger.Warn("advance status does not allow transition",
			"advance_id", id,
			"current_status", adv.Status,
			"from", from,
			"to", to)
		return nil, internal.ErrInvalidAdvanceStatus.WithDetails(map[string]string{
			"current_status":  adv.Status,
			"required_status": from,
		})
	}
	return adv, nil
}

func (s *Service) attachNotification(decision *Decision, send func() (*notification.Result, error)) {
	if s.notifier == nil {
		return
	}
	result, err := send()
	if err != nil {
		s.logger.Warn("notification dispatch failed", "advance_id", decision.Advance.ID, "error", err)
		decision.NotificationError = err.Error()
		return
	}
	decision.Notification = result
}

func (s *Service) publish(ctx context.Context, eventType string, adv *AdvanceRequest, reason string) {
	if s.eventBus == nil {
		return
	}
	evt := events.NewAdvanceEvent(eventType, adv.ID, adv.EmployeeID, adv.PartnerID, adv.Amount, reason)
	if err := s.eventBus.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish advance event", "event_type", eventType, "advance_id", adv.ID, "error", err)
	}
}
