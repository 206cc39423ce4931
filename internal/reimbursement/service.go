package reimbursement

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/salary-advance/internal"
	reimbursementDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/reimbursement"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/core/fees"
)

var unpaidStatuses = []string{reimbursementDatamodel.StatusPending, reimbursementDatamodel.StatusOverdue}

type Service struct {
	repo         RepositoryAPI
	summaries    SummaryReader
	transactions TransactionReader
	advances     AdvanceReader
	fees         fees.Schedule
	dueAfter     time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(repo RepositoryAPI, summaries SummaryReader, transactions TransactionReader, advances AdvanceReader, schedule fees.Schedule, dueAfterDays int, logger *slog.Logger) *Service {
	if dueAfterDays <= 0 {
		dueAfterDays = 30
	}
	return &Service{
		repo:         repo,
		summaries:    summaries,
		transactions: transactions,
		advances:     advances,
		fees:         schedule,
		dueAfter:     time.Duration(dueAfterDays) * 24 * time.Hour,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateForTransaction records the partner's obligation for a settled
// transaction. An existing record is returned unchanged.
func (s *Service) CreateForTransaction(ctx context.Context, transactionID string) (*Reimbursement, error) {
	existing, err := s.findByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Debug("reimbursement already recorded", "transaction_id", transactionID, "reimbursement_id", existing.ID)
		return existing, nil
	}

	r, err := s.create(ctx, transactionID)
	if errors.Is(err, internal.ErrReimbursementExists) {
		return s.repo.GetByTransactionID(ctx, transactionID)
	}
	return r, err
}

// CreateManual is the operator path; a second record for the same
// transaction is a conflict.
func (s *Service) CreateManual(ctx context.Context, req CreateRequest) (*Reimbursement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.findByTransaction(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrReimbursementExists.WithDetails(map[string]string{"reimbursement_id": existing.ID})
	}
	return s.create(ctx, req.TransactionID)
}

func (s *Service) create(ctx context.Context, transactionID string) (*Reimbursement, error) {
	tx, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != transactionDatamodel.StatusSucceeded {
		return nil, internal.ErrTransactionNotSettled.WithDetails(map[string]string{
			"transaction_id": tx.ID,
			"status":         tx.Status,
		})
	}

	adv, err := s.advances.GetByID(ctx, tx.AdvanceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fee := s.fees.Fee(adv.Amount)
	r := &Reimbursement{
		ID:                uuid.New().String(),
		TransactionID:     tx.ID,
		AdvanceID:         tx.AdvanceID,
		EmployeeID:        tx.EmployeeID,
		PartnerID:         tx.PartnerID,
		TransactionAmount: tx.Amount,
		ServiceFee:        fee,
		TotalAmount:       tx.Amount + fee,
		Status:            reimbursementDatamodel.StatusPending,
		CreatedAt:         now,
		DueDate:           now.Add(s.dueAfter),
	}

	if err := s.repo.Create(ctx, r); err != nil {
		// lost a race with another creator
		if existing, findErr := s.findByTransaction(ctx, transactionID); findErr == nil && existing != nil {
			return nil, internal.ErrReimbursementExists
		}
		s.logger.Error("failed to create reimbursement", "transaction_id", transactionID, "error", err)
		return nil, internal.NewInternalError("failed to create reimbursement", err)
	}

	s.logger.Info("reimbursement created",
		"reimbursement_id", r.ID,
		"transaction_id", r.TransactionID,
		"partner_id", r.PartnerID,
		"total_amount", r.TotalAmount,
		"due_date", r.DueDate)
	return r, nil
}

func (s *Service) findByTransaction(ctx context.Context, transactionID string) (*Reimbursement, error) {
	r, err := s.repo.GetByTransactionID(ctx, transactionID)
	if errors.Is(err, internal.ErrReimbursementNotFound) {
		return nil, nil
	}
	return r, err
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := ToView(r, s.now())
	return &v, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]View, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list reimbursements", err)
	}

	now := s.now()
	views := make([]View, 0, len(records))
	for _, r := range records {
		views = append(views, ToView(r, now))
	}
	return views, nil
}

// RecordRepayment marks an unpaid reimbursement as paid by the partner.
func (s *Service) RecordRepayment(ctx context.Context, id string, req RepaymentRequest) (*Reimbursement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	method := req.Method

	r, err := s.transition(ctx, id, unpaidStatuses, reimbursementDatamodel.StatusPaid, Changes{Method: &method, PaidAt: &paidAt})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reimbursement paid",
		"reimbursement_id", id,
		"partner_id", r.PartnerID,
		"method", method,
		"operator_id", internal.OperatorIDFromContext(ctx))
	return r, nil
}

func (s *Service) Cancel(ctx context.Context, id string, req CancelRequest) (*Reimbursement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)

	r, err := s.transition(ctx, id, unpaidStatuses, reimbursementDatamodel.StatusCancelled, Changes{CancelReason: &reason})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reimbursement cancelled", "reimbursement_id", id, "operator_id", internal.OperatorIDFromContext(ctx))
	return r, nil
}

// PayAllForPartner settles every unpaid reimbursement of the partner one row
// at a time. Having nothing to pay is reported as a warning.
func (s *Service) PayAllForPartner(ctx context.Context, partnerID string, req PayAllRequest) (*BulkResult, error) {
	repayment := RepaymentRequest{Method: req.Method}
	if err := repayment.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(partnerID) == "" {
		return nil, internal.NewValidationFieldError("partner_id", "partner_id is required", internal.ErrCodeMissingIdentifier)
	}

	unpaid, err := s.repo.ListUnpaid(ctx, partnerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list unpaid reimbursements", err)
	}

	result := &BulkResult{SucceededIDs: []string{}}
	if len(unpaid) == 0 {
		result.Warning = "no unpaid reimbursements for this partner"
		s.logger.Warn("bulk repayment found nothing to pay", "partner_id", partnerID)
		return result, nil
	}

	paidAt := s.now()
	method := req.Method
	for _, r := range unpaid {
		changed, err := s.repo.TransitionStatus(ctx, r.ID, unpaidStatuses, reimbursementDatamodel.StatusPaid, Changes{Method: &method, PaidAt: &paidAt})
		switch {
		case err != nil:
			s.logger.Error("bulk repayment row failed", "reimbursement_id", r.ID, "error", err)
			result.Failed = append(result.Failed, BulkFailure{ID: r.ID, Error: err.Error()})
		case !changed:
			result.Failed = append(result.Failed, BulkFailure{ID: r.ID, Error: internal.ErrInvalidReimbursementStatus.Message})
		default:
			result.Updated++
			result.SucceededIDs = append(result.SucceededIDs, r.ID)
		}
	}

	s.logger.Info("bulk repayment recorded",
		"partner_id", partnerID,
		"updated", result.Updated,
		"failed", len(result.Failed),
		"operator_id", internal.OperatorIDFromContext(ctx))
	return result, nil
}

// MarkOverdue moves EN_ATTENTE records past their due date to EN_RETARD.
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, internal.NewInternalError("failed to mark overdue reimbursements", err)
	}
	if n > 0 {
		s.logger.Info("reimbursements marked overdue", "count", n)
	}
	return n, nil
}

func (s *Service) Summary(ctx context.Context, partnerID string) (*Summary, error) {
	summary, err := s.summaries.Summary(ctx, partnerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load reimbursement summary", err)
	}
	return summary, nil
}

func (s *Service) transition(ctx context.Context, id string, from []string, to string, changes Changes) (*Reimbursement, error) {
	changed, err := s.repo.TransitionStatus(ctx, id, from, to, changes)
	if err != nil {
		s.logger.Error("failed to update reimbursement", "reimbursement_id", id, "to", to, "error", err)
		return nil, internal.NewInternalError("failed to update reimbursement", err)
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, internal.ErrInvalidReimbursementStatus.WithDetails(map[string]string{"current_status": r.Status})
	}
	return r, nil
}
