package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/phone"
	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	"github.com/frahmantamala/salary-advance/internal/core/datamodel/mobilemoney"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/core/fees"
	mobilemoneyClient "github.com/frahmantamala/salary-advance/internal/mobilemoney"
)

// Initiator starts mobile money cash-outs for approved advance requests.
type Initiator struct {
	repo        RepositoryAPI
	advances    AdvanceReader
	provider    Provider
	fees        fees.Schedule
	countryCode string
	logger      *slog.Logger
	now         func() time.Time
	newRef      func() string
}

func NewInitiator(repo RepositoryAPI, advances AdvanceReader, provider Provider, schedule fees.Schedule, countryCode string, logger *slog.Logger) *Initiator {
	return &Initiator{
		repo:        repo,
		advances:    advances,
		provider:    provider,
		fees:        schedule,
		countryCode: countryCode,
		logger:      logger,
		now:         time.Now,
		newRef:      func() string { return uuid.New().String() },
	}
}

// Initiate validates the request, calls the provider and, only when the
// provider accepted the cash-out, stores one EN_ATTENTE transaction.
func (i *Initiator) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	if err := req.Validate(i.countryCode); err != nil {
		return nil, err
	}

	adv, err := i.advances.GetByID(ctx, req.AdvanceID)
	if err != nil {
		return nil, err
	}
	if err := i.checkPayable(ctx, adv, req.Amount); err != nil {
		return nil, err
	}

	localPhone, err := phone.Normalize(req.Phone, i.countryCode)
	if err != nil {
		return nil, internal.NewValidationFieldError("phone", err.Error(), internal.ErrCodeInvalidPhone)
	}

	method := req.Method
	if method == "" {
		method = transactionDatamodel.MethodOrangeMoney
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = fmt.Sprintf("Avance sur salaire %s", adv.ID)
	}
	reference := i.newRef()

	lg := i.logger.With("advance_id", adv.ID, "reference", reference)
	lg.Info("initiating cash-out", "amount", req.Amount, "method", method)

	resp, err := i.provider.CashOut(ctx, &mobilemoney.CashOutRequest{
		Amount:      req.Amount,
		Phone:       localPhone,
		Description: description,
		AccountType: req.AccountType,
		Reference:   reference,
	})
	if err != nil {
		lg.Error("cash-out rejected by provider", "error", err)
		return nil, providerError(err)
	}
	if resp.PayID == "" {
		lg.Error("cash-out accepted without a payment id")
		return nil, internal.NewExternalError("provider did not return a payment id", nil)
	}

	tx := &Transaction{
		ID:             uuid.New().String(),
		PayID:          resp.PayID,
		Reference:      reference,
		AdvanceID:      adv.ID,
		EmployeeID:     adv.EmployeeID,
		PartnerID:      adv.PartnerID,
		Amount:         req.Amount,
		Method:         method,
		Phone:          localPhone,
		Status:         transactionDatamodel.StatusPending,
		ProviderStatus: string(mobilemoney.StatusInitiated),
		CreatedAt:      i.now(),
	}
	if err := i.repo.Create(ctx, tx); err != nil {
		// the provider has the cash-out, so the pay id must be reconciled by hand
		lg.Error("failed to record initiated cash-out", "pay_id", resp.PayID, "error", err)
		return nil, internal.NewInternalError("cash-out initiated but could not be recorded", err).
			WithDetails(map[string]string{"pay_id": resp.PayID})
	}

	lg.Info("cash-out initiated", "pay_id", tx.PayID, "transaction_id", tx.ID)
	return &InitiateResult{PayID: tx.PayID, Transaction: tx}, nil
}

func (i *Initiator) checkPayable(ctx context.Context, adv *advanceDatamodel.AdvanceRequest, amount int64) error {
	switch adv.Status {
	case advanceDatamodel.StatusApproved:
	case advanceDatamodel.StatusPaid:
		return internal.ErrAlreadyPaid
	default:
		return internal.ErrInvalidAdvanceStatus.WithDetails(map[string]string{
			"current_status":  adv.Status,
			"required_status": advanceDatamodel.StatusApproved,
		})
	}

	if expected := i.fees.NetDisbursement(adv.Amount); amount != expected {
		msg := fmt.Sprintf("amount must be %d (requested %d minus service fee %d)", expected, adv.Amount, i.fees.Fee(adv.Amount))
		return internal.NewValidationFieldError("amount", msg, internal.ErrCodeAmountMismatch)
	}

	existing, err := i.repo.LatestBlocking(ctx, adv.ID)
	if err != nil {
		return internal.NewInternalError("failed to check existing payments", err)
	}
	if existing == nil {
		return nil
	}
	if existing.Status == transactionDatamodel.StatusSucceeded {
		return internal.ErrAlreadyPaid.WithDetails(map[string]string{"pay_id": existing.PayID})
	}
	return internal.ErrPaymentInFlight.WithDetails(map[string]string{"pay_id": existing.PayID})
}

func providerError(err error) error {
	var pe *mobilemoneyClient.ProviderError
	if errors.As(err, &pe) {
		return internal.NewExternalError(pe.Message, err)
	}
	return internal.NewExternalError(err.Error(), err)
}
