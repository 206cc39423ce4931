package payment

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/datamodel/mobilemoney"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/core/events"
	"github.com/frahmantamala/salary-advance/internal/notification"
)

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

type ReconcilerConfig struct {
	MaxAttempts int
	Interval    time.Duration
	// Wait defaults to a timer; tests replace it.
	Wait WaitFunc
}

// Reconciler resolves pending cash-outs against the provider. Polling, the
// provider callback and the sweep all settle through the same conditional
// update, so each terminal status is applied and notified once.
type Reconciler struct {
	repo     RepositoryAPI
	provider Provider
	notifier Notifier
	eventBus *events.EventBus
	config   ReconcilerConfig
	logger   *slog.Logger
	polls    *keyedLock
	now      func() time.Time
}

func NewReconciler(repo RepositoryAPI, provider Provider, notifier Notifier, eventBus *events.EventBus, config ReconcilerConfig, logger *slog.Logger) *Reconciler {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 10
	}
	if config.Interval <= 0 {
		config.Interval = 2 * time.Second
	}
	if config.Wait == nil {
		config.Wait = sleep
	}
	return &Reconciler{
		repo:     repo,
		provider: provider,
		notifier: notifier,
		eventBus: eventBus,
		config:   config,
		logger:   logger,
		polls:    newKeyedLock(),
		now:      time.Now,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Check queries the provider once. A transaction that is already terminal is
// returned as-is without calling the provider.
func (r *Reconciler) Check(ctx context.Context, payID string) (*Resolution, error) {
	tx, err := r.repo.GetByPayID(ctx, payID)
	if err != nil {
		return nil, err
	}
	return r.check(ctx, tx)
}

// Poll checks the provider until the payment settles or MaxAttempts checks
// have been made. Reaching the ceiling leaves the transaction untouched and
// returns ErrPaymentUnresolved.
func (r *Reconciler) Poll(ctx context.Context, payID string) (*Resolution, error) {
	if !r.polls.TryLock(payID) {
		return nil, internal.ErrPollInProgress
	}
	defer r.polls.Unlock(payID)

	tx, err := r.repo.GetByPayID(ctx, payID)
	if err != nil {
		return nil, err
	}
	if tx.IsTerminal() {
		return r.unchanged(tx), nil
	}

	lg := r.logger.With("pay_id", payID, "transaction_id", tx.ID)
	lastStatus := mobilemoney.StatusUnknown

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		res, err := r.check(ctx, tx)
		switch {
		case err == nil && res.Terminal():
			res.Attempts = attempt
			return res, nil
		case err == nil:
			lastStatus = res.ProviderStatus
			lg.Debug("payment still pending", "attempt", attempt, "provider_status", res.ProviderStatus)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			if !isExternal(err) {
				return nil, err
			}
			lg.Warn("status check failed", "attempt", attempt, "error", err)
		}

		if attempt == r.config.MaxAttempts {
			break
		}
		if err := r.config.Wait(ctx, r.config.Interval); err != nil {
			return nil, err
		}
	}

	lg.Warn("payment status unresolved, manual reconciliation required",
		"attempts", r.config.MaxAttempts,
		"last_provider_status", lastStatus)
	return nil, internal.ErrPaymentUnresolved.WithDetails(map[string]interface{}{
		"pay_id":               payID,
		"attempts":             r.config.MaxAttempts,
		"last_provider_status": lastStatus,
	})
}

// HandleCallback treats a provider callback as a prompt to re-check the
// status; the callback body alone never settles a transaction.
func (r *Reconciler) HandleCallback(ctx context.Context, cb mobilemoney.Callback) (*Resolution, error) {
	if cb.PayID == "" {
		return nil, internal.NewValidationFieldError("pay_id", "pay_id is required", internal.ErrCodeMissingIdentifier)
	}

	tx, err := r.repo.GetByPayID(ctx, cb.PayID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("payment callback received",
		"pay_id", cb.PayID,
		"transaction_id", tx.ID,
		"callback_status", cb.Status,
		"current_status", tx.Status)

	if tx.IsTerminal() {
		return r.unchanged(tx), nil
	}
	if !mobilemoney.ParseStatus(cb.Status).IsTerminal() {
		return &Resolution{Transaction: tx, ProviderStatus: mobilemoney.ParseStatus(cb.Status)}, nil
	}
	return r.check(ctx, tx)
}

// ReconcilePending checks every EN_ATTENTE transaction matching filter once.
// Errors are counted and logged so one bad row does not stop the sweep.
func (r *Reconciler) ReconcilePending(ctx context.Context, filter Filter) (*SweepResult, error) {
	filter.Status = transactionDatamodel.StatusPending
	pending, err := r.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list pending transactions", err)
	}

	result := &SweepResult{}
	for _, tx := range pending {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Checked++
		res, err := r.check(ctx, tx)
		if err != nil {
			result.Failures++
			r.logger.Warn("sweep status check failed", "pay_id", tx.PayID, "error", err)
			continue
		}
		if res.Applied {
			result.Settled++
		}
	}

	if result.Checked > 0 {
		r.logger.Info("pending payments reconciled",
			"checked", result.Checked,
			"settled", result.Settled,
			"failures", result.Failures)
	}
	return result, nil
}

func (r *Reconciler) check(ctx context.Context, tx *Transaction) (*Resolution, error) {
	if tx.IsTerminal() {
		return r.unchanged(tx), nil
	}

	resp, err := r.provider.Status(ctx, tx.PayID)
	if err != nil {
		return nil, providerError(err)
	}

	status := resp.Status()
	r.logger.Debug("provider status received",
		"pay_id", tx.PayID,
		"lengo_status", resp.LengoStatus,
		"db_status", resp.DBStatus,
		"status", status)

	if !status.IsTerminal() {
		return &Resolution{Transaction: tx, ProviderStatus: status}, nil
	}
	return r.settle(ctx, tx, status, resp.Message)
}

func (r *Reconciler) settle(ctx context.Context, tx *Transaction, status mobilemoney.ProviderStatus, message string) (*Resolution, error) {
	target := transactionDatamodel.StatusCancelled
	if status == mobilemoney.StatusSuccess {
		target = transactionDatamodel.StatusSucceeded
	}
	var msg *string
	if message != "" {
		msg = &message
	}

	completedAt := r.now()
	applied, err := r.repo.Settle(ctx, tx.ID, target, string(status), msg, completedAt)
	if err != nil {
		r.logger.Error("failed to settle transaction", "pay_id", tx.PayID, "status", target, "error", err)
		return nil, internal.NewInternalError("failed to update transaction", err)
	}

	settled, err := r.repo.GetByID(ctx, tx.ID)
	if err != nil {
		if !applied {
			return nil, err
		}
		// the update is committed and no later resolver will act on this row,
		// so the winner carries on with the values it wrote
		r.logger.Warn("failed to re-read settled transaction", "pay_id", tx.PayID, "status", target, "error", err)
		settled = settledView(tx, target, string(status), msg, completedAt)
	}
	res := &Resolution{Transaction: settled, ProviderStatus: status, Applied: applied}
	if !applied {
		r.logger.Info("transaction already settled", "pay_id", tx.PayID, "status", settled.Status)
		return res, nil
	}

	r.logger.Info("transaction settled",
		"pay_id", settled.PayID,
		"transaction_id", settled.ID,
		"advance_id", settled.AdvanceID,
		"status", settled.Status,
		"provider_status", status)

	r.dispatch(ctx, res, message)
	r.publish(ctx, settled, message)
	return res, nil
}

func (r *Reconciler) dispatch(ctx context.Context, res *Resolution, reason string) {
	if r.notifier == nil {
		return
	}

	var (
		result *notification.Result
		err    error
	)
	if res.Transaction.Status == transactionDatamodel.StatusSucceeded {
		result, err = r.notifier.PaymentSucceeded(ctx, res.Transaction.ID)
	} else {
		result, err = r.notifier.PaymentFailed(ctx, res.Transaction.ID, reason)
	}
	if err != nil {
		r.logger.Warn("payment notification failed", "transaction_id", res.Transaction.ID, "error", err)
		res.NotificationError = err.Error()
		return
	}
	res.Notification = result
}

func (r *Reconciler) publish(ctx context.Context, tx *Transaction, reason string) {
	if r.eventBus == nil {
		return
	}

	if tx.Status == transactionDatamodel.StatusSucceeded {
		evt := events.NewPaymentSucceededEvent(tx.ID, tx.PayID, tx.AdvanceID, tx.EmployeeID, tx.PartnerID, tx.Amount, tx.Method)
		if err := r.eventBus.PublishSync(ctx, evt); err != nil {
			r.logger.Error("payment succeeded handlers failed", "transaction_id", tx.ID, "error", err)
		}
		return
	}

	evt := events.NewPaymentFailedEvent(tx.ID, tx.PayID, tx.AdvanceID, tx.EmployeeID, tx.PartnerID, tx.Amount, tx.Method, reason)
	if err := r.eventBus.Publish(ctx, evt); err != nil {
		r.logger.Warn("failed to publish payment failed event", "transaction_id", tx.ID, "error", err)
	}
}

func settledView(tx *Transaction, status, providerStatus string, message *string, completedAt time.Time) *Transaction {
	view := *tx
	view.Status = status
	view.ProviderStatus = providerStatus
	view.ProviderMessage = message
	view.CompletedAt = &completedAt
	view.UpdatedAt = completedAt
	return &view
}

func (r *Reconciler) unchanged(tx *Transaction) *Resolution {
	return &Resolution{Transaction: tx, ProviderStatus: mobilemoney.ParseStatus(tx.ProviderStatus)}
}

func isExternal(err error) bool {
	appErr, ok := internal.IsAppError(err)
	return ok && appErr.Type == internal.ErrorTypeExternal
}
