package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/phone"
	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/core/fees"
	"github.com/frahmantamala/salary-advance/internal/employee"
	"github.com/frahmantamala/salary-advance/internal/messaging"
)

type Config struct {
	CountryCode   string
	CurrencyLabel string
	PlatformName  string
}

type Dispatcher struct {
	advances     AdvanceReader
	transactions TransactionReader
	employees    EmployeeReader
	staff        StaffDirectory
	sms          messaging.SMSSender
	email        messaging.EmailSender
	inbox        Inbox
	fees         fees.Schedule
	config       Config
	logger       *slog.Logger
	now          func() time.Time
}

type Deps struct {
	Advances     AdvanceReader
	Transactions TransactionReader
	Employees    EmployeeReader
	Staff        StaffDirectory
	SMS          messaging.SMSSender
	Email        messaging.EmailSender
	// Inbox may be nil when no document store is configured.
	Inbox Inbox
	Fees  fees.Schedule
}

func NewDispatcher(deps Deps, config Config, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		advances:     deps.Advances,
		transactions: deps.Transactions,
		employees:    deps.Employees,
		staff:        deps.Staff,
		sms:          deps.SMS,
		email:        deps.Email,
		inbox:        deps.Inbox,
		fees:         deps.Fees,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// Dispatch routes a generic event to the matching kind.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) (*Result, error) {
	switch evt.Kind {
	case KindRequestReceived:
		return d.RequestReceived(ctx, evt.EntityID)
	case KindApproved:
		return d.Approved(ctx, evt.EntityID)
	case KindRejected:
		return d.Rejected(ctx, evt.EntityID, evt.Reason)
	case KindPaymentSuccess:
		return d.PaymentSucceeded(ctx, evt.EntityID)
	case KindPaymentFailure:
		return d.PaymentFailed(ctx, evt.EntityID, evt.Reason)
	}
	return nil, internal.NewValidationError(fmt.Sprintf("unknown notification kind %q", evt.Kind), internal.ErrCodeInvalidEventKind)
}

func (d *Dispatcher) RequestReceived(ctx context.Context, advanceID string) (*Result, error) {
	adv, emp, partner, err := d.loadAdvance(ctx, advanceID)
	if err != nil {
		return nil, err
	}

	view := d.requestView(adv, emp, partner, adv.Reason)
	view.Date = formatDate(adv.CreatedAt)
	return d.deliver(ctx, KindRequestReceived, advanceID, emp, adv.Phone, requestReceivedMessage(view), true), nil
}

func (d *Dispatcher) Approved(ctx context.Context, advanceID string) (*Result, error) {
	adv, emp, partner, err := d.loadAdvance(ctx, advanceID)
	if err != nil {
		return nil, err
	}

	view := d.requestView(adv, emp, partner, adv.Reason)
	return d.deliver(ctx, KindApproved, advanceID, emp, adv.Phone, approvedMessage(view), true), nil
}

func (d *Dispatcher) Rejected(ctx context.Context, advanceID, reason string) (*Result, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, internal.NewValidationFieldError("reason", "rejection reason is required", internal.ErrCodeReasonRequired)
	}

	adv, emp, partner, err := d.loadAdvance(ctx, advanceID)
	if err != nil {
		return nil, err
	}

	view := d.requestView(adv, emp, partner, reason)
	return d.deliver(ctx, KindRejected, advanceID, emp, adv.Phone, rejectedMessage(view), true), nil
}

// PaymentSucceeded requires the transaction to already be EFFECTUEE.
func (d *Dispatcher) PaymentSucceeded(ctx context.Context, transactionID string) (*Result, error) {
	tx, emp, err := d.loadTransaction(ctx, transactionID, transactionDatamodel.StatusSucceeded)
	if err != nil {
		return nil, err
	}

	completedAt := d.now()
	if tx.CompletedAt != nil {
		completedAt = *tx.CompletedAt
	}

	msg := paymentSuccessMessage(paymentView{
		FirstName:    emp.FirstName,
		EmployeeName: emp.FullName(),
		Amount:       formatAmount(tx.Amount, d.config.CurrencyLabel),
		Method:       methodLabel(tx.Method),
		PayID:        tx.PayID,
		Date:         formatDate(completedAt),
		Platform:     d.config.PlatformName,
	})
	return d.deliver(ctx, KindPaymentSuccess, transactionID, emp, d.transactionPhone(ctx, tx), msg, false), nil
}

// PaymentFailed requires the transaction to already be ANNULEE. An empty
// reason falls back to the provider message stored on the transaction.
func (d *Dispatcher) PaymentFailed(ctx context.Context, transactionID, reason string) (*Result, error) {
	tx, emp, err := d.loadTransaction(ctx, transactionID, transactionDatamodel.StatusCancelled)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(reason) == "" {
		reason = "paiement refusé par l'opérateur"
		if tx.ProviderMessage != nil && *tx.ProviderMessage != "" {
			reason = *tx.ProviderMessage
		}
	}

	msg := paymentFailureMessage(paymentView{
		FirstName:    emp.FirstName,
		EmployeeName: emp.FullName(),
		Amount:       formatAmount(tx.Amount, d.config.CurrencyLabel),
		Method:       methodLabel(tx.Method),
		PayID:        tx.PayID,
		Reason:       reason,
		Platform:     d.config.PlatformName,
	})
	return d.deliver(ctx, KindPaymentFailure, transactionID, emp, d.transactionPhone(ctx, tx), msg, false), nil
}

func (d *Dispatcher) loadAdvance(ctx context.Context, advanceID string) (*advanceDatamodel.AdvanceRequest, *employee.Employee, *employee.Partner, error) {
	adv, err := d.advances.GetByID(ctx, advanceID)
	if err != nil {
		return nil, nil, nil, err
	}
	emp, err := d.employees.GetByID(ctx, adv.EmployeeID)
	if err != nil {
		return nil, nil, nil, err
	}
	partner, err := d.employees.GetPartner(ctx, adv.PartnerID)
	if err != nil {
		d.logger.Warn("partner lookup failed, continuing without partner name",
			"advance_id", advanceID,
			"partner_id", adv.PartnerID,
			"error", err)
		partner = &employee.Partner{ID: adv.PartnerID}
	}
	return adv, emp, partner, nil
}

func (d *Dispatcher) loadTransaction(ctx context.Context, transactionID, requiredStatus string) (*transactionDatamodel.Transaction, *employee.Employee, error) {
	tx, err := d.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, nil, err
	}
	if tx.Status != requiredStatus {
		d.logger.Error("notification precondition violated",
			"transaction_id", transactionID,
			"status", tx.Status,
			"required_status", requiredStatus)
		return nil, nil, internal.NewPreconditionError(
			fmt.Sprintf("transaction %s is %s, expected %s", transactionID, tx.Status, requiredStatus),
			internal.ErrCodeNotificationPrecondition)
	}
	emp, err := d.employees.GetByID(ctx, tx.EmployeeID)
	if err != nil {
		return nil, nil, err
	}
	return tx, emp, nil
}

// transactionPhone prefers the number the cash-out was sent to.
func (d *Dispatcher) transactionPhone(ctx context.Context, tx *transactionDatamodel.Transaction) string {
	if tx.Phone != "" {
		return tx.Phone
	}
	adv, err := d.advances.GetByID(ctx, tx.AdvanceID)
	if err != nil || adv.Phone == "" {
		return ""
	}
	return adv.Phone
}

func (d *Dispatcher) requestView(adv *advanceDatamodel.AdvanceRequest, emp *employee.Employee, partner *employee.Partner, reason string) requestView {
	return requestView{
		FirstName:    emp.FirstName,
		EmployeeName: emp.FullName(),
		PartnerName:  partner.Name,
		Amount:       formatAmount(adv.Amount, d.config.CurrencyLabel),
		NetAmount:    formatAmount(d.fees.NetDisbursement(adv.Amount), d.config.CurrencyLabel),
		Reason:       reason,
		Platform:     d.config.PlatformName,
	}
}

// deliver sends the employee SMS and email, then the admin copies and the
// inbox record. Each side effect is independent.
func (d *Dispatcher) deliver(ctx context.Context, kind Kind, entityID string, emp *employee.Employee, preferredPhone string, msg message, notifyAdmins bool) *Result {
	result := &Result{Kind: kind}
	lg := d.logger.With("kind", kind, "entity_id", entityID, "employee_id", emp.ID)

	d.sendEmployeeSMS(ctx, result, emp, preferredPhone, msg)
	d.sendEmployeeEmail(ctx, result, emp, msg)
	result.Success = result.SMSSent || result.EmailSent

	if notifyAdmins && msg.AdminSMS != "" {
		d.notifyAdmins(ctx, result, msg.AdminSMS)
	}
	d.recordInbox(ctx, result, kind, entityID, msg)

	if result.Success {
		lg.Info("notification dispatched",
			"sms_sent", result.SMSSent,
			"email_sent", result.EmailSent,
			"admins_notified", result.AdminsNotified)
	} else {
		lg.Warn("notification not delivered to employee",
			"sms_error", result.SMSError,
			"email_error", result.EmailError)
	}
	return result
}

func (d *Dispatcher) sendEmployeeSMS(ctx context.Context, result *Result, emp *employee.Employee, preferredPhone string, msg message) {
	raw := preferredPhone
	if raw == "" {
		raw = emp.Phone
	}
	if raw == "" {
		result.SMSError = "no phone number on file"
		return
	}
	to, err := phone.ToInternational(raw, d.config.CountryCode)
	if err != nil {
		result.SMSError = err.Error()
		return
	}

	res := d.sms.Send(ctx, messaging.SMS{To: []string{to}, Message: msg.SMS})
	result.SMSSent = res.Success
	if !res.Success {
		result.SMSError = res.Error
		d.logger.Warn("employee sms failed", "employee_id", emp.ID, "class", res.Class, "error", res.Error)
	}
}

func (d *Dispatcher) sendEmployeeEmail(ctx context.Context, result *Result, emp *employee.Employee, msg message) {
	if emp.Email == "" {
		result.EmailError = "no email address on file"
		return
	}

	html, err := renderHTML(msg, d.config.PlatformName)
	if err != nil {
		result.EmailError = err.Error()
		return
	}

	res := d.email.Send(ctx, messaging.Email{
		To:      []string{emp.Email},
		Subject: msg.Subject,
		HTML:    html,
		Text:    renderText(msg, d.config.PlatformName),
	})
	result.EmailSent = res.Success
	if !res.Success {
		result.EmailError = res.Error
		d.logger.Warn("employee email failed", "employee_id", emp.ID, "class", res.Class, "error", res.Error)
	}
}

func (d *Dispatcher) notifyAdmins(ctx context.Context, result *Result, text string) {
	contacts, err := d.staff.StaffContacts(ctx)
	if err != nil {
		d.logger.Warn("staff contact lookup failed", "error", err)
		result.AdminFailures = append(result.AdminFailures, err.Error())
		return
	}

	for _, contact := range contacts {
		if contact.Phone == "" {
			continue
		}
		to, err := phone.ToInternational(contact.Phone, d.config.CountryCode)
		if err != nil {
			result.AdminFailures = append(result.AdminFailures, fmt.Sprintf("%s: %v", contact.ID, err))
			continue
		}
		res := d.sms.Send(ctx, messaging.SMS{To: []string{to}, Message: text})
		if !res.Success {
			result.AdminFailures = append(result.AdminFailures, fmt.Sprintf("%s: %s", contact.ID, res.Error))
			continue
		}
		result.AdminsNotified++
	}
}

func (d *Dispatcher) recordInbox(ctx context.Context, result *Result, kind Kind, entityID string, msg message) {
	if d.inbox == nil {
		return
	}

	text := msg.AdminSMS
	if text == "" {
		text = strings.Join(msg.Lines, " ")
	}

	err := d.inbox.Record(ctx, &InboxEntry{
		ID:        uuid.New().String(),
		Kind:      kind,
		EntityID:  entityID,
		Title:     msg.Title,
		Message:   text,
		CreatedAt: d.now(),
	})
	if err != nil {
		d.logger.Warn("inbox record failed", "kind", kind, "entity_id", entityID, "error", err)
		result.InboxError = err.Error()
		return
	}
	result.InboxRecorded = true
}
