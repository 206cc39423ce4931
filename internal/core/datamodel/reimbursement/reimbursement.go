package reimbursement

import "time"

const (
	StatusPending   = "EN_ATTENTE"
	StatusPaid      = "PAYE"
	StatusOverdue   = "EN_RETARD"
	StatusCancelled = "ANNULE"
)

// Reimbursement is the partner's obligation for one disbursed advance.
// TotalAmount is fixed at creation.
type Reimbursement struct {
	ID                string     `gorm:"primaryKey;column:id" json:"id"`
	TransactionID     string     `gorm:"column:transaction_id;not null;uniqueIndex" json:"transaction_id"`
	AdvanceID         string     `gorm:"column:advance_id;not null" json:"advance_id"`
	EmployeeID        string     `gorm:"column:employee_id;not null" json:"employee_id"`
	PartnerID         string     `gorm:"column:partner_id;not null;index" json:"partner_id"`
	TransactionAmount int64      `gorm:"column:transaction_amount;not null" json:"transaction_amount"`
	ServiceFee        int64      `gorm:"column:service_fee;not null" json:"service_fee"`
	TotalAmount       int64      `gorm:"column:total_amount;not null" json:"total_amount"`
	Method            *string    `gorm:"column:method" json:"method,omitempty"`
	Status            string     `gorm:"column:status;not null;default:EN_ATTENTE" json:"status"`
	CancelReason      *string    `gorm:"column:cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"created_at"`
	DueDate           time.Time  `gorm:"column:due_date;not null" json:"due_date"`
	PaidAt            *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Reimbursement) TableName() string {
	return "reimbursements"
}

func (r *Reimbursement) IsUnpaid() bool {
	return r.Status == StatusPending || r.Status == StatusOverdue
}

// DaysLate is zero once the record is settled or before the due date.
func (r *Reimbursement) DaysLate(now time.Time) int {
	if !r.IsUnpaid() || !now.After(r.DueDate) {
		return 0
	}
	return int(now.Sub(r.DueDate).Hours() / 24)
}

type Filter struct {
	PartnerID string
	Status    string
	Limit     int
	Offset    int
}

// Summary aggregates a partner's reimbursements by status.
type Summary struct {
	PartnerID      string `db:"partner_id" json:"partner_id"`
	PendingCount   int64  `db:"pending_count" json:"pending_count"`
	PendingAmount  int64  `db:"pending_amount" json:"pending_amount"`
	OverdueCount   int64  `db:"overdue_count" json:"overdue_count"`
	OverdueAmount  int64  `db:"overdue_amount" json:"overdue_amount"`
	PaidCount      int64  `db:"paid_count" json:"paid_count"`
	PaidAmount     int64  `db:"paid_amount" json:"paid_amount"`
	CancelledCount int64  `db:"cancelled_count" json:"cancelled_count"`
}
