package advance

import "time"

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusPaid     = "PAID"
)

type AdvanceRequest struct {
	ID               string     `gorm:"primaryKey;column:id" json:"id"`
	EmployeeID       string     `gorm:"column:employee_id;not null;index" json:"employee_id"`
	PartnerID        string     `gorm:"column:partner_id;not null;index" json:"partner_id"`
	Amount           int64      `gorm:"column:amount;not null" json:"amount"`
	Reason           string     `gorm:"column:reason;not null" json:"reason"`
	Status           string     `gorm:"column:status;not null;default:PENDING" json:"status"`
	RejectionComment *string    `gorm:"column:rejection_comment" json:"rejection_comment,omitempty"`
	Phone            string     `gorm:"column:phone" json:"phone"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ProcessedAt      *time.Time `gorm:"column:processed_at" json:"processed_at,omitempty"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AdvanceRequest) TableName() string {
	return "advance_requests"
}

func (a *AdvanceRequest) IsPending() bool {
	return a.Status == StatusPending
}
