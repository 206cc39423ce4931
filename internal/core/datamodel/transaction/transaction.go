package transaction

import "time"

// Statuses mirror the vocabulary used by the back-office operators.
const (
	StatusPending   = "EN_ATTENTE"
	StatusSucceeded = "EFFECTUEE"
	StatusCancelled = "ANNULEE"
)

const (
	MethodOrangeMoney      = "orange_money"
	MethodMTNMoney         = "mtn_money"
	MethodBankTransfer     = "virement_bancaire"
	MethodCash             = "especes"
	MethodCheck            = "cheque"
	MethodPayrollDeduction = "prelevement_salaire"
	MethodAdvanceOffset    = "compensation_avance"
)

var Methods = []string{
	MethodOrangeMoney,
	MethodMTNMoney,
	MethodBankTransfer,
	MethodCash,
	MethodCheck,
	MethodPayrollDeduction,
	MethodAdvanceOffset,
}

type Transaction struct {
	ID              string     `gorm:"primaryKey;column:id" json:"id"`
	PayID           string     `gorm:"column:pay_id;not null;uniqueIndex" json:"pay_id"`
	Reference       string     `gorm:"column:reference;not null;uniqueIndex" json:"reference"`
	AdvanceID       string     `gorm:"column:advance_id;not null;index" json:"advance_id"`
	EmployeeID      string     `gorm:"column:employee_id;not null" json:"employee_id"`
	PartnerID       string     `gorm:"column:partner_id;not null;index" json:"partner_id"`
	Amount          int64      `gorm:"column:amount;not null" json:"amount"`
	Method          string     `gorm:"column:method;not null" json:"method"`
	Phone           string     `gorm:"column:phone" json:"phone"`
	Status          string     `gorm:"column:status;not null;default:EN_ATTENTE" json:"status"`
	ProviderStatus  string     `gorm:"column:provider_status" json:"provider_status"`
	ProviderMessage *string    `gorm:"column:provider_message" json:"provider_message,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusSucceeded || t.Status == StatusCancelled
}

type Filter struct {
	Status    string
	PartnerID string
	AdvanceID string
	Limit     int
	Offset    int
}
