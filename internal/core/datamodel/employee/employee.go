package employee

import "time"

type Partner struct {
	ID           string    `gorm:"primaryKey;column:id" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	ContactEmail string    `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone string    `gorm:"column:contact_phone" json:"contact_phone"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Partner) TableName() string {
	return "partners"
}

type Employee struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	PartnerID string    `gorm:"column:partner_id;not null;index" json:"partner_id"`
	FirstName string    `gorm:"column:first_name;not null" json:"first_name"`
	LastName  string    `gorm:"column:last_name;not null" json:"last_name"`
	Phone     string    `gorm:"column:phone" json:"phone"`
	Email     string    `gorm:"column:email" json:"email"`
	Salary    int64     `gorm:"column:salary;not null;default:0" json:"salary"`
	IsActive  bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
