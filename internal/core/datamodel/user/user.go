package user

import "time"

const (
	RoleAdmin       = "admin"
	RoleHR          = "rh"
	RoleResponsable = "responsable"
)

// User is an internal back-office staff member.
type User struct {
	ID           string    `gorm:"primaryKey;column:id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	Phone        string    `gorm:"column:phone"`
	Role         string    `gorm:"column:role;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
