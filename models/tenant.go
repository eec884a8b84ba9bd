package models

import (
	"time"
)

type Tenant struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string    `gorm:"column:first_name;not null;size:50" json:"firstName"`
	LastName  string    `gorm:"column:last_name;not null;size:50" json:"lastName"`
	Email     string    `gorm:"column:email;size:100;index" json:"email"`
	Phone     string    `gorm:"column:phone;size:30" json:"phone"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Tenant) TableName() string {
	return "tenants"
}
