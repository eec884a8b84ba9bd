package models

import (
	"time"
)

// Property represents a rental unit managed by a landlord
type Property struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LandlordID  uint      `gorm:"column:landlord_id;not null;index" json:"landlordId"`
	Landlord    User      `gorm:"foreignKey:LandlordID" json:"-"`
	Street      string    `gorm:"column:street;not null;size:100" json:"street"`
	HouseNumber string    `gorm:"column:house_number;not null;size:10" json:"houseNumber"`
	PostalCode  string    `gorm:"column:postal_code;not null;size:10" json:"postalCode"`
	City        string    `gorm:"column:city;not null;size:50" json:"city"`
	LivingSpace float64   `gorm:"column:living_space;type:decimal(8,2)" json:"livingSpace"` // m²
	Rooms       float64   `gorm:"column:rooms;type:decimal(4,1)" json:"rooms"`
	Loans       []Loan    `gorm:"foreignKey:PropertyID" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Property) TableName() string {
	return "properties"
}

// Address returns the property address on one line
func (p Property) Address() string {
	return p.Street + " " + p.HouseNumber + ", " + p.PostalCode + " " + p.City
}
