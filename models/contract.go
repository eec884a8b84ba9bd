package models

import (
	"gorm.io/gorm"
	"time"
)

// RentKind represents the agreed rent adjustment scheme of a contract
type RentKind string

const (
	RentKindStandard RentKind = "STANDARD" // Ordinary comparative-rent increases
	RentKindIndex    RentKind = "INDEX"    // Index-linked rent (Indexmiete)
	RentKindStepped  RentKind = "STEPPED"  // Stepped rent (Staffelmiete)
)

// Contract represents a residential rental contract.
// ColdRent and Utilities are a denormalized cache of the currently
// authoritative rent period, kept for fast reads; the rent ledger is
// the source of truth.
type Contract struct {
	gorm.Model
	LandlordID         uint         `gorm:"not null;index" json:"landlordId"`
	Landlord           User         `gorm:"foreignKey:LandlordID" json:"-"`
	PropertyID         uint         `gorm:"not null;index" json:"propertyId"`
	Property           Property     `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	TenantID           uint         `gorm:"not null;index" json:"tenantId"`
	Tenant             Tenant       `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	StartDate          time.Time    `gorm:"not null" json:"startDate"`
	EndDate            *time.Time   `json:"endDate,omitempty"`
	RentKind           RentKind     `gorm:"type:varchar(20);not null;default:'STANDARD'" json:"rentKind"`
	ColdRent           float64      `gorm:"type:decimal(12,2);not null" json:"coldRent"`
	Utilities          float64      `gorm:"type:decimal(12,2);not null;default:0" json:"utilities"`
	Deposit            float64      `gorm:"type:decimal(12,2);not null;default:0" json:"deposit"`
	IndexPossibleSince *time.Time   `json:"indexPossibleSince,omitempty"` // Earliest date an index recalculation is contractually permitted
	RentPeriods        []RentPeriod `gorm:"foreignKey:ContractID" json:"-"`
}

// TableName returns the table name for the Contract model
func (Contract) TableName() string {
	return "contracts"
}
