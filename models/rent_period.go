package models

import (
	"gorm.io/gorm"
	"time"
)

// RentPeriodStatus represents the lifecycle state of a rent period
type RentPeriodStatus string

const (
	RentPeriodStatusActive  RentPeriodStatus = "ACTIVE"  // Authoritative once its effective date is reached
	RentPeriodStatusPlanned RentPeriodStatus = "PLANNED" // Future-dated, not yet authoritative
)

// RentReason represents why a rent period was created
type RentReason string

const (
	RentReasonInitial   RentReason = "INITIAL"   // First rent of the contract
	RentReasonIncrease  RentReason = "INCREASE"  // Ordinary rent increase
	RentReasonIndex     RentReason = "INDEX"     // Index-linked adjustment (§557b BGB)
	RentReasonStepped   RentReason = "STEPPED"   // Staffelmiete step
	RentReasonMigration RentReason = "MIGRATION" // Synthetic fallback from legacy contract fields
	RentReasonManual    RentReason = "MANUAL"    // Manual correction
	RentReasonImport    RentReason = "IMPORT"    // Imported from an external system
)

// RentPeriod represents one row of a contract's rent ledger.
// Rows are immutable after creation; only planned rows may be deleted.
type RentPeriod struct {
	gorm.Model
	ContractID    uint             `gorm:"not null;index" json:"contractId"`
	Contract      Contract         `gorm:"foreignKey:ContractID" json:"-"`
	EffectiveDate time.Time        `gorm:"not null;index" json:"effectiveDate"` // Date from which this rent is owed
	ColdRent      float64          `gorm:"type:decimal(12,2);not null" json:"coldRent"`
	Utilities     float64          `gorm:"type:decimal(12,2);not null;default:0" json:"utilities"`
	Reason        RentReason       `gorm:"type:varchar(20);not null" json:"reason"`
	Status        RentPeriodStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	VpiOldMonth   *time.Time       `json:"vpiOldMonth,omitempty"` // Reference month of the old index reading
	VpiOldValue   *float64         `gorm:"type:decimal(8,2)" json:"vpiOldValue,omitempty"`
	VpiNewMonth   *time.Time       `json:"vpiNewMonth,omitempty"` // Reference month of the new index reading
	VpiNewValue   *float64         `gorm:"type:decimal(8,2)" json:"vpiNewValue,omitempty"`
	Notes         string           `gorm:"size:500" json:"notes,omitempty"`
}

// TableName returns the table name for the RentPeriod model
func (RentPeriod) TableName() string {
	return "rent_periods"
}

// TotalRent returns cold rent plus utilities
func (p RentPeriod) TotalRent() float64 {
	return p.ColdRent + p.Utilities
}
