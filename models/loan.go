package models

import (
	"gorm.io/gorm"
	"time"
)

// Loan represents a financing loan on a property. It is a read-only
// input to the amortization engine; the engine never writes it back.
type Loan struct {
	gorm.Model
	PropertyID           uint       `gorm:"not null;index" json:"propertyId"`
	Property             Property   `gorm:"foreignKey:PropertyID" json:"-"`
	Lender               string     `gorm:"size:100" json:"lender"`
	RemainingBalance     float64    `gorm:"type:decimal(14,2);not null" json:"remainingBalance"` // Restschuld as of today
	InterestRate         float64    `gorm:"type:decimal(6,3);not null" json:"interestRate"`      // Annual rate in percent
	MonthlyPayment       float64    `gorm:"type:decimal(12,2);not null" json:"monthlyPayment"`
	StartDate            time.Time  `gorm:"not null" json:"startDate"`
	EndDate              *time.Time `json:"endDate,omitempty"`
	FixedInterestEndDate *time.Time `json:"fixedInterestEndDate,omitempty"` // End of Zinsbindung; bounds the schedule when set
}

// TableName returns the table name for the Loan model
func (Loan) TableName() string {
	return "loans"
}

// ScheduleEndDate returns the date bounding the amortization schedule:
// the fixed interest end date when present, otherwise the loan end date.
// Returns nil when neither is set.
func (l Loan) ScheduleEndDate() *time.Time {
	if l.FixedInterestEndDate != nil {
		return l.FixedInterestEndDate
	}
	return l.EndDate
}
