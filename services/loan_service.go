package services

import (
	"errors"
	"mietwerk/models"
	"mietwerk/utils"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CreateLoanDTO represents the data for creating a loan
type CreateLoanDTO struct {
	PropertyID           uint       `json:"-" validate:"required"`
	Lender               string     `json:"lender" validate:"max=100"`
	RemainingBalance     float64    `json:"remainingBalance" validate:"gte=0"`
	InterestRate         float64    `json:"interestRate" validate:"gte=0"`
	MonthlyPayment       float64    `json:"monthlyPayment" validate:"gte=0"`
	StartDate            time.Time  `json:"startDate" validate:"required"`
	EndDate              *time.Time `json:"endDate"`
	FixedInterestEndDate *time.Time `json:"fixedInterestEndDate"`
}

// MonthRow represents one month of an amortization schedule.
// Rows are recomputed on every request and never persisted.
type MonthRow struct {
	Month     time.Time `json:"month"`
	Balance   float64   `json:"balance"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
}

// AmortizationSchedule represents the full amortization simulation of a
// loan plus a downsampled series for charting. The aggregates are always
// computed over the full series.
type AmortizationSchedule struct {
	Rows           []MonthRow `json:"rows"`
	ChartRows      []MonthRow `json:"chartRows"`
	TotalInterest  float64    `json:"totalInterest"`
	TotalPrincipal float64    `json:"totalPrincipal"`
	FinalBalance   float64    `json:"finalBalance"`
}

// LoanService provides loan records and their amortization schedules
type LoanService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewLoanService creates a new LoanService instance
func NewLoanService(db *gorm.DB) *LoanService {
	return &LoanService{
		db:        db,
		validator: validator.New(),
	}
}

// Create stores a new loan for a property
func (s *LoanService) Create(dto CreateLoanDTO) (*models.Loan, error) {
	// Validate the DTO
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "field "+e.Field()+" is required")
			case "gte":
				errorMessages = append(errorMessages, "field "+e.Field()+" must not be negative")
			}
		}
		return nil, errors.New(strings.Join(errorMessages, "; "))
	}

	// Check that the property exists
	var property models.Property
	if err := s.db.First(&property, dto.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("property not found")
		}
		return nil, err
	}

	loan := &models.Loan{
		PropertyID:           dto.PropertyID,
		Lender:               dto.Lender,
		RemainingBalance:     dto.RemainingBalance,
		InterestRate:         dto.InterestRate,
		MonthlyPayment:       dto.MonthlyPayment,
		StartDate:            dto.StartDate,
		EndDate:              dto.EndDate,
		FixedInterestEndDate: dto.FixedInterestEndDate,
	}

	if err := s.db.Create(loan).Error; err != nil {
		return nil, err
	}

	return loan, nil
}

// GetByID returns the loan or nil when it does not exist
func (s *LoanService) GetByID(id uint) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.Preload("Property").First(&loan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loan, nil
}

// GetByPropertyID returns all loans of a property
func (s *LoanService) GetByPropertyID(propertyID uint) ([]models.Loan, error) {
	var loans []models.Loan
	if err := s.db.Where("property_id = ?", propertyID).
		Order("start_date ASC").
		Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// GenerateSchedule simulates the loan month by month from the first day of
// the current month. An empty schedule is a valid result when the loan has
// no usable end date or the end date already lies in the past.
func (s *LoanService) GenerateSchedule(loan models.Loan) AmortizationSchedule {
	utils.GetMetrics().RecordScheduleComputed()
	return generateScheduleAt(loan, time.Now())
}

// generateScheduleAt is the deterministic core of GenerateSchedule
func generateScheduleAt(loan models.Loan, now time.Time) AmortizationSchedule {
	schedule := AmortizationSchedule{Rows: []MonthRow{}, ChartRows: []MonthRow{}}

	end := loan.ScheduleEndDate()
	if end == nil {
		return schedule
	}

	// Simulation starts at the first day of the current calendar month
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if end.Before(month) {
		return schedule
	}

	balance := loan.RemainingBalance
	monthlyRate := loan.InterestRate / 100 / 12

	for !month.After(*end) {
		interest := balance * monthlyRate

		// The payment first covers interest; the rest amortizes the balance.
		// A payment below the interest stagnates instead of growing the debt.
		principal := loan.MonthlyPayment - interest
		if principal < 0 {
			principal = 0
		}
		if principal > balance {
			principal = balance
		}

		balance -= principal

		schedule.Rows = append(schedule.Rows, MonthRow{
			Month:     month,
			Balance:   balance,
			Principal: principal,
			Interest:  interest,
		})

		schedule.TotalInterest += interest
		schedule.TotalPrincipal += principal

		if balance <= 0 {
			break
		}

		month = month.AddDate(0, 1, 0)
	}

	if n := len(schedule.Rows); n > 0 {
		schedule.FinalBalance = schedule.Rows[n-1].Balance
	}
	schedule.ChartRows = downsampleRows(schedule.Rows)

	return schedule
}

// downsampleRows thins a schedule for charting: every Nth row plus always
// the final row. The full series remains the source of truth.
func downsampleRows(rows []MonthRow) []MonthRow {
	if len(rows) <= 24 {
		out := make([]MonthRow, len(rows))
		copy(out, rows)
		return out
	}

	step := len(rows) / 60
	if step < 1 {
		step = 1
	}

	var out []MonthRow
	for i := 0; i < len(rows); i += step {
		out = append(out, rows[i])
	}

	// The final row carries the final balance and must always be present
	last := rows[len(rows)-1]
	if out[len(out)-1].Month != last.Month {
		out = append(out, last)
	}

	return out
}
