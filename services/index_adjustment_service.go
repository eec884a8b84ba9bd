package services

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// IndexAdjustmentDTO represents the inputs of an index rent calculation
type IndexAdjustmentDTO struct {
	CurrentRent float64   `json:"currentRent" validate:"required,gt=0"`
	VpiOldValue float64   `json:"vpiOldValue" validate:"required,gt=0"`
	VpiNewValue float64   `json:"vpiNewValue" validate:"required,gt=0"`
	VpiOldMonth time.Time `json:"vpiOldMonth" validate:"required"`
	VpiNewMonth time.Time `json:"vpiNewMonth" validate:"required"`
}

// IndexAdjustmentResult represents the outcome of an index rent calculation.
// PercentChange and Delta are derived values and are never persisted.
type IndexAdjustmentResult struct {
	NewRent       float64 `json:"newRent"`
	PercentChange float64 `json:"percentChange"`
	Delta         float64 `json:"delta"`
}

// IndexAdjustmentService computes index-linked rent adjustments and the
// earliest date they may legally take effect
type IndexAdjustmentService struct {
	validator *validator.Validate
}

// NewIndexAdjustmentService creates a new IndexAdjustmentService instance
func NewIndexAdjustmentService() *IndexAdjustmentService {
	return &IndexAdjustmentService{
		validator: validator.New(),
	}
}

// Compute calculates the new rent from the current rent and two index
// readings. The new rent is rounded commercially (half away from zero)
// at the cent boundary.
func (s *IndexAdjustmentService) Compute(dto IndexAdjustmentDTO) (*IndexAdjustmentResult, error) {
	// Validate the DTO
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "field "+e.Field()+" is required")
			case "gt":
				errorMessages = append(errorMessages, "field "+e.Field()+" must be greater than 0")
			}
		}
		return nil, errors.New(strings.Join(errorMessages, "; "))
	}

	// A decrease is not a valid increase through this path
	if dto.VpiNewValue <= dto.VpiOldValue {
		return nil, errors.New("new index value must be greater than the old index value")
	}

	// The new reading must be from a later reference month
	if !dto.VpiNewMonth.After(dto.VpiOldMonth) {
		return nil, errors.New("new index month must be after the old index month")
	}

	currentRent := decimal.NewFromFloat(dto.CurrentRent)
	vpiOld := decimal.NewFromFloat(dto.VpiOldValue)
	vpiNew := decimal.NewFromFloat(dto.VpiNewValue)

	// newRent = currentRent * vpiNew / vpiOld, commercially rounded to the cent
	newRent := currentRent.Mul(vpiNew).Div(vpiOld).Round(2)
	percentChange := vpiNew.Div(vpiOld).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).Round(2)
	delta := newRent.Sub(currentRent)

	return &IndexAdjustmentResult{
		NewRent:       newRent.InexactFloat64(),
		PercentChange: percentChange.InexactFloat64(),
		Delta:         delta.InexactFloat64(),
	}, nil
}

// EarliestEffectiveDate computes the earliest date on which an index rent
// increase announced today may take effect under §557b BGB.
func (s *IndexAdjustmentService) EarliestEffectiveDate(possibleSince, lastChangeDate *time.Time) time.Time {
	return earliestEffectiveDateAt(time.Now(), possibleSince, lastChangeDate)
}

// earliestEffectiveDateAt is the deterministic core of EarliestEffectiveDate.
// The result is the maximum of three lower bounds:
//  1. the first day of the month beginning two full months after now
//     (the announcement must reach the tenant one full month ahead),
//  2. the contractual possibleSince date, when set,
//  3. twelve calendar months after the previous change, same day of month.
func earliestEffectiveDateAt(now time.Time, possibleSince, lastChangeDate *time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month()+2, 1, 0, 0, 0, 0, time.UTC)

	if possibleSince != nil && possibleSince.After(candidate) {
		candidate = *possibleSince
	}

	if lastChangeDate != nil {
		bound := addTwelveMonths(*lastChangeDate)
		if bound.After(candidate) {
			candidate = bound
		}
	}

	return candidate
}

// addTwelveMonths returns the same day of month one year later. When that
// day does not exist in the target month (Feb 29 outside a leap year) the
// result is clamped to the last day of the month.
func addTwelveMonths(t time.Time) time.Time {
	year := t.Year() + 1
	month := t.Month()
	day := t.Day()

	if last := daysInMonth(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysInMonth returns the number of days in the given month
func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
