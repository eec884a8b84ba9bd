package services

import (
	"errors"
	"log"
	"mietwerk/database"
	"mietwerk/models"
	"mietwerk/utils"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrContractNotFound is returned by writes against a missing contract
	ErrContractNotFound = errors.New("contract not found")
	// ErrPeriodNotFound is returned when a rent period does not exist
	ErrPeriodNotFound = errors.New("rent period not found")
	// ErrPeriodNotPlanned is returned when deleting a non-planned period.
	// Active and historical rows form the audit trail and are immutable.
	ErrPeriodNotPlanned = errors.New("only planned rent periods can be deleted")
	// ErrAccessDenied is returned when a landlord touches another
	// landlord's ledger
	ErrAccessDenied = errors.New("access denied")
)

// CreateRentPeriodDTO represents the data for creating a rent period
type CreateRentPeriodDTO struct {
	ContractID     uint       `json:"-" validate:"required"`
	EffectiveDate  time.Time  `json:"effectiveDate" validate:"required"`
	ColdRent       float64    `json:"coldRent" validate:"required,gt=0"`
	Utilities      float64    `json:"utilities" validate:"gte=0"`
	Reason         string     `json:"reason" validate:"required,oneof=INITIAL INCREASE INDEX STEPPED MANUAL IMPORT"`
	Status         string     `json:"status" validate:"required,oneof=ACTIVE PLANNED"`
	VpiOldMonth    *time.Time `json:"vpiOldMonth"`
	VpiOldValue    *float64   `json:"vpiOldValue"`
	VpiNewMonth    *time.Time `json:"vpiNewMonth"`
	VpiNewValue    *float64   `json:"vpiNewValue"`
	Notes          string     `json:"notes" validate:"max=500"`
	SyncToContract bool       `json:"syncToContract"`
	NotifyTenant   bool       `json:"notifyTenant"`
}

// VpiValues represents the index reading a rent period was based on
type VpiValues struct {
	Month time.Time `json:"month"`
	Value float64   `json:"value"`
}

// RentLedgerService is the read/write layer over the time-ordered rent
// periods of a contract. The ledger is the source of truth for the rent;
// the contract's own rent fields are only a denormalized cache.
type RentLedgerService struct {
	repo      database.RentRepository
	validator *validator.Validate
	email     *EmailService
}

// NewRentLedgerService creates a new RentLedgerService instance.
// The email service may be nil; notifications are then skipped.
func NewRentLedgerService(repo database.RentRepository, email *EmailService) *RentLedgerService {
	return &RentLedgerService{
		repo:      repo,
		validator: validator.New(),
		email:     email,
	}
}

// GetCurrentRent returns the rent authoritative at asOf: the active period
// with the greatest effective date not after asOf, ties broken by the most
// recent creation. When the ledger holds no qualifying period the contract's
// cached rent fields are returned as a synthetic migration record. Returns
// nil when the contract itself does not exist.
func (s *RentLedgerService) GetCurrentRent(contractID uint, asOf time.Time) (*models.RentPeriod, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	contract, err := s.repo.FindContract(contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, nil
	}

	period, err := s.repo.FindAuthoritativePeriod(contractID, asOf)
	if err != nil {
		return nil, err
	}
	if period != nil {
		return period, nil
	}

	// Legacy fallback: contracts predating the ledger carry their rent in
	// the contract row itself
	fallback := &models.RentPeriod{
		ContractID:    contract.ID,
		EffectiveDate: contract.StartDate,
		ColdRent:      contract.ColdRent,
		Utilities:     contract.Utilities,
		Reason:        models.RentReasonMigration,
		Status:        models.RentPeriodStatusActive,
	}
	// Keep the invariant that the answer is never effective after asOf,
	// even when asOf predates the contract start
	if fallback.EffectiveDate.After(asOf) {
		fallback.EffectiveDate = asOf
	}
	fallback.CreatedAt = contract.CreatedAt
	return fallback, nil
}

// GetRentPeriods returns the full rent history of a contract ordered by
// effective date. A missing contract yields an empty history, not an error.
func (s *RentLedgerService) GetRentPeriods(contractID uint) ([]models.RentPeriod, error) {
	return s.repo.ListPeriods(contractID)
}

// GetPlannedPeriods returns the future-dated planned periods of a contract
func (s *RentLedgerService) GetPlannedPeriods(contractID uint) ([]models.RentPeriod, error) {
	return s.repo.ListPlannedPeriods(contractID, time.Now())
}

// GetLatestVpiValues returns the newest period's vpi_new reading. It is the
// baseline (vpi_old) of the next index calculation: index adjustments
// compound sequentially, never against the original baseline.
func (s *RentLedgerService) GetLatestVpiValues(contractID uint) (*VpiValues, error) {
	period, err := s.repo.FindLatestVpiPeriod(contractID)
	if err != nil {
		return nil, err
	}
	if period == nil || period.VpiNewValue == nil {
		return nil, nil
	}

	values := &VpiValues{Value: *period.VpiNewValue}
	if period.VpiNewMonth != nil {
		values.Month = *period.VpiNewMonth
	}
	return values, nil
}

// CreateRentPeriod inserts a new rent period. An active period effective
// today or earlier may additionally overwrite the contract's cached rent
// fields; both writes share one transaction. Planned periods never touch
// the cache, so a future increase cannot leak into current billing.
func (s *RentLedgerService) CreateRentPeriod(dto CreateRentPeriodDTO) (*models.RentPeriod, error) {
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
			case "gte":
				errorMessages = append(errorMessages, "field "+e.Field()+" must not be negative")
			case "oneof":
				errorMessages = append(errorMessages, "field "+e.Field()+" must be one of: "+e.Param())
			case "max":
				errorMessages = append(errorMessages, "field "+e.Field()+" is too long")
			}
		}
		return nil, errors.New(strings.Join(errorMessages, "; "))
	}

	now := time.Now()

	// Planned periods must be future-dated
	if dto.Status == string(models.RentPeriodStatusPlanned) && !dto.EffectiveDate.After(now) {
		return nil, errors.New("planned rent periods must have a future effective date")
	}

	// An index adjustment must carry both readings in chronological order
	if dto.Reason == string(models.RentReasonIndex) {
		if dto.VpiOldValue == nil || dto.VpiNewValue == nil || dto.VpiOldMonth == nil || dto.VpiNewMonth == nil {
			return nil, errors.New("index rent periods require both VPI readings")
		}
		if *dto.VpiNewValue <= *dto.VpiOldValue {
			return nil, errors.New("new index value must be greater than the old index value")
		}
		if !dto.VpiNewMonth.After(*dto.VpiOldMonth) {
			return nil, errors.New("new index month must be after the old index month")
		}
	}

	contract, err := s.repo.FindContract(dto.ContractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	period := &models.RentPeriod{
		ContractID:    dto.ContractID,
		EffectiveDate: dto.EffectiveDate,
		ColdRent:      dto.ColdRent,
		Utilities:     dto.Utilities,
		Reason:        models.RentReason(dto.Reason),
		Status:        models.RentPeriodStatus(dto.Status),
		VpiOldMonth:   dto.VpiOldMonth,
		VpiOldValue:   dto.VpiOldValue,
		VpiNewMonth:   dto.VpiNewMonth,
		VpiNewValue:   dto.VpiNewValue,
		Notes:         dto.Notes,
	}

	// The cache follows the ledger only for rents already in force
	sync := dto.SyncToContract &&
		period.Status == models.RentPeriodStatusActive &&
		!period.EffectiveDate.After(now)

	if err := s.repo.CreatePeriod(period, sync); err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordLedgerOperation("create")

	// Announce the adjustment to the tenant, best effort
	if dto.NotifyTenant && s.email != nil && contract.Tenant.Email != "" {
		err := s.email.SendRentAdjustmentNotification(
			contract.Tenant.Email,
			contract.Tenant.FirstName+" "+contract.Tenant.LastName,
			contract.Property.Address(),
			contract.ColdRent+contract.Utilities,
			period.TotalRent(),
			period.EffectiveDate,
		)
		if err != nil {
			log.Printf("Failed to send rent adjustment notification: %v", err)
		}
	}

	return period, nil
}

// DeletePlannedPeriod deletes a rent period that has not yet taken effect,
// on behalf of the landlord owning its contract. Active and historical rows
// are refused to protect the audit trail.
func (s *RentLedgerService) DeletePlannedPeriod(id, landlordID uint) error {
	period, err := s.repo.FindPeriod(id)
	if err != nil {
		return err
	}
	if period == nil {
		return ErrPeriodNotFound
	}

	contract, err := s.repo.FindContract(period.ContractID)
	if err != nil {
		return err
	}
	if contract == nil || contract.LandlordID != landlordID {
		return ErrAccessDenied
	}

	if period.Status != models.RentPeriodStatusPlanned {
		return ErrPeriodNotPlanned
	}

	affected, err := s.repo.DeletePeriod(id)
	if err != nil {
		return err
	}
	// The scheduler may have promoted the row between the check and the
	// delete; the conditional delete then touches nothing
	if affected == 0 {
		return ErrPeriodNotPlanned
	}

	utils.GetMetrics().RecordLedgerOperation("delete")
	return nil
}
