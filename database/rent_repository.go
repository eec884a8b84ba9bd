package database

import (
	"errors"
	"mietwerk/models"
	"time"

	"gorm.io/gorm"
)

// RentRepository abstracts the rent ledger's persistence so the service
// layer can be tested against a substitute store.
type RentRepository interface {
	// FindContract returns the contract or nil when it does not exist.
	FindContract(contractID uint) (*models.Contract, error)
	// FindAuthoritativePeriod returns the active period with the greatest
	// effective date not after asOf, or nil when none qualifies.
	FindAuthoritativePeriod(contractID uint, asOf time.Time) (*models.RentPeriod, error)
	// ListPeriods returns the full rent history ordered by effective date.
	ListPeriods(contractID uint) ([]models.RentPeriod, error)
	// ListPlannedPeriods returns planned periods effective after the given date.
	ListPlannedPeriods(contractID uint, after time.Time) ([]models.RentPeriod, error)
	// FindLatestVpiPeriod returns the newest period carrying a VPI reading pair,
	// or nil when the contract has none.
	FindLatestVpiPeriod(contractID uint) (*models.RentPeriod, error)
	// FindPeriod returns the period or nil when it does not exist.
	FindPeriod(id uint) (*models.RentPeriod, error)
	// CreatePeriod inserts the period; when syncContract is set the contract's
	// cached rent fields are overwritten inside the same transaction.
	CreatePeriod(period *models.RentPeriod, syncContract bool) error
	// DeletePeriod removes the period only while it is still planned,
	// reporting the number of rows removed.
	DeletePeriod(id uint) (int64, error)
}

// GormRentRepository implements RentRepository on top of GORM
type GormRentRepository struct {
	db *gorm.DB
}

// NewGormRentRepository creates a new GormRentRepository instance
func NewGormRentRepository(db *gorm.DB) *GormRentRepository {
	return &GormRentRepository{db: db}
}

func (r *GormRentRepository) FindContract(contractID uint) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.Preload("Tenant").Preload("Property").First(&contract, contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (r *GormRentRepository) FindAuthoritativePeriod(contractID uint, asOf time.Time) (*models.RentPeriod, error) {
	var period models.RentPeriod
	err := r.db.Where("contract_id = ? AND status = ? AND effective_date <= ?",
		contractID, models.RentPeriodStatusActive, asOf).
		Order("effective_date DESC, created_at DESC, id DESC").
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

func (r *GormRentRepository) ListPeriods(contractID uint) ([]models.RentPeriod, error) {
	var periods []models.RentPeriod
	if err := r.db.Where("contract_id = ?", contractID).
		Order("effective_date ASC, created_at ASC, id ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *GormRentRepository) ListPlannedPeriods(contractID uint, after time.Time) ([]models.RentPeriod, error) {
	var periods []models.RentPeriod
	if err := r.db.Where("contract_id = ? AND status = ? AND effective_date > ?",
		contractID, models.RentPeriodStatusPlanned, after).
		Order("effective_date ASC, created_at ASC, id ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *GormRentRepository) FindLatestVpiPeriod(contractID uint) (*models.RentPeriod, error) {
	var period models.RentPeriod
	err := r.db.Where("contract_id = ? AND vpi_new_value IS NOT NULL", contractID).
		Order("effective_date DESC, created_at DESC, id DESC").
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

func (r *GormRentRepository) FindPeriod(id uint) (*models.RentPeriod, error) {
	var period models.RentPeriod
	if err := r.db.First(&period, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// CreatePeriod inserts the period and, when requested, updates the
// contract's denormalized rent cache. Both writes share one transaction
// so the ledger and the cache cannot diverge on failure.
func (r *GormRentRepository) CreatePeriod(period *models.RentPeriod, syncContract bool) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Create(period).Error; err != nil {
		tx.Rollback()
		return err
	}

	if syncContract {
		err := tx.Model(&models.Contract{}).
			Where("id = ?", period.ContractID).
			Updates(map[string]interface{}{
				"cold_rent":  period.ColdRent,
				"utilities":  period.Utilities,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// DeletePeriod deletes the row with the status predicate in the statement
// itself, so a row promoted to active in the meantime is left untouched
func (r *GormRentRepository) DeletePeriod(id uint) (int64, error) {
	result := r.db.Where("id = ? AND status = ?", id, models.RentPeriodStatusPlanned).
		Delete(&models.RentPeriod{})
	return result.RowsAffected, result.Error
}
