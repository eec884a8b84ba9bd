package services

import (
	"log"
	"mietwerk/models"
	"mietwerk/utils"
	"time"

	"gorm.io/gorm"
)

// RentPeriodSchedulerService promotes planned rent periods to active once
// their effective date arrives. The ledger itself never performs this
// transition; it is the scheduler's responsibility.
type RentPeriodSchedulerService struct {
	db    *gorm.DB
	email *EmailService
}

// NewRentPeriodSchedulerService creates a new RentPeriodSchedulerService instance
func NewRentPeriodSchedulerService(db *gorm.DB, email *EmailService) *RentPeriodSchedulerService {
	return &RentPeriodSchedulerService{
		db:    db,
		email: email,
	}
}

// Start launches the scheduler
func (s *RentPeriodSchedulerService) Start() {
	// Activate due planned periods once per hour
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for range ticker.C {
			if err := s.ActivateDuePeriods(); err != nil {
				log.Printf("Failed to activate due rent periods: %v", err)
			}
		}
	}()
}

// ActivateDuePeriods promotes every planned period whose effective date has
// arrived and syncs the contract's cached rent fields in the same transaction
func (s *RentPeriodSchedulerService) ActivateDuePeriods() error {
	// Start the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	// Load all planned periods that are due
	var periods []models.RentPeriod
	if err := tx.Where("status = ? AND effective_date <= ?",
		models.RentPeriodStatusPlanned, time.Now()).
		Preload("Contract").
		Preload("Contract.Property").
		Preload("Contract.Landlord").
		Find(&periods).Error; err != nil {
		tx.Rollback()
		return err
	}

	for i := range periods {
		if err := s.activatePeriod(tx, &periods[i]); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	// Notify after commit so a mail failure cannot roll back the promotion
	for i := range periods {
		s.notifyActivation(&periods[i])
	}

	return nil
}

// activatePeriod promotes a single period and updates the contract cache
func (s *RentPeriodSchedulerService) activatePeriod(tx *gorm.DB, period *models.RentPeriod) error {
	period.Status = models.RentPeriodStatusActive
	if err := tx.Save(period).Error; err != nil {
		return err
	}

	err := tx.Model(&models.Contract{}).
		Where("id = ?", period.ContractID).
		Updates(map[string]interface{}{
			"cold_rent":  period.ColdRent,
			"utilities":  period.Utilities,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return err
	}

	utils.GetMetrics().RecordLedgerOperation("activate")
	return nil
}

// notifyActivation informs the landlord about a promoted period, best effort
func (s *RentPeriodSchedulerService) notifyActivation(period *models.RentPeriod) {
	if s.email == nil || period.Contract.Landlord.Email == "" {
		return
	}

	err := s.email.SendPlannedPeriodActivatedNotification(
		period.Contract.Landlord.Email,
		period.Contract.Property.Address(),
		period.TotalRent(),
		period.EffectiveDate,
	)
	if err != nil {
		log.Printf("Failed to send activation notification: %v", err)
	}
}
