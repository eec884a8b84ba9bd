package services

import (
	"errors"
	"mietwerk/models"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CreateTenantDTO represents the data for creating a tenant
type CreateTenantDTO struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=30"`
}

// CreatePropertyDTO represents the data for creating a property
type CreatePropertyDTO struct {
	LandlordID  uint    `json:"-" validate:"required"`
	Street      string  `json:"street" validate:"required,max=100"`
	HouseNumber string  `json:"houseNumber" validate:"required,max=10"`
	PostalCode  string  `json:"postalCode" validate:"required,max=10"`
	City        string  `json:"city" validate:"required,max=50"`
	LivingSpace float64 `json:"livingSpace" validate:"gte=0"`
	Rooms       float64 `json:"rooms" validate:"gte=0"`
}

// CreateContractDTO represents the data for creating a rental contract
type CreateContractDTO struct {
	LandlordID         uint       `json:"-" validate:"required"`
	PropertyID         uint       `json:"propertyId" validate:"required"`
	TenantID           uint       `json:"tenantId" validate:"required"`
	StartDate          time.Time  `json:"startDate" validate:"required"`
	EndDate            *time.Time `json:"endDate"`
	RentKind           string     `json:"rentKind" validate:"required,oneof=STANDARD INDEX STEPPED"`
	ColdRent           float64    `json:"coldRent" validate:"required,gt=0"`
	Utilities          float64    `json:"utilities" validate:"gte=0"`
	Deposit            float64    `json:"deposit" validate:"gte=0"`
	IndexPossibleSince *time.Time `json:"indexPossibleSince"`
}

// ContractService provides methods for managing tenants, properties and
// rental contracts
type ContractService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewContractService creates a new ContractService instance
func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{
		db:        db,
		validator: validator.New(),
	}
}

// validate runs struct validation and translates the errors
func (s *ContractService) validate(dto interface{}) error {
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
			case "email":
				errorMessages = append(errorMessages, "field "+e.Field()+" must be a valid email address")
			default:
				errorMessages = append(errorMessages, "field "+e.Field()+" is invalid")
			}
		}
		return errors.New(strings.Join(errorMessages, "; "))
	}
	return nil
}

// CreateTenant stores a new tenant
func (s *ContractService) CreateTenant(dto CreateTenantDTO) (*models.Tenant, error) {
	if err := s.validate(dto); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Email:     dto.Email,
		Phone:     dto.Phone,
	}

	if err := s.db.Create(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// CreateProperty stores a new property for a landlord
func (s *ContractService) CreateProperty(dto CreatePropertyDTO) (*models.Property, error) {
	if err := s.validate(dto); err != nil {
		return nil, err
	}

	property := &models.Property{
		LandlordID:  dto.LandlordID,
		Street:      dto.Street,
		HouseNumber: dto.HouseNumber,
		PostalCode:  dto.PostalCode,
		City:        dto.City,
		LivingSpace: dto.LivingSpace,
		Rooms:       dto.Rooms,
	}

	if err := s.db.Create(property).Error; err != nil {
		return nil, err
	}
	return property, nil
}

// CreateContract stores a new rental contract together with its initial
// rent period so the ledger starts out consistent with the contract cache
func (s *ContractService) CreateContract(dto CreateContractDTO) (*models.Contract, error) {
	if err := s.validate(dto); err != nil {
		return nil, err
	}

	// Start the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Check that the property belongs to the landlord
	var property models.Property
	if err := tx.First(&property, dto.PropertyID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("property not found")
		}
		return nil, err
	}
	if property.LandlordID != dto.LandlordID {
		tx.Rollback()
		return nil, errors.New("access denied")
	}

	// Check that the tenant exists
	var tenant models.Tenant
	if err := tx.First(&tenant, dto.TenantID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("tenant not found")
		}
		return nil, err
	}

	contract := &models.Contract{
		LandlordID:         dto.LandlordID,
		PropertyID:         dto.PropertyID,
		TenantID:           dto.TenantID,
		StartDate:          dto.StartDate,
		EndDate:            dto.EndDate,
		RentKind:           models.RentKind(dto.RentKind),
		ColdRent:           dto.ColdRent,
		Utilities:          dto.Utilities,
		Deposit:            dto.Deposit,
		IndexPossibleSince: dto.IndexPossibleSince,
	}

	if err := tx.Create(contract).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// The initial rent period anchors the ledger at the contract start
	period := &models.RentPeriod{
		ContractID:    contract.ID,
		EffectiveDate: dto.StartDate,
		ColdRent:      dto.ColdRent,
		Utilities:     dto.Utilities,
		Reason:        models.RentReasonInitial,
		Status:        models.RentPeriodStatusActive,
	}

	if err := tx.Create(period).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return contract, nil
}

// GetContractsByLandlord returns all contracts of a landlord
func (s *ContractService) GetContractsByLandlord(landlordID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	if err := s.db.Where("landlord_id = ?", landlordID).
		Preload("Tenant").
		Preload("Property").
		Order("start_date DESC").
		Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// GetContractByID returns the contract or nil when it does not exist
func (s *ContractService) GetContractByID(id uint) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.Preload("Tenant").Preload("Property").First(&contract, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

// GetTenants returns all tenants
func (s *ContractService) GetTenants() ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := s.db.Order("last_name ASC, first_name ASC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// GetPropertiesByLandlord returns all properties of a landlord
func (s *ContractService) GetPropertiesByLandlord(landlordID uint) ([]models.Property, error) {
	var properties []models.Property
	if err := s.db.Where("landlord_id = ?", landlordID).
		Order("city ASC, street ASC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}
