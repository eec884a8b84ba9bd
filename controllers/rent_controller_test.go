package controllers

import (
	"context"
	"mietwerk/database"
	"mietwerk/models"
	"mietwerk/services"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// rentTestEnv holds a controller over an in-memory database with two
// landlords, where only the first owns a contract with a planned period
type rentTestEnv struct {
	controller *RentController
	db         *gorm.DB
	owner      *models.User
	other      *models.User
	planned    *models.RentPeriod
}

func newRentTestEnv(t *testing.T) *rentTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Tenant{},
		&models.Property{},
		&models.Contract{},
		&models.RentPeriod{},
		&models.Loan{},
	))

	owner := &models.User{FirstName: "Greta", LastName: "Vermieter", Email: "greta@example.com", Password: "x"}
	require.NoError(t, db.Create(owner).Error)
	other := &models.User{FirstName: "Otto", LastName: "Fremd", Email: "otto@example.com", Password: "x"}
	require.NoError(t, db.Create(other).Error)

	tenant := &models.Tenant{FirstName: "Max", LastName: "Mustermann", Email: "max@example.com"}
	require.NoError(t, db.Create(tenant).Error)

	property := &models.Property{
		LandlordID:  owner.ID,
		Street:      "Lindenstraße",
		HouseNumber: "12",
		PostalCode:  "10115",
		City:        "Berlin",
	}
	require.NoError(t, db.Create(property).Error)

	contract := &models.Contract{
		LandlordID: owner.ID,
		PropertyID: property.ID,
		TenantID:   tenant.ID,
		StartDate:  time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC),
		RentKind:   models.RentKindIndex,
		ColdRent:   750,
		Utilities:  180,
	}
	require.NoError(t, db.Create(contract).Error)

	planned := &models.RentPeriod{
		ContractID:    contract.ID,
		EffectiveDate: time.Now().AddDate(0, 2, 0),
		ColdRent:      990,
		Reason:        models.RentReasonIncrease,
		Status:        models.RentPeriodStatusPlanned,
	}
	require.NoError(t, db.Create(planned).Error)

	ledger := services.NewRentLedgerService(database.NewGormRentRepository(db), nil)
	controller := NewRentController(
		ledger,
		services.NewIndexAdjustmentService(),
		services.NewContractService(db),
		services.NewVpiService(""),
	)

	return &rentTestEnv{
		controller: controller,
		db:         db,
		owner:      owner,
		other:      other,
		planned:    planned,
	}
}

// deletePlannedRequest builds an authenticated delete request for a period
func deletePlannedRequest(periodID, landlordID uint) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/rent/periods/"+strconv.FormatUint(uint64(periodID), 10), nil)
	req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatUint(uint64(periodID), 10)})
	ctx := context.WithValue(req.Context(), "user_id", landlordID)
	return req.WithContext(ctx)
}

func (e *rentTestEnv) periodCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.RentPeriod{}).Where("id = ?", e.planned.ID).Count(&count).Error)
	return count
}

func TestDeletePlannedPeriodRejectsForeignLandlord(t *testing.T) {
	env := newRentTestEnv(t)

	rec := httptest.NewRecorder()
	env.controller.DeletePlannedPeriod(rec, deletePlannedRequest(env.planned.ID, env.other.ID))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(1), env.periodCount(t))
}

func TestDeletePlannedPeriodAllowsOwner(t *testing.T) {
	env := newRentTestEnv(t)

	rec := httptest.NewRecorder()
	env.controller.DeletePlannedPeriod(rec, deletePlannedRequest(env.planned.ID, env.owner.ID))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(0), env.periodCount(t))
}

func TestDeletePlannedPeriodRequiresAuth(t *testing.T) {
	env := newRentTestEnv(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/rent/periods/1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()
	env.controller.DeletePlannedPeriod(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, int64(1), env.periodCount(t))
}
