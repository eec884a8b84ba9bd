package controllers

import (
	"encoding/json"
	"errors"
	"mietwerk/models"
	"mietwerk/services"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// RentController handles rent ledger and index adjustment requests
type RentController struct {
	ledger          *services.RentLedgerService
	index           *services.IndexAdjustmentService
	contractService *services.ContractService
	vpi             *services.VpiService
}

// NewRentController creates a new RentController instance
func NewRentController(ledger *services.RentLedgerService, index *services.IndexAdjustmentService, contractService *services.ContractService, vpi *services.VpiService) *RentController {
	return &RentController{
		ledger:          ledger,
		index:           index,
		contractService: contractService,
		vpi:             vpi,
	}
}

// CreateRentPeriodRequest is the wire form of a rent period creation.
// Dates are ISO-8601 calendar dates.
type CreateRentPeriodRequest struct {
	EffectiveDate  string   `json:"effectiveDate"`
	ColdRent       float64  `json:"coldRent"`
	Utilities      float64  `json:"utilities"`
	Reason         string   `json:"reason"`
	Status         string   `json:"status"`
	VpiOldMonth    string   `json:"vpiOldMonth,omitempty"`
	VpiOldValue    *float64 `json:"vpiOldValue,omitempty"`
	VpiNewMonth    string   `json:"vpiNewMonth,omitempty"`
	VpiNewValue    *float64 `json:"vpiNewValue,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	SyncToContract bool     `json:"syncToContract"`
	NotifyTenant   bool     `json:"notifyTenant"`
}

// IndexPreviewRequest is the wire form of an index adjustment preview
type IndexPreviewRequest struct {
	CurrentRent float64 `json:"currentRent,omitempty"` // Defaults to the ledger's current cold rent
	VpiOldValue float64 `json:"vpiOldValue"`
	VpiNewValue float64 `json:"vpiNewValue"`
	VpiOldMonth string  `json:"vpiOldMonth"`
	VpiNewMonth string  `json:"vpiNewMonth"`
}

// IndexPreviewResponse combines the calculation with the earliest legal
// effective date
type IndexPreviewResponse struct {
	Result                *services.IndexAdjustmentResult `json:"result"`
	EarliestEffectiveDate string                          `json:"earliestEffectiveDate"`
}

// contractForLandlord loads the contract and checks ownership. It writes
// the error response itself and returns nil when the caller should stop.
func (c *RentController) contractForLandlord(w http.ResponseWriter, r *http.Request) *models.Contract {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}

	vars := mux.Vars(r)
	contractID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid contract ID", http.StatusBadRequest)
		return nil
	}

	contract, err := c.contractService.GetContractByID(uint(contractID))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil
	}
	if contract == nil {
		http.Error(w, "Contract not found", http.StatusNotFound)
		return nil
	}
	if contract.LandlordID != userID {
		http.Error(w, "Access denied", http.StatusForbidden)
		return nil
	}

	return contract
}

// GetCurrentRent handles the current rent lookup, optionally as of a date
func (c *RentController) GetCurrentRent(w http.ResponseWriter, r *http.Request) {
	contract := c.contractForLandlord(w, r)
	if contract == nil {
		return
	}

	asOf := time.Now()
	if value := r.URL.Query().Get("asOf"); value != "" {
		parsed, err := parseDate(value)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// End of day, so a period effective on asOf itself counts
		asOf = parsed.Add(24*time.Hour - time.Second)
	}

	period, err := c.ledger.GetCurrentRent(contract.ID, asOf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if period == nil {
		http.Error(w, "Contract not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(period)
}

// GetRentPeriods handles the full rent history lookup
func (c *RentController) GetRentPeriods(w http.ResponseWriter, r *http.Request) {
	contract := c.contractForLandlord(w, r)
	if contract == nil {
		return
	}

	periods, err := c.ledger.GetRentPeriods(contract.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(periods)
}

// GetPlannedPeriods handles the planned period lookup
func (c *RentController) GetPlannedPeriods(w http.ResponseWriter, r *http.Request) {
	contract := c.contractForLandlord(w, r)
	if contract == nil {
		return
	}

	periods, err := c.ledger.GetPlannedPeriods(contract.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(periods)
}

// GetLatestVpiValues handles the lookup of the last recorded index reading
func (c *RentController) GetLatestVpiValues(w http.ResponseWriter, r *http.Request) {
	contract := c.contractForLandlord(w, r)
	if contract == nil {
		return
	}

	values, err := c.ledger.GetLatestVpiValues(contract.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if values == nil {
		http.Error(w, "No index reading recorded for this contract", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(values)
}

// CreateRentPeriod handles the creation of a rent period
func (c *RentController) CreateRentPeriod(w http.ResponseWriter, r *http.Request) {
	contract := c.contractForLandlord(w, r)
	if contract == nil {
		return
	}

	var req CreateRentPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	effectiveDate, err := parseDate(req.EffectiveDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vpiOldMonth, err := parseOptionalDate(req.VpiOldMonth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vpiNewMonth, err := parseOptionalDate(req.VpiNewMonth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dto := services.CreateRentPeriodDTO{
		ContractID:     contract.ID,
		EffectiveDate:  effectiveDate,
		ColdRent:       req.ColdRent,
		Utilities:      req.Utilities,
		Reason:         req.Reason,
		Status:         req.Status,
		VpiOldMonth:    vpiOldMonth,
		VpiOldValue:    req.VpiOldValue,
		VpiNewMonth:    vpiNewMonth,
		VpiNewValue:    req.VpiNewValue,
		Notes:          req.Notes,
		SyncToContract: req.SyncToContract,
		NotifyTenant:   req.NotifyTenant,
	}

	period, err := c.ledger.CreateRentPeriod(dto)
	if err != nil {
		if errors.Is(err, services.ErrContractNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(period)
}

// DeletePlannedPeriod handles the deletion of a planned rent period.
// Only the landlord owning the period's contract may delete it.
func (c *RentController) DeletePlannedPeriod(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := userID(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	periodID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid rent period ID", http.StatusBadRequest)
		return
	}

	if err := c.ledger.DeletePlannedPeriod(uint(periodID), landlordID); err != nil {
		switch {
		case errors.Is(err, services.ErrPeriodNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrAccessDenied):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrPeriodNotPlanned):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PreviewIndexAdjustment handles the calculation of an index rent increase
// together with its earliest legal effective date
func (c *RentController) PreviewIndexAdjustment(w http.ResponseWriter, r *http.Request) {
	contract := c.contractForLandlord(w, r)
	if contract == nil {
		return
	}

	var req IndexPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vpiOldMonth, err := parseDate(req.VpiOldMonth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vpiNewMonth, err := parseDate(req.VpiNewMonth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The current rent defaults to the ledger's authoritative cold rent
	currentRent := req.CurrentRent
	var lastChange *time.Time
	current, err := c.ledger.GetCurrentRent(contract.ID, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if current != nil {
		if currentRent == 0 {
			currentRent = current.ColdRent
		}
		if current.Reason != models.RentReasonMigration {
			effective := current.EffectiveDate
			lastChange = &effective
		}
	}

	result, err := c.index.Compute(services.IndexAdjustmentDTO{
		CurrentRent: currentRent,
		VpiOldValue: req.VpiOldValue,
		VpiNewValue: req.VpiNewValue,
		VpiOldMonth: vpiOldMonth,
		VpiNewMonth: vpiNewMonth,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	earliest := c.index.EarliestEffectiveDate(contract.IndexPossibleSince, lastChange)

	response := IndexPreviewResponse{
		Result:                result,
		EarliestEffectiveDate: earliest.Format(dateLayout),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetVpiFeed handles the lookup of current index readings from the
// statistics office feed
func (c *RentController) GetVpiFeed(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value("user_id").(uint); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	readings, err := c.vpi.FetchReadings()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(readings)
}
