package controllers

import (
	"encoding/json"
	"mietwerk/services"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// ContractController handles tenant, property and contract requests
type ContractController struct {
	contractService *services.ContractService
	ledger          *services.RentLedgerService
}

// NewContractController creates a new ContractController instance
func NewContractController(contractService *services.ContractService, ledger *services.RentLedgerService) *ContractController {
	return &ContractController{
		contractService: contractService,
		ledger:          ledger,
	}
}

// CreateContractRequest is the wire form of a contract creation.
// Dates are ISO-8601 calendar dates.
type CreateContractRequest struct {
	PropertyID         uint    `json:"propertyId"`
	TenantID           uint    `json:"tenantId"`
	StartDate          string  `json:"startDate"`
	EndDate            string  `json:"endDate,omitempty"`
	RentKind           string  `json:"rentKind"`
	ColdRent           float64 `json:"coldRent"`
	Utilities          float64 `json:"utilities"`
	Deposit            float64 `json:"deposit"`
	IndexPossibleSince string  `json:"indexPossibleSince,omitempty"`
}

// userID reads the landlord from the context, writing the error response
// itself on failure
func userID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

// CreateTenant handles tenant creation
func (c *ContractController) CreateTenant(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}

	var dto services.CreateTenantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tenant, err := c.contractService.CreateTenant(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tenant)
}

// GetTenants handles the tenants list
func (c *ContractController) GetTenants(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}

	tenants, err := c.contractService.GetTenants()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tenants)
}

// CreateProperty handles property creation
func (c *ContractController) CreateProperty(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := userID(w, r)
	if !ok {
		return
	}

	var dto services.CreatePropertyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dto.LandlordID = landlordID

	property, err := c.contractService.CreateProperty(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(property)
}

// GetProperties handles the landlord's property list
func (c *ContractController) GetProperties(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := userID(w, r)
	if !ok {
		return
	}

	properties, err := c.contractService.GetPropertiesByLandlord(landlordID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(properties)
}

// CreateContract handles contract creation
func (c *ContractController) CreateContract(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := userID(w, r)
	if !ok {
		return
	}

	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	possibleSince, err := parseOptionalDate(req.IndexPossibleSince)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dto := services.CreateContractDTO{
		LandlordID:         landlordID,
		PropertyID:         req.PropertyID,
		TenantID:           req.TenantID,
		StartDate:          startDate,
		EndDate:            endDate,
		RentKind:           req.RentKind,
		ColdRent:           req.ColdRent,
		Utilities:          req.Utilities,
		Deposit:            req.Deposit,
		IndexPossibleSince: possibleSince,
	}

	contract, err := c.contractService.CreateContract(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(contract)
}

// GetContracts handles the landlord's contract list
func (c *ContractController) GetContracts(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := userID(w, r)
	if !ok {
		return
	}

	contracts, err := c.contractService.GetContractsByLandlord(landlordID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contracts)
}

// GetContract handles a single contract lookup, embedding the currently
// authoritative rent from the ledger
func (c *ContractController) GetContract(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := userID(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	contractID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid contract ID", http.StatusBadRequest)
		return
	}

	contract, err := c.contractService.GetContractByID(uint(contractID))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if contract == nil {
		http.Error(w, "Contract not found", http.StatusNotFound)
		return
	}
	if contract.LandlordID != landlordID {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	currentRent, err := c.ledger.GetCurrentRent(contract.ID, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"contract":    contract,
		"currentRent": currentRent,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
