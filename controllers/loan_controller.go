package controllers

import (
	"encoding/json"
	"mietwerk/models"
	"mietwerk/services"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// LoanController handles loan and amortization schedule requests
type LoanController struct {
	loanService     *services.LoanService
	contractService *services.ContractService
}

// NewLoanController creates a new LoanController instance
func NewLoanController(loanService *services.LoanService, contractService *services.ContractService) *LoanController {
	return &LoanController{
		loanService:     loanService,
		contractService: contractService,
	}
}

// CreateLoanRequest is the wire form of a loan creation.
// Dates are ISO-8601 calendar dates.
type CreateLoanRequest struct {
	Lender               string  `json:"lender"`
	RemainingBalance     float64 `json:"remainingBalance"`
	InterestRate         float64 `json:"interestRate"`
	MonthlyPayment       float64 `json:"monthlyPayment"`
	StartDate            string  `json:"startDate"`
	EndDate              string  `json:"endDate,omitempty"`
	FixedInterestEndDate string  `json:"fixedInterestEndDate,omitempty"`
}

// propertyForLandlord loads the property and checks ownership. It writes
// the error response itself and returns nil when the caller should stop.
func (c *LoanController) propertyForLandlord(w http.ResponseWriter, r *http.Request) *models.Property {
	landlordID, ok := userID(w, r)
	if !ok {
		return nil
	}

	vars := mux.Vars(r)
	propertyID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid property ID", http.StatusBadRequest)
		return nil
	}

	properties, err := c.contractService.GetPropertiesByLandlord(landlordID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil
	}
	for i := range properties {
		if properties[i].ID == uint(propertyID) {
			return &properties[i]
		}
	}

	http.Error(w, "Property not found", http.StatusNotFound)
	return nil
}

// CreateLoan handles loan creation for a property
func (c *LoanController) CreateLoan(w http.ResponseWriter, r *http.Request) {
	property := c.propertyForLandlord(w, r)
	if property == nil {
		return
	}

	var req CreateLoanRequest
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
	fixedEnd, err := parseOptionalDate(req.FixedInterestEndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dto := services.CreateLoanDTO{
		PropertyID:           property.ID,
		Lender:               req.Lender,
		RemainingBalance:     req.RemainingBalance,
		InterestRate:         req.InterestRate,
		MonthlyPayment:       req.MonthlyPayment,
		StartDate:            startDate,
		EndDate:              endDate,
		FixedInterestEndDate: fixedEnd,
	}

	loan, err := c.loanService.Create(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(loan)
}

// GetLoans handles the loan list of a property
func (c *LoanController) GetLoans(w http.ResponseWriter, r *http.Request) {
	property := c.propertyForLandlord(w, r)
	if property == nil {
		return
	}

	loans, err := c.loanService.GetByPropertyID(property.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loans)
}

// GetSchedule handles the amortization schedule of a loan. An empty
// schedule means no schedule is computable for the loan's dates.
func (c *LoanController) GetSchedule(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := userID(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	loanID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}

	loan, err := c.loanService.GetByID(uint(loanID))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if loan == nil {
		http.Error(w, "Loan not found", http.StatusNotFound)
		return
	}
	if loan.Property.LandlordID != landlordID {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	schedule := c.loanService.GenerateSchedule(*loan)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedule)
}
