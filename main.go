package main

import (
	"encoding/json"
	"fmt"
	"log"
	"mietwerk/config"
	"mietwerk/controllers"
	"mietwerk/database"
	"mietwerk/middleware"
	"mietwerk/services"
	"mietwerk/utils"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// healthHandler reports service liveness
func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// metricsHandler reports the application counters
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(utils.GetMetrics().Snapshot())
}

func initRentPeriodScheduler(db *database.Database, emailService *services.EmailService) {
	// Create the scheduler promoting due planned periods
	scheduler := services.NewRentPeriodSchedulerService(db.DB, emailService)

	// Launch it
	scheduler.Start()
	log.Println("Rent period scheduler started")
}

func main() {
	// Load the .env file when present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Initialize the configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the database connection
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize the email service
	emailService := services.NewEmailService(cfg)

	// Start the rent period scheduler
	initRentPeriodScheduler(db, emailService)

	// Initialize the services
	rentRepository := database.NewGormRentRepository(db.DB)
	ledgerService := services.NewRentLedgerService(rentRepository, emailService)
	indexService := services.NewIndexAdjustmentService()
	contractService := services.NewContractService(db.DB)
	loanService := services.NewLoanService(db.DB)
	vpiService := services.NewVpiService(cfg.VPI.FeedURL)

	// Create the router
	router := mux.NewRouter()

	// Initialize the controllers
	authController := controllers.NewAuthController(db)
	contractController := controllers.NewContractController(contractService, ledgerService)
	rentController := controllers.NewRentController(ledgerService, indexService, contractService, vpiService)
	loanController := controllers.NewLoanController(loanService, contractService)

	// Liveness endpoint
	router.HandleFunc("/healthz", healthHandler).Methods("GET")

	// Public authentication routes
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")

	// Protected routes
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)
	protected.Use(middleware.RateLimitMiddleware)
	protected.Use(middleware.RecoveryMiddleware)

	// Tenant and property routes
	protected.HandleFunc("/tenants", contractController.CreateTenant).Methods("POST")
	protected.HandleFunc("/tenants", contractController.GetTenants).Methods("GET")
	protected.HandleFunc("/properties", contractController.CreateProperty).Methods("POST")
	protected.HandleFunc("/properties", contractController.GetProperties).Methods("GET")

	// Contract routes
	protected.HandleFunc("/contracts", contractController.CreateContract).Methods("POST")
	protected.HandleFunc("/contracts", contractController.GetContracts).Methods("GET")
	protected.HandleFunc("/contracts/{id}", contractController.GetContract).Methods("GET")

	// Rent ledger routes
	protected.HandleFunc("/contracts/{id}/rent/current", rentController.GetCurrentRent).Methods("GET")
	protected.HandleFunc("/contracts/{id}/rent/periods", rentController.GetRentPeriods).Methods("GET")
	protected.HandleFunc("/contracts/{id}/rent/periods", rentController.CreateRentPeriod).Methods("POST")
	protected.HandleFunc("/contracts/{id}/rent/planned", rentController.GetPlannedPeriods).Methods("GET")
	protected.HandleFunc("/contracts/{id}/rent/vpi", rentController.GetLatestVpiValues).Methods("GET")
	protected.HandleFunc("/contracts/{id}/rent/index-preview", rentController.PreviewIndexAdjustment).Methods("POST")
	protected.HandleFunc("/rent/periods/{id}", rentController.DeletePlannedPeriod).Methods("DELETE")
	protected.HandleFunc("/vpi", rentController.GetVpiFeed).Methods("GET")

	// Loan routes
	protected.HandleFunc("/properties/{id}/loans", loanController.CreateLoan).Methods("POST")
	protected.HandleFunc("/properties/{id}/loans", loanController.GetLoans).Methods("GET")
	protected.HandleFunc("/loans/{id}/schedule", loanController.GetSchedule).Methods("GET")

	// Metrics endpoint
	protected.HandleFunc("/metrics", metricsHandler).Methods("GET")

	// Start the server
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
