package main

import (
	"ZMMiningBackend/database"
	"ZMMiningBackend/handlers"
	"ZMMiningBackend/middleware"
	"ZMMiningBackend/sms"
	"ZMMiningBackend/tasks"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.CloseDB()

	// Initialize JWT
	middleware.InitJWT()

	// Initialize rate limiter (100 requests per minute)
	middleware.InitRateLimiter(100)

	// Initialize SMS gateway
	sms.Init()

	// Evaluate cutoffs and run the scheduler in mine-site local time
	loc := loadTimezone()
	handlers.InitTimezone(loc)
	scheduler := tasks.Start(loc)
	defer scheduler.Stop()

	// Create router
	router := mux.NewRouter()

	// Serve uploaded files (license documents, employee photos)
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir("uploads"))))

	// Public routes
	router.HandleFunc("/api/health", healthCheck).Methods("GET")
	router.HandleFunc("/api/auth/signup", handlers.OwnerSignup).Methods("POST")
	router.HandleFunc("/api/auth/login", handlers.Login).Methods("POST")

	// Protected routes
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware)

	// User routes
	api.HandleFunc("/me", handlers.GetMe).Methods("GET")

	// ==================== MINES ====================
	api.HandleFunc("/mines", handlers.CreateMine).Methods("POST")
	api.HandleFunc("/mines", handlers.GetMines).Methods("GET")
	api.HandleFunc("/mines/{id}", handlers.GetMine).Methods("GET")
	api.HandleFunc("/mines/{id}", handlers.UpdateMine).Methods("PUT")
	api.HandleFunc("/mines/{id}", handlers.DeleteMine).Methods("DELETE")

	// ==================== EQUIPMENT ====================
	api.HandleFunc("/equipment", handlers.CreateEquipment).Methods("POST")
	api.HandleFunc("/equipment", handlers.GetEquipment).Methods("GET")
	api.HandleFunc("/equipment/{id}", handlers.GetEquipmentByID).Methods("GET")
	api.HandleFunc("/equipment/{id}", handlers.UpdateEquipment).Methods("PUT")
	api.HandleFunc("/equipment/{id}", handlers.DeleteEquipment).Methods("DELETE")
	// POST /api/equipment/{id}/service - log a completed service
	api.HandleFunc("/equipment/{id}/service", handlers.RecordService).Methods("POST")

	// ==================== EMPLOYEES ====================
	api.HandleFunc("/employees", handlers.CreateEmployee).Methods("POST")
	// GET /api/employees?q=banda&mine_id=3 - searchable register with stats
	api.HandleFunc("/employees", handlers.GetEmployees).Methods("GET")
	api.HandleFunc("/employees/{id}", handlers.GetEmployee).Methods("GET")
	api.HandleFunc("/employees/{id}", handlers.UpdateEmployee).Methods("PUT")
	api.HandleFunc("/employees/{id}", handlers.DeleteEmployee).Methods("DELETE")
	api.HandleFunc("/job-roles", handlers.GetJobRoles).Methods("GET")

	// ==================== PRODUCTION ====================
	api.HandleFunc("/production", handlers.CreateProductionRecord).Methods("POST")
	api.HandleFunc("/production", handlers.GetProductionRecords).Methods("GET")
	api.HandleFunc("/production/{id}", handlers.GetProductionRecord).Methods("GET")
	api.HandleFunc("/production/{id}", handlers.UpdateProductionRecord).Methods("PUT")
	api.HandleFunc("/production/{id}", handlers.DeleteProductionRecord).Methods("DELETE")

	// ==================== DASHBOARD & REPORTS ====================
	api.HandleFunc("/dashboard", handlers.GetDashboard).Methods("GET")
	api.HandleFunc("/reports/production-trend", handlers.GetProductionTrend).Methods("GET")
	api.HandleFunc("/reports/mine-share", handlers.GetMineShare).Methods("GET")
	api.HandleFunc("/reports/equipment", handlers.GetEquipmentReport).Methods("GET")
	api.HandleFunc("/reports/workforce", handlers.GetWorkforceReport).Methods("GET")
	api.HandleFunc("/reports/monthly-targets", handlers.GetMonthlyTargets).Methods("GET")
	api.HandleFunc("/reports/mine/{id}/pdf", handlers.GetMineReportPDF).Methods("GET")
	api.HandleFunc("/reports/annual/pdf", handlers.GetAnnualReportPDF).Methods("GET")
	api.HandleFunc("/reports/employees/pdf", handlers.GetEmployeeRegisterPDF).Methods("GET")
	api.HandleFunc("/exports/napsa", handlers.ExportNAPSARegister).Methods("GET")

	// Apply logging middleware
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RateLimitMiddleware)

	// Configure CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: getAllowedOrigins(),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Link",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})

	handler := corsHandler.Handler(router)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"ZM Mining Backend"}`))
}

// loadTimezone resolves TIMEZONE (default Africa/Lusaka). Shift windows and
// the late-entry cutoff are interpreted in this zone.
func loadTimezone() *time.Location {
	name := os.Getenv("TIMEZONE")
	if name == "" {
		name = "Africa/Lusaka"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Warning: unknown timezone %q, falling back to UTC", name)
		return time.UTC
	}
	return loc
}

func getAllowedOrigins() []string {
	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		// Default allowed origins for development
		return []string{
			"*",
		}
	}

	// Parse comma-separated origins from environment
	return parseCommaSeparated(origins)
}

func parseCommaSeparated(s string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	current := ""
	for _, char := range s {
		if char == ',' {
			if current != "" {
				result = append(result, current)
				current = ""
			}
		} else if char != ' ' {
			current += string(char)
		}
	}
	if current != "" {
		result = append(result, current)
	}
	return result
}
