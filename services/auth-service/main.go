package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"ethics-reporting-system/pkg/database"
	"ethics-reporting-system/pkg/middleware"
	"ethics-reporting-system/pkg/response"
	"ethics-reporting-system/services/auth-service/models"
	"ethics-reporting-system/services/auth-service/utils"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var db *gorm.DB

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// isValidPassword checks password strength
func isValidPassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 100 {
		return false, "Password too long"
	}
	return true, ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// seedSuperAdmin creates the bootstrap account when the table is empty so a
// fresh deployment is not locked out of the admin surface.
func seedSuperAdmin() error {
	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := getEnv("BOOTSTRAP_ADMIN_EMAIL", "admin@example.com")
	password := getEnv("BOOTSTRAP_ADMIN_PASSWORD", "ChangeMeNow123")

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.Admin{
		Email:    email,
		Password: hashed,
		Name:     "Bootstrap Admin",
		Role:     middleware.RoleSuperAdmin,
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("[OK] Bootstrap super admin created - Email: %s", email)
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using environment")
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_DB"),
		os.Getenv("POSTGRES_PORT"),
	)
	if os.Getenv("POSTGRES_HOST") == "" {
		dsn = "host=localhost user=admin password=password dbname=auth_db port=5434 sslmode=disable TimeZone=UTC"
	}

	var err error
	db, err = database.ConnectPostgres(dsn)
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to database: %v", err)
	}

	log.Println("[INFO] Running auto migration")
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		log.Fatalf("[ERROR] Migration failed: %v", err)
	}
	log.Println("[OK] Migration success")

	if err := seedSuperAdmin(); err != nil {
		log.Fatalf("[ERROR] Failed to seed bootstrap admin: %v", err)
	}

	middleware.RegisterMetrics()

	superOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.AuthMiddleware(
			middleware.RequireRole(middleware.RoleSuperAdmin)(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthCheckHandler)
	mux.Handle("/metrics", middleware.GetMetricsHandler())

	mux.HandleFunc("/api/auth/login", loginHandler)
	mux.HandleFunc("/api/auth/me", middleware.AuthMiddleware(meHandler))
	mux.HandleFunc("/api/auth/admins", adminsHandler)
	mux.HandleFunc("/api/auth/admins/", superOnly(adminDetailHandler))

	handler := middleware.TraceMiddleware(
		middleware.MetricsMiddleware(
			middleware.LoggerMiddleware(mux),
		),
	)

	port := getEnv("AUTH_PORT", "8081")
	log.Printf("[INFO] Auth Service running on port :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("[ERROR] Server failed: %v", err)
	}
}

func loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("[WARN] Invalid login request format")
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	if input.Email == "" || input.Password == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and Password are required")
		return
	}

	var admin models.Admin
	if err := db.Where("email = ?", input.Email).First(&admin).Error; err != nil {
		log.Printf("[WARN] Failed login attempt")
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	if !admin.Active {
		log.Printf("[WARN] Login attempt on deactivated account - ID: %s", admin.ID)
		response.Error(w, http.StatusUnauthorized, "ACCOUNT_DISABLED", "Account is deactivated")
		return
	}

	if !utils.CheckPasswordHash(input.Password, admin.Password) {
		log.Printf("[WARN] Invalid password attempt")
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(admin.ID, admin.Email, admin.Role)
	if err != nil {
		log.Printf("[ERROR] Failed to generate JWT for admin id: %s", admin.ID)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate token")
		return
	}

	now := time.Now()
	db.Model(&admin).Update("last_login_at", &now)

	log.Printf("[OK] Admin logged in - ID: %s, Role: %s", admin.ID, admin.Role)

	response.Success(w, http.StatusOK, "Login successful", map[string]interface{}{
		"id":    admin.ID,
		"token": token,
		"name":  admin.Name,
		"role":  admin.Role,
	})
}

func meHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve admin context")
		return
	}

	var admin models.Admin
	if err := db.First(&admin, "id = ?", claims.AdminID).Error; err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Admin not found")
		return
	}

	response.Success(w, http.StatusOK, "Admin profile fetched", admin)
}

// adminsHandler lists accounts for any admin and creates accounts for
// super admins only.
func adminsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		middleware.AuthMiddleware(
			middleware.RequireRole(middleware.RoleAdmin, middleware.RoleSuperAdmin)(listAdminsHandler))(w, r)
	case http.MethodPost:
		middleware.AuthMiddleware(
			middleware.RequireRole(middleware.RoleSuperAdmin)(createAdminHandler))(w, r)
	default:
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	}
}

func listAdminsHandler(w http.ResponseWriter, r *http.Request) {
	var admins []models.Admin
	if err := db.Order("created_at desc").Find(&admins).Error; err != nil {
		log.Printf("[ERROR] Failed to list admins: %v", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch admins")
		return
	}
	response.Success(w, http.StatusOK, "Admins fetched successfully", admins)
}

func createAdminHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	if input.Email == "" || input.Password == "" || input.Name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email, Password, and Name are required")
		return
	}
	if !isValidEmail(input.Email) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid email format")
		return
	}
	if valid, msg := isValidPassword(input.Password); !valid {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}
	if len(strings.TrimSpace(input.Name)) < 3 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name must be at least 3 characters")
		return
	}

	role := input.Role
	if role == "" {
		role = middleware.RoleAdmin
	}
	if role != middleware.RoleAdmin && role != middleware.RoleSuperAdmin {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Role must be ADMIN or SUPER_ADMIN")
		return
	}

	var existing models.Admin
	if result := db.Where("email = ?", input.Email).First(&existing); result.Error == nil {
		log.Printf("[WARN] Admin creation attempt with existing email")
		response.Error(w, http.StatusConflict, "EMAIL_EXISTS", "Email already registered")
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		log.Printf("[ERROR] Failed to hash password: %v", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create admin")
		return
	}

	admin := models.Admin{
		Email:    input.Email,
		Password: hashed,
		Name:     strings.TrimSpace(input.Name),
		Role:     role,
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[ERROR] Failed to save admin: %v", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create admin")
		return
	}

	log.Printf("[OK] Admin created - ID: %s, Role: %s", admin.ID, admin.Role)
	response.Success(w, http.StatusCreated, "Admin created successfully", admin)
}

// adminDetailHandler serves PUT /api/auth/admins/{id}/deactivate and
// PUT /api/auth/admins/{id}/activate.
func adminDetailHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/auth/admins/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	if len(parts) != 2 || r.Method != http.MethodPut {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}

	var active bool
	switch parts[1] {
	case "deactivate":
		active = false
	case "activate":
		active = true
	default:
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}

	claims, _ := middleware.AdminFromContext(r.Context())
	if !active && claims.AdminID == parts[0] {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Cannot deactivate your own account")
		return
	}

	var admin models.Admin
	if err := db.First(&admin, "id = ?", parts[0]).Error; err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Admin not found")
		return
	}

	if err := db.Model(&admin).Update("active", active).Error; err != nil {
		log.Printf("[ERROR] Failed to update admin %s: %v", admin.ID, err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update admin")
		return
	}

	log.Printf("[OK] Admin %s active=%t", admin.ID, active)
	response.Success(w, http.StatusOK, "Admin updated", nil)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":  "UP",
		"service": "auth-service",
	}

	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		health["status"] = "DOWN"
		health["database"] = "disconnected"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		health["database"] = "connected"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
