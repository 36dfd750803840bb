package handlers

import (
	"ZMMiningBackend/database"
	"ZMMiningBackend/middleware"
	"ZMMiningBackend/models"
	"database/sql"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

type AuthResponse struct {
	Token  string       `json:"token"`
	UserID string       `json:"user_id"`
	User   *models.User `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func OwnerSignup(w http.ResponseWriter, r *http.Request) {
	var signup models.UserSignup
	if err := json.NewDecoder(r.Body).Decode(&signup); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// Validate required fields
	if signup.Name == "" || signup.Email == "" || signup.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	// Check if email already exists
	var exists bool
	err := database.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", signup.Email).Scan(&exists)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		respondWithError(w, http.StatusConflict, "Email already registered")
		return
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error processing password")
		return
	}

	// Create owner account
	user, err := models.NewUser(signup.Name, signup.Email, signup.Phone, string(hashedPassword))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = database.DB.QueryRow(
		`INSERT INTO users (user_id, name, email, phone, password, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		user.UserID, user.Name, user.Email, user.Phone, user.Password,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error creating user: "+err.Error())
		return
	}

	token, err := middleware.GenerateToken(user.UserID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	user.Password = "" // Don't send password back
	respondWithJSON(w, http.StatusCreated, AuthResponse{
		Token:  token,
		UserID: user.UserID,
		User:   user,
	})
}

func Login(w http.ResponseWriter, r *http.Request) {
	var login models.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&login); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if login.Email == "" || login.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	var user models.User
	err := database.DB.QueryRow(
		`SELECT id, user_id, name, email, phone, password, created_at, updated_at
		 FROM users WHERE email = $1`,
		login.Email,
	).Scan(&user.ID, &user.UserID, &user.Name, &user.Email, &user.Phone,
		&user.Password, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(login.Password)); err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := middleware.GenerateToken(user.UserID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	user.Password = "" // Don't send password back
	respondWithJSON(w, http.StatusOK, AuthResponse{
		Token:  token,
		UserID: user.UserID,
		User:   &user,
	})
}

func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user models.User
	err := database.DB.QueryRow(
		`SELECT id, user_id, name, email, phone, created_at, updated_at
		 FROM users WHERE user_id = $1`,
		userID,
	).Scan(&user.ID, &user.UserID, &user.Name, &user.Email, &user.Phone,
		&user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
