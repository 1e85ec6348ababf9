package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	driverRepo    repository.DriverRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(dr repository.DriverRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{driverRepo: dr, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	DriverID string `json:"driver_id"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, "Missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	if existing, err := h.driverRepo.GetDriverByEmail(ctx, req.Email); err != nil {
		writeError(w, "Error creating driver", http.StatusInternalServerError)
		return
	} else if existing != nil {
		writeError(w, "Email already registered", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	driver := models.Driver{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Status:       models.DriverStatusAvailable,
		PasswordHash: string(hash),
	}
	if err := h.driverRepo.CreateDriver(ctx, &driver); err != nil {
		writeError(w, "Error creating driver", http.StatusInternalServerError)
		return
	}

	tokenStr, err := h.issueToken(driver.ID, driver.Email)
	if err != nil {
		writeError(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, DriverID: driver.ID}, http.StatusCreated)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, "Missing fields", http.StatusBadRequest)
		return
	}

	driver, err := h.driverRepo.GetDriverByEmail(r.Context(), req.Email)
	if err != nil || driver == nil {
		writeError(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(driver.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(driver.ID, driver.Email)
	if err != nil {
		writeError(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, DriverID: driver.ID}, http.StatusOK)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"signed out"}`)
}

func (h *AuthHandler) issueToken(driverID, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"driver_id": driverID,
		"email":     email,
		"exp":       time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}
