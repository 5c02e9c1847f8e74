package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
	"github.com/harryless17/memoria-backend/repository"
	"github.com/harryless17/memoria-backend/services"
)

const jwtExpirationHours = 24

// AuthHandler serves login and registration. Registration doubles as the
// account-claim event: pending invitations for the email are resolved right
// after the user row lands.
type AuthHandler struct {
	UserRepo   repository.UserRepository
	Resolution *services.ResolutionService
	JWTSecret  []byte
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userRepo repository.UserRepository, resolution *services.ResolutionService, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{UserRepo: userRepo, Resolution: resolution, JWTSecret: jwtSecret}
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request payload")
		return
	}

	user, err := h.UserRepo.GetByEmail(strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid email or password")
		return
	}
	if !user.CheckPassword(payload.Password) {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid email or password")
		return
	}

	token, expiresAt, err := h.issueToken(user)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: *user, ExpiresAt: expiresAt})
}

type RegisterPayload struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Token          string      `json:"token"`
	User           models.User `json:"user"`
	ExpiresAt      time.Time   `json:"expires_at"`
	ClustersLinked int         `json:"clusters_linked"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || strings.TrimSpace(payload.Name) == "" || len(payload.Password) < 8 {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "email, name and a password of at least 8 characters are required")
		return
	}

	if _, err := h.UserRepo.GetByEmail(email); err == nil {
		WriteAPIError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to check email")
		return
	}

	user := models.User{Email: email, Name: strings.TrimSpace(payload.Name)}
	if err := user.SetPassword(payload.Password); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to hash password")
		return
	}
	if err := h.UserRepo.Create(&user); err != nil {
		log.Printf("Error creating user %s: %v", email, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to create account")
		return
	}

	// the account now exists: resolve every cluster that was waiting on this
	// email across events
	linked := 0
	if h.Resolution != nil {
		var err error
		linked, err = h.Resolution.ClaimInvitations(&user)
		if err != nil {
			// the account is created either way; claiming can be retried
			log.Printf("Error claiming invitations for %s: %v", email, err)
		}
	}

	token, expiresAt, err := h.issueToken(&user)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Token:          token,
		User:           user,
		ExpiresAt:      expiresAt,
		ClustersLinked: linked,
	})
}

func (h *AuthHandler) issueToken(user *models.User) (string, time.Time, error) {
	expirationTime := time.Now().Add(jwtExpirationHours * time.Hour)
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(user.ID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "memoria-backend",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.JWTSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expirationTime, nil
}
