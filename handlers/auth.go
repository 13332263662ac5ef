package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"biblioteca-backend/middleware"
	"biblioteca-backend/models"
	"biblioteca-backend/store"
)

// invalidCredentialsDetail is the single auth failure payload: unknown
// identifier, inactive account, and wrong password are indistinguishable so
// responses do not leak account existence.
const invalidCredentialsDetail = "Credenciales inválidas"

type AuthHandler struct {
	Store      store.UserStore
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": invalidCredentialsDetail})
		return
	}

	user, err := h.Store.UserByIdentifier(r.Context(), identifier)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	if user == nil || !user.IsActive {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": invalidCredentialsDetail})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": invalidCredentialsDetail})
		return
	}

	access, err := h.signToken(user, middleware.TokenTypeAccess, h.AccessTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create token"})
		return
	}
	refresh, err := h.signToken(user, middleware.TokenTypeRefresh, h.RefreshTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create token"})
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Access:   access,
		Refresh:  refresh,
	})
}

func (h *AuthHandler) signToken(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &middleware.Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JWTSecret))
}
