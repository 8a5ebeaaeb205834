package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vaultix/vaultix/internal/api/middleware"
	"github.com/vaultix/vaultix/internal/api/services"
	"github.com/vaultix/vaultix/internal/config"
	"github.com/vaultix/vaultix/internal/models"
	"github.com/vaultix/vaultix/internal/repositories"
	"github.com/vaultix/vaultix/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence surface the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
}

type AuthHandler struct {
	users UserStore
}

func NewAuthHandler(users UserStore) *AuthHandler {
	return &AuthHandler{users: users}
}

// JWT Claims struct
type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// POST /api/v1/auth/register
// Register godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" || email == "" || input.Password == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Please provide name, email, and password",
		})
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Please provide a valid email address",
		})
		return
	}
	if len(input.Password) < 6 {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Password must be at least 6 characters long",
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to hash password",
		})
		return
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
	}

	switch err := h.users.Create(r.Context(), user); {
	case err == nil:
	case errors.Is(err, repositories.ErrEmailTaken):
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "User with this email already exists",
		})
		return
	default:
		log.Printf("register: %v", err)
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Registration failed. Please try again.",
		})
		return
	}

	h.issueSession(w, user)
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User registered successfully",
		Data:    map[string]any{"user": userView(user)},
	})
}

// POST /api/v1/auth/login
// Login godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Please provide email and password",
		})
		return
	}

	user, err := h.users.FindByEmail(r.Context(), email)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrUserNotFound):
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Invalid credentials",
		})
		return
	default:
		log.Printf("login: %v", err)
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database error",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Invalid credentials",
		})
		return
	}

	if err := h.users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		log.Printf("update last login: %v", err)
	}

	h.issueSession(w, user)
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Login successful",
		Data:    map[string]any{"user": userView(user)},
	})
}

// GET /api/v1/auth/me
// Me godoc
// @Summary Current user profile with storage statistics
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "User retrieved successfully",
		Data:    map[string]any{"user": userView(user)},
	})
}

// PUT /api/v1/auth/profile
// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/auth/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Please provide a name",
		})
		return
	}

	switch err := h.users.UpdateName(r.Context(), userID, name); {
	case err == nil:
	case errors.Is(err, repositories.ErrUserNotFound):
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "User not found",
		})
		return
	default:
		log.Printf("update profile: %v", err)
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to update profile",
		})
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		log.Printf("reload profile: %v", err)
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to update profile",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Profile updated successfully",
		Data:    map[string]any{"user": userView(user)},
	})
}

// PUT /api/v1/auth/change-password
// ChangePassword godoc
// @Summary Change the caller's password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/auth/change-password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if input.CurrentPassword == "" || input.NewPassword == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Please provide current password and new password",
		})
		return
	}
	if len(input.NewPassword) < 6 {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "New password must be at least 6 characters long",
		})
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "User not found",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Current password is incorrect",
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to hash password",
		})
		return
	}

	if err := h.users.UpdatePassword(r.Context(), userID, string(hashedPassword)); err != nil {
		log.Printf("change password: %v", err)
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to change password",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Password changed successfully",
	})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	isProd := config.Envs.Environment == "production"

	// Delete the token cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // maxAge < 0 deletes the cookie
		Secure:   isProd,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Logged out successfully",
	})
}

func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	flow := r.URL.Query().Get("redirect") // "login" or "register"
	if flow == "" {
		flow = "login"
	}

	state, err := GenerateState(map[string]string{"flow": flow})
	if err != nil {
		http.Error(w, "Failed to generate OAuth state", http.StatusInternalServerError)
		return
	}

	url := services.GoogleOauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	frontend := config.Envs.FrontendURL

	state := r.FormValue("state")
	stateData, err := DecodeState(state)
	if err != nil {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	flow := stateData["flow"]
	code := r.FormValue("code")

	token, err := services.GoogleOauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("oauth exchange: %v", err)
		http.Error(w, "Code exchange failed", http.StatusInternalServerError)
		return
	}

	client := services.GoogleOauthConfig.Client(r.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	var googleUser struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &googleUser); err != nil {
		http.Error(w, "Failed to parse user info", http.StatusInternalServerError)
		return
	}

	user, err := h.users.FindByEmail(r.Context(), strings.ToLower(googleUser.Email))

	switch flow {
	case "register":
		if err == nil {
			http.Redirect(w, r, frontend+"/login?error=user_already_exists", http.StatusTemporaryRedirect)
			return
		}
		user = &models.User{
			ID:       uuid.New(),
			Name:     googleUser.Name,
			Email:    strings.ToLower(googleUser.Email),
			Password: "", // Google-authenticated
		}
		if err := h.users.Create(r.Context(), user); err != nil {
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}

	default: // login
		if errors.Is(err, repositories.ErrUserNotFound) {
			http.Redirect(w, r, frontend+"/register?error=user_not_found", http.StatusTemporaryRedirect)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
	}

	if err := h.users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		log.Printf("update last login: %v", err)
	}

	h.issueSession(w, user)

	redirectURL := frontend + "/dashboard?status=success_login"
	if flow == "register" {
		redirectURL = frontend + "/dashboard?status=success_register"
	}
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// issueSession signs a JWT for the user and sets it as the session cookie.
func (h *AuthHandler) issueSession(w http.ResponseWriter, user *models.User) {
	secret := config.Envs.JWTSecret
	isProd := config.Envs.Environment == "production"

	expiration := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		UserID: user.ID.String(),
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		log.Printf("sign session token: %v", err)
		return
	}

	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(time.Until(expiration).Seconds()),
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	})
}

// userView is the JSON shape for a user's own profile, including storage
// statistics. The password hash never leaves the model's json:"-" field.
func userView(u *models.User) map[string]any {
	return map[string]any{
		"id":                   u.ID,
		"name":                 u.Name,
		"email":                u.Email,
		"filesCount":           u.FilesCount,
		"storageUsed":          u.StorageUsed,
		"formattedStorageUsed": utils.FormatBytes(u.StorageUsed),
		"lastLogin":            u.LastLogin,
		"createdAt":            u.CreatedAt,
	}
}
