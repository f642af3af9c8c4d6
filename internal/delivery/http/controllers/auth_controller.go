package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterRequest is the request body for POST /api/auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (s RegisterRequest) Validate() []string {
	var errs []string
	if n := utf8.RuneCountInString(strings.TrimSpace(s.Username)); n == 0 {
		errs = append(errs, "username is required")
	} else if n < 3 || n > 30 {
		errs = append(errs, "username must be 3-30 characters")
	}
	email := strings.TrimSpace(strings.ToLower(s.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	} else if len(s.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	return errs
}

// LoginRequest is the request body for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// AuthResponse is the response body for register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// AuthSuccessResponse is the success response envelope for register (201) and login (200).
type AuthSuccessResponse struct {
	Data  AuthResponse      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserSuccessResponse is the success response envelope for GET /api/auth/me (200).
type UserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AuthController handles registration, login, and identity lookup.
type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

// NewAuthController creates an AuthController with the given logger and service.
func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Create an account with username, email, and password. Returns a bearer token and the user. A welcome email is sent when mail is configured.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} controllers.AuthSuccessResponse "data contains token, token_type, and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "user not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, AuthResponse{Token: token, TokenType: "Bearer", User: user})
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Returns a bearer token and the user.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} controllers.AuthSuccessResponse "data contains token, token_type, and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "user not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AuthResponse{Token: token, TokenType: "Bearer", User: user})
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user's profile including saved_events. Requires Bearer token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.UserSuccessResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	user, err := c.Service.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "user not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
