package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// StudentSignUpRequest is the request body for POST /auth/signup/student
type StudentSignUpRequest struct {
	FullName     string `json:"full_name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	University   string `json:"university"`
	Department   string `json:"department"`
	AcademicYear string `json:"academic_year"`
	StudentID    string `json:"student_id"`
}

// Validate implements Validator.
func (s StudentSignUpRequest) Validate() []string {
	return validateCommonSignUp(s.Email, s.Password, s.Username, s.FullName)
}

// OrganizerSignUpRequest is the request body for POST /auth/signup/organizer
type OrganizerSignUpRequest struct {
	FullName     string `json:"full_name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	University   string `json:"university"`
	ClubName     string `json:"club_name"`
	ClubPosition string `json:"club_position"`
	ClubWebsite  string `json:"club_website"`
}

// Validate implements Validator.
func (o OrganizerSignUpRequest) Validate() []string {
	errs := validateCommonSignUp(o.Email, o.Password, o.Username, o.FullName)
	if strings.TrimSpace(o.ClubName) == "" {
		errs = append(errs, "club_name is required")
	}
	return errs
}

func validateCommonSignUp(email, password, username, fullName string) []string {
	var errs []string
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if password == "" {
		errs = append(errs, "password is required")
	} else if len(password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if strings.TrimSpace(username) == "" {
		errs = append(errs, "username is required")
	}
	if strings.TrimSpace(fullName) == "" {
		errs = append(errs, "full_name is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login
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

// AuthResponse is the data payload for a successful login or student sign-up.
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// OrganizerSignUpResponse is the data payload for POST /auth/signup/organizer.
type OrganizerSignUpResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// AuthSuccessResponse is the success response envelope for login and student sign-up.
type AuthSuccessResponse struct {
	Data  AuthResponse      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AuthController handles sign-up, login and logout. Tokens are returned in the body and
// set as an HTTP-only cookie.
type AuthController struct {
	Logger       *slog.Logger
	Service      domain.AuthService
	TokenTTL     time.Duration
	SecureCookie bool
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, tokenTTL time.Duration, secureCookie bool) *AuthController {
	return &AuthController{
		Logger:       logger,
		Service:      svc,
		TokenTTL:     tokenTTL,
		SecureCookie: secureCookie,
	}
}

func (c *AuthController) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// SignUpStudent godoc
// @Summary Sign up as a student
// @Description Creates an approved student account and logs it in.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body StudentSignUpRequest true "Student sign-up data"
// @Success 201 {object} controllers.AuthSuccessResponse "data contains token and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup/student [post]
func (c *AuthController) SignUpStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentSignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, token, err := c.Service.SignUp(r.Context(), &domain.SignUpInput{
		Role:          domain.RoleStudent,
		Email:         req.Email,
		Username:      req.Username,
		FullName:      req.FullName,
		Password:      req.Password,
		University:    req.University,
		Department:    req.Department,
		AcademicYear:  req.AcademicYear,
		StudentNumber: req.StudentID,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	c.setTokenCookie(w, token)
	helpers.WriteJSONSuccess(w, http.StatusCreated, AuthResponse{Token: token, TokenType: "Bearer", User: user})
}

// SignUpOrganizer godoc
// @Summary Request an organizer account
// @Description Creates an organizer account pending super-admin approval. No token is issued.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body OrganizerSignUpRequest true "Organizer sign-up data"
// @Success 201 {object} helpers.APIResponse "data contains message and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup/organizer [post]
func (c *AuthController) SignUpOrganizer(w http.ResponseWriter, r *http.Request) {
	var req OrganizerSignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, _, err := c.Service.SignUp(r.Context(), &domain.SignUpInput{
		Role:         domain.RoleOrganizer,
		Email:        req.Email,
		Username:     req.Username,
		FullName:     req.FullName,
		Password:     req.Password,
		University:   req.University,
		ClubName:     req.ClubName,
		ClubPosition: req.ClubPosition,
		ClubWebsite:  req.ClubWebsite,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, OrganizerSignUpResponse{
		Message: "Registration successful! Your application is now pending approval.",
		User:    user,
	})
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Returns a JWT and sets it as the token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} controllers.AuthSuccessResponse "data contains token and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized or account_pending"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	c.setTokenCookie(w, token)
	helpers.WriteJSONSuccess(w, http.StatusOK, AuthResponse{Token: token, TokenType: "Bearer", User: user})
}

// Logout godoc
// @Summary Log out
// @Description Clears the token cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.MessageResponse{Message: "Logged out"})
}

// Me godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "User not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
