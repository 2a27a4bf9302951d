package handler

import (
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"salon-api/internal/model"
	"salon-api/internal/service"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 .\-]{5,18}$`)
)

// IssueToken hands out the opaque visitor token. A known candidate
// token is returned unchanged so the endpoint is safe to call on every
// app start.
func IssueToken(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Token       string `json:"token"`
		CountryCode string `json:"country_code"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse token request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	token, err := service.IssueOrValidateToken(database.GetDB(), req.Token, c.RealIP(), req.CountryCode)
	if err != nil {
		log.Error("Failed to issue visitor token", zap.Error(err))
		prometheus.RecordAuthError("token_issue_failed")
		return respondError(c, err)
	}

	if token != req.Token {
		prometheus.TokenIssuedCounter.Inc()
		log.Info("Visitor token issued")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

type signupRequest struct {
	Token           string `json:"token"`
	CategoryID      uint   `json:"category_id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Name            string `json:"name"`
	Location        string `json:"location"`
	Bio             string `json:"bio"`
	Phone           string `json:"phone_number"`
}

// Signup registers a new exhibitor and logs the calling visitor in as
// that exhibitor in one step
func Signup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignupCounter.Inc()

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if msg, field := validateSignup(&req); msg != "" {
		log.Error("Invalid signup data", zap.String("field", field))
		prometheus.RecordAuthError("invalid_signup_data")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "field": field})
	}

	db := database.GetDB()

	// The visitor token must already exist; signup never mints tokens
	visitor, err := service.VisitorByToken(db, req.Token)
	if err != nil {
		log.Error("Signup with unknown visitor token", zap.Error(err))
		prometheus.RecordAuthError("invalid_token")
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var category model.Category
	if result := db.First(&category, req.CategoryID); result.Error != nil {
		log.Error("Signup with unknown category", zap.Uint("category_id", req.CategoryID))
		prometheus.RecordAuthError("category_not_found")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category does not exist"})
	}

	var existing model.Exhibitor
	if result := db.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Error("Email already registered", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}
	if result := db.Where("username = ?", req.Username).First(&existing); result.Error == nil {
		log.Error("Username already taken", zap.String("username", req.Username))
		prometheus.RecordAuthError("username_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
	}
	if result := db.Where("name = ?", req.Name).First(&existing); result.Error == nil {
		log.Error("Name already taken", zap.String("name", req.Name))
		prometheus.RecordAuthError("name_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "name already taken"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	exhibitor := model.Exhibitor{
		CategoryID: req.CategoryID,
		Email:      req.Email,
		Username:   req.Username,
		Password:   string(hashedPassword),
		Name:       req.Name,
		Location:   req.Location,
		Bio:        req.Bio,
		Phone:      req.Phone,
		Level:      model.LevelPlain,
		Active:     1,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	tx := db.Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		prometheus.RecordAuthError("database_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Create(&exhibitor); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create exhibitor", zap.Error(result.Error))
		prometheus.RecordAuthError("exhibitor_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	login := model.Login{
		VisitorID:   visitor.ID,
		ExhibitorID: exhibitor.ID,
		Session:     model.SessionValid,
	}
	if result := tx.Create(&login); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create login record", zap.Error(result.Error))
		prometheus.RecordAuthError("login_record_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		prometheus.RecordAuthError("transaction_commit_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("Exhibitor registered",
		zap.String("email", exhibitor.Email),
		zap.Uint("exhibitor_id", exhibitor.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Exhibitor registered successfully",
		"exhibitor": exhibitor,
	})
}

// validateSignup returns an error message and offending field, or empty
// strings when the request is acceptable
func validateSignup(req *signupRequest) (string, string) {
	switch {
	case req.Token == "":
		return "visitor token is required", "token"
	case req.CategoryID == 0:
		return "category_id is required", "category_id"
	case !emailPattern.MatchString(req.Email):
		return "invalid email address", "email"
	case req.Username == "":
		return "username is required", "username"
	case len(req.Password) < 5 || len(req.Password) > 20:
		return "password must be between 5 and 20 characters", "password"
	case req.Password != req.ConfirmPassword:
		return "passwords do not match", "confirm_password"
	case req.Name == "" || len(req.Name) > 100:
		return "name is required and must be at most 100 characters", "name"
	case len(req.Location) > 256:
		return "location must be at most 256 characters", "location"
	case len(req.Bio) > 256:
		return "bio must be at most 256 characters", "bio"
	case req.Phone != "" && !phonePattern.MatchString(req.Phone):
		return "invalid phone number", "phone_number"
	}
	return "", ""
}

// Login authenticates an exhibitor by email or username and binds the
// calling visitor to it with a fresh login record
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Token      string `json:"token"`
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Token == "" || req.Identifier == "" || req.Password == "" {
		log.Error("Incomplete login request")
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token, identifier and password are required"})
	}

	db := database.GetDB()

	visitor, err := service.VisitorByToken(db, req.Token)
	if err != nil {
		log.Error("Login with unknown visitor token", zap.Error(err))
		prometheus.RecordAuthError("invalid_token")
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var exhibitor model.Exhibitor
	result := db.Where("email = ? OR username = ?", req.Identifier, req.Identifier).First(&exhibitor)
	if result.Error != nil {
		log.Error("Exhibitor not found", zap.String("identifier", req.Identifier))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(exhibitor.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("identifier", req.Identifier))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	login := model.Login{
		VisitorID:   visitor.ID,
		ExhibitorID: exhibitor.ID,
		Session:     model.SessionValid,
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := db.Create(&login); result.Error != nil {
		log.Error("Failed to create login record", zap.Error(result.Error))
		prometheus.RecordAuthError("login_record_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	log.Info("Exhibitor logged in",
		zap.String("email", exhibitor.Email),
		zap.Uint("exhibitor_id", exhibitor.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"token":     req.Token,
		"exhibitor": exhibitor,
	})
}

// Logout invalidates the newest valid login record of the calling
// visitor. Older records are left untouched.
func Logout(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse logout request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := database.GetDB()

	visitor, err := service.VisitorByToken(db, req.Token)
	if err != nil {
		log.Error("Logout with unknown visitor token", zap.Error(err))
		prometheus.RecordAuthError("invalid_token")
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var login model.Login
	result := db.Where("visitor_id = ? AND session = ?", visitor.ID, model.SessionValid).
		Order("created_at DESC, id DESC").
		First(&login)
	if result.Error != nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "not logged in"})
	}

	if err := db.Model(&login).Update("session", model.SessionInvalid).Error; err != nil {
		log.Error("Failed to invalidate login record", zap.Error(err))
		prometheus.RecordAuthError("logout_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	log.Info("Visitor logged out", zap.Uint("visitor_id", visitor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// CheckLogin reports whether the calling visitor currently resolves to
// an exhibitor. It never mutates state.
func CheckLogin(c echo.Context) error {
	log := logger.FromContext(c)

	token := c.QueryParam("token")
	if token == "" {
		token = c.Request().Header.Get("X-Visitor-Token")
	}

	exhibitor, err := service.ResolveExhibitor(database.GetDB(), token)
	if err != nil {
		log.Debug("Check login: not logged in", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"logged_in": false})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"logged_in": true,
		"exhibitor": exhibitor,
	})
}

func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
