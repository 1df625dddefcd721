package handler

import (
	"errors"
	"net/http"
	"time"

	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Dummy bcrypt hash compared against when the mobile is unknown, so login
// takes the same time whether or not the user exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Register creates a new user with a hashed password and an empty property
// collection. The mobile number must be unique across all users.
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	// Parse request
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	if req.Name == "" || req.Email == "" || req.Mobile == "" || req.Password == "" {
		log.Error("Incomplete registration data", zap.String("mobile", req.Mobile))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name, email, mobile and password are required"})
	}

	if req.Role == "" {
		req.Role = model.RoleTenant
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error registering user"})
	}

	// Create new user
	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: string(hashedPassword),
		Role:     req.Role,
		IsActive: false,
	}

	// Save to database - track DB insert operation. The unique index on
	// mobile is the single source of truth for duplicates, so concurrent
	// registrations cannot slip past a read-then-write check.
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Error("Mobile already registered", zap.String("mobile", req.Mobile))
			prometheus.RecordAuthError("mobile_already_exists")
			return c.JSON(http.StatusConflict, echo.Map{"message": "mobile number already registered"})
		}
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error registering user"})
	}

	log.Info("User registered", zap.String("mobile", user.Mobile), zap.String("role", user.Role))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login authenticates by mobile and password, marks the user active and
// issues a session token. Unknown mobile and wrong password produce the
// identical response so neither case is distinguishable.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("mobile = ?", req.Mobile).First(&user)

	// Always run the bcrypt comparison so lookups that miss cost the same
	// as lookups that hit.
	passwordHash := dummyHash
	if result.Error == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password))

	if result.Error != nil || compareErr != nil {
		log.Error("Login failed", zap.String("mobile", req.Mobile))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
	}

	// Mark the user active
	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&user).Update("is_active", true).Error; err != nil {
		log.Error("Failed to mark user active", zap.Error(err))
		prometheus.RecordAuthError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to login"})
	}
	user.IsActive = true

	// Issue the session token
	token, expiresAt, err := jwtutil.GenerateToken(user.ID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to login"})
	}

	prometheus.IncreaseActiveUsers()

	log.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Login successful",
		"token":     token,
		"user":      user,
		"expiresAt": expiresAt.UnixMilli(),
	})
}

// Logout marks the authenticated user inactive. Requires a valid bearer token.
func Logout(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&model.User{}).Where("id = ?", userID).Update("is_active", false).Error; err != nil {
		log.Error("Failed to mark user inactive", zap.Error(err))
		prometheus.RecordAuthError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Logout failed"})
	}

	prometheus.DecreaseActiveUsers()

	log.Info("User logged out", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful"})
}

// AllUsers returns a slim public projection of every user.
func AllUsers(c echo.Context) error {
	log := logger.FromContext(c)

	type userSummary struct {
		Name     string `json:"name"`
		Mobile   string `json:"mobile"`
		Role     string `json:"role"`
		IsActive bool   `json:"isActive"`
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []userSummary
	if err := database.GetDB().Model(&model.User{}).Find(&users).Error; err != nil {
		log.Error("Failed to fetch users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch users"})
	}

	return c.JSON(http.StatusOK, users)
}

// GetProfile returns the authenticated user's record. Password and pending
// reset fields never serialize.
func GetProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.GetDB().Preload("Properties").First(&user, userID).Error; err != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"user":   user,
	})
}
