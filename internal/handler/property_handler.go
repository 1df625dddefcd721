package handler

import (
	"net/http"
	"time"

	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PropertyRequest defines the structure for property creation requests.
// Fields are passed through as submitted; only Status is defaulted.
type PropertyRequest struct {
	Address     string   `json:"address"`
	Near        string   `json:"near"`
	Description string   `json:"description"`
	Rent        float64  `json:"rent"`
	Gender      string   `json:"gender"`
	Furnishing  string   `json:"furnishing"`
	Restriction string   `json:"restriction"`
	Images      []string `json:"images"`
	Status      string   `json:"status"`
	Wifi        bool     `json:"wifi"`
	AC          bool     `json:"ac"`
	WaterSupply bool     `json:"waterSupply"`
	PowerBackup bool     `json:"powerBackup"`
	Security    bool     `json:"security"`
}

// AddProperty appends a new listing to the authenticated user's collection
// and notifies the operator by email in the background.
func AddProperty(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPropertyOperation("create")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}

	var req PropertyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request data"})
	}

	status := req.Status
	if status == "" {
		status = model.StatusOpen
	}

	property := model.Property{
		UserID:      user.ID,
		Address:     req.Address,
		Near:        req.Near,
		Description: req.Description,
		Rent:        req.Rent,
		Gender:      req.Gender,
		Furnishing:  req.Furnishing,
		Restriction: req.Restriction,
		Images:      req.Images,
		Status:      status,
		Wifi:        req.Wifi,
		AC:          req.AC,
		WaterSupply: req.WaterSupply,
		PowerBackup: req.PowerBackup,
		Security:    req.Security,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&property); result.Error != nil {
		log.Error("Failed to add property", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to add property"})
	}

	// Notification is best-effort; a failed send never fails the request.
	if notifier != nil {
		go func(owner model.User, p model.Property) {
			if err := notifier.NotifyNewProperty(&owner, &p); err != nil {
				logger.GetLogger().Error("Failed to send property notification",
					zap.Uint("property_id", p.ID),
					zap.Error(err))
			}
		}(user, property)
	}

	log.Info("Property added",
		zap.Uint("user_id", user.ID),
		zap.Uint("property_id", property.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "success",
		"property": property,
	})
}

// MyProperties returns the authenticated user's collection in storage order.
func MyProperties(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPropertyOperation("list")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}

	var properties []model.Property
	if err := database.GetDB().Where("user_id = ?", userID).Order("id").Find(&properties).Error; err != nil {
		log.Error("Failed to fetch properties", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch properties"})
	}

	return c.JSON(http.StatusOK, echo.Map{"properties": properties})
}

// AllProperties returns every listing across all users.
func AllProperties(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPropertyOperation("list_all")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var properties []model.Property
	if err := database.GetDB().Order("user_id, id").Find(&properties).Error; err != nil {
		log.Error("Failed to fetch properties", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch properties"})
	}

	return c.JSON(http.StatusOK, properties)
}

// UpdateProperty changes the rent and/or status of one of the caller's
// listings. Other fields are immutable after creation.
func UpdateProperty(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPropertyOperation("update")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}

	propertyID := c.Param("propertyId")

	var req struct {
		Rent   *float64 `json:"rent"`
		Status *string  `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request data"})
	}

	// Validate before touching the store
	if req.Rent == nil && req.Status == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No fields to update"})
	}
	if req.Rent != nil && *req.Rent <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid rent amount"})
	}
	if req.Status != nil && *req.Status != model.StatusOpen && *req.Status != model.StatusClosed {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid status value"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}

	var property model.Property
	if err := database.GetDB().Where("id = ? AND user_id = ?", propertyID, userID).First(&property).Error; err != nil {
		log.Error("Property not found",
			zap.String("property_id", propertyID),
			zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Property not found"})
	}

	if req.Rent != nil {
		property.Rent = *req.Rent
	}
	if req.Status != nil {
		property.Status = *req.Status
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Save(&property).Error; err != nil {
		log.Error("Failed to update property", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update property"})
	}

	log.Info("Property updated",
		zap.Uint("user_id", userID),
		zap.Uint("property_id", property.ID))
	return c.JSON(http.StatusOK, property)
}

// DeleteProperty removes one of the caller's listings.
func DeleteProperty(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPropertyOperation("delete")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}

	propertyID := c.Param("propertyId")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}

	var property model.Property
	if err := database.GetDB().Where("id = ? AND user_id = ?", propertyID, userID).First(&property).Error; err != nil {
		log.Error("Property not found",
			zap.String("property_id", propertyID),
			zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Property not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := database.GetDB().Delete(&property).Error; err != nil {
		log.Error("Failed to delete property", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete property"})
	}

	log.Info("Property deleted",
		zap.Uint("user_id", userID),
		zap.Uint("property_id", property.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Property deleted successfully"})
}
