package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/internal/service"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

// RegisterDevice records a device for push notifications. Registration
// is an upsert keyed on user_id: the same device re-registering after
// an app update replaces its previous token in place.
func RegisterDevice(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		UserID     string `json:"user_id"`
		Token      string `json:"token"`
		DeviceInfo string `json:"device_info"`
		AppVersion string `json:"app_version"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.UserID == "" || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and token are required"})
	}
	if !service.ValidPushToken(req.Token) {
		log.Warn("Rejected malformed push token", zap.String("user_id", req.UserID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid push token format"})
	}

	db := database.GetDB()
	defer prometheus.TrackDBOperation("update")(time.Now())

	now := time.Now()
	var device model.DeviceToken
	err := db.Where("user_id = ?", req.UserID).First(&device).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		device = model.DeviceToken{
			UserID:     req.UserID,
			Token:      req.Token,
			DeviceInfo: req.DeviceInfo,
			AppVersion: req.AppVersion,
			Active:     true,
			LastActive: now,
		}
		if err := db.Create(&device).Error; err != nil {
			log.Error("Failed to register device", zap.Error(err))
			return respondError(c, apperr.Store("failed to register device", err))
		}
	case err != nil:
		return respondError(c, apperr.Store("failed to look up device", err))
	default:
		updates := map[string]interface{}{
			"token":       req.Token,
			"device_info": req.DeviceInfo,
			"app_version": req.AppVersion,
			"active":      true,
			"last_active": now,
		}
		if err := db.Model(&device).Updates(updates).Error; err != nil {
			log.Error("Failed to refresh device registration", zap.Error(err))
			return respondError(c, apperr.Store("failed to refresh device registration", err))
		}
	}

	var count int64
	if err := db.Model(&model.DeviceToken{}).Where("active = ?", true).Count(&count).Error; err == nil {
		prometheus.UpdateRegisteredDevices(int(count))
	}

	log.Info("Device registered", zap.String("user_id", req.UserID))
	return c.JSON(http.StatusOK, device)
}

// UnregisterDevice deactivates a device so push fan-out skips it
func UnregisterDevice(c echo.Context) error {
	log := logger.FromContext(c)

	userID := c.Param("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := database.GetDB().Model(&model.DeviceToken{}).
		Where("user_id = ?", userID).
		Update("active", false)
	if result.Error != nil {
		log.Error("Failed to unregister device", zap.Error(result.Error))
		return respondError(c, apperr.Store("failed to unregister device", result.Error))
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "device not found"})
	}

	log.Info("Device unregistered", zap.String("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "device unregistered"})
}

// Broadcast sends a push notification to every registered device.
// Admin only.
func Broadcast(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Title string         `json:"title"`
		Body  string         `json:"body"`
		Data  map[string]any `json:"data"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" || req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and body are required"})
	}

	sent, err := notifier.NotifyAll(c.Request().Context(), database.GetDB(), req.Title, req.Body, req.Data)
	if err != nil {
		log.Error("Broadcast failed", zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Broadcast sent", zap.Int("devices", sent))
	return c.JSON(http.StatusOK, echo.Map{"sent": sent})
}
