package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"salon-api/internal/apperr"
	"salon-api/internal/middleware"
	"salon-api/internal/model"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

// CreateDeal publishes a promotional offer owned by the authenticated
// exhibitor. Same level requirement as video publication.
func CreateDeal(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}
	if exhibitor.Level < model.LevelPublisher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "publishing requires a validated publisher account"})
	}

	var req struct {
		Image       string `json:"image"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Image == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image and title are required"})
	}
	if len(req.Title) > 100 || len(req.Description) > 256 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title or description too long"})
	}

	deal := model.Deal{
		ExhibitorID: exhibitor.ID,
		Image:       req.Image,
		Title:       req.Title,
		Description: req.Description,
		Status:      1,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&deal).Error; err != nil {
		log.Error("Failed to create deal", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "deal title or image already taken"})
	}

	log.Info("Deal published",
		zap.Uint("exhibitor_id", exhibitor.ID),
		zap.Uint("deal_id", deal.ID))

	return c.JSON(http.StatusCreated, deal)
}

// GetDeals lists this salon's active deals, newest first
func GetDeals(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var deals []model.Deal
	err := database.GetDB().Preload("Exhibitor").
		Where("status = ?", 1).
		Order("created_at DESC").Find(&deals).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list deals", err))
	}

	return c.JSON(http.StatusOK, deals)
}

// GetDealsByExhibitor lists one exhibitor's deals
func GetDealsByExhibitor(c echo.Context) error {
	exhibitorID, err := paramUint(c, "exhibitor_id")
	if err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var deals []model.Deal
	err = database.GetDB().Where("exhibitor_id = ? AND status = ?", exhibitorID, 1).
		Order("created_at DESC").Find(&deals).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list deals", err))
	}

	return c.JSON(http.StatusOK, deals)
}

// DeleteDeal removes a deal. Owner or administrator only.
func DeleteDeal(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	dealID, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	db := database.GetDB()

	var deal model.Deal
	if result := db.First(&deal, dealID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	}
	if deal.ExhibitorID != exhibitor.ID && !exhibitor.IsAdmin() {
		log.Warn("Unauthorized deal delete attempt",
			zap.Uint("exhibitor_id", exhibitor.ID),
			zap.Uint("deal_id", dealID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the deal owner"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&deal).Error; err != nil {
		log.Error("Failed to delete deal", zap.Error(err))
		return respondError(c, apperr.Store("failed to delete deal", err))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "deal deleted"})
}
