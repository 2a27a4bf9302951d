package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/middleware"
	"salon-api/internal/model"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

// CreateVideo publishes a video owned by the authenticated exhibitor.
// Publication requires the publisher level or above.
func CreateVideo(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}
	if exhibitor.Level < model.LevelPublisher {
		log.Warn("Non-publisher attempted to publish a video",
			zap.Uint("exhibitor_id", exhibitor.ID),
			zap.Int("level", exhibitor.Level))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "publishing requires a validated publisher account"})
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || len(req.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required and must be at most 100 characters"})
	}
	if len(req.Description) > 256 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 256 characters"})
	}

	video := model.Video{
		ExhibitorID: exhibitor.ID,
		Name:        req.Name,
		Description: req.Description,
		Status:      1,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&video).Error; err != nil {
		log.Error("Failed to create video", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "video name already taken"})
	}

	log.Info("Video published",
		zap.Uint("exhibitor_id", exhibitor.ID),
		zap.Uint("video_id", video.ID))

	return c.JSON(http.StatusCreated, video)
}

// GetVideos lists this salon's videos, newest first
func GetVideos(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var videos []model.Video
	err := database.GetDB().Preload("Exhibitor").
		Where("status = ?", 1).
		Order("created_at DESC").Find(&videos).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list videos", err))
	}

	return c.JSON(http.StatusOK, videos)
}

// GetVideo returns one video with its like and comment counts
func GetVideo(c echo.Context) error {
	videoID, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	db := database.GetDB()
	defer prometheus.TrackDBOperation("query")(time.Now())

	var video model.Video
	if result := db.Preload("Exhibitor").First(&video, videoID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}

	var likeCount, commentCount int64
	db.Model(&model.Like{}).Where("video_id = ?", video.ID).Count(&likeCount)
	db.Model(&model.Comment{}).Where("video_id = ?", video.ID).Count(&commentCount)

	return c.JSON(http.StatusOK, echo.Map{
		"video":    video,
		"likes":    likeCount,
		"comments": commentCount,
	})
}

// DeleteVideo removes a video with its likes and comments. Owner or
// administrator only.
func DeleteVideo(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	videoID, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	db := database.GetDB()

	var video model.Video
	if result := db.First(&video, videoID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}
	if video.ExhibitorID != exhibitor.ID && !exhibitor.IsAdmin() {
		log.Warn("Unauthorized video delete attempt",
			zap.Uint("exhibitor_id", exhibitor.ID),
			zap.Uint("video_id", videoID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the video owner"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", video.ID).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", video.ID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&video).Error
	})
	if err != nil {
		log.Error("Failed to delete video", zap.Error(err))
		return respondError(c, apperr.Store("failed to delete video", err))
	}

	log.Info("Video deleted", zap.Uint("video_id", videoID))
	return c.JSON(http.StatusOK, echo.Map{"message": "video deleted"})
}
