package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

// CreateUnifiedComment appends a comment to the central store. Unified
// comments are never edited; moderation deletes them instead.
func CreateUnifiedComment(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		ExhibitorID      string `json:"exhibitor_id"`
		VideoID          string `json:"video_id"`
		Content          string `json:"content"`
		SalonOrigin      string `json:"salon_origin"`
		ExhibitorName    string `json:"exhibitor_name"`
		ExhibitorProfile string `json:"exhibitor_profile"`
		VideoDescription string `json:"video_description"`
		VideoOwner       string `json:"video_owner"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.ExhibitorID == "" || req.VideoID == "" || req.SalonOrigin == "" || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exhibitor_id, video_id, salon_origin and content are required"})
	}
	if len(req.Content) > 1000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content must be at most 1000 characters"})
	}

	comment := model.UnifiedComment{
		ExhibitorID:      req.ExhibitorID,
		VideoID:          req.VideoID,
		Content:          req.Content,
		SalonOrigin:      req.SalonOrigin,
		ExhibitorName:    req.ExhibitorName,
		ExhibitorProfile: req.ExhibitorProfile,
		VideoDescription: req.VideoDescription,
		VideoOwner:       req.VideoOwner,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&comment).Error; err != nil {
		log.Error("Failed to create unified comment", zap.Error(err))
		return respondError(c, apperr.Store("failed to create unified comment", err))
	}

	log.Info("Unified comment created",
		zap.String("exhibitor_id", req.ExhibitorID),
		zap.String("video_id", req.VideoID),
		zap.String("salon_origin", req.SalonOrigin))

	return c.JSON(http.StatusCreated, comment)
}

// GetUnifiedCommentsByVideo lists central comments on a video, newest first
func GetUnifiedCommentsByVideo(c echo.Context) error {
	videoID := c.Param("video_id")
	if videoID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "video_id is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var comments []model.UnifiedComment
	err := database.GetDB().Where("video_id = ?", videoID).
		Order("created_at DESC").Find(&comments).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list unified comments", err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": comments,
		"count":   len(comments),
	})
}

// GetUnifiedCommentsByExhibitor lists central comments written by an exhibitor
func GetUnifiedCommentsByExhibitor(c echo.Context) error {
	exhibitorID := c.Param("exhibitor_id")
	if exhibitorID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exhibitor_id is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var comments []model.UnifiedComment
	err := database.GetDB().Where("exhibitor_id = ?", exhibitorID).
		Order("created_at DESC").Find(&comments).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list unified comments", err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": comments,
		"count":   len(comments),
	})
}

// GetUnifiedCommentsBySalon lists central comments from one salon deployment
func GetUnifiedCommentsBySalon(c echo.Context) error {
	salon := c.Param("salon")
	if salon == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "salon is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var comments []model.UnifiedComment
	err := database.GetDB().Where("salon_origin = ?", salon).
		Order("created_at DESC").Find(&comments).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list unified comments", err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": comments,
		"count":   len(comments),
	})
}

// DeleteUnifiedComment removes one central comment by id. Admin only.
func DeleteUnifiedComment(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.UnifiedComment{}, id)
	if result.Error != nil {
		log.Error("Failed to delete unified comment", zap.Error(result.Error))
		return respondError(c, apperr.Store("failed to delete unified comment", result.Error))
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unified comment not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "unified comment deleted"})
}

// unifiedCommentStat is one per-salon aggregation row
type unifiedCommentStat struct {
	Salon            string  `json:"salon" gorm:"column:salon"`
	Comments         int64   `json:"comments" gorm:"column:comments"`
	UniqueCommenters int64   `json:"unique_commenters" gorm:"column:unique_commenters"`
	VideosCommented  int64   `json:"videos_commented" gorm:"column:videos_commented"`
	AvgLength        float64 `json:"avg_length" gorm:"column:avg_length"`
}

// GetUnifiedCommentStats aggregates central comments per originating salon
func GetUnifiedCommentStats(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var stats []unifiedCommentStat
	err := database.GetDB().Model(&model.UnifiedComment{}).
		Select("salon_origin as salon, count(*) as comments, count(distinct exhibitor_id) as unique_commenters, count(distinct video_id) as videos_commented, avg(length(content)) as avg_length").
		Group("salon_origin").
		Order("salon_origin").
		Scan(&stats).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to aggregate unified comments", err))
	}

	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}
