package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

// Unified records live on the central aggregation server. They
// reference exhibitors and videos by opaque string id because the
// referenced rows belong to other salons' stores, and they carry
// display snapshots taken at write time so reads never join back.

type unifiedLikeRequest struct {
	ExhibitorID      string `json:"exhibitor_id"`
	VideoID          string `json:"video_id"`
	SalonOrigin      string `json:"salon_origin"`
	ExhibitorName    string `json:"exhibitor_name"`
	ExhibitorProfile string `json:"exhibitor_profile"`
	VideoDescription string `json:"video_description"`
	VideoOwner       string `json:"video_owner"`
}

// ToggleUnifiedLike flips a like in the central store. The decision is
// a single conditional delete-then-insert; a racing duplicate insert
// fails on the unique pair index.
func ToggleUnifiedLike(c echo.Context) error {
	log := logger.FromContext(c)

	var req unifiedLikeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ExhibitorID == "" || req.VideoID == "" || req.SalonOrigin == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exhibitor_id, video_id and salon_origin are required"})
	}

	db := database.GetDB()
	defer prometheus.TrackDBOperation("update")(time.Now())

	action := "liked"
	result := db.Where("exhibitor_id = ? AND video_id = ?", req.ExhibitorID, req.VideoID).
		Delete(&model.UnifiedLike{})
	if result.Error != nil {
		log.Error("Failed to toggle unified like", zap.Error(result.Error))
		return respondError(c, apperr.Store("failed to toggle unified like", result.Error))
	}
	if result.RowsAffected > 0 {
		action = "unliked"
	} else {
		like := model.UnifiedLike{
			ExhibitorID:      req.ExhibitorID,
			VideoID:          req.VideoID,
			SalonOrigin:      req.SalonOrigin,
			ExhibitorName:    req.ExhibitorName,
			ExhibitorProfile: req.ExhibitorProfile,
			VideoDescription: req.VideoDescription,
			VideoOwner:       req.VideoOwner,
		}
		if err := db.Create(&like).Error; err != nil {
			log.Warn("Concurrent unified like toggle lost the race", zap.Error(err))
			return c.JSON(http.StatusConflict, echo.Map{"error": "like state changed concurrently"})
		}
	}

	prometheus.RecordUnifiedLikeToggle(action)
	log.Info("Unified like toggled",
		zap.String("exhibitor_id", req.ExhibitorID),
		zap.String("video_id", req.VideoID),
		zap.String("salon_origin", req.SalonOrigin),
		zap.String("action", action))

	var likes []model.UnifiedLike
	err := db.Where("video_id = ?", req.VideoID).
		Order("created_at DESC").Find(&likes).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list unified likes", err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"action": action,
		"likes":  likes,
	})
}

// GetUnifiedLikesByVideo lists central likes on a video, newest first
func GetUnifiedLikesByVideo(c echo.Context) error {
	videoID := c.Param("video_id")
	if videoID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "video_id is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var likes []model.UnifiedLike
	err := database.GetDB().Where("video_id = ?", videoID).
		Order("created_at DESC").Find(&likes).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list unified likes", err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": likes,
		"count":   len(likes),
	})
}

// GetUnifiedLikesByExhibitor lists central likes given by an exhibitor
func GetUnifiedLikesByExhibitor(c echo.Context) error {
	exhibitorID := c.Param("exhibitor_id")
	if exhibitorID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exhibitor_id is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var likes []model.UnifiedLike
	err := database.GetDB().Where("exhibitor_id = ?", exhibitorID).
		Order("created_at DESC").Find(&likes).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list unified likes", err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": likes,
		"count":   len(likes),
	})
}

// GetUnifiedLikesBySalon lists central likes that originated from one
// salon deployment
func GetUnifiedLikesBySalon(c echo.Context) error {
	salon := c.Param("salon")
	if salon == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "salon is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var likes []model.UnifiedLike
	err := database.GetDB().Where("salon_origin = ?", salon).
		Order("created_at DESC").Find(&likes).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list unified likes", err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": likes,
		"count":   len(likes),
	})
}

// DeleteUnifiedLike removes one central like by id. Admin only.
func DeleteUnifiedLike(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.UnifiedLike{}, id)
	if result.Error != nil {
		log.Error("Failed to delete unified like", zap.Error(result.Error))
		return respondError(c, apperr.Store("failed to delete unified like", result.Error))
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unified like not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "unified like deleted"})
}

// unifiedLikeStat is one per-salon aggregation row
type unifiedLikeStat struct {
	Salon          string `json:"salon" gorm:"column:salon"`
	Likes          int64  `json:"likes" gorm:"column:likes"`
	UniqueLikers   int64  `json:"unique_likers" gorm:"column:unique_likers"`
	VideosWithLike int64  `json:"videos_with_like" gorm:"column:videos_with_like"`
}

// GetUnifiedLikeStats aggregates central likes per originating salon
func GetUnifiedLikeStats(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var stats []unifiedLikeStat
	err := database.GetDB().Model(&model.UnifiedLike{}).
		Select("salon_origin as salon, count(*) as likes, count(distinct exhibitor_id) as unique_likers, count(distinct video_id) as videos_with_like").
		Group("salon_origin").
		Order("salon_origin").
		Scan(&stats).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to aggregate unified likes", err))
	}

	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}
