package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"salon-api/internal/apperr"
	"salon-api/internal/middleware"
	"salon-api/internal/model"
	"salon-api/internal/service"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

// ToggleLike flips the like of the authenticated exhibitor on a video.
// The decision and the write happen in one conditional statement per
// branch, so two racing toggles cannot both insert: the second insert
// fails on the unique pair index and is reported as a conflict.
func ToggleLike(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	videoID, err := paramUint(c, "video_id")
	if err != nil {
		return respondError(c, err)
	}

	db := database.GetDB()

	verified, err := service.VerifyInteraction(db, exhibitor.ID, videoID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindOwnership) {
			prometheus.RecordOwnershipRejection(apperr.ReasonOf(err))
			log.Warn("Rejected cross-salon like",
				zap.Uint("exhibitor_id", exhibitor.ID),
				zap.Uint("video_id", videoID),
				zap.String("reason", apperr.ReasonOf(err)))
		}
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	action := "liked"
	result := db.Where("exhibitor_id = ? AND video_id = ?", verified.Actor().ID, verified.Video().ID).
		Delete(&model.Like{})
	if result.Error != nil {
		log.Error("Failed to toggle like", zap.Error(result.Error))
		return respondError(c, apperr.Store("failed to toggle like", result.Error))
	}
	if result.RowsAffected > 0 {
		action = "unliked"
	} else {
		like := model.Like{ExhibitorID: verified.Actor().ID, VideoID: verified.Video().ID}
		if err := db.Create(&like).Error; err != nil {
			// A racing toggle won the insert; report conflict, do not retry
			log.Warn("Concurrent like toggle lost the race", zap.Error(err))
			return c.JSON(http.StatusConflict, echo.Map{"error": "like state changed concurrently"})
		}
	}

	prometheus.RecordLikeToggle(action)
	log.Info("Like toggled",
		zap.Uint("exhibitor_id", exhibitor.ID),
		zap.Uint("video_id", videoID),
		zap.String("action", action))

	var likes []model.Like
	if err := db.Preload("Exhibitor").Where("video_id = ?", videoID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return respondError(c, apperr.Store("failed to list likes", err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"action": action,
		"likes":  likes,
	})
}

// CreateLike explicitly creates a like for the authenticated exhibitor.
// An existing like is a conflict, not a toggle.
func CreateLike(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	var req struct {
		VideoID uint `json:"video_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.VideoID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "video_id is required"})
	}

	db := database.GetDB()

	verified, err := service.VerifyInteraction(db, exhibitor.ID, req.VideoID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindOwnership) {
			prometheus.RecordOwnershipRejection(apperr.ReasonOf(err))
		}
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	like := model.Like{ExhibitorID: verified.Actor().ID, VideoID: verified.Video().ID}
	if err := db.Create(&like).Error; err != nil {
		log.Warn("Duplicate like rejected",
			zap.Uint("exhibitor_id", exhibitor.ID),
			zap.Uint("video_id", req.VideoID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "already liked"})
	}

	return c.JSON(http.StatusCreated, like)
}

// DeleteLike removes the authenticated exhibitor's like from a video
func DeleteLike(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	videoID, err := paramUint(c, "video_id")
	if err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().
		Where("exhibitor_id = ? AND video_id = ?", exhibitor.ID, videoID).
		Delete(&model.Like{})
	if result.Error != nil {
		log.Error("Failed to delete like", zap.Error(result.Error))
		return respondError(c, apperr.Store("failed to delete like", result.Error))
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "like not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "like removed"})
}

// GetLikesByVideo lists likes on a video, consulting sibling salons
// when the local store has none. Exhausted fallback degrades to an
// empty local result instead of an error.
func GetLikesByVideo(c echo.Context) error {
	log := logger.FromContext(c)

	videoID, err := paramUint(c, "video_id")
	if err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	likes, origin, err := resolver.LikesByVideo(c.Request().Context(), database.GetDB(), videoID)
	if apperr.IsKind(err, apperr.KindFallbackExhausted) {
		log.Warn("All fallback servers failed, returning empty result",
			zap.Uint("video_id", videoID))
		likes, origin, err = []model.Like{}, service.OriginLocal, nil
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results":   likes,
		"origin":    origin,
		"read_only": origin == service.OriginFallback,
	})
}

// GetLikesByExhibitor lists the likes an exhibitor has given, with the
// same fallback behavior as GetLikesByVideo
func GetLikesByExhibitor(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitorID, err := paramUint(c, "exhibitor_id")
	if err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	likes, origin, err := resolver.LikesByExhibitor(c.Request().Context(), database.GetDB(), exhibitorID)
	if apperr.IsKind(err, apperr.KindFallbackExhausted) {
		log.Warn("All fallback servers failed, returning empty result",
			zap.Uint("exhibitor_id", exhibitorID))
		likes, origin, err = []model.Like{}, service.OriginLocal, nil
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results":   likes,
		"origin":    origin,
		"read_only": origin == service.OriginFallback,
	})
}

// GetAllLikes lists every like in this salon's store. Admin only.
func GetAllLikes(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var likes []model.Like
	err := database.GetDB().Preload("Exhibitor").Preload("Video").
		Order("created_at DESC").Find(&likes).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list likes", err))
	}

	return c.JSON(http.StatusOK, likes)
}
