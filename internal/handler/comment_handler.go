package handler

import (
	"net/http"
	"strings"
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

// CreateComment posts a comment by the authenticated exhibitor on a
// video in this salon's store
func CreateComment(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	var req struct {
		VideoID uint   `json:"video_id"`
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.VideoID == 0 || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "video_id and content are required"})
	}
	if len(req.Content) > 1000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content must be at most 1000 characters"})
	}

	db := database.GetDB()

	verified, err := service.VerifyInteraction(db, exhibitor.ID, req.VideoID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindOwnership) {
			prometheus.RecordOwnershipRejection(apperr.ReasonOf(err))
			log.Warn("Rejected cross-salon comment",
				zap.Uint("exhibitor_id", exhibitor.ID),
				zap.Uint("video_id", req.VideoID),
				zap.String("reason", apperr.ReasonOf(err)))
		}
		return respondError(c, err)
	}

	comment := model.Comment{
		ExhibitorID: verified.Actor().ID,
		VideoID:     verified.Video().ID,
		Content:     req.Content,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&comment).Error; err != nil {
		log.Error("Failed to create comment", zap.Error(err))
		return respondError(c, apperr.Store("failed to create comment", err))
	}

	log.Info("Comment created",
		zap.Uint("exhibitor_id", exhibitor.ID),
		zap.Uint("video_id", req.VideoID),
		zap.Uint("comment_id", comment.ID))

	return c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment. Only the author or an administrator
// may edit.
func UpdateComment(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	commentID, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	db := database.GetDB()

	var comment model.Comment
	if result := db.First(&comment, commentID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
	}

	if comment.ExhibitorID != exhibitor.ID && !exhibitor.IsAdmin() {
		log.Warn("Unauthorized comment edit attempt",
			zap.Uint("exhibitor_id", exhibitor.ID),
			zap.Uint("comment_id", commentID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the comment author"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&comment).Update("content", req.Content).Error; err != nil {
		log.Error("Failed to update comment", zap.Error(err))
		return respondError(c, apperr.Store("failed to update comment", err))
	}

	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment. Only the author or an administrator
// may delete.
func DeleteComment(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	commentID, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	db := database.GetDB()

	var comment model.Comment
	if result := db.First(&comment, commentID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
	}

	if comment.ExhibitorID != exhibitor.ID && !exhibitor.IsAdmin() {
		log.Warn("Unauthorized comment delete attempt",
			zap.Uint("exhibitor_id", exhibitor.ID),
			zap.Uint("comment_id", commentID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the comment author"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&comment).Error; err != nil {
		log.Error("Failed to delete comment", zap.Error(err))
		return respondError(c, apperr.Store("failed to delete comment", err))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "comment deleted"})
}

// GetCommentsByVideo lists comments on a video, consulting sibling
// salons when the local store has none
func GetCommentsByVideo(c echo.Context) error {
	log := logger.FromContext(c)

	videoID, err := paramUint(c, "video_id")
	if err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	comments, origin, err := resolver.CommentsByVideo(c.Request().Context(), database.GetDB(), videoID)
	if apperr.IsKind(err, apperr.KindFallbackExhausted) {
		log.Warn("All fallback servers failed, returning empty result",
			zap.Uint("video_id", videoID))
		comments, origin, err = []model.Comment{}, service.OriginLocal, nil
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results":   comments,
		"origin":    origin,
		"read_only": origin == service.OriginFallback,
	})
}

// GetCommentsByExhibitor lists comments written by an exhibitor, with
// the same fallback behavior as GetCommentsByVideo
func GetCommentsByExhibitor(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitorID, err := paramUint(c, "exhibitor_id")
	if err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	comments, origin, err := resolver.CommentsByExhibitor(c.Request().Context(), database.GetDB(), exhibitorID)
	if apperr.IsKind(err, apperr.KindFallbackExhausted) {
		log.Warn("All fallback servers failed, returning empty result",
			zap.Uint("exhibitor_id", exhibitorID))
		comments, origin, err = []model.Comment{}, service.OriginLocal, nil
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results":   comments,
		"origin":    origin,
		"read_only": origin == service.OriginFallback,
	})
}
