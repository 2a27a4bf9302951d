package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/middleware"
	"salon-api/internal/model"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

// UpdateProfile lets the authenticated exhibitor edit their public
// profile fields. Identity fields (email, username, name) and the
// permission level are not editable here.
func UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	var req struct {
		Location  string `json:"location"`
		Bio       string `json:"bio"`
		Phone     string `json:"phone_number"`
		Linkedin  string `json:"linkedin_link"`
		Facebook  string `json:"facebook_link"`
		Instagram string `json:"insta_link"`
		Weblink   string `json:"weblink"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if len(req.Location) > 256 || len(req.Bio) > 256 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location and bio must be at most 256 characters"})
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone number"})
	}
	for _, link := range []string{req.Linkedin, req.Facebook, req.Instagram, req.Weblink} {
		if len(link) > 256 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "links must be at most 256 characters"})
		}
	}

	updates := map[string]any{
		"location":  req.Location,
		"bio":       req.Bio,
		"phone":     req.Phone,
		"linkedin":  req.Linkedin,
		"facebook":  req.Facebook,
		"instagram": req.Instagram,
		"weblink":   req.Weblink,
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	err := database.GetDB().Model(&model.Exhibitor{}).
		Where("id = ?", exhibitor.ID).Updates(updates).Error
	if err != nil {
		log.Error("Failed to update profile", zap.Error(err))
		return respondError(c, apperr.Store("failed to update profile", err))
	}

	log.Info("Profile updated", zap.Uint("exhibitor_id", exhibitor.ID))

	var updated model.Exhibitor
	if err := database.GetDB().First(&updated, exhibitor.ID).Error; err != nil {
		return respondError(c, apperr.Store("failed to reload profile", err))
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdatePassword rotates the exhibitor's password after checking the
// current one
func UpdatePassword(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if len(req.NewPassword) < 5 || len(req.NewPassword) > 20 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be between 5 and 20 characters"})
	}
	if req.NewPassword != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(exhibitor.Password), []byte(req.CurrentPassword)); err != nil {
		prometheus.RecordAuthError("wrong_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return respondError(c, apperr.Store("failed to hash password", err))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	err = database.GetDB().Model(&model.Exhibitor{}).
		Where("id = ?", exhibitor.ID).Update("password", string(hash)).Error
	if err != nil {
		log.Error("Failed to update password", zap.Error(err))
		return respondError(c, apperr.Store("failed to update password", err))
	}

	log.Info("Password updated", zap.Uint("exhibitor_id", exhibitor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// DeleteAccount removes the exhibitor together with everything they
// own: login records, likes, comments, videos with their interactions,
// and deals. One transaction, so a failure leaves the account intact.
func DeleteAccount(c echo.Context) error {
	log := logger.FromContext(c)

	exhibitor, ok := middleware.ExhibitorFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_context_exhibitor")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var videoIDs []uint
		if err := tx.Model(&model.Video{}).Where("exhibitor_id = ?", exhibitor.ID).
			Pluck("id", &videoIDs).Error; err != nil {
			return err
		}
		if len(videoIDs) > 0 {
			if err := tx.Where("video_id IN ?", videoIDs).Delete(&model.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("video_id IN ?", videoIDs).Delete(&model.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("exhibitor_id = ?", exhibitor.ID).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exhibitor_id = ?", exhibitor.ID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exhibitor_id = ?", exhibitor.ID).Delete(&model.Video{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exhibitor_id = ?", exhibitor.ID).Delete(&model.Deal{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exhibitor_id = ?", exhibitor.ID).Delete(&model.Login{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Exhibitor{}, exhibitor.ID).Error
	})
	if err != nil {
		log.Error("Failed to delete account", zap.Error(err))
		return respondError(c, apperr.Store("failed to delete account", err))
	}

	log.Info("Account deleted", zap.Uint("exhibitor_id", exhibitor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "account deleted"})
}
