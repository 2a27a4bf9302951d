package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/pkg/cache"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

const activeSalonCacheKey = "salon:active"

// seedSalons inserts the configured default salons when the table is
// empty and marks the first one active. Listing and reading the active
// salon both run it, so a fresh deployment always has a usable state.
func seedSalons(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&model.Salon{}).Count(&count).Error; err != nil {
		return apperr.Store("failed to count salons", err)
	}
	if count > 0 {
		return nil
	}

	for i, name := range appConfig.Salon.DefaultSeed {
		salon := model.Salon{Name: name, IsActive: i == 0}
		if err := db.Create(&salon).Error; err != nil {
			return apperr.Store("failed to seed salons", err)
		}
	}

	log.Info("Seeded default salons", zap.Int("count", len(appConfig.Salon.DefaultSeed)))
	return nil
}

// GetAllSalons lists every salon, seeding defaults on first use
func GetAllSalons(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	if err := seedSalons(db, log); err != nil {
		log.Error("Failed to seed salons", zap.Error(err))
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var salons []model.Salon
	if err := db.Order("id").Find(&salons).Error; err != nil {
		return respondError(c, apperr.Store("failed to list salons", err))
	}

	return c.JSON(http.StatusOK, salons)
}

// GetActiveSalon returns the single active salon, consulting the cache
// first when one is configured
func GetActiveSalon(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	if cached := cache.Get(ctx, activeSalonCacheKey); cached != "" {
		var salon model.Salon
		if err := json.Unmarshal([]byte(cached), &salon); err == nil {
			return c.JSON(http.StatusOK, salon)
		}
	}

	db := database.GetDB()
	if err := seedSalons(db, log); err != nil {
		log.Error("Failed to seed salons", zap.Error(err))
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var salon model.Salon
	err := db.Where("is_active = ?", true).First(&salon).Error
	if err == gorm.ErrRecordNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no active salon"})
	}
	if err != nil {
		return respondError(c, apperr.Store("failed to load active salon", err))
	}

	if payload, err := json.Marshal(salon); err == nil {
		cache.Set(ctx, activeSalonCacheKey, string(payload))
	}

	return c.JSON(http.StatusOK, salon)
}

// SetActiveSalon switches the active salon inside one transaction: the
// target is verified before any row is touched, so a bad id leaves the
// previous active salon in place. Admin only.
func SetActiveSalon(c echo.Context) error {
	log := logger.FromContext(c)

	salonID, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	db := database.GetDB()
	defer prometheus.TrackDBOperation("update")(time.Now())

	var target model.Salon
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&target, salonID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("salon not found")
			}
			return apperr.Store("failed to load salon", err)
		}

		if err := tx.Model(&model.Salon{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return apperr.Store("failed to clear active salons", err)
		}

		if err := tx.Model(&target).Update("is_active", true).Error; err != nil {
			return apperr.Store("failed to activate salon", err)
		}
		return nil
	})
	if err != nil {
		log.Error("Salon switch failed",
			zap.Uint("salon_id", salonID),
			zap.Error(err))
		return respondError(c, err)
	}

	cache.Delete(c.Request().Context(), activeSalonCacheKey)
	prometheus.SalonSwitchCounter.Inc()

	version, err := bumpVersionCode(db)
	if err != nil {
		// The switch itself committed; a failed version bump only delays
		// client refresh until the next one succeeds.
		log.Error("Failed to bump version code after salon switch", zap.Error(err))
	}

	log.Info("Active salon switched",
		zap.Uint("salon_id", target.ID),
		zap.String("salon_name", target.Name),
		zap.Int("version_code", version))

	if notifier != nil {
		// Detached from the request context: delivery outlives the response
		go func() {
			sent, err := notifier.NotifyAll(context.Background(),
				database.GetDB(),
				"Nouveau salon",
				target.Name+" est maintenant ouvert",
				map[string]any{"salon_id": target.ID, "version_code": version})
			if err != nil {
				log.Error("Salon switch notification failed", zap.Error(err))
				return
			}
			log.Info("Salon switch notification sent", zap.Int("devices", sent))
		}()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"salon":        target,
		"version_code": version,
	})
}

// bumpVersionCode increments the global version counter clients poll to
// learn that salon content changed underneath them
func bumpVersionCode(db *gorm.DB) (int, error) {
	var setting model.AppSetting
	err := db.Where("key = ?", model.SettingVersionCode).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		// A missing row reads as version 1, so the first bump lands on 2
		setting = model.AppSetting{Key: model.SettingVersionCode, Value: "2", Status: 1}
		if err := db.Create(&setting).Error; err != nil {
			return 0, apperr.Store("failed to create version code", err)
		}
		return 2, nil
	}
	if err != nil {
		return 0, apperr.Store("failed to load version code", err)
	}

	current, err := strconv.Atoi(setting.Value)
	if err != nil {
		current = 0
	}
	next := current + 1
	if err := db.Model(&setting).Update("value", strconv.Itoa(next)).Error; err != nil {
		return 0, apperr.Store("failed to update version code", err)
	}
	return next, nil
}
