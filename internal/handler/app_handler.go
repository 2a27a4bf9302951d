package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/pkg/database"
	"salon-api/prometheus"
)

// GetAppVersion returns the global version counter. Clients poll it and
// refresh their cached salon content when it moves. Missing setting
// means no switch ever happened, reported as version 1.
func GetAppVersion(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var setting model.AppSetting
	err := database.GetDB().Where("key = ?", model.SettingVersionCode).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		return c.JSON(http.StatusOK, echo.Map{"version_code": 1})
	}
	if err != nil {
		return respondError(c, apperr.Store("failed to load version code", err))
	}

	version, err := strconv.Atoi(setting.Value)
	if err != nil {
		version = 1
	}
	return c.JSON(http.StatusOK, echo.Map{"version_code": version})
}
