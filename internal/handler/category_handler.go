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

// validHexColor accepts the 7-character "#rrggbb" form the mobile
// client renders category badges with
func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// CreateCategory adds an exhibitor category. Administrator only; signup
// requires at least one category to exist.
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name        string `json:"name"`
		Color       string `json:"color"`
		BorderColor string `json:"border_color"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required and must be at most 100 characters"})
	}
	if !validHexColor(req.Color) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "color must be a #rrggbb value"})
	}
	if !validHexColor(req.BorderColor) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "border_color must be a #rrggbb value"})
	}

	db := database.GetDB()

	var existing model.Category
	if err := db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
	}

	category := model.Category{
		Name:        req.Name,
		Color:       req.Color,
		BorderColor: req.BorderColor,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&category).Error; err != nil {
		log.Error("Failed to create category", zap.Error(err))
		return respondError(c, apperr.Store("failed to create category", err))
	}

	log.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name))

	return c.JSON(http.StatusCreated, category)
}

// GetCategories lists the categories, sorted by name
func GetCategories(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var categories []model.Category
	err := database.GetDB().Order("name ASC").Find(&categories).Error
	if err != nil {
		return respondError(c, apperr.Store("failed to list categories", err))
	}

	return c.JSON(http.StatusOK, categories)
}
