package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/internal/service"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
)

// ExhibitorKey is the context key holding the resolved exhibitor
const ExhibitorKey = "exhibitor"

// visitorToken extracts the opaque token from the request. Clients send
// it as a Bearer header, a dedicated header, or a query parameter.
func visitorToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}
	if token := c.Request().Header.Get("X-Visitor-Token"); token != "" {
		return token
	}
	return c.QueryParam("token")
}

// AuthMiddleware resolves the visitor token to an exhibitor and stores
// it in the request context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		token := visitorToken(c)
		if token == "" {
			log.Error("Missing visitor token")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing visitor token"})
		}

		exhibitor, err := service.ResolveExhibitor(database.GetDB(), token)
		if err != nil {
			log.Error("Failed to resolve visitor token", zap.Error(err))
			if apperr.IsKind(err, apperr.KindStore) {
				prometheus.RecordAuthError("db_error")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify session"})
			}
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
		}

		c.Set(ExhibitorKey, exhibitor)

		log.Debug("Request authenticated",
			zap.Uint("exhibitor_id", exhibitor.ID),
			zap.Int("level", exhibitor.Level))

		return next(c)
	}
}

// AdminMiddleware requires an authenticated administrator. It runs the
// same token resolution as AuthMiddleware and then checks the level.
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return AuthMiddleware(func(c echo.Context) error {
		log := logger.FromContext(c)

		exhibitor, ok := c.Get(ExhibitorKey).(*model.Exhibitor)
		if !ok || !exhibitor.IsAdmin() {
			log.Warn("Non-admin attempted an admin operation")
			prometheus.RecordAuthError("not_admin")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "administrator access required"})
		}

		return next(c)
	})
}

// ExhibitorFromContext returns the exhibitor stored by AuthMiddleware
func ExhibitorFromContext(c echo.Context) (*model.Exhibitor, bool) {
	exhibitor, ok := c.Get(ExhibitorKey).(*model.Exhibitor)
	return exhibitor, ok
}
