package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"salon-api/internal/apperr"
	"salon-api/internal/service"
	"salon-api/pkg/config"
)

// Package-level collaborators, set once at startup by Init
var (
	appConfig *config.Config
	resolver  *service.FallbackResolver
	notifier  *service.Notifier
)

// Init wires the handlers to their collaborators. Must be called before
// any route is served.
func Init(cfg *config.Config, r *service.FallbackResolver, n *service.Notifier) {
	appConfig = cfg
	resolver = r
	notifier = n
}

// respondError maps the service error taxonomy onto HTTP responses.
// Fallback exhaustion is not handled here: read handlers convert it to
// an empty result before this function ever sees it.
func respondError(c echo.Context, err error) error {
	e := echo.Map{"error": err.Error()}

	switch apperr.KindOf(err) {
	case apperr.KindAuthentication:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	case apperr.KindOwnership:
		e["reason"] = apperr.ReasonOf(err)
		return c.JSON(http.StatusForbidden, e)
	case apperr.KindCrossSalonWrite:
		return c.JSON(http.StatusForbidden, e)
	case apperr.KindValidation:
		return c.JSON(http.StatusBadRequest, e)
	case apperr.KindNotFound:
		return c.JSON(http.StatusNotFound, e)
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// paramUint parses a numeric path parameter
func paramUint(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.Validation(name, "invalid "+name)
	}
	return uint(v), nil
}
