package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/pkg/apperror"
	"github.com/anonto42/nano-social/backend/pkg/logger"
)

// getUserIDFromContext returns the id set by the JWT middleware, or 0.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// actorResolver loads the profile of the authenticated user.
type actorResolver struct {
	profiles *services.ProfileService
}

func (r actorResolver) actor(c echo.Context) (*models.Profile, error) {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	profile, err := r.profiles.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Account no longer exists")
		}
		return nil, httpError(err)
	}
	return profile, nil
}

// httpError converts a service error into an echo HTTP error. Internal errors
// are logged and hidden from the client.
func httpError(err error) error {
	status := apperror.MapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return echo.NewHTTPError(status, err.Error())
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// imageFromForm opens the multipart file in field. It returns nil when the
// request carries no such file. done must be called afterwards.
func imageFromForm(c echo.Context, field string) (img *services.ImageUpload, done func(), err error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+field+" upload")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+field+" upload")
	}
	return &services.ImageUpload{Name: fh.Filename, Reader: f}, func() { _ = f.Close() }, nil
}

func pagination(c echo.Context, defaultLimit, maxLimit int) (skip, limit int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	skip, _ = strconv.Atoi(c.QueryParam("skip"))
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	if skip < 0 {
		skip = 0
	}
	return skip, limit
}
