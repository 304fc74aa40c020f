package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"storefront/internal/auth"
	"storefront/internal/errors"
)

// FlashCookie carries the user-visible outcome of a web form submission.
const FlashCookie = "flash"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// identity returns the caller resolved by the auth middleware.
func identity(c echo.Context) auth.Identity {
	return auth.IdentityFrom(c.Request().Context())
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}

// apiError converts a domain error into an echo HTTP error with an ErrorResponse body.
func apiError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.IsInternal() {
		log.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("request failed")
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidBody() error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

// RejectAPI answers a failed guard with 401 or 403.
func RejectAPI(c echo.Context, err error) error {
	return apiError(c, err)
}

// RejectWeb redirects a failed guard: to the login form when the caller is
// anonymous, home otherwise.
func RejectWeb(c echo.Context, err error) error {
	if errors.Is(err, errors.ErrUnauthorized) {
		target := "/login?next=" + url.QueryEscape(c.Request().URL.RequestURI())
		setFlash(c, FlashError, "Please log in to continue.")
		return c.Redirect(http.StatusSeeOther, target)
	}
	setFlash(c, FlashError, "You are not allowed to do that.")
	return c.Redirect(http.StatusSeeOther, "/")
}

// EncodeFlash packs a flash kind and message into a cookie value.
func EncodeFlash(kind, message string) string {
	return url.QueryEscape(kind + ":" + message)
}

// DecodeFlash unpacks a cookie value written by EncodeFlash.
func DecodeFlash(value string) (kind, message string, ok bool) {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return "", "", false
	}
	kind, message, ok = strings.Cut(raw, ":")
	return kind, message, ok
}

func setFlash(c echo.Context, kind, message string) {
	c.SetCookie(&http.Cookie{
		Name:     FlashCookie,
		Value:    EncodeFlash(kind, message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext returns next when it is a local absolute path, fallback otherwise.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

// done redirects back with a success flash.
func done(c echo.Context, fallback, message string) error {
	setFlash(c, FlashSuccess, message)
	return c.Redirect(http.StatusSeeOther, safeNext(c.FormValue("next"), fallback))
}

// failed redirects back with the user-visible form of err.
func failed(c echo.Context, fallback string, err error) error {
	return failedTo(c, safeNext(c.FormValue("next"), fallback), err)
}

// failedTo redirects to target with the user-visible form of err.
func failedTo(c echo.Context, target string, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	message := httpErr.Message
	if httpErr.IsInternal() {
		log.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("form submission failed")
		message = "Something went wrong, please try again."
	} else if httpErr.Field != "" {
		message = httpErr.Field + " " + httpErr.Message
	}
	setFlash(c, FlashError, message)
	return c.Redirect(http.StatusSeeOther, target)
}
