package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	"storefront/internal/service"
)

// WebServices bundles the services behind the web form boundary.
type WebServices struct {
	Auth         service.AuthService
	Users        service.UserService
	Catalog      service.CatalogService
	Cart         service.CartService
	Checkout     service.CheckoutService
	Transactions service.TransactionService
}

// WebHandler handles form submissions. Every handler answers with a 303
// redirect and a flash cookie; rendering pages is left to the front end.
type WebHandler struct {
	svc          WebServices
	cookieSecure bool
	sessionTTL   time.Duration
}

// NewWebHandler creates a new web form handler.
func NewWebHandler(svc WebServices, cookieSecure bool, sessionTTL time.Duration) *WebHandler {
	return &WebHandler{svc: svc, cookieSecure: cookieSecure, sessionTTL: sessionTTL}
}

func (h *WebHandler) setSession(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *WebHandler) clearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register creates an account and sends the user to the login form.
func (h *WebHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		return failedTo(c, "/register", invalidForm())
	}

	if _, err := h.svc.Auth.Register(c.Request().Context(), in); err != nil {
		return failedTo(c, "/register", err)
	}
	setFlash(c, FlashSuccess, "Registration successful, please log in.")
	return c.Redirect(http.StatusSeeOther, "/login")
}

// Login checks credentials and stores the access token in the session cookie.
func (h *WebHandler) Login(c echo.Context) error {
	next := safeNext(c.FormValue("next"), "/")

	pair, user, err := h.svc.Auth.Login(c.Request().Context(), c.FormValue("login"), c.FormValue("password"))
	if err != nil {
		target := "/login"
		if next != "/" {
			target += "?next=" + url.QueryEscape(next)
		}
		return failedTo(c, target, err)
	}

	h.setSession(c, pair.AccessToken)
	setFlash(c, FlashSuccess, fmt.Sprintf("Welcome back, %s!", displayName(user.Name, user.Username)))
	return c.Redirect(http.StatusSeeOther, next)
}

func displayName(name, username string) string {
	if name != "" {
		return name
	}
	return username
}

// Logout revokes the session token and clears the cookie.
func (h *WebHandler) Logout(c echo.Context) error {
	if err := h.svc.Auth.Logout(c.Request().Context(), identity(c).Claims, ""); err != nil {
		return failedTo(c, "/", err)
	}
	h.clearSession(c)
	setFlash(c, FlashSuccess, "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/")
}

// UpdateProfile edits the caller's own account.
func (h *WebHandler) UpdateProfile(c echo.Context) error {
	var in service.ProfileInput
	if err := c.Bind(&in); err != nil {
		return failed(c, "/profile", invalidForm())
	}

	if _, err := h.svc.Users.UpdateProfile(c.Request().Context(), identity(c).UserID(), in); err != nil {
		return failed(c, "/profile", err)
	}
	return done(c, "/profile", "Profile updated.")
}
