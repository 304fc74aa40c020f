package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/service"
)

type testValidator struct{}

func (testValidator) Validate(i interface{}) error { return service.Validate(i) }

var (
	customer = &model.User{ID: 7, Username: "alice", Email: "alice@example.com"}
	admin    = &model.User{ID: 1, Username: "root", Email: "root@example.com", IsAdmin: true}
)

// newContext builds an echo context for method and target. A non-nil form is
// sent url-encoded and a non-nil user is attached as the caller.
func newContext(method, target string, form url.Values, user *model.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = testValidator{}

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != nil {
		claims := &auth.Claims{UserID: user.ID, Username: user.Username, Kind: auth.TokenKindAccess}
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{User: user, Claims: claims}))
	}

	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// flashOf decodes the flash cookie set on rec.
func flashOf(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	ck := findCookie(rec, FlashCookie)
	require.NotNil(t, ck, "flash cookie not set")
	kind, message, ok := DecodeFlash(ck.Value)
	require.True(t, ok)
	return kind, message
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, location, rec.Header().Get(echo.HeaderLocation))
}

func httpError(t *testing.T, err error) (int, errors.ErrorResponse) {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected *echo.HTTPError, got %v", err)
	body, ok := he.Message.(errors.ErrorResponse)
	require.True(t, ok, "unexpected error body %#v", he.Message)
	return he.Code, body
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/cart"},
		{"/products?page=2", "/products?page=2"},
		{"https://evil.example/", "/cart"},
		{"//evil.example/", "/cart"},
		{`/\evil.example`, "/cart"},
		{"relative/path", "/cart"},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.next, "/cart"))
		})
	}
}

func TestFlash_RoundTrip(t *testing.T) {
	kind, message, ok := DecodeFlash(EncodeFlash(FlashError, "only 1 of \"Tea: green\" available"))

	assert.True(t, ok)
	assert.Equal(t, FlashError, kind)
	assert.Equal(t, "only 1 of \"Tea: green\" available", message)
}

func TestRejectWeb(t *testing.T) {
	t.Run("anonymous goes to login", func(t *testing.T) {
		c, rec := newContext(http.MethodPost, "/cart/add", url.Values{}, nil)

		require.NoError(t, RejectWeb(c, errors.ErrUnauthorized))

		assertRedirect(t, rec, "/login?next=%2Fcart%2Fadd")
		kind, _ := flashOf(t, rec)
		assert.Equal(t, FlashError, kind)
	})

	t.Run("customer on admin route goes home", func(t *testing.T) {
		c, rec := newContext(http.MethodPost, "/admin/products", url.Values{}, customer)

		require.NoError(t, RejectWeb(c, errors.ErrForbidden))

		assertRedirect(t, rec, "/")
	})
}

func TestRejectAPI(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/users", nil, customer)

	status, body := httpError(t, RejectAPI(c, errors.ErrForbidden))

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body.Code)
}
