package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/claimsys/claim_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CSRF())
	r.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.CSRFToken(c))
	})
	r.POST("/submit", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestCSRF_GetIssuesTokenCookie(t *testing.T) {
	r := csrfRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "csrf_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "csrf_token cookie should be set")
	// The handler sees the same token the cookie carries.
	assert.Equal(t, cookie.Value, w.Body.String())
}

func TestCSRF_PostWithoutTokenIsForbidden(t *testing.T) {
	r := csrfRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRF_PostWithMatchingTokenPasses(t *testing.T) {
	r := csrfRouter()

	// First request obtains the token cookie.
	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/form", nil))
	token := first.Body.String()
	require.NotEmpty(t, token)

	form := url.Values{"_csrf": {token}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range first.Result().Cookies() {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRF_PostWithMismatchedTokenIsForbidden(t *testing.T) {
	r := csrfRouter()

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/form", nil))

	form := url.Values{"_csrf": {"not-the-token"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range first.Result().Cookies() {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFlash_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Flash())
	r.POST("/set", func(c *gin.Context) {
		middleware.SetFlashOk(c, "Claim submitted successfully.")
		c.Status(http.StatusSeeOther)
	})
	r.GET("/read", func(c *gin.Context) {
		ok, _ := middleware.GetFlash(c)
		c.String(http.StatusOK, ok)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/set", nil))

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	for _, c := range first.Result().Cookies() {
		req.AddCookie(c)
	}
	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)

	assert.Equal(t, "Claim submitted successfully.", second.Body.String())

	// The middleware clears the cookie after showing the message once.
	var cleared bool
	for _, c := range second.Result().Cookies() {
		if c.Name == "flash_ok" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "flash cookie should be expired after read")
}
