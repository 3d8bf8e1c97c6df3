package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/claimsys/claim_management_app/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "_csrf"
	csrfHeaderName = "X-CSRF-Token"
	csrfTokenBytes = 32
	csrfContextKey = "csrfToken"
)

// CSRF implements the double-submit-cookie pattern: every browser session
// gets a random token cookie, and every state-changing request must echo the
// same token back in the form body (or header). Safe methods only ensure the
// cookie exists.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(csrfCookieName)
		if err != nil || token == "" {
			token, err = utils.GenerateSecureRandomString(csrfTokenBytes)
			if err != nil {
				GetLoggerFromCtx(c.Request.Context()).Error("Failed to generate CSRF token", slog.String("error", err.Error()))
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.SetCookie(csrfCookieName, token, 0, "/", "", false, true)
		}
		c.Set(csrfContextKey, token)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		submitted := c.PostForm(csrfFormField)
		if submitted == "" {
			submitted = c.GetHeader(csrfHeaderName)
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
			GetLoggerFromCtx(c.Request.Context()).Warn("Rejected request with missing or mismatched CSRF token")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Next()
	}
}

// CSRFToken returns the token handlers embed into rendered forms.
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}
