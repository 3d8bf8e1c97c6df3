package middleware

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"
)

const (
	flashOkCookie  = "flash_ok"
	flashErrCookie = "flash_err"
	flashOkKey     = "flashOk"
	flashErrKey    = "flashErr"
)

// Flash moves one-shot notices across a redirect: a handler sets a flash
// cookie before redirecting, the next request reads and clears it. Values are
// base64-encoded because cookie values cannot carry spaces.
func Flash() gin.HandlerFunc {
	return func(c *gin.Context) {
		if msg := readFlashCookie(c, flashOkCookie); msg != "" {
			c.Set(flashOkKey, msg)
		}
		if msg := readFlashCookie(c, flashErrCookie); msg != "" {
			c.Set(flashErrKey, msg)
		}
		c.Next()
	}
}

func readFlashCookie(c *gin.Context, name string) string {
	raw, err := c.Cookie(name)
	if err != nil || raw == "" {
		return ""
	}
	// Clear it; flash messages are shown exactly once.
	c.SetCookie(name, "", -1, "/", "", false, true)
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// SetFlashOk queues a success notice for the next request.
func SetFlashOk(c *gin.Context, msg string) {
	setFlashCookie(c, flashOkCookie, msg)
}

// SetFlashErr queues an error notice for the next request.
func SetFlashErr(c *gin.Context, msg string) {
	setFlashCookie(c, flashErrCookie, msg)
}

func setFlashCookie(c *gin.Context, name, msg string) {
	c.SetCookie(name, base64.RawURLEncoding.EncodeToString([]byte(msg)), 60, "/", "", false, true)
}

// GetFlash returns the notices cleared by the middleware on this request.
func GetFlash(c *gin.Context) (ok string, errMsg string) {
	return c.GetString(flashOkKey), c.GetString(flashErrKey)
}
