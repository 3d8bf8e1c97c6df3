package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getHome redirects the landing page to the claim submission form.
func getHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/claims/submit")
}
