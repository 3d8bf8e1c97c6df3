package handlers

import (
	portssvc "github.com/claimsys/claim_management_app/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	claimService portssvc.ClaimSvcFacade,
	submitLimit gin.HandlerFunc,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	r.GET("/", getHome)

	registerClaimRoutes(r, claimService, submitLimit)
}
