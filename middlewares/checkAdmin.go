package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func CheckAdmin(c *gin.Context) {
	if c.GetBool(sessionUnavailableKey) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}

	if !c.GetBool("admin") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.Next()
}
