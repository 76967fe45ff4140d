package middlewares

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/DuaShare/models"
	"github.com/DuaShare/services"
)

const SessionCookieName = "dua_session"

// SessionValidator resolves a token to a live admin session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*services.AdminSession, error)
}

// SessionToken reads the admin token from the session cookie, falling back to
// an Authorization: Bearer header.
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authToken := strings.Split(c.GetHeader("Authorization"), " ")
	if len(authToken) == 2 && authToken[0] == "Bearer" {
		return authToken[1]
	}
	return ""
}

// sessionUnavailableKey is set when a token was presented but the registry
// could not be reached.
const sessionUnavailableKey = "sessionUnavailable"

// CheckAuth marks the request as admin or not. It never rejects; CheckAdmin
// does that for gated routes. A registry outage leaves the caller non-admin.
func CheckAuth(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("admin", false)

		tokenString := SessionToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		session, err := sessions.Validate(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, models.ErrUnauthorized) {
				log.WithError(err).WithField("path", c.Request.URL.Path).Error("failed to load admin session")
				c.Set(sessionUnavailableKey, true)
			}
			c.Next()
			return
		}

		c.Set("admin", true)
		c.Set("adminSession", session)
		c.Next()
	}
}
