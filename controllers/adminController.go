package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/DuaShare/metrics"
	"github.com/DuaShare/middlewares"
	"github.com/DuaShare/models"
	"github.com/DuaShare/services"
	"github.com/DuaShare/stores"
)

// AdminController handles the moderation login and the gated prayer
// operations.
type AdminController struct {
	auth         services.Authenticator
	sessions     *services.SessionManager
	store        stores.PrayerStore
	feed         *services.PrayerFeed
	cookieSecure bool
}

func NewAdminController(auth services.Authenticator, sessions *services.SessionManager, store stores.PrayerStore, feed *services.PrayerFeed, cookieSecure bool) *AdminController {
	return &AdminController{
		auth:         auth,
		sessions:     sessions,
		store:        store,
		feed:         feed,
		cookieSecure: cookieSecure,
	}
}

func (ac *AdminController) Login(c *gin.Context) {
	var login models.AdminLogin
	if err := c.ShouldBindJSON(&login); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	ctx := c.Request.Context()
	subject, err := ac.auth.Authenticate(ctx, login)
	if err != nil {
		metrics.RecordAdminLogin(false)
		if errors.Is(err, models.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		respondError(c, err, log.Fields{"action": "login"})
		return
	}

	token, session, err := ac.sessions.Issue(ctx, subject)
	if err != nil {
		respondError(c, err, log.Fields{"action": "login"})
		return
	}
	metrics.RecordAdminLogin(true)
	log.WithFields(log.Fields{"subject": subject, "session_id": session.ID}).Info("admin logged in")

	ac.setSessionCookie(c, token, int(ac.sessions.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ac *AdminController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"isAdmin": c.GetBool("admin")})
}

// Logout clears the cookie and revokes the session. A missing or stale token
// still succeeds; a registry failure is a 500 because the session may still
// be live.
func (ac *AdminController) Logout(c *gin.Context) {
	ac.setSessionCookie(c, "", -1)

	if token := middlewares.SessionToken(c); token != "" {
		if err := ac.sessions.Revoke(c.Request.Context(), token); err != nil {
			log.WithError(err).Error("failed to revoke admin session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ac *AdminController) GetPrayers(c *gin.Context) {
	page, err := ac.feed.AdminList(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err, log.Fields{"action": "admin_list"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdatePrayer only honours is_published; any other field in the body is
// ignored.
func (ac *AdminController) UpdatePrayer(c *gin.Context) {
	id, ok := prayerID(c)
	if !ok {
		return
	}

	var update models.PrayerUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, bindingError(err), nil)
		return
	}

	prayer, err := ac.store.UpdatePrayer(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, err, log.Fields{"prayer_id": id})
		return
	}
	if prayer == nil {
		respondError(c, models.ErrNotFound, log.Fields{"prayer_id": id})
		return
	}

	if !update.IsEmpty() {
		action := "unpublish"
		if *update.Is_Published {
			action = "publish"
		}
		metrics.RecordModeration(action)
		log.WithFields(log.Fields{"prayer_id": id, "action": action}).Info("prayer moderated")
	}

	c.JSON(http.StatusOK, prayer)
}

func (ac *AdminController) DeletePrayer(c *gin.Context) {
	id, ok := prayerID(c)
	if !ok {
		return
	}

	deleted, err := ac.store.DeletePrayer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, log.Fields{"prayer_id": id})
		return
	}
	if !deleted {
		respondError(c, models.ErrNotFound, log.Fields{"prayer_id": id})
		return
	}

	metrics.RecordModeration("delete")
	log.WithField("prayer_id", id).Info("prayer deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ac *AdminController) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookieName, value, maxAge, "/", "", ac.cookieSecure, true)
}
