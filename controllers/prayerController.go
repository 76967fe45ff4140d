package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/DuaShare/metrics"
	"github.com/DuaShare/models"
	"github.com/DuaShare/services"
	"github.com/DuaShare/stores"
)

// PrayerController serves the public prayer wall.
type PrayerController struct {
	store    stores.PrayerStore
	feed     *services.PrayerFeed
	notifier *services.NotificationTrigger
}

func NewPrayerController(store stores.PrayerStore, feed *services.PrayerFeed, notifier *services.NotificationTrigger) *PrayerController {
	return &PrayerController{store: store, feed: feed, notifier: notifier}
}

func (pc *PrayerController) CreatePrayer(c *gin.Context) {
	var input models.PrayerCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindingError(err), nil)
		return
	}

	prayer, err := pc.store.CreatePrayer(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, log.Fields{"action": "create"})
		return
	}

	metrics.RecordPrayerEvent(metrics.EventSubmitted)
	pc.notifier.PrayerSubmitted(*prayer)

	c.JSON(http.StatusCreated, prayer)
}

func (pc *PrayerController) GetPrayers(c *gin.Context) {
	page, err := pc.feed.PublicList(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err, log.Fields{"action": "list"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetPrayer counts a view and returns the refreshed prayer. Unpublished
// prayers are only visible to admins.
func (pc *PrayerController) GetPrayer(c *gin.Context) {
	id, ok := prayerID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	fields := log.Fields{"prayer_id": id}

	prayer, err := pc.store.GetPrayer(ctx, id)
	if err != nil {
		respondError(c, err, fields)
		return
	}
	if prayer == nil || (!prayer.Is_Published && !c.GetBool("admin")) {
		respondError(c, models.ErrNotFound, fields)
		return
	}

	found, err := pc.store.IncrementViewCount(ctx, id)
	if err != nil {
		respondError(c, err, fields)
		return
	}
	if !found {
		respondError(c, models.ErrNotFound, fields)
		return
	}
	metrics.RecordPrayerEvent(metrics.EventViewed)

	pc.respondPrayer(c, id)
}

func (pc *PrayerController) AmeenPrayer(c *gin.Context) {
	id, ok := prayerID(c)
	if !ok {
		return
	}

	found, err := pc.store.IncrementAmeenCount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, log.Fields{"prayer_id": id})
		return
	}
	if !found {
		respondError(c, models.ErrNotFound, log.Fields{"prayer_id": id})
		return
	}
	metrics.RecordPrayerEvent(metrics.EventAmeen)

	pc.respondPrayer(c, id)
}

func (pc *PrayerController) respondPrayer(c *gin.Context, id int) {
	prayer, err := pc.store.GetPrayer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, log.Fields{"prayer_id": id})
		return
	}
	if prayer == nil {
		respondError(c, models.ErrNotFound, log.Fields{"prayer_id": id})
		return
	}

	c.JSON(http.StatusOK, prayer)
}

func listParams(c *gin.Context) services.ListParams {
	return services.ListParams{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
}
