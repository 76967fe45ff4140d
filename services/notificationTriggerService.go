package services

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DuaShare/metrics"
	"github.com/DuaShare/models"
)

// PrayerNotifier is told about every successfully submitted prayer.
type PrayerNotifier interface {
	Channel() string
	PrayerSubmitted(ctx context.Context, prayer models.Prayer) error
}

// NotificationTrigger fans a submitted prayer out to every notifier in the
// background. Failures are logged and counted, never returned to the caller.
type NotificationTrigger struct {
	notifiers []PrayerNotifier
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewNotificationTrigger(notifiers ...PrayerNotifier) *NotificationTrigger {
	return &NotificationTrigger{notifiers: notifiers, timeout: 30 * time.Second}
}

// PrayerSubmitted returns immediately; delivery happens on its own goroutine.
func (t *NotificationTrigger) PrayerSubmitted(prayer models.Prayer) {
	if t == nil || len(t.notifiers) == 0 {
		return
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		for _, notifier := range t.notifiers {
			err := notifier.PrayerSubmitted(ctx, prayer)
			metrics.RecordNotification(notifier.Channel(), err)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{
					"prayer_id": prayer.ID,
					"channel":   notifier.Channel(),
				}).Warn("prayer notification failed")
			}
		}
	}()
}

// Wait blocks until in-flight notifications finish. Used on shutdown.
func (t *NotificationTrigger) Wait() {
	if t == nil {
		return
	}
	t.wg.Wait()
}
