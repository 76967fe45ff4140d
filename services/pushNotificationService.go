package services

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/DuaShare/models"
)

const pushPreviewLength = 80

// messageSender is the part of the FCM client used here.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier publishes new prayers to an FCM topic that clients subscribe
// to.
type PushNotifier struct {
	client messageSender
	topic  string
}

// NewPushNotifier initialises the Firebase Admin SDK. An empty credentials
// path falls back to Application Default Credentials.
func NewPushNotifier(ctx context.Context, credentialsPath, topic string) (*PushNotifier, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase messaging client: %w", err)
	}

	log.WithField("topic", topic).Info("push notifications enabled with FCM")
	return &PushNotifier{client: client, topic: topic}, nil
}

func (n *PushNotifier) Channel() string {
	return "push"
}

func (n *PushNotifier) PrayerSubmitted(ctx context.Context, prayer models.Prayer) error {
	if n == nil || n.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	id, err := n.client.Send(ctx, topicMessage(n.topic, prayer))
	if err != nil {
		return fmt.Errorf("failed to send FCM topic message: %w", err)
	}

	log.WithFields(log.Fields{"prayer_id": prayer.ID, "message_id": id}).Debug("push notification sent")
	return nil
}

func topicMessage(topic string, prayer models.Prayer) *messaging.Message {
	data := map[string]string{
		"prayer_id": strconv.Itoa(prayer.ID),
	}
	if prayer.Category != nil {
		data["category"] = *prayer.Category
	}

	return &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("%s shared a prayer", prayer.Author),
			Body:  preview(prayer.Content, pushPreviewLength),
		},
		Data: data,
	}
}

func preview(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
