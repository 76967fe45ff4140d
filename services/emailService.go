package services

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v2"
	log "github.com/sirupsen/logrus"

	"github.com/DuaShare/models"
)

// emailSender is the part of the Resend client used here.
type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailNotifier mails a moderation notice for every submitted prayer.
type EmailNotifier struct {
	sender emailSender
	from   string
	to     string
}

// NewEmailNotifier returns nil when the API key or recipient is missing.
func NewEmailNotifier(apiKey, from, to string) *EmailNotifier {
	if apiKey == "" || to == "" {
		log.Warn("RESEND_API_KEY or NOTIFY_EMAIL_TO not set, moderation emails disabled")
		return nil
	}

	client := resend.NewClient(apiKey)
	log.WithField("to", to).Info("email notifications enabled with Resend")
	return &EmailNotifier{sender: client.Emails, from: from, to: to}
}

func (n *EmailNotifier) Channel() string {
	return "email"
}

func (n *EmailNotifier) PrayerSubmitted(_ context.Context, prayer models.Prayer) error {
	if n == nil || n.sender == nil {
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: fmt.Sprintf("New prayer #%d awaiting review", prayer.ID),
		Html:    moderationEmailHTML(prayer),
	}

	sent, err := n.sender.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send moderation email: %w", err)
	}

	log.WithFields(log.Fields{"prayer_id": prayer.ID, "email_id": sent.Id}).Debug("moderation email sent")
	return nil
}

func moderationEmailHTML(prayer models.Prayer) string {
	category := "Uncategorised"
	if prayer.Category != nil {
		category = *prayer.Category
		if label, ok := models.CategoryLabel(category); ok {
			category = label
		}
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .prayer {
            background-color: #f5f5f5;
            border-left: 4px solid #2f7d6d;
            padding: 16px;
            margin: 20px 0;
            white-space: pre-wrap;
        }
        .meta {
            font-size: 13px;
            color: #666;
        }
    </style>
</head>
<body>
    <h2>A new prayer was shared</h2>
    <p class="meta">#%d &middot; %s &middot; by %s</p>
    <div class="prayer">%s</div>
    <p>It is visible on the wall now. Unpublish or delete it from the admin panel if it needs moderation.</p>
</body>
</html>
`, prayer.ID, html.EscapeString(category), html.EscapeString(prayer.Author), html.EscapeString(prayer.Content))
}
