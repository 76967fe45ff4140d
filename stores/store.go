// Package stores holds the Entity Store contract and its adapters: an
// in-process map, Postgres through goqu, and the hosted Supabase REST API.
package stores

import (
	"context"
	"strings"

	"github.com/DuaShare/models"
)

type PrayerStore interface {
	CreatePrayer(ctx context.Context, input models.PrayerCreate) (*models.Prayer, error)
	// GetPrayer returns nil without error when the id is unknown. Publish
	// state is not checked; callers decide visibility.
	GetPrayer(ctx context.Context, id int) (*models.Prayer, error)
	// UpdatePrayer returns nil without error when the id is unknown. An
	// empty update returns the current record.
	UpdatePrayer(ctx context.Context, id int, update models.PrayerUpdate) (*models.Prayer, error)
	DeletePrayer(ctx context.Context, id int) (bool, error)
	IncrementAmeenCount(ctx context.Context, id int) (bool, error)
	IncrementViewCount(ctx context.Context, id int) (bool, error)
	// ListPrayers returns the filtered rows newest first, windowed to
	// [(page-1)*limit, page*limit). page and limit must be positive.
	ListPrayers(ctx context.Context, filter models.PrayerFilter, page, limit int) ([]models.Prayer, error)
	CountPrayers(ctx context.Context, filter models.PrayerFilter) (int, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, input models.UserCreate) (*models.User, error)
}

type Store interface {
	PrayerStore
	UserStore
	Close() error
}

// normalizeCreate applies the defaults every adapter shares.
func normalizeCreate(input models.PrayerCreate) (content, author string, category *string) {
	author = strings.TrimSpace(input.Author)
	if author == "" {
		author = models.DefaultAuthor
	}
	if c := strings.TrimSpace(input.Category); c != "" {
		category = &c
	}
	return input.Content, author, category
}

// offset returns the zero-based index of the first row on page.
func offset(page, limit int) int {
	return (page - 1) * limit
}
