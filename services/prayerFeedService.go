package services

import (
	"context"
	"math"

	"github.com/DuaShare/models"
	"github.com/DuaShare/stores"
)

const (
	DefaultPublicLimit = 6
	DefaultAdminLimit  = 10
	MaxLimit           = 100
)

// ListParams is a listing request as it arrives from the query string.
// Zero or negative Page and Limit are normalised, never rejected.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// PrayerFeed composes the paginated, filtered listings on top of a store.
type PrayerFeed struct {
	store stores.PrayerStore
}

func NewPrayerFeed(store stores.PrayerStore) *PrayerFeed {
	return &PrayerFeed{store: store}
}

// PublicList returns published prayers only.
func (f *PrayerFeed) PublicList(ctx context.Context, params ListParams) (*models.PrayerPage, error) {
	return f.list(ctx, params, DefaultPublicLimit, false)
}

// AdminList ignores the publish state.
func (f *PrayerFeed) AdminList(ctx context.Context, params ListParams) (*models.PrayerPage, error) {
	return f.list(ctx, params, DefaultAdminLimit, true)
}

func (f *PrayerFeed) list(ctx context.Context, params ListParams, defaultLimit int, admin bool) (*models.PrayerPage, error) {
	page, limit := NormalizePage(params.Page, params.Limit, defaultLimit)
	filter := BuildFilter(params.Category, params.Search, admin)

	prayers := []models.Prayer{}
	if !beyondLastOffset(page, limit) {
		var err error
		if prayers, err = f.store.ListPrayers(ctx, filter, page, limit); err != nil {
			return nil, err
		}
	}
	total, err := f.store.CountPrayers(ctx, filter)
	if err != nil {
		return nil, err
	}
	if prayers == nil {
		prayers = []models.Prayer{}
	}

	return &models.PrayerPage{
		Prayers: prayers,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: TotalPages(total, limit),
		},
	}, nil
}

func NormalizePage(page, limit, defaultLimit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// beyondLastOffset reports whether (page-1)*limit would overflow an int. No
// store can hold that many rows, so such a page is always empty.
func beyondLastOffset(page, limit int) bool {
	return page-1 > math.MaxInt/limit
}

// BuildFilter treats an empty category and the "all" sentinel the same.
func BuildFilter(category, search string, includeUnpublished bool) models.PrayerFilter {
	if category == models.CategoryAll {
		category = ""
	}
	return models.PrayerFilter{
		Category:           category,
		Search:             search,
		IncludeUnpublished: includeUnpublished,
	}
}

func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
