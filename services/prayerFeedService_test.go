package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DuaShare/models"
	"github.com/DuaShare/stores"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name          string
		page, limit   int
		defaultLimit  int
		expectedPage  int
		expectedLimit int
	}{
		{"defaults", 0, 0, 6, 1, 6},
		{"negative values", -2, -1, 10, 1, 10},
		{"explicit", 3, 20, 6, 3, 20},
		{"capped", 1, 500, 6, 1, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := NormalizePage(tt.page, tt.limit, tt.defaultLimit)
			assert.Equal(t, tt.expectedPage, page)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, models.PrayerFilter{}, BuildFilter("all", "", false))
	assert.Equal(t, models.PrayerFilter{}, BuildFilter("", "", false))
	assert.Equal(t, models.PrayerFilter{Category: "family", Search: "abc", IncludeUnpublished: true}, BuildFilter("family", "abc", true))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 6))
	assert.Equal(t, 1, TotalPages(6, 6))
	assert.Equal(t, 2, TotalPages(7, 6))
	assert.Equal(t, 17, TotalPages(17, 1))
}

func TestPrayerFeedLists(t *testing.T) {
	store := stores.NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 13; i++ {
		_, err := store.CreatePrayer(ctx, models.PrayerCreate{Content: fmt.Sprintf("feed prayer number %d", i)})
		require.NoError(t, err)
	}
	hidden := false
	_, err := store.UpdatePrayer(ctx, 13, models.PrayerUpdate{Is_Published: &hidden})
	require.NoError(t, err)

	feed := NewPrayerFeed(store)

	public, err := feed.PublicList(ctx, ListParams{})
	require.NoError(t, err)
	assert.Len(t, public.Prayers, DefaultPublicLimit)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 6, Total: 12, TotalPages: 2}, public.Pagination)
	assert.Equal(t, 12, public.Prayers[0].ID)

	admin, err := feed.AdminList(ctx, ListParams{Category: "all"})
	require.NoError(t, err)
	assert.Len(t, admin.Prayers, DefaultAdminLimit)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 13, TotalPages: 2}, admin.Pagination)
	assert.Equal(t, 13, admin.Prayers[0].ID)

	empty, err := feed.PublicList(ctx, ListParams{Page: 9})
	require.NoError(t, err)
	assert.NotNil(t, empty.Prayers)
	assert.Empty(t, empty.Prayers)
}

type failingStore struct {
	stores.PrayerStore
}

func (failingStore) ListPrayers(context.Context, models.PrayerFilter, int, int) ([]models.Prayer, error) {
	return nil, models.NewPersistenceError("list prayers", errors.New("connection reset"))
}

func TestPrayerFeedPropagatesStoreErrors(t *testing.T) {
	feed := NewPrayerFeed(failingStore{})

	_, err := feed.PublicList(context.Background(), ListParams{})

	var persistenceErr *models.PersistenceError
	assert.True(t, errors.As(err, &persistenceErr))
}

func TestBeyondLastOffset(t *testing.T) {
	assert.False(t, beyondLastOffset(1, 6))
	assert.False(t, beyondLastOffset(1_000_000, 6))
	assert.False(t, beyondLastOffset(math.MaxInt, 1))
	assert.True(t, beyondLastOffset(math.MaxInt, 6))
	assert.True(t, beyondLastOffset(2_000_000_000_000_000_000, 6))
}

type countingStore struct {
	stores.PrayerStore
	listCalls int
}

func (s *countingStore) ListPrayers(ctx context.Context, filter models.PrayerFilter, page, limit int) ([]models.Prayer, error) {
	s.listCalls++
	return s.PrayerStore.ListPrayers(ctx, filter, page, limit)
}

func TestPrayerFeedHugePageIsEmpty(t *testing.T) {
	memory := stores.NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := memory.CreatePrayer(ctx, models.PrayerCreate{Content: fmt.Sprintf("overflow prayer %d", i)})
		require.NoError(t, err)
	}
	store := &countingStore{PrayerStore: memory}
	feed := NewPrayerFeed(store)

	page, err := feed.PublicList(ctx, ListParams{Page: math.MaxInt})
	require.NoError(t, err)
	assert.NotNil(t, page.Prayers)
	assert.Empty(t, page.Prayers)
	assert.Equal(t, models.Pagination{Page: math.MaxInt, Limit: 6, Total: 3, TotalPages: 1}, page.Pagination)
	assert.Equal(t, 0, store.listCalls, "no window to read")

	_, err = feed.AdminList(ctx, ListParams{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
}
