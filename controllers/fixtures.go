package controllers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DuaShare/models"
	"github.com/DuaShare/stores"
)

// Test fixture data for use in tests

// MockPrayerCreate returns a valid public submission.
func MockPrayerCreate() models.PrayerCreate {
	return models.PrayerCreate{
		Content:  "Please pray for my mother's health",
		Category: "health",
	}
}

// SeedPrayers inserts n published prayers straight into the store, bypassing
// the rate limited submit route. Content is "Prayer number <i>" starting at 1.
func SeedPrayers(t *testing.T, store stores.PrayerStore, n int, category string) []models.Prayer {
	t.Helper()

	prayers := make([]models.Prayer, 0, n)
	for i := 1; i <= n; i++ {
		prayer, err := store.CreatePrayer(context.Background(), models.PrayerCreate{
			Content:  fmt.Sprintf("Prayer number %d", i),
			Author:   "Seeder",
			Category: category,
		})
		require.NoError(t, err)
		prayers = append(prayers, *prayer)
	}
	return prayers
}

// Unpublish hides a prayer directly in the store.
func Unpublish(t *testing.T, store stores.PrayerStore, id int) {
	t.Helper()

	hidden := false
	prayer, err := store.UpdatePrayer(context.Background(), id, models.PrayerUpdate{Is_Published: &hidden})
	require.NoError(t, err)
	require.NotNil(t, prayer)
}
