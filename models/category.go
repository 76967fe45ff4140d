package models

// CategoryAll is the listing sentinel that means "no category filter".
const CategoryAll = "all"

type PrayerCategory struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PrayerCategories is the closed set of categories the UI offers. Prayers may
// still carry other values; those are stored as-is and have no label.
var PrayerCategories = []PrayerCategory{
	{Value: "health", Label: "Health & Healing"},
	{Value: "family", Label: "Family"},
	{Value: "guidance", Label: "Guidance"},
	{Value: "success", Label: "Success"},
	{Value: "relief", Label: "Relief from Hardship"},
	{Value: "forgiveness", Label: "Forgiveness"},
	{Value: "other", Label: "Other"},
}

func CategoryLabel(value string) (string, bool) {
	for _, c := range PrayerCategories {
		if c.Value == value {
			return c.Label, true
		}
	}
	return "", false
}
