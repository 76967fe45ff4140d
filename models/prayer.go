package models

import "time"

const DefaultAuthor = "Anonymous"

type Prayer struct {
	ID           int       `json:"id" db:"id" goqu:"skipinsert"`
	Content      string    `json:"content" db:"content"`
	Author       string    `json:"author" db:"author"`
	Category     *string   `json:"category" db:"category"`
	Created_At   time.Time `json:"created_at" db:"created_at" goqu:"skipinsert"`
	Is_Published bool      `json:"is_published" db:"is_published"`
	View_Count   int       `json:"view_count" db:"view_count"`
	Ameen_Count  int       `json:"ameen_count" db:"ameen_count"`
}

// PrayerCreate is the public submission body. Author and category are optional.
type PrayerCreate struct {
	Content  string `json:"content" binding:"required,min=10"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// PrayerUpdate carries the moderation fields an admin may change. A nil field
// is left untouched.
type PrayerUpdate struct {
	Is_Published *bool `json:"is_published"`
}

func (u PrayerUpdate) IsEmpty() bool {
	return u.Is_Published == nil
}

// PrayerFilter restricts a listing. An empty Category or Search imposes no
// restriction.
type PrayerFilter struct {
	Category           string
	Search             string
	IncludeUnpublished bool
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type PrayerPage struct {
	Prayers    []Prayer   `json:"prayers"`
	Pagination Pagination `json:"pagination"`
}
