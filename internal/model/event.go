package model

import "time"

// DefaultTimezone is the venue's local zone.
const DefaultTimezone = "Europe/Madrid"

type Event struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	DateStart    time.Time  `json:"date_start"`
	DateEnd      *time.Time `json:"date_end,omitempty"`
	Timezone     string     `json:"timezone"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	ImageURL     string     `json:"image_url"`
	LocationName string     `json:"location_name,omitempty"`
	IsPublished  bool       `json:"is_published"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EventFilter narrows event listings.
type EventFilter struct {
	Published *bool
	Category  string
	From      *time.Time // inclusive
	To        *time.Time // exclusive
	Desc      bool
	Offset    int
	Limit     int
}
