package model

import "time"

// MenuItemType distinguishes dishes from wines.
type MenuItemType string

const (
	MenuFood MenuItemType = "FOOD"
	MenuWine MenuItemType = "WINE"
)

type MenuItem struct {
	ID               int64        `json:"id"`
	Type             MenuItemType `json:"type"`
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	PriceCents       *int64       `json:"price_cents,omitempty"`
	Category         string       `json:"category,omitempty"`
	Region           string       `json:"region,omitempty"`
	GlassPriceCents  *int64       `json:"glass_price_cents,omitempty"`
	BottlePriceCents *int64       `json:"bottle_price_cents,omitempty"`
	ImageURL         string       `json:"image_url,omitempty"`
	IsActive         bool         `json:"is_active"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// MenuCategory is a menu section, optionally nested one level.
type MenuCategory struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Order       int    `json:"orden"`
}
