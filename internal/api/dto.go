package api

import (
	"time"

	"taberna/internal/ids"
	"taberna/internal/model"
	"taberna/internal/money"
)

type customerDTO struct {
	Name  string `json:"name" validate:"required,max=120"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type reservationRequest struct {
	Date      string      `json:"date" validate:"required,ymd"`
	Time      string      `json:"time" validate:"required,hhmm"`
	PartySize int         `json:"partySize" validate:"required,min=1,max=50"`
	Customer  customerDTO `json:"customer" validate:"required"`
	Notes     string      `json:"notes,omitempty" validate:"max=1000"`
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

type reservationResponse struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Date      string      `json:"date"`
	Time      string      `json:"time"`
	PartySize int         `json:"partySize"`
	Customer  customerDTO `json:"customer"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toReservationResponse(r *model.Reservation) reservationResponse {
	return reservationResponse{
		ID:        ids.Encode(ids.Reservation, r.ID),
		Status:    string(r.Status),
		Date:      r.Date,
		Time:      r.Time,
		PartySize: r.PartySize,
		Customer: customerDTO{
			Name:  r.CustomerName,
			Phone: r.CustomerPhone,
			Email: r.CustomerEmail,
		},
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}

type foodItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Price       *float64 `json:"price"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Tags        []string `json:"tags"`
	IsActive    bool     `json:"isActive"`
}

type wineItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Region      string   `json:"region,omitempty"`
	GlassPrice  *float64 `json:"glassPrice"`
	BottlePrice *float64 `json:"bottlePrice"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	IsActive    bool     `json:"isActive"`
}

func toFoodItem(it model.MenuItem) foodItem {
	return foodItem{
		ID:          ids.Encode(ids.Food, it.ID),
		Name:        it.Name,
		Description: it.Description,
		Category:    it.Category,
		Price:       money.FromCents(it.PriceCents),
		ImageURL:    it.ImageURL,
		Tags:        []string{},
		IsActive:    it.IsActive,
	}
}

func toWineItem(it model.MenuItem) wineItem {
	return wineItem{
		ID:          ids.Encode(ids.Wine, it.ID),
		Name:        it.Name,
		Description: it.Description,
		Category:    it.Category,
		Region:      it.Region,
		GlassPrice:  money.FromCents(it.GlassPriceCents),
		BottlePrice: money.FromCents(it.BottlePriceCents),
		ImageURL:    it.ImageURL,
		IsActive:    it.IsActive,
	}
}

type menuResponse struct {
	ID        string     `json:"id"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Currency  string     `json:"currency"`
	Food      []foodItem `json:"food"`
	Wines     []wineItem `json:"wines"`
}

type categoryNode struct {
	Category    string         `json:"category"`
	Subcategory string         `json:"subcategory,omitempty"`
	Orden       int            `json:"orden"`
	Children    []categoryNode `json:"children"`
}

type foodCreateRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0,lte=100000"`
	ImageURL    string   `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

type wineCreateRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Region      string   `json:"region,omitempty"`
	GlassPrice  *float64 `json:"glassPrice,omitempty" validate:"omitempty,gte=0,lte=100000"`
	BottlePrice *float64 `json:"bottlePrice,omitempty" validate:"omitempty,gte=0,lte=100000"`
	ImageURL    string   `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// menuPatchRequest is a partial update; nil fields are left untouched.
type menuPatchRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Region      *string  `json:"region,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0,lte=100000"`
	GlassPrice  *float64 `json:"glassPrice,omitempty" validate:"omitempty,gte=0,lte=100000"`
	BottlePrice *float64 `json:"bottlePrice,omitempty" validate:"omitempty,gte=0,lte=100000"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

type categoryCreateRequest struct {
	Category    string `json:"category" validate:"required,max=100"`
	Subcategory string `json:"subcategory,omitempty" validate:"max=100"`
	Orden       int    `json:"orden"`
}

type eventRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	DateStart    *time.Time `json:"dateStart" validate:"required"`
	DateEnd      *time.Time `json:"dateEnd,omitempty"`
	Timezone     string     `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Description  string     `json:"description" validate:"required"`
	Category     string     `json:"category" validate:"required,max=100"`
	ImageURL     string     `json:"imageUrl" validate:"required"`
	LocationName string     `json:"locationName,omitempty"`
	IsPublished  bool       `json:"isPublished"`
}

func (e eventRequest) toModel() *model.Event {
	return &model.Event{
		Title:        e.Title,
		DateStart:    *e.DateStart,
		DateEnd:      e.DateEnd,
		Timezone:     e.Timezone,
		Description:  e.Description,
		Category:     e.Category,
		ImageURL:     e.ImageURL,
		LocationName: e.LocationName,
		IsPublished:  e.IsPublished,
	}
}

type eventItem struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	DateStart    time.Time  `json:"dateStart"`
	DateEnd      *time.Time `json:"dateEnd"`
	Timezone     string     `json:"timezone"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	ImageURL     string     `json:"imageUrl"`
	LocationName *string    `json:"locationName"`
	IsPublished  bool       `json:"isPublished"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func toEventItem(ev model.Event, withTimestamps bool) eventItem {
	out := eventItem{
		ID:          ids.Encode(ids.Event, ev.ID),
		Title:       ev.Title,
		DateStart:   ev.DateStart,
		DateEnd:     ev.DateEnd,
		Timezone:    ev.Timezone,
		Description: ev.Description,
		Category:    ev.Category,
		ImageURL:    ev.ImageURL,
		IsPublished: ev.IsPublished,
	}
	if ev.LocationName != "" {
		loc := ev.LocationName
		out.LocationName = &loc
	}
	if withTimestamps {
		created, updated := ev.CreatedAt, ev.UpdatedAt
		out.CreatedAt = &created
		out.UpdatedAt = &updated
	}
	return out
}

type eventListResponse struct {
	Items      []eventItem `json:"items"`
	NextCursor *string     `json:"nextCursor"`
}

type contactRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"max=40"`
	Company  string `json:"company,omitempty" validate:"max=200"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Message  string `json:"message" validate:"required,max=5000"`
	Consent  bool   `json:"consent"`
	Source   string `json:"source,omitempty" validate:"max=100"`
	Honeypot string `json:"honeypot,omitempty"`
}

type contactItem struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Company   string     `json:"company,omitempty"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Consent   bool       `json:"consent"`
	Source    string     `json:"source,omitempty"`
	IsRead    bool       `json:"isRead"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toContactItem(c model.ProjectContact) contactItem {
	return contactItem{
		ID:        ids.Encode(ids.Lead, c.ID),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Subject:   c.Subject,
		Message:   c.Message,
		Consent:   c.Consent,
		Source:    c.Source,
		IsRead:    c.IsRead,
		ReadAt:    c.ReadAt,
		CreatedAt: c.CreatedAt,
	}
}

type configItem struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value"`
}
