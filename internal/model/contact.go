package model

import "time"

// ProjectContact is a lead submitted through the projects contact form.
type ProjectContact struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Company   string     `json:"company,omitempty"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Consent   bool       `json:"consent"`
	Source    string     `json:"source,omitempty"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ConfigEntry is a runtime key/value setting editable by admins.
type ConfigEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known config keys seeded on startup.
const (
	ConfigReservationsActive = "reserva-activa"
	ConfigContactPhone       = "telefono-contacto"
	ConfigContactMail        = "mail-contacto"
)
