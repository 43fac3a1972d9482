package model

import "time"

// ScheduleDay is one calendar date of the venue schedule.
type ScheduleDay struct {
	ID        int64           `json:"-"`
	Date      string          `json:"date"` // "2025-06-01"
	Open      bool            `json:"open"`
	Note      *string         `json:"note"`
	Windows   []ServiceWindow `json:"serviceWindows"`
	UpdatedAt time.Time       `json:"-"`
}

// ServiceWindow is a half-open [Start, End) interval of service on a day.
type ServiceWindow struct {
	ID    int64  `json:"-"`
	DayID int64  `json:"-"`
	Start string `json:"start"` // "19:00"
	End   string `json:"end"`   // "23:00"
}
