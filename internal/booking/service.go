// Package booking implements reservation availability and admission.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"taberna/internal/apperr"
	"taberna/internal/db"
	"taberna/internal/ids"
	"taberna/internal/metrics"
	"taberna/internal/model"
	"taberna/internal/slots"
)

// ReasonFull marks a slot that reached capacity.
const ReasonFull = "FULL"

// Admission failure messages returned to clients.
const (
	MsgDateUnavailable = "Date is not available"
	MsgOutsideHours    = "Time is not within service hours"
	MsgSlotFull        = "Slot is full"
	MsgNotCancellable  = "Reservation cannot be cancelled"
	MsgNotFound        = "Not found"
)

// Store is the persistence the booking service needs.
type Store interface {
	GetScheduleDay(ctx context.Context, date string) (*model.ScheduleDay, error)
	CountActiveByTime(ctx context.Context, date string) (map[string]int, error)
	CreateReservationIfBelow(ctx context.Context, r *model.Reservation, capacity int) error
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, from []model.ReservationStatus, to model.ReservationStatus) (*model.Reservation, error)
	ListReservations(ctx context.Context, f db.ReservationFilter) ([]model.Reservation, error)
}

// CapacityFunc returns the current per-slot capacity.
type CapacityFunc func() int

// Slot is one bookable time on a date.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Availability is the slot list for a date.
type Availability struct {
	Date      string `json:"date"`
	PartySize int    `json:"partySize"`
	Slots     []Slot `json:"slots"`
}

// Service validates and admits reservations.
type Service struct {
	store    Store
	capacity CapacityFunc
	step     int
	logger   zerolog.Logger
}

// NewService creates a booking service. step is the slot granularity in
// minutes; zero uses slots.DefaultStep.
func NewService(store Store, capacity CapacityFunc, step int, logger zerolog.Logger) *Service {
	if step <= 0 {
		step = slots.DefaultStep
	}
	return &Service{
		store:    store,
		capacity: capacity,
		step:     step,
		logger:   logger.With().Str("component", "booking").Logger(),
	}
}

// Availability lists the slots of date with their availability. A missing
// or closed day yields an empty list. The snapshot is read without locks and
// may be stale by the time a reservation is attempted.
func (s *Service) Availability(ctx context.Context, date string, partySize int) (*Availability, error) {
	metrics.IncAvailabilityQuery()
	out := &Availability{Date: date, PartySize: partySize, Slots: []Slot{}}

	day, err := s.store.GetScheduleDay(ctx, date)
	if errors.Is(err, db.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load schedule day: %w", err)
	}
	if !day.Open {
		return out, nil
	}

	times, err := slots.Generate(day.Windows, s.step)
	if err != nil {
		return nil, fmt.Errorf("generate slots for %s: %w", date, err)
	}
	if len(times) == 0 {
		return out, nil
	}

	counts, err := s.store.CountActiveByTime(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}

	capacity := s.capacity()
	for _, t := range times {
		slot := Slot{Time: t, Available: counts[t] < capacity}
		if !slot.Available {
			slot.Reason = ReasonFull
		}
		out.Slots = append(out.Slots, slot)
	}
	return out, nil
}

// CreateReservation admits r as PENDING or fails with a validation error
// (date unavailable, time outside service hours) or a conflict (slot full).
// The capacity check and the insert run in one store transaction.
func (s *Service) CreateReservation(ctx context.Context, r *model.Reservation) error {
	day, err := s.store.GetScheduleDay(ctx, r.Date)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !day.Open) {
		metrics.IncReservationAttempt(metrics.OutcomeDateUnavailable)
		return apperr.Validation(MsgDateUnavailable)
	}
	if err != nil {
		metrics.IncReservationAttempt(metrics.OutcomeError)
		return fmt.Errorf("load schedule day: %w", err)
	}

	within, err := slots.WithinWindows(day.Windows, r.Time)
	if err != nil {
		metrics.IncReservationAttempt(metrics.OutcomeError)
		return fmt.Errorf("check service windows: %w", err)
	}
	if !within {
		metrics.IncReservationAttempt(metrics.OutcomeOutsideHours)
		return apperr.Validation(MsgOutsideHours)
	}

	capacity := s.capacity()
	if err := s.store.CreateReservationIfBelow(ctx, r, capacity); err != nil {
		if errors.Is(err, db.ErrSlotFull) {
			metrics.IncReservationAttempt(metrics.OutcomeFull)
			s.logger.Info().Str("date", r.Date).Str("time", r.Time).Int("capacity", capacity).Msg("slot full")
			return apperr.Wrap(apperr.KindConflict, MsgSlotFull, err)
		}
		metrics.IncReservationAttempt(metrics.OutcomeError)
		return fmt.Errorf("create reservation: %w", err)
	}

	metrics.IncReservationAttempt(metrics.OutcomeCreated)
	s.logger.Info().
		Str("id", ids.Encode(ids.Reservation, r.ID)).
		Str("date", r.Date).
		Str("time", r.Time).
		Int("party_size", r.PartySize).
		Msg("reservation created")
	return nil
}

// GetReservation resolves a public resv_ id.
func (s *Service) GetReservation(ctx context.Context, publicID string) (*model.Reservation, error) {
	id, err := ids.Decode(ids.Reservation, publicID)
	if err != nil {
		return nil, apperr.NotFound(MsgNotFound)
	}
	r, err := s.store.GetReservation(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(MsgNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return r, nil
}

// CancelReservation moves an active reservation to CANCELLED. Cancelling a
// terminal reservation is a conflict, never a silent success.
func (s *Service) CancelReservation(ctx context.Context, publicID, reason string) (*model.Reservation, error) {
	r, err := s.transition(ctx, publicID, model.ActiveStatuses, model.StatusCancelled, MsgNotCancellable)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("id", publicID).Str("reason", reason).Msg("reservation cancelled")
	return r, nil
}

// ConfirmReservation moves a PENDING reservation to CONFIRMED.
func (s *Service) ConfirmReservation(ctx context.Context, publicID string) (*model.Reservation, error) {
	return s.transition(ctx, publicID,
		[]model.ReservationStatus{model.StatusPending}, model.StatusConfirmed,
		"Reservation cannot be confirmed")
}

// RejectReservation moves an active reservation to REJECTED.
func (s *Service) RejectReservation(ctx context.Context, publicID string) (*model.Reservation, error) {
	return s.transition(ctx, publicID, model.ActiveStatuses, model.StatusRejected,
		"Reservation cannot be rejected")
}

// ListReservations returns reservations for the admin listing.
func (s *Service) ListReservations(ctx context.Context, f db.ReservationFilter) ([]model.Reservation, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("Invalid status")
	}
	list, err := s.store.ListReservations(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return list, nil
}

func (s *Service) transition(
	ctx context.Context,
	publicID string,
	from []model.ReservationStatus,
	to model.ReservationStatus,
	conflictMsg string,
) (*model.Reservation, error) {
	id, err := ids.Decode(ids.Reservation, publicID)
	if err != nil {
		return nil, apperr.NotFound(MsgNotFound)
	}

	r, err := s.store.UpdateReservationStatus(ctx, id, from, to)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return nil, apperr.NotFound(MsgNotFound)
	case errors.Is(err, db.ErrInvalidTransition):
		return nil, apperr.Wrap(apperr.KindConflict, conflictMsg, err)
	case err != nil:
		return nil, fmt.Errorf("update reservation %s: %w", publicID, err)
	}

	metrics.IncReservationTransition(string(to))
	return r, nil
}
