// Package api exposes the public and admin HTTP surfaces.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"taberna/internal/booking"
	"taberna/internal/cache"
	"taberna/internal/db"
	"taberna/internal/events"
)

// Options configures the HTTP layer.
type Options struct {
	Timezone          string
	Environment       string
	CORSOrigins       []string
	AdminUser         string
	AdminPassword     string
	AdminPasswordHash string
	RateRPS           float64
	RateBurst         int
}

// Server serves the venue API.
type Server struct {
	db       *db.DB
	booking  *booking.Service
	cache    *cache.Cache
	bus      *events.Bus
	opts     Options
	location *time.Location
	limiter  *ipLimiter
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewServer(
	database *db.DB,
	bookings *booking.Service,
	c *cache.Cache,
	bus *events.Bus,
	opts Options,
	logger zerolog.Logger,
) *Server {
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil || opts.Timezone == "" {
		loc = time.UTC
	}
	s := &Server{
		db:       database,
		booking:  bookings,
		cache:    c,
		bus:      bus,
		opts:     opts,
		location: loc,
		validate: newValidator(),
		logger:   logger.With().Str("component", "api").Logger(),
	}
	if opts.RateRPS > 0 {
		s.limiter = newIPLimiter(opts.RateRPS, opts.RateBurst)
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.Use(instrument)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)

	pub := r.PathPrefix("/api/v1").Subrouter()
	pub.HandleFunc("/schedule", s.handleSchedule).Methods(http.MethodGet)
	pub.HandleFunc("/availability", s.handleAvailability).Methods(http.MethodGet)
	pub.HandleFunc("/reservations", s.limit(s.handleCreateReservation)).Methods(http.MethodPost)
	pub.HandleFunc("/reservations/{id}", s.handleGetReservation).Methods(http.MethodGet)
	pub.HandleFunc("/reservations/{id}/cancel", s.limit(s.handleCancelReservation)).Methods(http.MethodPost)
	pub.HandleFunc("/menu", s.handleMenu).Methods(http.MethodGet)
	pub.HandleFunc("/menu/food", s.handleMenuFood).Methods(http.MethodGet)
	pub.HandleFunc("/menu/wines", s.handleMenuWines).Methods(http.MethodGet)
	pub.HandleFunc("/menu/categories", s.handleMenuCategories).Methods(http.MethodGet)
	pub.HandleFunc("/events", s.handlePublicEvents).Methods(http.MethodGet)
	pub.HandleFunc("/events/{id}", s.handlePublicEvent).Methods(http.MethodGet)
	pub.HandleFunc("/contacts/projects", s.limit(s.handleCreateContact)).Methods(http.MethodPost)
	pub.HandleFunc("/config", s.handlePublicConfig).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(s.basicAuth)
	admin.HandleFunc("/config", s.handleAdminListConfig).Methods(http.MethodGet)
	admin.HandleFunc("/config/{key}", s.handleAdminSetConfig).Methods(http.MethodPut)
	admin.HandleFunc("/menu/food", s.handleAdminCreateFood).Methods(http.MethodPost)
	admin.HandleFunc("/menu/wines", s.handleAdminCreateWine).Methods(http.MethodPost)
	admin.HandleFunc("/menu/categories", s.handleAdminCreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/menu/{id}", s.handleAdminPatchMenuItem).Methods(http.MethodPatch)
	admin.HandleFunc("/menu/{id}", s.handleAdminDeleteMenuItem).Methods(http.MethodDelete)
	admin.HandleFunc("/schedule/day", s.handleAdminUpsertDay).Methods(http.MethodPost)
	admin.HandleFunc("/schedule/day/{date}", s.handleAdminDeleteDay).Methods(http.MethodDelete)
	admin.HandleFunc("/schedule/window", s.handleAdminAddWindow).Methods(http.MethodPost)
	admin.HandleFunc("/reservations", s.handleAdminListReservations).Methods(http.MethodGet)
	admin.HandleFunc("/reservations/{id}/confirm", s.handleAdminConfirmReservation).Methods(http.MethodPost)
	admin.HandleFunc("/reservations/{id}/reject", s.handleAdminRejectReservation).Methods(http.MethodPost)
	admin.HandleFunc("/events", s.handleAdminListEvents).Methods(http.MethodGet)
	admin.HandleFunc("/events", s.handleAdminCreateEvent).Methods(http.MethodPost)
	admin.HandleFunc("/events/{id}", s.handleAdminUpdateEvent).Methods(http.MethodPut)
	admin.HandleFunc("/events/{id}", s.handleAdminDeleteEvent).Methods(http.MethodDelete)
	admin.HandleFunc("/events/{id}/publish", s.handleAdminPublishEvent(true)).Methods(http.MethodPost)
	admin.HandleFunc("/events/{id}/unpublish", s.handleAdminPublishEvent(false)).Methods(http.MethodPost)
	admin.HandleFunc("/contacts/projects", s.handleAdminListContacts).Methods(http.MethodGet)
	admin.HandleFunc("/contacts/projects/stats", s.handleAdminContactStats).Methods(http.MethodGet)
	admin.HandleFunc("/contacts/projects/{id}/read", s.handleAdminMarkContactRead).Methods(http.MethodPost)
	admin.HandleFunc("/export", s.handleAdminExport).Methods(http.MethodGet)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	var h http.Handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(r)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: s.logger}),
		handlers.PrintRecoveryStack(true),
	)(h)
	h = accessLog(h)
	h = requestID(h)
	h = hlog.NewHandler(s.logger)(h)
	return h
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "db not ready")
		return
	}
	if err := s.cache.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "redis not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// publish reports an admin write so cached responses are dropped.
func (s *Server) publish(eventType, key string) {
	s.bus.Publish(eventType, key)
}
