package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"taberna/internal/apperr"
	"taberna/internal/booking"
	"taberna/internal/cache"
	"taberna/internal/db"
	"taberna/internal/ids"
	"taberna/internal/metrics"
	"taberna/internal/model"
)

const maxMessageLength = 5000

type scheduleResponse struct {
	Timezone string              `json:"timezone"`
	Days     []model.ScheduleDay `json:"days"`
}

// handleSchedule lists schedule days.
// GET /api/v1/schedule?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if (from != "" && !isDate(from)) || (to != "" && !isDate(to)) {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	key := cache.PrefixSchedule + from + ":" + to
	var resp scheduleResponse
	if s.cache.Get(r.Context(), key, &resp) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	days, err := s.db.ListScheduleDays(r.Context(), from, to)
	if err != nil {
		fail(w, r, err)
		return
	}
	if days == nil {
		days = []model.ScheduleDay{}
	}
	resp = scheduleResponse{Timezone: s.location.String(), Days: days}
	s.cache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}

type availabilityResponse struct {
	*booking.Availability
	Timezone string `json:"timezone"`
}

// handleAvailability lists the slots of a date.
// GET /api/v1/availability?date=YYYY-MM-DD&partySize=N
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !isDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	partySize, err := strconv.Atoi(r.URL.Query().Get("partySize"))
	if err != nil || partySize < 1 || partySize > 50 {
		writeError(w, http.StatusBadRequest, "partySize must be between 1 and 50")
		return
	}

	avail, err := s.booking.Availability(r.Context(), date, partySize)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Availability: avail, Timezone: s.location.String()})
}

// handleCreateReservation books a slot.
// POST /api/v1/reservations
func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := decodeJSON(r, &req, true); err != nil {
		fail(w, r, err)
		return
	}
	if err := s.check(&req); err != nil {
		fail(w, r, err)
		return
	}

	res := &model.Reservation{
		Date:          req.Date,
		Time:          req.Time,
		PartySize:     req.PartySize,
		CustomerName:  req.Customer.Name,
		CustomerPhone: req.Customer.Phone,
		CustomerEmail: req.Customer.Email,
		Notes:         req.Notes,
	}
	if err := s.booking.CreateReservation(r.Context(), res); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

// GET /api/v1/reservations/{id}
func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := s.booking.GetReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

// handleCancelReservation cancels an active reservation. The body is optional.
// POST /api/v1/reservations/{id}/cancel
func (s *Server) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req, true); err != nil && !isEmptyBody(err) {
			fail(w, r, err)
			return
		}
	}

	res, err := s.booking.CancelReservation(r.Context(), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

func isEmptyBody(err error) bool {
	return apperr.Is(err, apperr.KindValidation) && apperr.Message(err) == "request body is required"
}

// GET /api/v1/menu
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	key := cache.PrefixMenu + "all"
	var resp menuResponse
	if s.cache.Get(r.Context(), key, &resp) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	items, err := s.db.ListActiveMenuItems(r.Context(), "")
	if err != nil {
		fail(w, r, err)
		return
	}

	resp = menuResponse{
		ID:        "menu_current",
		UpdatedAt: time.Now().UTC(),
		Currency:  "EUR",
		Food:      []foodItem{},
		Wines:     []wineItem{},
	}
	for _, it := range items {
		if it.UpdatedAt.After(resp.UpdatedAt) {
			resp.UpdatedAt = it.UpdatedAt
		}
		if it.Type == model.MenuFood {
			resp.Food = append(resp.Food, toFoodItem(it))
		} else {
			resp.Wines = append(resp.Wines, toWineItem(it))
		}
	}
	s.cache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/v1/menu/food
func (s *Server) handleMenuFood(w http.ResponseWriter, r *http.Request) {
	key := cache.PrefixMenu + "food"
	out := []foodItem{}
	if s.cache.Get(r.Context(), key, &out) {
		writeJSON(w, http.StatusOK, out)
		return
	}
	items, err := s.db.ListActiveMenuItems(r.Context(), model.MenuFood)
	if err != nil {
		fail(w, r, err)
		return
	}
	for _, it := range items {
		out = append(out, toFoodItem(it))
	}
	s.cache.Set(r.Context(), key, out)
	writeJSON(w, http.StatusOK, out)
}

// GET /api/v1/menu/wines
func (s *Server) handleMenuWines(w http.ResponseWriter, r *http.Request) {
	key := cache.PrefixMenu + "wines"
	out := []wineItem{}
	if s.cache.Get(r.Context(), key, &out) {
		writeJSON(w, http.StatusOK, out)
		return
	}
	items, err := s.db.ListActiveMenuItems(r.Context(), model.MenuWine)
	if err != nil {
		fail(w, r, err)
		return
	}
	for _, it := range items {
		out = append(out, toWineItem(it))
	}
	s.cache.Set(r.Context(), key, out)
	writeJSON(w, http.StatusOK, out)
}

// handleMenuCategories returns categories as a tree: rows without a
// subcategory are roots, the rest hang under their category.
// GET /api/v1/menu/categories
func (s *Server) handleMenuCategories(w http.ResponseWriter, r *http.Request) {
	key := cache.PrefixMenu + "categories"
	var tree []categoryNode
	if s.cache.Get(r.Context(), key, &tree) {
		writeJSON(w, http.StatusOK, tree)
		return
	}
	cats, err := s.db.ListMenuCategories(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	tree = buildCategoryTree(cats)
	s.cache.Set(r.Context(), key, tree)
	writeJSON(w, http.StatusOK, tree)
}

func buildCategoryTree(cats []model.MenuCategory) []categoryNode {
	roots := []categoryNode{}
	index := make(map[string]int)
	for _, c := range cats {
		if c.Subcategory != "" {
			continue
		}
		index[c.Category] = len(roots)
		roots = append(roots, categoryNode{Category: c.Category, Orden: c.Order, Children: []categoryNode{}})
	}
	for _, c := range cats {
		if c.Subcategory == "" {
			continue
		}
		i, ok := index[c.Category]
		if !ok {
			// Subcategory without an explicit parent row gets an implicit root.
			i = len(roots)
			index[c.Category] = i
			roots = append(roots, categoryNode{Category: c.Category, Orden: c.Order, Children: []categoryNode{}})
		}
		roots[i].Children = append(roots[i].Children, categoryNode{
			Category:    c.Category,
			Subcategory: c.Subcategory,
			Orden:       c.Order,
			Children:    []categoryNode{},
		})
	}
	sort.SliceStable(roots, func(a, b int) bool { return roots[a].Orden < roots[b].Orden })
	return roots
}

// handlePublicEvents lists published events in ascending start order.
// GET /api/v1/events?from&to&category&limit&cursor
func (s *Server) handlePublicEvents(w http.ResponseWriter, r *http.Request) {
	published := true
	filter, limit, offset, err := s.parseEventQuery(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	filter.Published = &published

	key := cache.PrefixEvents + "public:" + r.URL.RawQuery
	var resp eventListResponse
	if s.cache.Get(r.Context(), key, &resp) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp, err = s.listEvents(r, filter, limit, offset, false)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.cache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/v1/events/{id}
func (s *Server) handlePublicEvent(w http.ResponseWriter, r *http.Request) {
	id, err := ids.Decode(ids.Event, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	ev, err := s.db.GetEvent(r.Context(), id, true)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventItem(*ev, true))
}

// parseEventQuery reads the shared event listing parameters. Dates are
// whole days in the venue timezone; "to" is inclusive.
func (s *Server) parseEventQuery(r *http.Request) (model.EventFilter, int, int, error) {
	q := r.URL.Query()
	var f model.EventFilter
	f.Category = q.Get("category")

	limit := 20
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return f, 0, 0, apperr.Validation("Invalid limit")
		}
		limit = n
	}

	offset := 0
	if v := q.Get("cursor"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, 0, 0, apperr.Validation("Invalid cursor")
		}
		offset = n
	}

	if v := q.Get("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, s.location)
		if err != nil {
			return f, 0, 0, apperr.Validation("Invalid from")
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, s.location)
		if err != nil {
			return f, 0, 0, apperr.Validation("Invalid to")
		}
		t = t.AddDate(0, 0, 1)
		f.To = &t
	}
	return f, limit, offset, nil
}

// listEvents fetches one page plus a lookahead row to decide nextCursor.
func (s *Server) listEvents(r *http.Request, f model.EventFilter, limit, offset int, admin bool) (eventListResponse, error) {
	f.Limit = limit + 1
	f.Offset = offset
	rows, err := s.db.ListEvents(r.Context(), f)
	if err != nil {
		return eventListResponse{}, err
	}

	resp := eventListResponse{Items: []eventItem{}}
	if len(rows) > limit {
		rows = rows[:limit]
		next := strconv.Itoa(offset + limit)
		resp.NextCursor = &next
	}
	for _, ev := range rows {
		resp.Items = append(resp.Items, toEventItem(ev, admin))
	}
	return resp, nil
}

// handleCreateContact stores a project lead.
// POST /api/v1/contacts/projects
func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req, false); err != nil {
		fail(w, r, err)
		return
	}
	if req.Honeypot != "" {
		hlog.FromRequest(r).Warn().Str("ip", clientIP(r)).Msg("contact honeypot triggered")
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.check(&req); err != nil {
		fail(w, r, err)
		return
	}

	lead := &model.ProjectContact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Subject: req.Subject,
		Message: req.Message,
		Consent: req.Consent,
		Source:  req.Source,
	}
	if err := s.db.CreateContact(r.Context(), lead); err != nil {
		fail(w, r, err)
		return
	}
	metrics.IncContactReceived()
	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     ids.Encode(ids.Lead, lead.ID),
		"status": "RECEIVED",
	})
}

type publicConfigResponse struct {
	Environment string          `json:"environment"`
	Timezone    string          `json:"timezone"`
	Features    map[string]bool `json:"features"`
	Limits      map[string]int  `json:"limits"`
	Contact     struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"contact"`
}

// GET /api/v1/config
func (s *Server) handlePublicConfig(w http.ResponseWriter, r *http.Request) {
	key := cache.PrefixConfig + "public"
	var resp publicConfigResponse
	if s.cache.Get(r.Context(), key, &resp) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	entries, err := s.db.ListConfig(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}

	resp.Environment = s.opts.Environment
	resp.Timezone = s.location.String()
	resp.Features = map[string]bool{
		"reservationsEnabled":    values[model.ConfigReservationsActive] == "true",
		"menuEnabled":            true,
		"projectsContactEnabled": true,
	}
	resp.Limits = map[string]int{"maxMessageLength": maxMessageLength}
	resp.Contact.Phone = values[model.ConfigContactPhone]
	resp.Contact.Email = values[model.ConfigContactMail]

	s.cache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}
