package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"taberna/internal/apperr"
	"taberna/internal/db"
	"taberna/internal/events"
	"taberna/internal/export"
	"taberna/internal/ids"
	"taberna/internal/model"
	"taberna/internal/money"
	"taberna/internal/slots"
)

var errNotFound = apperr.NotFound("Not found")

// storeErr maps store sentinels to client errors.
func storeErr(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return errNotFound
	}
	return err
}

// GET /admin/config
func (s *Server) handleAdminListConfig(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.ListConfig(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]configItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, configItem{Key: e.Key, Value: e.Value})
	}
	writeJSON(w, http.StatusOK, out)
}

// PUT /admin/config/{key}
func (s *Server) handleAdminSetConfig(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	var req configItem
	if err := decodeJSON(r, &req, true); err != nil {
		fail(w, r, err)
		return
	}
	if req.Key != key {
		writeError(w, http.StatusBadRequest, "Key mismatch")
		return
	}
	if err := s.check(&req); err != nil {
		fail(w, r, err)
		return
	}

	entry, err := s.db.SetConfig(r.Context(), key, req.Value)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.publish(events.ConfigChanged, key)
	writeJSON(w, http.StatusOK, configItem{Key: entry.Key, Value: entry.Value})
}

// POST /admin/menu/food
func (s *Server) handleAdminCreateFood(w http.ResponseWriter, r *http.Request) {
	var req foodCreateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		fail(w, r, err)
		return
	}
	if err := s.check(&req); err != nil {
		fail(w, r, err)
		return
	}

	it := &model.MenuItem{
		Type:        model.MenuFood,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  money.ToCents(req.Price),
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := s.db.CreateMenuItem(r.Context(), it); err != nil {
		fail(w, r, err)
		return
	}
	s.publish(events.MenuChanged, ids.Encode(ids.Food, it.ID))
	writeJSON(w, http.StatusCreated, map[string]string{"id": ids.Encode(ids.Food, it.ID)})
}

// POST /admin/menu/wines
func (s *Server) handleAdminCreateWine(w http.ResponseWriter, r *http.Request) {
	var req wineCreateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		fail(w, r, err)
		return
	}
	if err := s.check(&req); err != nil {
		fail(w, r, err)
		return
	}

	it := &model.MenuItem{
		Type:             model.MenuWine,
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Region:           req.Region,
		GlassPriceCents:  money.ToCents(req.GlassPrice),
		BottlePriceCents: money.ToCents(req.BottlePrice),
		ImageURL:         req.ImageURL,
		IsActive:         true,
	}
	if err := s.db.CreateMenuItem(r.Context(), it); err != nil {
		fail(w, r, err)
		return
	}
	s.publish(events.MenuChanged, ids.Encode(ids.Wine, it.ID))
	writeJSON(w, http.StatusCreated, map[string]string{"id": ids.Encode(ids.Wine, it.ID)})
}

// menuItemRef resolves a food_/wine_ id into a row id and its type.
func menuItemRef(public string) (int64, model.MenuItemType, bool) {
	kind, id, err := ids.Parse(public)
	if err != nil {
		return 0, "", false
	}
	switch kind {
	case ids.Food:
		return id, model.MenuFood, true
	case ids.Wine:
		return id, model.MenuWine, true
	}
	return 0, "", false
}

// handleAdminPatchMenuItem applies a partial update. Wine-only fields are
// rejected for dishes and the dish price for wines.
// PATCH /admin/menu/{id}
func (s *Server) handleAdminPatchMenuItem(w http.ResponseWriter, r *http.Request) {
	public := mux.Vars(r)["id"]
	id, typ, ok := menuItemRef(public)
	if !ok {
		fail(w, r, errNotFound)
		return
	}

	var req menuPatchRequest
	if err := decodeJSON(r, &req, true); err != nil {
		fail(w, r, err)
		return
	}
	if err := s.check(&req); err != nil {
		fail(w, r, err)
		return
	}
	if typ == model.MenuFood && (req.Region != nil || req.GlassPrice != nil || req.BottlePrice != nil) {
		writeError(w, http.StatusBadRequest, "wine fields are not allowed on food items")
		return
	}
	if typ == model.MenuWine && req.Price != nil {
		writeError(w, http.StatusBadRequest, "price is not allowed on wine items")
		return
	}

	it, err := s.db.GetMenuItem(r.Context(), id, typ)
	if err != nil {
		fail(w, r, storeErr(err))
		return
	}
	applyMenuPatch(it, req)
	if err := s.db.UpdateMenuItem(r.Context(), it); err != nil {
		fail(w, r, storeErr(err))
		return
	}
	s.publish(events.MenuChanged, public)

	if typ == model.MenuFood {
		writeJSON(w, http.StatusOK, toFoodItem(*it))
		return
	}
	writeJSON(w, http.StatusOK, toWineItem(*it))
}

func applyMenuPatch(it *model.MenuItem, p menuPatchRequest) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Region != nil {
		it.Region = *p.Region
	}
	if p.Price != nil {
		it.PriceCents = money.ToCents(p.Price)
	}
	if p.GlassPrice != nil {
		it.GlassPriceCents = money.ToCents(p.GlassPrice)
	}
	if p.BottlePrice != nil {
		it.BottlePriceCents = money.ToCents(p.BottlePrice)
	}
	if p.ImageURL != nil {
		it.ImageURL = *p.ImageURL
	}
	if p.IsActive != nil {
		it.IsActive = *p.IsActive
	}
}

// DELETE /admin/menu/{id}
func (s *Server) handleAdminDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	public := mux.Vars(r)["id"]
	id, typ, ok := menuItemRef(public)
	if !ok {
		fail(w, r, errNotFound)
		return
	}
	if err := s.db.DeleteMenuItem(r.Context(), id, typ); err != nil {
		fail(w, r, storeErr(err))
		return
	}
	s.publish(events.MenuChanged, public)
	w.WriteHeader(http.StatusNoContent)
}

// POST /admin/menu/categories
func (s *Server) handleAdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryCreateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		fail(w, r, err)
		return
	}
	if err := s.check(&req); err != nil {
		fail(w, r, err)
		return
	}

	c := &model.MenuCategory{Category: req.Category, Subcategory: req.Subcategory, Order: req.Orden}
	err := s.db.CreateMenuCategory(r.Context(), c)
	if errors.Is(err, db.ErrDuplicate) {
		writeError(w, http.StatusConflict, "Category already exists")
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	s.publish(events.MenuChanged, c.Category)
	writeJSON(w, http.StatusCreated, c)
}

// handleAdminUpsertDay creates or updates a schedule day.
// POST /admin/schedule/day?date=YYYY-MM-DD&open=true&note=...
func (s *Server) handleAdminUpsertDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if !isDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	open := true
	if v := q.Get("open"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid open flag")
			return
		}
		open = b
	}

	day, err := s.db.UpsertScheduleDay(r.Context(), date, open, q.Get("note"))
	if err != nil {
		fail(w, r, err)
		return
	}
	s.publish(events.ScheduleChanged, date)
	writeJSON(w, http.StatusCreated, map[string]any{"date": day.Date, "open": day.Open})
}

// handleAdminAddWindow adds a service window, creating an open day if needed.
// POST /admin/schedule/window?date=YYYY-MM-DD&start=HH:MM&end=HH:MM
func (s *Server) handleAdminAddWindow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, start, end := q.Get("date"), q.Get("start"), q.Get("end")
	if !isDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	startMin, err1 := slots.ParseClock(start)
	endMin, err2 := slots.ParseClock(end)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "invalid time format; expected HH:MM")
		return
	}
	if startMin >= endMin {
		writeError(w, http.StatusBadRequest, "start must be before end")
		return
	}

	id, err := s.db.AddServiceWindow(r.Context(), date, start, end)
	if errors.Is(err, db.ErrDuplicate) {
		writeError(w, http.StatusConflict, "Service window already exists")
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	s.publish(events.ScheduleChanged, date)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// DELETE /admin/schedule/day/{date}
func (s *Server) handleAdminDeleteDay(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if !isDate(date) {
		fail(w, r, errNotFound)
		return
	}
	if err := s.db.DeleteScheduleDay(r.Context(), date); err != nil {
		fail(w, r, storeErr(err))
		return
	}
	s.publish(events.ScheduleChanged, date)
	w.WriteHeader(http.StatusNoContent)
}

// GET /admin/reservations?date&status&limit&offset
func (s *Server) handleAdminListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := db.ReservationFilter{
		Date:   q.Get("date"),
		Status: model.ReservationStatus(q.Get("status")),
	}
	if f.Date != "" && !isDate(f.Date) {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	limit, offset, err := pageParams(q.Get("limit"), q.Get("offset"), 100, 500)
	if err != nil {
		fail(w, r, err)
		return
	}
	f.Limit, f.Offset = limit, offset

	list, err := s.booking.ListReservations(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	items := make([]reservationResponse, 0, len(list))
	for i := range list {
		items = append(items, toReservationResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// POST /admin/reservations/{id}/confirm
func (s *Server) handleAdminConfirmReservation(w http.ResponseWriter, r *http.Request) {
	res, err := s.booking.ConfirmReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

// POST /admin/reservations/{id}/reject
func (s *Server) handleAdminRejectReservation(w http.ResponseWriter, r *http.Request) {
	res, err := s.booking.RejectReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

// handleAdminListEvents lists events newest first.
// GET /admin/events?status=published|draft|all&from&to&category&limit&cursor
func (s *Server) handleAdminListEvents(w http.ResponseWriter, r *http.Request) {
	filter, limit, offset, err := s.parseEventQuery(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	switch r.URL.Query().Get("status") {
	case "", "all":
	case "published":
		v := true
		filter.Published = &v
	case "draft":
		v := false
		filter.Published = &v
	default:
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	filter.Desc = true

	resp, err := s.listEvents(r, filter, limit, offset, true)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /admin/events
func (s *Server) handleAdminCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req, true); err != nil {
		fail(w, r, err)
		return
	}
	if err := s.checkEvent(&req); err != nil {
		fail(w, r, err)
		return
	}

	ev := req.toModel()
	if err := s.db.CreateEvent(r.Context(), ev); err != nil {
		fail(w, r, err)
		return
	}
	s.publish(events.EventsChanged, ids.Encode(ids.Event, ev.ID))
	writeJSON(w, http.StatusCreated, map[string]string{"id": ids.Encode(ids.Event, ev.ID)})
}

// PUT /admin/events/{id}
func (s *Server) handleAdminUpdateEvent(w http.ResponseWriter, r *http.Request) {
	public := mux.Vars(r)["id"]
	id, err := ids.Decode(ids.Event, public)
	if err != nil {
		fail(w, r, errNotFound)
		return
	}
	var req eventRequest
	if err := decodeJSON(r, &req, true); err != nil {
		fail(w, r, err)
		return
	}
	if err := s.checkEvent(&req); err != nil {
		fail(w, r, err)
		return
	}

	ev := req.toModel()
	ev.ID = id
	if err := s.db.UpdateEvent(r.Context(), ev); err != nil {
		fail(w, r, storeErr(err))
		return
	}
	s.publish(events.EventsChanged, public)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) checkEvent(req *eventRequest) error {
	if err := s.check(req); err != nil {
		return err
	}
	if req.DateEnd != nil && req.DateEnd.Before(*req.DateStart) {
		return apperr.Validation("dateEnd must not be before dateStart")
	}
	return nil
}

// POST /admin/events/{id}/publish and /unpublish
func (s *Server) handleAdminPublishEvent(published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		public := mux.Vars(r)["id"]
		id, err := ids.Decode(ids.Event, public)
		if err != nil {
			fail(w, r, errNotFound)
			return
		}
		if err := s.db.SetEventPublished(r.Context(), id, published); err != nil {
			fail(w, r, storeErr(err))
			return
		}
		s.publish(events.EventsChanged, public)
		writeJSON(w, http.StatusOK, map[string]any{"id": public, "isPublished": published})
	}
}

// DELETE /admin/events/{id}
func (s *Server) handleAdminDeleteEvent(w http.ResponseWriter, r *http.Request) {
	public := mux.Vars(r)["id"]
	id, err := ids.Decode(ids.Event, public)
	if err != nil {
		fail(w, r, errNotFound)
		return
	}
	if err := s.db.DeleteEvent(r.Context(), id); err != nil {
		fail(w, r, storeErr(err))
		return
	}
	s.publish(events.EventsChanged, public)
	w.WriteHeader(http.StatusNoContent)
}

// GET /admin/contacts/projects?limit&offset
func (s *Server) handleAdminListContacts(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"), 100, 500)
	if err != nil {
		fail(w, r, err)
		return
	}
	list, err := s.db.ListContacts(r.Context(), limit, offset)
	if err != nil {
		fail(w, r, err)
		return
	}
	items := make([]contactItem, 0, len(list))
	for _, c := range list {
		items = append(items, toContactItem(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GET /admin/contacts/projects/stats
func (s *Server) handleAdminContactStats(w http.ResponseWriter, r *http.Request) {
	total, unread, err := s.db.ContactStats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": total, "unread": unread})
}

// POST /admin/contacts/projects/{id}/read
func (s *Server) handleAdminMarkContactRead(w http.ResponseWriter, r *http.Request) {
	public := mux.Vars(r)["id"]
	id, err := ids.Decode(ids.Lead, public)
	if err != nil {
		fail(w, r, errNotFound)
		return
	}
	if err := s.db.MarkContactRead(r.Context(), id); err != nil {
		fail(w, r, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": public, "isRead": true})
}

// handleAdminExport streams every table as an XLSX workbook.
// GET /admin/export
func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.Tables(r.Context(), s.db, &buf); err != nil {
		fail(w, r, err)
		return
	}
	name := export.Filename(time.Now())
	hlog.FromRequest(r).Info().Str("file", name).Int("bytes", buf.Len()).Msg("export generated")

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// pageParams parses limit/offset with a default and an upper bound.
func pageParams(limitStr, offsetStr string, def, maxLimit int) (int, int, error) {
	limit := def
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > maxLimit {
			return 0, 0, apperr.Validation("Invalid limit")
		}
		limit = n
	}
	offset := 0
	if offsetStr != "" {
		n, err := strconv.Atoi(offsetStr)
		if err != nil || n < 0 {
			return 0, 0, apperr.Validation("Invalid offset")
		}
		offset = n
	}
	return limit, offset, nil
}
