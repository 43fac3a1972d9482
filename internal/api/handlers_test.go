package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reservationBody(date, at string) map[string]any {
	return map[string]any{
		"date":      date,
		"time":      at,
		"partySize": 2,
		"customer":  map[string]string{"name": "Ana", "email": "ana@example.com"},
	}
}

func TestReservationFlow(t *testing.T) {
	env := newTestEnv(t, 2, Options{})

	rec := env.do(t, http.MethodPost, "/admin/schedule/window?date=2026-05-01&start=13:00&end=15:00", nil, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created reservationResponse
	rec = env.do(t, http.MethodPost, "/api/v1/reservations", reservationBody("2026-05-01", "13:30"), false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeBody(t, rec, &created)
	assert.True(t, strings.HasPrefix(created.ID, "resv_"))
	assert.Equal(t, "PENDING", created.Status)
	assert.Equal(t, "Ana", created.Customer.Name)

	rec = env.do(t, http.MethodPost, "/api/v1/reservations", reservationBody("2026-05-01", "13:30"), false)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/reservations", reservationBody("2026-05-01", "13:30"), false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Slot is full", errorOf(t, rec))

	var avail struct {
		Date      string `json:"date"`
		PartySize int    `json:"partySize"`
		Timezone  string `json:"timezone"`
		Slots     []struct {
			Time      string `json:"time"`
			Available bool   `json:"available"`
			Reason    string `json:"reason"`
		} `json:"slots"`
	}
	rec = env.do(t, http.MethodGet, "/api/v1/availability?date=2026-05-01&partySize=4", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &avail)
	assert.Equal(t, 4, avail.PartySize)
	assert.Equal(t, "Europe/Madrid", avail.Timezone)
	require.Len(t, avail.Slots, 4)
	assert.Equal(t, "13:30", avail.Slots[1].Time)
	assert.False(t, avail.Slots[1].Available)
	assert.Equal(t, "FULL", avail.Slots[1].Reason)
	assert.True(t, avail.Slots[0].Available)

	rec = env.do(t, http.MethodGet, "/api/v1/reservations/"+created.ID, nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/reservations/"+created.ID+"/cancel", map[string]string{"reason": "plans changed"}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled reservationResponse
	decodeBody(t, rec, &cancelled)
	assert.Equal(t, "CANCELLED", cancelled.Status)

	rec = env.do(t, http.MethodPost, "/api/v1/reservations/"+created.ID+"/cancel", nil, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Reservation cannot be cancelled", errorOf(t, rec))

	// the freed seat can be taken again
	rec = env.do(t, http.MethodPost, "/api/v1/reservations", reservationBody("2026-05-01", "13:30"), false)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateReservationRejections(t *testing.T) {
	env := newTestEnv(t, 5, Options{})
	env.do(t, http.MethodPost, "/admin/schedule/window?date=2026-05-01&start=13:00&end=15:00", nil, true)
	env.do(t, http.MethodPost, "/admin/schedule/day?date=2026-05-02&open=false", nil, true)

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"unknown date", reservationBody("2026-06-01", "13:00"), http.StatusBadRequest, "Date is not available"},
		{"closed date", reservationBody("2026-05-02", "13:00"), http.StatusBadRequest, "Date is not available"},
		{"outside hours", reservationBody("2026-05-01", "15:00"), http.StatusBadRequest, "Time is not within service hours"},
		{"bad date format", reservationBody("01/05/2026", "13:00"), http.StatusBadRequest, "invalid date"},
		{"bad time format", reservationBody("2026-05-01", "1pm"), http.StatusBadRequest, "invalid time"},
		{"unknown field", `{"date":"2026-05-01","time":"13:00","partySize":2,"customer":{"name":"x"},"vip":true}`, http.StatusBadRequest, `unknown field "vip"`},
		{"party too large", map[string]any{"date": "2026-05-01", "time": "13:00", "partySize": 51, "customer": map[string]string{"name": "x"}}, http.StatusBadRequest, "invalid partySize"},
		{"missing name", map[string]any{"date": "2026-05-01", "time": "13:00", "partySize": 2, "customer": map[string]string{"email": "a@example.com"}}, http.StatusBadRequest, "customer.name is required"},
		{"empty body", "", http.StatusBadRequest, "request body is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/reservations", tt.body, false)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorOf(t, rec))
		})
	}
}

func TestReservationIDs(t *testing.T) {
	env := newTestEnv(t, 5, Options{})

	for _, id := range []string{"resv_999", "evt_1", "resv_abc", "12", "resv_0"} {
		rec := env.do(t, http.MethodGet, "/api/v1/reservations/"+id, nil, false)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		rec = env.do(t, http.MethodPost, "/api/v1/reservations/"+id+"/cancel", nil, false)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestAdminReservationTransitions(t *testing.T) {
	env := newTestEnv(t, 5, Options{})
	env.do(t, http.MethodPost, "/admin/schedule/window?date=2026-05-01&start=20:00&end=22:00", nil, true)

	var a, b reservationResponse
	decodeBody(t, env.do(t, http.MethodPost, "/api/v1/reservations", reservationBody("2026-05-01", "20:00"), false), &a)
	decodeBody(t, env.do(t, http.MethodPost, "/api/v1/reservations", reservationBody("2026-05-01", "21:00"), false), &b)

	rec := env.do(t, http.MethodPost, "/admin/reservations/"+a.ID+"/confirm", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/admin/reservations/"+a.ID+"/confirm", nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/reservations/"+b.ID+"/reject", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v1/reservations/"+b.ID+"/cancel", nil, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var list struct {
		Items []reservationResponse `json:"items"`
	}
	rec = env.do(t, http.MethodGet, "/admin/reservations?date=2026-05-01&status=CONFIRMED", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a.ID, list.Items[0].ID)

	rec = env.do(t, http.MethodGet, "/admin/reservations?status=LOST", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodGet, "/admin/reservations?limit=0", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleAdmin(t *testing.T) {
	env := newTestEnv(t, 5, Options{})

	rec := env.do(t, http.MethodPost, "/admin/schedule/day?date=2026-05-01&note=Feria", nil, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		query string
		want  int
	}{
		{"date=2026-05-01&start=13:00&end=16:00", http.StatusCreated},
		{"date=2026-05-01&start=13:00&end=16:00", http.StatusConflict},
		{"date=2026-05-01&start=16:00&end=13:00", http.StatusBadRequest},
		{"date=2026-05-01&start=13:00&end=13:00", http.StatusBadRequest},
		{"date=2026-05-01&start=25:00&end=26:00", http.StatusBadRequest},
		{"date=may&start=13:00&end=16:00", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := env.do(t, http.MethodPost, "/admin/schedule/window?"+tt.query, nil, true)
		assert.Equal(t, tt.want, rec.Code, tt.query)
	}

	var sched scheduleResponse
	rec = env.do(t, http.MethodGet, "/api/v1/schedule?from=2026-05-01&to=2026-05-31", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &sched)
	assert.Equal(t, "Europe/Madrid", sched.Timezone)
	require.Len(t, sched.Days, 1)
	require.NotNil(t, sched.Days[0].Note)
	assert.Equal(t, "Feria", *sched.Days[0].Note)
	assert.Len(t, sched.Days[0].Windows, 1)

	rec = env.do(t, http.MethodGet, "/api/v1/schedule?from=bad", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/admin/schedule/day/2026-05-01", nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodDelete, "/admin/schedule/day/2026-05-01", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMenuAdminAndPublic(t *testing.T) {
	env := newTestEnv(t, 5, Options{})

	var food, wine map[string]string
	rec := env.do(t, http.MethodPost, "/admin/menu/food", map[string]any{"name": "Salmorejo", "category": "Entrantes", "price": 7.5}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeBody(t, rec, &food)
	assert.True(t, strings.HasPrefix(food["id"], "food_"))

	rec = env.do(t, http.MethodPost, "/admin/menu/wines", map[string]any{"name": "Fino", "region": "Jerez", "glassPrice": 3.2, "bottlePrice": 18}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeBody(t, rec, &wine)
	assert.True(t, strings.HasPrefix(wine["id"], "wine_"))

	var menu menuResponse
	rec = env.do(t, http.MethodGet, "/api/v1/menu", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &menu)
	assert.Equal(t, "menu_current", menu.ID)
	assert.Equal(t, "EUR", menu.Currency)
	require.Len(t, menu.Food, 1)
	require.Len(t, menu.Wines, 1)
	require.NotNil(t, menu.Food[0].Price)
	assert.InDelta(t, 7.5, *menu.Food[0].Price, 0.001)
	assert.InDelta(t, 3.2, *menu.Wines[0].GlassPrice, 0.001)

	// wine-only fields are refused on dishes
	rec = env.do(t, http.MethodPatch, "/admin/menu/"+food["id"], map[string]any{"region": "Rioja"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodPatch, "/admin/menu/"+food["id"], map[string]any{"colour": "red"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/admin/menu/"+food["id"], map[string]any{"price": 8.25}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var patched foodItem
	decodeBody(t, rec, &patched)
	assert.InDelta(t, 8.25, *patched.Price, 0.001)
	assert.Equal(t, "Salmorejo", patched.Name)

	rec = env.do(t, http.MethodPatch, "/admin/menu/"+wine["id"], map[string]any{"isActive": false}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var wines []wineItem
	rec = env.do(t, http.MethodGet, "/api/v1/menu/wines", nil, false)
	decodeBody(t, rec, &wines)
	assert.Empty(t, wines)

	// a food id of the wine row does not resolve
	wrong := "food_" + strings.TrimPrefix(wine["id"], "wine_")
	if wrong != food["id"] {
		rec = env.do(t, http.MethodDelete, "/admin/menu/"+wrong, nil, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/admin/menu/evt_1", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/admin/menu/"+food["id"], nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var dishes []foodItem
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/menu/food", nil, false), &dishes)
	assert.Empty(t, dishes)
}

func TestMenuCategories(t *testing.T) {
	env := newTestEnv(t, 5, Options{})

	for _, body := range []map[string]any{
		{"category": "Vinos", "orden": 2},
		{"category": "Vinos", "subcategory": "Tintos", "orden": 1},
		{"category": "Platos", "orden": 1},
	} {
		rec := env.do(t, http.MethodPost, "/admin/menu/categories", body, true)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := env.do(t, http.MethodPost, "/admin/menu/categories", map[string]any{"category": "Platos", "orden": 3}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var tree []categoryNode
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/menu/categories", nil, false), &tree)
	require.Len(t, tree, 2)
	assert.Equal(t, "Platos", tree[0].Category)
	assert.Equal(t, "Vinos", tree[1].Category)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "Tintos", tree[1].Children[0].Subcategory)
}

func TestEventsListing(t *testing.T) {
	env := newTestEnv(t, 5, Options{})

	ids := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		body := map[string]any{
			"title":       fmt.Sprintf("Concierto %d", i),
			"dateStart":   fmt.Sprintf("2026-06-%02dT20:00:00+02:00", i),
			"description": "Flamenco",
			"category":    "music",
			"imageUrl":    "https://example.com/e.jpg",
			"isPublished": i != 3,
		}
		rec := env.do(t, http.MethodPost, "/admin/events", body, true)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var out map[string]string
		decodeBody(t, rec, &out)
		ids = append(ids, out["id"])
	}

	var page eventListResponse
	rec := env.do(t, http.MethodGet, "/api/v1/events?limit=2", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Concierto 1", page.Items[0].Title)
	assert.Nil(t, page.Items[0].CreatedAt)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "2", *page.NextCursor)

	page = eventListResponse{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/events?limit=2&cursor=2", nil, false), &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Concierto 4", page.Items[0].Title)
	assert.Nil(t, page.NextCursor)

	page = eventListResponse{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/events?from=2026-06-02&to=2026-06-04", nil, false), &page)
	require.Len(t, page.Items, 2)

	for _, q := range []string{"limit=0", "limit=101", "cursor=-1", "cursor=x", "from=junio", "to=2026-13-01"} {
		rec := env.do(t, http.MethodGet, "/api/v1/events?"+q, nil, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/events/"+ids[2], nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	page = eventListResponse{}
	decodeBody(t, env.do(t, http.MethodGet, "/admin/events?status=draft", nil, true), &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[2], page.Items[0].ID)
	assert.NotNil(t, page.Items[0].CreatedAt)

	page = eventListResponse{}
	decodeBody(t, env.do(t, http.MethodGet, "/admin/events?status=all", nil, true), &page)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "Concierto 5", page.Items[0].Title)

	rec = env.do(t, http.MethodGet, "/admin/events?status=maybe", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/events/"+ids[2]+"/publish", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var pub map[string]any
	decodeBody(t, rec, &pub)
	assert.Equal(t, true, pub["isPublished"])
	rec = env.do(t, http.MethodGet, "/api/v1/events/"+ids[2], nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	update := map[string]any{
		"title":       "Concierto 3 (nuevo)",
		"dateStart":   "2026-06-03T21:00:00+02:00",
		"description": "Flamenco",
		"category":    "music",
		"imageUrl":    "https://example.com/e.jpg",
		"isPublished": true,
	}
	rec = env.do(t, http.MethodPut, "/admin/events/"+ids[2], update, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	update["dateEnd"] = "2026-06-01T00:00:00+02:00"
	rec = env.do(t, http.MethodPut, "/admin/events/"+ids[2], update, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/admin/events/"+ids[2], nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodDelete, "/admin/events/"+ids[2], nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodPost, "/admin/events/resv_1/unpublish", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContacts(t *testing.T) {
	env := newTestEnv(t, 5, Options{})

	lead := map[string]any{
		"name":    "Luis",
		"email":   "luis@example.com",
		"subject": "Evento privado",
		"message": "Somos 40 personas",
		"consent": true,
		"extra":   "ignored",
	}
	rec := env.do(t, http.MethodPost, "/api/v1/contacts/projects", lead, false)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var accepted map[string]string
	decodeBody(t, rec, &accepted)
	assert.Equal(t, "RECEIVED", accepted["status"])
	assert.True(t, strings.HasPrefix(accepted["id"], "lead_"))

	lead["honeypot"] = "http://spam"
	rec = env.do(t, http.MethodPost, "/api/v1/contacts/projects", lead, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid payload", errorOf(t, rec))

	delete(lead, "honeypot")
	lead["email"] = "not-an-email"
	rec = env.do(t, http.MethodPost, "/api/v1/contacts/projects", lead, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid email", errorOf(t, rec))

	var stats map[string]int
	decodeBody(t, env.do(t, http.MethodGet, "/admin/contacts/projects/stats", nil, true), &stats)
	assert.Equal(t, map[string]int{"total": 1, "unread": 1}, stats)

	rec = env.do(t, http.MethodPost, "/admin/contacts/projects/"+accepted["id"]+"/read", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/admin/contacts/projects/lead_999/read", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	decodeBody(t, env.do(t, http.MethodGet, "/admin/contacts/projects/stats", nil, true), &stats)
	assert.Equal(t, 0, stats["unread"])

	var list struct {
		Items []contactItem `json:"items"`
	}
	decodeBody(t, env.do(t, http.MethodGet, "/admin/contacts/projects?limit=10", nil, true), &list)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].IsRead)

	rec = env.do(t, http.MethodGet, "/admin/contacts/projects?limit=501", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodGet, "/admin/contacts/projects?offset=-2", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigEndpoints(t *testing.T) {
	env := newTestEnv(t, 5, Options{Environment: "staging"})

	var entries []configItem
	decodeBody(t, env.do(t, http.MethodGet, "/admin/config", nil, true), &entries)
	assert.Len(t, entries, 3)

	rec := env.do(t, http.MethodPut, "/admin/config/reserva-activa", configItem{Key: "telefono-contacto", Value: "x"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Key mismatch", errorOf(t, rec))

	var public publicConfigResponse
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/config", nil, false), &public)
	assert.False(t, public.Features["reservationsEnabled"])
	assert.Equal(t, "staging", public.Environment)
	assert.Equal(t, maxMessageLength, public.Limits["maxMessageLength"])

	rec = env.do(t, http.MethodPut, "/admin/config/reserva-activa", configItem{Key: "reserva-activa", Value: "true"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPut, "/admin/config/telefono-contacto", configItem{Key: "telefono-contacto", Value: "+34 600 000 000"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	public = publicConfigResponse{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/config", nil, false), &public)
	assert.True(t, public.Features["reservationsEnabled"])
	assert.Equal(t, "+34 600 000 000", public.Contact.Phone)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, 5, Options{})
	env.do(t, http.MethodPost, "/admin/menu/food", map[string]any{"name": "Tortilla"}, true)

	rec := env.do(t, http.MethodGet, "/admin/export", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "taberna_")
	// xlsx files are zip archives
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))

	rec = env.do(t, http.MethodGet, "/admin/export", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMenuRejectsOversizedPrices(t *testing.T) {
	env := newTestEnv(t, 5, Options{})

	tests := []struct {
		name string
		path string
		body map[string]any
		msg  string
	}{
		{"food price", "/admin/menu/food", map[string]any{"name": "Pulpo", "price": 1e20}, "invalid price"},
		{"glass price", "/admin/menu/wines", map[string]any{"name": "Fino", "glassPrice": 1e20}, "invalid glassPrice"},
		{"bottle price", "/admin/menu/wines", map[string]any{"name": "Fino", "bottlePrice": 100000.01}, "invalid bottlePrice"},
		{"negative price", "/admin/menu/food", map[string]any{"name": "Pulpo", "price": -1}, "invalid price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.path, tt.body, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.msg, errorOf(t, rec))
		})
	}

	rec := env.do(t, http.MethodPost, "/admin/menu/food", map[string]any{"name": "Pulpo", "price": 100000}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]string
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodPatch, "/admin/menu/"+created["id"], map[string]any{"price": 1e20}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var dishes []foodItem
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/menu/food", nil, false), &dishes)
	require.Len(t, dishes, 1)
	require.NotNil(t, dishes[0].Price)
	assert.InDelta(t, 100000.0, *dishes[0].Price, 0.001)
}

func TestScheduleNoteAlwaysPresent(t *testing.T) {
	env := newTestEnv(t, 5, Options{})
	env.do(t, http.MethodPost, "/admin/schedule/day?date=2026-05-01", nil, true)
	env.do(t, http.MethodPost, "/admin/schedule/day?date=2026-05-02&note=Cerrado", nil, true)

	var raw struct {
		Days []map[string]any `json:"days"`
	}
	rec := env.do(t, http.MethodGet, "/api/v1/schedule", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &raw)
	require.Len(t, raw.Days, 2)

	note, ok := raw.Days[0]["note"]
	assert.True(t, ok, "note key missing")
	assert.Nil(t, note)
	assert.Equal(t, "Cerrado", raw.Days[1]["note"])
	assert.Contains(t, raw.Days[0], "serviceWindows")
}
