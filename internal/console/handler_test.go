package console

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-console-backend/config"
	"fieldops-console-backend/internal/draft"
	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/identity"
	"fieldops-console-backend/internal/roster"
	"fieldops-console-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstreamCall is one request the fake maintenance API received.
type upstreamCall struct {
	Method string
	Path   string // URI with query string
	Body   string
}

// fakeUpstream records every request and answers from a method+path table.
type fakeUpstream struct {
	mu        sync.Mutex
	calls     []upstreamCall
	responses map[string]func(w http.ResponseWriter)
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{responses: make(map[string]func(w http.ResponseWriter))}
}

func (f *fakeUpstream) respond(method, path string, status int, body string) {
	f.responses[method+" "+path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, upstreamCall{Method: r.Method, Path: r.URL.RequestURI(), Body: string(body)})
	f.mu.Unlock()

	if fn, ok := f.responses[r.Method+" "+r.URL.RequestURI()]; ok {
		fn(w)
		return
	}
	if fn, ok := f.responses[r.Method+" "+r.URL.Path]; ok {
		fn(w)
		return
	}
	http.NotFound(w, r)
}

func (f *fakeUpstream) recorded() []upstreamCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]upstreamCall(nil), f.calls...)
}

func (f *fakeUpstream) find(method, pathPrefix string) (upstreamCall, bool) {
	for _, call := range f.recorded() {
		if call.Method == method && strings.HasPrefix(call.Path, pathPrefix) {
			return call, true
		}
	}
	return upstreamCall{}, false
}

type consoleFixture struct {
	router   *gin.Engine
	handler  *Handler
	upstream *fakeUpstream
}

func newFixture(t *testing.T) *consoleFixture {
	t.Helper()
	up := newFakeUpstream()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	gw := gateway.New(&config.UpstreamConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	h := NewHandler(gw, nil, identity.New(&config.IdentityConfig{}), draft.NewStore(),
		store.NewSubscriptionStore(), nil, &webpush.Options{VAPIDPublicKey: "test-public-key"})

	cfg := &config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 1}
	return &consoleFixture{router: NewRouter(cfg, h), handler: h, upstream: up}
}

func (f *consoleFixture) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestPublishRejectsAlreadyPublishedTemplate(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodGet, "/templates/5", http.StatusOK,
		`{"id": 5, "name": "Lavadora 20kg", "is_published": true, "version": 2}`)

	w := f.do(http.MethodPost, "/api/templates/5/publish", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already published")
	_, published := f.upstream.find(http.MethodPost, "/templates/5/publish")
	assert.False(t, published, "a published template must not be republished upstream")
}

func TestPublishDraftTemplate(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodGet, "/templates/5", http.StatusOK,
		`{"id": 5, "name": "Lavadora 20kg", "is_published": false, "version": 1}`)
	f.upstream.respond(http.MethodPost, "/templates/5/publish", http.StatusOK,
		`{"id": 5, "is_published": true, "version": 1}`)

	w := f.do(http.MethodPost, "/api/templates/5/publish", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": 5, "is_published": true, "version": 1}`, w.Body.String())
}

func TestReorderSectionsPersistsWholeOrdering(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodGet, "/sections?template_id=1", http.StatusOK,
		`[{"id": 10, "template_id": 1, "title": "A", "position": 1},
		  {"id": 20, "template_id": 1, "title": "B", "position": 2},
		  {"id": 30, "template_id": 1, "title": "C", "position": 3}]`)
	f.upstream.respond(http.MethodPatch, "/sections/reorder", http.StatusOK, `{}`)

	w := f.do(http.MethodPatch, "/api/templates/1/sections/reorder", `{"active_id": 10, "over_id": 30}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"state": "confirmed",
		"items": [{"id": 20, "position": 1}, {"id": 30, "position": 2}, {"id": 10, "position": 3}]
	}`, w.Body.String())

	call, ok := f.upstream.find(http.MethodPatch, "/sections/reorder")
	require.True(t, ok)
	assert.JSONEq(t, `{
		"template_id": 1,
		"items": [{"id": 20, "position": 1}, {"id": 30, "position": 2}, {"id": 10, "position": 3}]
	}`, call.Body)
}

func TestReorderSurfacesUpstreamRejection(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodGet, "/sections?template_id=1", http.StatusOK,
		`[{"id": 10, "position": 1}, {"id": 20, "position": 2}]`)
	f.upstream.respond(http.MethodPatch, "/sections/reorder", http.StatusInternalServerError,
		`{"error": "deadlock detected"}`)

	w := f.do(http.MethodPatch, "/api/templates/1/sections/reorder", `{"active_id": 20, "over_id": 10}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "deadlock detected")
}

func TestMaterializeRequiresTemplateID(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/work-orders", `{"machine_serial": "LAV-001"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.upstream.recorded())
}

func TestMaterializeRejectsDraftTemplate(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodGet, "/templates/5", http.StatusOK,
		`{"id": 5, "is_published": false}`)

	w := f.do(http.MethodPost, "/api/work-orders", `{"template_id": 5, "machine_serial": "LAV-001"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	_, created := f.upstream.find(http.MethodPost, "/work-orders/from-template")
	assert.False(t, created)
}

func TestMaterializeUnwrapsEnvelope(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodGet, "/templates/5", http.StatusOK,
		`{"id": 5, "is_published": true}`)
	f.upstream.respond(http.MethodPost, "/work-orders/from-template", http.StatusCreated,
		`{"data": {"data": {"id": 99, "status": "OPEN", "template_id": 5}}}`)

	w := f.do(http.MethodPost, "/api/work-orders",
		`{"template_id": 5, "machine_serial": "LAV-001", "customer_name": "Centro"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":99`)
}

func TestUpdateChecklistItemRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/work-order-tasks/10", `{"work_order_id": 1, "status": "DONE"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.upstream.recorded())
}

func TestUpdateChecklistItemWithoutStatusLeavesDraftsUntouched(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/work-order-tasks/10", `{"work_order_id": 1, "observation": "x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.upstream.recorded())

	drafts := f.do(http.MethodGet, "/api/work-orders/1/drafts", "")
	assert.JSONEq(t, `{}`, drafts.Body.String(), "a rejected update must not stage anything")
}

func TestUpdateChecklistItemCommitsStagedDraft(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodPut, "/work-orders/tasks/10", http.StatusOK,
		`{"id": 10, "work_order_id": 1, "status": "OK", "observation": "banda gastada"}`)

	stage := f.do(http.MethodPut, "/api/work-orders/1/drafts/10", `{"observation": "banda gastada"}`)
	require.Equal(t, http.StatusOK, stage.Code)

	w := f.do(http.MethodPut, "/api/work-order-tasks/10", `{"work_order_id": 1, "status": "OK"}`)
	require.Equal(t, http.StatusOK, w.Code)

	call, ok := f.upstream.find(http.MethodPut, "/work-orders/tasks/10")
	require.True(t, ok)
	assert.JSONEq(t, `{"status": "OK", "observation": "banda gastada"}`, call.Body)

	drafts := f.do(http.MethodGet, "/api/work-orders/1/drafts", "")
	assert.JSONEq(t, `{}`, drafts.Body.String(), "commit must clear the staged draft")
}

func TestUpdateChecklistItemRestagesDraftOnFailure(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodPut, "/work-orders/tasks/10", http.StatusServiceUnavailable,
		`{"error": "maintenance window"}`)

	w := f.do(http.MethodPut, "/api/work-order-tasks/10",
		`{"work_order_id": 1, "status": "OK", "observation": "x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	drafts := f.do(http.MethodGet, "/api/work-orders/1/drafts", "")
	assert.Contains(t, drafts.Body.String(), `"10"`)
	assert.Contains(t, drafts.Body.String(), `"OK"`)
}

func TestDraftLifecycle(t *testing.T) {
	f := newFixture(t)

	stage := f.do(http.MethodPut, "/api/work-orders/1/drafts/10", `{"status": "SEGUIMIENTO"}`)
	require.Equal(t, http.StatusOK, stage.Code)

	list := f.do(http.MethodGet, "/api/work-orders/1/drafts", "")
	assert.JSONEq(t, `{"10": {"status": "SEGUIMIENTO"}}`, list.Body.String())

	discard := f.do(http.MethodDelete, "/api/work-orders/1/drafts/10", "")
	assert.Equal(t, http.StatusNoContent, discard.Code)

	after := f.do(http.MethodGet, "/api/work-orders/1/drafts", "")
	assert.JSONEq(t, `{}`, after.Body.String())
}

func TestStageDraftRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/work-orders/1/drafts/10", `{"status": "MAYBE"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListWorkOrdersFiltersAndProgress(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodGet, "/work-orders?include=tasks", http.StatusOK,
		`[{"id": 1, "status": "OPEN", "customer_name": "Lavanderia Centro",
		   "tasks": [{"id": 1, "status": "OK"}, {"id": 2, "status": "PENDIENTE"}]},
		  {"id": 2, "status": "OPEN", "customer_name": "Hotel Plaza", "tasks": []},
		  {"id": 3, "status": "CLOSED", "customer_name": "Lavanderia Norte", "tasks": []}]`)

	w := f.do(http.MethodGet, "/api/work-orders?include=tasks&status=OPEN&q=lavanderia", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"total":1`)
	assert.Contains(t, body, "Lavanderia Centro")
	assert.NotContains(t, body, "Hotel Plaza")
	assert.NotContains(t, body, "Lavanderia Norte")
	assert.Contains(t, body, `"percent":50`)
}

func TestWorkOrderChecklistSortsAndTotals(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodGet, "/work-orders/7/tasks", http.StatusOK,
		`[{"id": 2, "section_title": "Motor", "position": 2, "expected_minutes": 20, "actual_minutes": 25, "status": "OK"},
		  {"id": 1, "section_title": "Motor", "position": 1, "expected_minutes": 10, "status": "PENDIENTE"}]`)

	w := f.do(http.MethodGet, "/api/work-orders/7/checklist", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"overall":{"expected":30,"actual":25}`)
	first := strings.Index(body, `"id":1`)
	second := strings.Index(body, `"id":2`)
	require.Positive(t, first)
	assert.Less(t, first, second, "rows must come back in position order")
}

func TestDeleteWorkOrderUsesDeleteRoute(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodDelete, "/work-orders/delete/7", http.StatusOK, "")

	w := f.do(http.MethodDelete, "/api/work-orders/7", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	_, ok := f.upstream.find(http.MethodDelete, "/work-orders/delete/7")
	assert.True(t, ok)
}

func TestBonusSummaryRequiresWindow(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/bonuses?inicio=2026-08-01", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.upstream.recorded())
}

func TestBonusSummaryComputesPayouts(t *testing.T) {
	f := newFixture(t)
	f.upstream.respond(http.MethodGet, "/bonds/visualizar?fin=2026-08-31&inicio=2026-08-01", http.StatusOK,
		`{"resumen": [
			{"nombre_tecnico": "Ana", "correo_tecnico": "ana@x.com", "conteo_ordenes": 2,
			 "suma_puntos_maquina": 2, "suma_puntos_customs": 1, "puntos_secundario": 0.5},
			{"nombre_tecnico": "Luis", "correo_tecnico": "luis@x.com", "conteo_ordenes": 1,
			 "suma_puntos_maquina": 1, "suma_puntos_customs": 0, "puntos_secundario": 0}
		]}`)

	w := f.do(http.MethodGet, "/api/bonuses?inicio=2026-08-01&fin=2026-08-31", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"total_bono":350`)
	assert.Contains(t, body, `"total_bono":100`)
	assert.Contains(t, body, `"total_bonos":450`)
}

func TestSubscriptionLifecycle(t *testing.T) {
	f := newFixture(t)

	put := f.do(http.MethodPut, "/api/subscriptions",
		`{"endpoint": "https://push/a", "p256dh": "k", "auth": "a", "subscribed_orders": [1, 2]}`)
	require.Equal(t, http.StatusOK, put.Code)

	got := f.do(http.MethodGet, "/api/subscriptions?endpoint=https://push/a", "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Contains(t, got.Body.String(), `"subscribed_orders":[1,2]`)

	del := f.do(http.MethodDelete, "/api/subscriptions?endpoint=https://push/a", "")
	assert.Equal(t, http.StatusNoContent, del.Code)

	missing := f.do(http.MethodGet, "/api/subscriptions?endpoint=https://push/a", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestPutSubscriptionRequiresKeys(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/subscriptions", `{"endpoint": "https://push/a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVAPIDPublicKey(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/vapid_public_key", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key": "test-public-key"}`, w.Body.String())
}

func TestVAPIDPublicKeyUnconfigured(t *testing.T) {
	f := newFixture(t)
	f.handler.webpush = nil

	w := f.do(http.MethodGet, "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListTechniciansActiveOnly(t *testing.T) {
	rosterSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "nombre_tecnico": "Ana", "estatus": "activo"},
			{"id": 2, "nombre_tecnico": "Luis", "estatus": "baja"}
		]`))
	}))
	defer rosterSrv.Close()

	f := newFixture(t)
	f.handler.roster = roster.New(&config.RosterConfig{BaseURL: rosterSrv.URL, Timeout: 5 * time.Second})

	w := f.do(http.MethodGet, "/api/technicians", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ana")
	assert.NotContains(t, w.Body.String(), "Luis")
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestRegisterOperatorUnconfigured(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/technicians/register",
		`{"nombre_tecnico": "Ana", "correo_tecnico": "ana@x.com"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMissingParentParamIsBadRequest(t *testing.T) {
	f := newFixture(t)

	// Garbage template id never reaches the gateway's child route.
	w := f.do(http.MethodGet, "/api/templates/abc/sections", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.upstream.recorded())
}
