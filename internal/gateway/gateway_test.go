package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-console-backend/config"
)

// recordedRequest captures what the fake upstream saw.
type recordedRequest struct {
	Method string
	URI    string
	Header http.Header
	Body   []byte
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			Method: r.Method,
			URI:    r.RequestURI,
			Header: r.Header.Clone(),
			Body:   body,
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	g := New(&config.UpstreamConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	return g, &seen
}

func TestListDefaultRoute(t *testing.T) {
	g, seen := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"Lavado"},{"id":2,"name":"Secado"}]`))
	})

	var rows []map[string]any
	total, err := g.List(context.Background(), "machine-families", nil, nil, &rows)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, rows, 2)
	assert.Equal(t, "/machine-families", (*seen)[0].URI)
	assert.Equal(t, http.MethodGet, (*seen)[0].Method)
}

func TestListSectionsRequiresTemplateID(t *testing.T) {
	g, seen := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	// Via the filter tree.
	_, err := g.List(context.Background(), ResourceSections,
		[]Filter{{Field: "template_id", Value: 12}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/sections?template_id=12", (*seen)[0].URI)

	// Via the meta query bag.
	_, err = g.List(context.Background(), ResourceSections, nil,
		&Meta{QueryParams: map[string]any{"template_id": 12}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/sections?template_id=12", (*seen)[1].URI)

	// Missing id: no request at all.
	_, err = g.List(context.Background(), ResourceSections, nil, nil, nil)
	assert.ErrorIs(t, err, ErrMissingParam)
	assert.Len(t, *seen, 2)
}

func TestListTasksRequiresSectionID(t *testing.T) {
	g, seen := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := g.List(context.Background(), ResourceTasks,
		[]Filter{{Filters: []Filter{{Field: "section_id", Value: 3}}}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/tasks?section_id=3", (*seen)[0].URI)
}

func TestGetOneWorkOrderAsymmetry(t *testing.T) {
	g, seen := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	require.NoError(t, g.GetOne(context.Background(), ResourceWorkOrders, "5", nil))
	require.NoError(t, g.GetOne(context.Background(), ResourceTemplates, "5", nil))

	assert.Equal(t, "/work-orders/5/tasks", (*seen)[0].URI)
	assert.Equal(t, "/templates/5", (*seen)[1].URI)
	assert.NotEqual(t, (*seen)[0].URI, (*seen)[1].URI)
}

func TestCreateFromTemplateUnwrapsEnvelope(t *testing.T) {
	g, seen := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"data":{"id":44,"status":"OPEN"}}}`))
	})

	var created struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	err := g.Create(context.Background(), ResourceWorkOrderFromTemplate,
		map[string]any{"template_id": 9}, &created)
	require.NoError(t, err)
	assert.Equal(t, "/work-orders/from-template", (*seen)[0].URI)
	assert.Equal(t, http.MethodPost, (*seen)[0].Method)
	assert.Equal(t, int64(44), created.ID)
	assert.Equal(t, "OPEN", created.Status)
	assert.JSONEq(t, `{"template_id":9}`, string((*seen)[0].Body))
}

func TestUpdateWorkOrderTaskRoute(t *testing.T) {
	g, seen := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"status":"OK"}`))
	})

	err := g.Update(context.Background(), ResourceWorkOrderTask, "7",
		map[string]any{"status": "OK"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/work-orders/tasks/7", (*seen)[0].URI)
	assert.Equal(t, http.MethodPut, (*seen)[0].Method)
}

func TestDeleteToleratesEmptyBody(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	payload, err := g.DeleteOne(context.Background(), "sections", "10")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestDeleteFailureCarriesServerText(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("section has tasks"))
	})

	_, err := g.DeleteOne(context.Background(), "sections", "10")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "section has tasks", apiErr.Message)
}

func TestCustomMergesHeaders(t *testing.T) {
	g, seen := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})

	_, err := g.Custom(context.Background(), Request{
		Method:  "patch",
		URL:     "/sections/reorder",
		Body:    map[string]any{"template_id": 1},
		Headers: map[string]string{"X-Foo": "bar"},
	})
	require.NoError(t, err)

	h := (*seen)[0].Header
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "bar", h.Get("X-Foo"))
	assert.Equal(t, "PATCH", (*seen)[0].Method)
}

func TestCustomNonJSONSuccessBody(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("published"))
	})

	payload, err := g.Custom(context.Background(), Request{
		Method: http.MethodPost,
		URL:    "/templates/3/publish",
	})
	require.NoError(t, err)

	var text string
	require.NoError(t, json.Unmarshal(payload, &text))
	assert.Equal(t, "published", text)
}

func TestCustomFailurePrefersJSONErrorField(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"template already published"}`))
	})

	_, err := g.Custom(context.Background(), Request{
		Method: http.MethodPost,
		URL:    "/templates/3/publish",
	})
	require.Error(t, err)
	assert.EqualError(t, err, "template already published")
}
