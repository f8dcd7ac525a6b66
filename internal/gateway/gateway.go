package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fieldops-console-backend/config"
)

// ErrMissingParam marks a list call whose required parent parameter (for
// example template_id for sections) could not be resolved from the filters or
// the meta query bag. No request is issued in that case.
var ErrMissingParam = errors.New("missing required query parameter")

// APIError carries an upstream failure status together with the server's own
// message, verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Gateway presents uniform CRUD verbs over the heterogeneous upstream
// maintenance API so callers can stay resource-agnostic. It holds no state
// beyond the HTTP client; every verb is a single request with no retries.
type Gateway struct {
	base    string
	headers map[string]string
	client  *http.Client
}

// New creates a gateway against the configured upstream.
func New(cfg *config.UpstreamConfig) *Gateway {
	return &Gateway{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// BaseURL returns the upstream base URL.
func (g *Gateway) BaseURL() string {
	return g.base
}

// List fetches the rows of a resource into out (a pointer to a slice) and
// returns the row count. Resources in the route table may require a parent id
// from filters or meta.
func (g *Gateway) List(ctx context.Context, resource string, filters []Filter, meta *Meta, out any) (int, error) {
	path := "/" + resource
	if r, ok := routeTable[resource]; ok && r.list != nil {
		p, err := r.list(filters, meta)
		if err != nil {
			return 0, err
		}
		path = p
	}

	raw, err := g.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return 0, fmt.Errorf("list %s: unexpected response shape: %w", resource, err)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return 0, fmt.Errorf("list %s: %w", resource, err)
		}
	}
	return len(rows), nil
}

// GetOne fetches a single row into out. For work orders this is the
// materialized checklist sub-resource, not the order header; that asymmetry
// is part of the upstream contract.
func (g *Gateway) GetOne(ctx context.Context, resource, id string, out any) error {
	path := "/" + resource + "/" + id
	if r, ok := routeTable[resource]; ok && r.getOne != nil {
		path = r.getOne(id)
	}

	raw, err := g.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("get %s/%s: %w", resource, id, err)
	}
	return nil
}

// Create posts values as the new row and decodes the created row into out
// when out is non-nil. Materialization responses may arrive wrapped in one or
// two {"data": ...} envelopes; those are unwrapped before decoding.
func (g *Gateway) Create(ctx context.Context, resource string, values any, out any) error {
	path := "/" + resource
	unwrap := false
	if r, ok := routeTable[resource]; ok {
		if r.create != "" {
			path = r.create
		}
		unwrap = r.unwrapCreate
	}

	raw, err := g.do(ctx, http.MethodPost, path, values, nil)
	if err != nil {
		return err
	}
	if unwrap {
		raw = unwrapEnvelope(raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("create %s: %w", resource, err)
	}
	return nil
}

// Update puts values over the identified row.
func (g *Gateway) Update(ctx context.Context, resource, id string, values any, out any) error {
	path := "/" + resource + "/" + id
	if r, ok := routeTable[resource]; ok && r.update != nil {
		path = r.update(id)
	}

	raw, err := g.do(ctx, http.MethodPut, path, values, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("update %s/%s: %w", resource, id, err)
	}
	return nil
}

// DeleteOne deletes the identified row. An empty or non-JSON success body
// resolves to a nil payload rather than a decode error.
func (g *Gateway) DeleteOne(ctx context.Context, resource, id string) (json.RawMessage, error) {
	return g.Custom(ctx, Request{
		Method: http.MethodDelete,
		URL:    "/" + resource + "/" + id,
	})
}

// Request describes an arbitrary upstream call for the Custom verb: reorder
// operations, publish actions and the other non-CRUD business actions.
type Request struct {
	Method  string
	URL     string // relative to the base URL unless absolute
	Body    any
	Headers map[string]string
}

// Custom performs an arbitrary method/URL/body call. Default JSON headers are
// merged with caller-supplied ones, the caller winning on conflict. A
// non-JSON success body is kept as a JSON-quoted string; a failure status is
// an error carrying the body text.
func (g *Gateway) Custom(ctx context.Context, req Request) (json.RawMessage, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	return g.do(ctx, strings.ToUpper(method), req.URL, req.Body, req.Headers)
}

// do issues one upstream request and normalizes the response body into a JSON
// payload per the error taxonomy: empty body -> nil, JSON body -> as is,
// non-JSON 2xx body -> quoted text, non-2xx -> *APIError with the server text.
func (g *Gateway) do(ctx context.Context, method, path string, body any, headers map[string]string) (json.RawMessage, error) {
	fullURL := path
	if !strings.HasPrefix(path, "http") {
		fullURL = g.base + path
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range g.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload json.RawMessage
	if len(bytes.TrimSpace(text)) > 0 {
		if json.Valid(text) {
			payload = json.RawMessage(text)
		} else if quoted, qerr := json.Marshal(string(text)); qerr == nil {
			payload = json.RawMessage(quoted)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, text)}
	}
	return payload, nil
}

// errorMessage extracts the server's own message from a failure body,
// preferring a JSON {"error": ...} field, then the raw text.
func errorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Sprintf("HTTP %d", status)
	}
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	var asString string
	if err := json.Unmarshal(trimmed, &asString); err == nil && asString != "" {
		return asString
	}
	return string(trimmed)
}

// unwrapEnvelope strips up to two nested {"data": ...} wrappers.
func unwrapEnvelope(raw json.RawMessage) json.RawMessage {
	for i := 0; i < 2; i++ {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Data) == 0 {
			return raw
		}
		raw = envelope.Data
	}
	return raw
}
