package console

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/model"
	"fieldops-console-backend/internal/reorder"
)

// ListSections handles GET /api/templates/:id/sections, position-sorted.
func (h *Handler) ListSections(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sections, err := h.fetchSections(c.Request.Context(), id)
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": sections, "total": len(sections)})
}

func (h *Handler) fetchSections(ctx context.Context, templateID int64) ([]model.Section, error) {
	var sections []model.Section
	meta := &gateway.Meta{QueryParams: map[string]any{"template_id": templateID}}
	if _, err := h.gw.List(ctx, gateway.ResourceSections, nil, meta, &sections); err != nil {
		return nil, err
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Position < sections[j].Position })
	return sections, nil
}

type sectionRequest struct {
	Title string `json:"title"`
}

// CreateSection handles POST /api/templates/:id/sections. The new section is
// appended at the end of the current order.
func (h *Handler) CreateSection(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		req.Title = "New Section"
	}

	sections, err := h.fetchSections(c.Request.Context(), id)
	if err != nil {
		abortUpstream(c, err)
		return
	}

	values := map[string]any{
		"template_id": id,
		"title":       req.Title,
		"position":    len(sections) + 1,
	}
	var created model.Section
	if err := h.gw.Create(c.Request.Context(), gateway.ResourceSections, values, &created); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateSection handles PUT /api/sections/:id (title rename).
func (h *Handler) UpdateSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "section title must not be empty"})
		return
	}

	var updated model.Section
	if err := h.gw.Update(c.Request.Context(), gateway.ResourceSections, c.Param("id"), req, &updated); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteSection handles DELETE /api/sections/:id.
func (h *Handler) DeleteSection(c *gin.Context) {
	if _, err := h.gw.DeleteOne(c.Request.Context(), gateway.ResourceSections, c.Param("id")); err != nil {
		abortUpstream(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderRequest struct {
	ActiveID int64 `json:"active_id"`
	OverID   int64 `json:"over_id"`
}

type reorderResponse struct {
	State string              `json:"state"`
	Items []reorder.Placement `json:"items,omitempty"`
}

// ReorderSections handles PATCH /api/templates/:id/sections/reorder: one drop
// of the active section onto the over section. The whole renumbered ordering
// is persisted in a single upstream call; on failure the order reverts and
// the upstream error is surfaced.
func (h *Handler) ReorderSections(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	sections, err := h.fetchSections(ctx, id)
	if err != nil {
		abortUpstream(c, err)
		return
	}

	items := make([]reorder.Item, len(sections))
	for i, s := range sections {
		items[i] = reorder.Item{ID: s.ID, Position: s.Position}
	}
	list := reorder.NewList(items)

	placements, err := list.Apply(ctx, req.ActiveID, req.OverID, func(ctx context.Context, ordered []reorder.Placement) error {
		_, err := h.gw.Custom(ctx, gateway.Request{
			Method: http.MethodPatch,
			URL:    "/sections/reorder",
			Body:   map[string]any{"template_id": id, "items": ordered},
		})
		return err
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}

	c.JSON(http.StatusOK, reorderResponse{State: list.State().String(), Items: placements})
}
