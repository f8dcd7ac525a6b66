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

// ListTasks handles GET /api/sections/:id/tasks, position-sorted.
func (h *Handler) ListTasks(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tasks, err := h.fetchTasks(c.Request.Context(), id)
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": tasks, "total": len(tasks)})
}

func (h *Handler) fetchTasks(ctx context.Context, sectionID int64) ([]model.Task, error) {
	var tasks []model.Task
	meta := &gateway.Meta{QueryParams: map[string]any{"section_id": sectionID}}
	if _, err := h.gw.List(ctx, gateway.ResourceTasks, nil, meta, &tasks); err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })
	return tasks, nil
}

type taskRequest struct {
	Title           string  `json:"title"`
	Code            *string `json:"code"`
	ExpectedMinutes *int    `json:"expected_minutes"`
	Category        *string `json:"category"`
}

// CreateTask handles POST /api/sections/:id/tasks. The new task is appended
// at the end of the section's current order.
func (h *Handler) CreateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task title must not be empty"})
		return
	}

	tasks, err := h.fetchTasks(c.Request.Context(), id)
	if err != nil {
		abortUpstream(c, err)
		return
	}

	values := map[string]any{
		"section_id":       id,
		"title":            req.Title,
		"code":             req.Code,
		"expected_minutes": req.ExpectedMinutes,
		"category":         req.Category,
		"position":         len(tasks) + 1,
	}
	var created model.Task
	if err := h.gw.Create(c.Request.Context(), gateway.ResourceTasks, values, &created); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateTask handles PUT /api/tasks/:id.
func (h *Handler) UpdateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task title must not be empty"})
		return
	}

	var updated model.Task
	if err := h.gw.Update(c.Request.Context(), gateway.ResourceTasks, c.Param("id"), req, &updated); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *Handler) DeleteTask(c *gin.Context) {
	if _, err := h.gw.DeleteOne(c.Request.Context(), gateway.ResourceTasks, c.Param("id")); err != nil {
		abortUpstream(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderTasks handles PATCH /api/sections/:id/tasks/reorder, mirroring the
// section reorder flow at the task level.
func (h *Handler) ReorderTasks(c *gin.Context) {
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
	tasks, err := h.fetchTasks(ctx, id)
	if err != nil {
		abortUpstream(c, err)
		return
	}

	items := make([]reorder.Item, len(tasks))
	for i, t := range tasks {
		items[i] = reorder.Item{ID: t.ID, Position: t.Position}
	}
	list := reorder.NewList(items)

	placements, err := list.Apply(ctx, req.ActiveID, req.OverID, func(ctx context.Context, ordered []reorder.Placement) error {
		_, err := h.gw.Custom(ctx, gateway.Request{
			Method: http.MethodPatch,
			URL:    "/tasks/reorder",
			Body:   map[string]any{"section_id": id, "items": ordered},
		})
		return err
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}

	c.JSON(http.StatusOK, reorderResponse{State: list.State().String(), Items: placements})
}
