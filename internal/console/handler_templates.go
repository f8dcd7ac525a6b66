package console

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/model"
)

// ListTemplates handles GET /api/templates. published=true narrows to
// templates eligible for materialization.
func (h *Handler) ListTemplates(c *gin.Context) {
	var templates []model.Template
	total, err := h.gw.List(c.Request.Context(), gateway.ResourceTemplates, nil, nil, &templates)
	if err != nil {
		abortUpstream(c, err)
		return
	}

	if c.Query("published") == "true" {
		published := templates[:0]
		for _, t := range templates {
			if t.IsPublished {
				published = append(published, t)
			}
		}
		templates = published
		total = len(templates)
	}
	c.JSON(http.StatusOK, gin.H{"rows": templates, "total": total})
}

type templateRequest struct {
	Name         string `json:"name"`
	TemplateType string `json:"template_type"`
	ModelID      *int64 `json:"model_id"`
}

// CreateTemplate handles POST /api/templates. New templates start as drafts
// at version 1.
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template name must not be empty"})
		return
	}
	if req.TemplateType == "" {
		req.TemplateType = model.TemplateTypeMaintenance
	}

	var created model.Template
	if err := h.gw.Create(c.Request.Context(), gateway.ResourceTemplates, req, &created); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateTemplate handles PUT /api/templates/:id.
func (h *Handler) UpdateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var updated model.Template
	if err := h.gw.Update(c.Request.Context(), gateway.ResourceTemplates, c.Param("id"), req, &updated); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// PublishTemplate handles POST /api/templates/:id/publish. Publishing is a
// one-way transition; an already published template is rejected before any
// upstream call.
func (h *Handler) PublishTemplate(c *gin.Context) {
	id := c.Param("id")

	var tpl model.Template
	if err := h.gw.GetOne(c.Request.Context(), gateway.ResourceTemplates, id, &tpl); err != nil {
		abortUpstream(c, err)
		return
	}
	if tpl.IsPublished {
		c.JSON(http.StatusConflict, gin.H{"error": "template is already published"})
		return
	}

	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodPost,
		URL:    "/templates/" + id + "/publish",
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", orEmptyObject(payload))
}

// TemplateDetail handles GET /api/templates/:id/detail: the template header,
// its sections in display order and each section's tasks. The per-section
// task fetches are fanned out concurrently and bound to the request context,
// so closing the drawer abandons whatever is still in flight.
func (h *Handler) TemplateDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var tpl model.Template
	if err := h.gw.GetOne(ctx, gateway.ResourceTemplates, c.Param("id"), &tpl); err != nil {
		abortUpstream(c, err)
		return
	}

	var sections []model.Section
	meta := &gateway.Meta{QueryParams: map[string]any{"template_id": id}}
	if _, err := h.gw.List(ctx, gateway.ResourceSections, nil, meta, &sections); err != nil {
		abortUpstream(c, err)
		return
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Position < sections[j].Position })

	details := make([]model.SectionDetail, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, sec := range sections {
		i, sec := i, sec
		g.Go(func() error {
			var tasks []model.Task
			taskMeta := &gateway.Meta{QueryParams: map[string]any{"section_id": sec.ID}}
			if _, err := h.gw.List(gctx, gateway.ResourceTasks, nil, taskMeta, &tasks); err != nil {
				return err
			}
			sort.SliceStable(tasks, func(a, b int) bool { return tasks[a].Position < tasks[b].Position })

			total := 0
			for _, t := range tasks {
				if t.ExpectedMinutes != nil {
					total += *t.ExpectedMinutes
				}
			}
			details[i] = model.SectionDetail{Section: sec, Tasks: tasks, ExpectedMinutes: total}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		abortUpstream(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TemplateDetail{Template: tpl, Sections: details})
}

// orEmptyObject keeps JSON responses well formed when the upstream answered
// with an empty body.
func orEmptyObject(payload []byte) []byte {
	if len(payload) == 0 {
		return []byte("{}")
	}
	return payload
}
