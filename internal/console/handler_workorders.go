package console

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"fieldops-console-backend/internal/draft"
	"fieldops-console-backend/internal/export"
	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/model"
	"fieldops-console-backend/internal/notifier"
)

type materializeRequest struct {
	TemplateID        int64   `json:"template_id"`
	MachineSerial     string  `json:"machine_serial"`
	CustomerName      string  `json:"customer_name"`
	SiteAddress       string  `json:"site_address"`
	AssignedTechEmail *string `json:"assigned_tech_email"`
	ScheduledAt       *string `json:"scheduled_at"`
}

// MaterializeWorkOrder handles POST /api/work-orders: a point-in-time
// snapshot copy of a published template's structure. Draft templates are
// rejected before any upstream call.
func (h *Handler) MaterializeWorkOrder(c *gin.Context) {
	var req materializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TemplateID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_id is required"})
		return
	}

	ctx := c.Request.Context()
	var tpl model.Template
	if err := h.gw.GetOne(ctx, gateway.ResourceTemplates, idString(req.TemplateID), &tpl); err != nil {
		abortUpstream(c, err)
		return
	}
	if !tpl.IsPublished {
		c.JSON(http.StatusConflict, gin.H{"error": "template is not published"})
		return
	}

	var created model.WorkOrder
	if err := h.gw.Create(ctx, gateway.ResourceWorkOrderFromTemplate, req, &created); err != nil {
		abortUpstream(c, err)
		return
	}

	if h.pool != nil && req.AssignedTechEmail != nil && *req.AssignedTechEmail != "" {
		h.pool.Dispatch(notifier.Event{
			OrderID:       created.ID,
			Status:        created.Status,
			MachineSerial: req.MachineSerial,
			TechEmail:     *req.AssignedTechEmail,
		})
	}
	c.JSON(http.StatusCreated, created)
}

// ListWorkOrders handles GET /api/work-orders. include=tasks pulls the
// checklists along and derives progress per row; q and status narrow the
// result the way the dashboard filters do.
func (h *Handler) ListWorkOrders(c *gin.Context) {
	ctx := c.Request.Context()
	url := "/work-orders"
	includeTasks := c.Query("include") == "tasks"
	if includeTasks {
		url += "?include=tasks"
	}

	payload, err := h.gw.Custom(ctx, gateway.Request{Method: http.MethodGet, URL: url})
	if err != nil {
		abortUpstream(c, err)
		return
	}

	var orders []model.WorkOrder
	if err := json.Unmarshal(payload, &orders); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected work order list shape"})
		return
	}

	status := c.Query("status")
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	filtered := orders[:0]
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		if q != "" && !matchesOrder(o, q) {
			continue
		}
		filtered = append(filtered, o)
	}
	orders = filtered

	type orderRow struct {
		model.WorkOrder
		Progress *model.Progress `json:"progress,omitempty"`
	}
	rows := make([]orderRow, len(orders))
	for i, o := range orders {
		rows[i] = orderRow{WorkOrder: o}
		if includeTasks {
			p := model.ChecklistProgress(o.Tasks)
			rows[i].Progress = &p
		}
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows)})
}

func matchesOrder(o model.WorkOrder, q string) bool {
	for _, f := range []*string{o.CustomerName, o.MachineSerial, o.AssignedTechEmail, o.FolioSAI, o.SiteAddress} {
		if f != nil && strings.Contains(strings.ToLower(*f), q) {
			return true
		}
	}
	return false
}

// WorkOrderHeader handles GET /api/work-orders/:id. The header travels
// through the Custom verb because the gateway's GetOne for work orders is
// the materialized checklist, not the order itself.
func (h *Handler) WorkOrderHeader(c *gin.Context) {
	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodGet,
		URL:    "/work-orders/" + c.Param("id"),
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", orEmptyObject(payload))
}

// sectionTotals aggregates expected versus actual minutes.
type sectionTotals struct {
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
}

// WorkOrderChecklist handles GET /api/work-orders/:id/checklist: the
// materialized rows in execution order plus per-section and overall minute
// totals.
func (h *Handler) WorkOrderChecklist(c *gin.Context) {
	var tasks []model.WorkOrderTask
	if err := h.gw.GetOne(c.Request.Context(), gateway.ResourceWorkOrders, c.Param("id"), &tasks); err != nil {
		abortUpstream(c, err)
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })

	bySection := make(map[string]*sectionTotals)
	overall := sectionTotals{}
	for _, t := range tasks {
		st, ok := bySection[t.SectionTitle]
		if !ok {
			st = &sectionTotals{}
			bySection[t.SectionTitle] = st
		}
		st.Expected += t.ExpectedMinutes
		overall.Expected += t.ExpectedMinutes
		if t.ActualMinutes != nil {
			st.Actual += *t.ActualMinutes
			overall.Actual += *t.ActualMinutes
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":       tasks,
		"progress":   model.ChecklistProgress(tasks),
		"by_section": bySection,
		"overall":    overall,
	})
}

type checklistItemRequest struct {
	WorkOrderID   int64   `json:"work_order_id"`
	Status        *string `json:"status"`
	Observation   *string `json:"observation"`
	ActualMinutes *int    `json:"actual_minutes"`
	PhotoURL      *string `json:"photo_url"`
}

// UpdateChecklistItem handles PUT /api/work-order-tasks/:taskID. The request
// patch is merged over any staged draft, committed, and persisted upstream;
// a failed persist re-stages the draft so the edit survives for a retry.
func (h *Handler) UpdateChecklistItem(c *gin.Context) {
	taskID, ok := pathID(c, "taskID")
	if !ok {
		return
	}

	var req checklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status != nil && !model.ValidChecklistStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of " + strings.Join(model.ChecklistStatuses, ", ")})
		return
	}

	// The effective status may come from the request or from a staged draft.
	// Resolve it before touching the store so a rejected request has no side
	// effects on drafts.
	effectiveStatus := req.Status
	if effectiveStatus == nil {
		if prior, ok := h.drafts.Get(req.WorkOrderID, taskID); ok {
			effectiveStatus = prior.Status
		}
	}
	if effectiveStatus == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a status is required to save the row"})
		return
	}

	patch := draft.ChecklistDraft{
		Status:        req.Status,
		Observation:   req.Observation,
		ActualMinutes: req.ActualMinutes,
		PhotoURL:      req.PhotoURL,
	}
	h.drafts.Stage(req.WorkOrderID, taskID, patch)
	committed, _ := h.drafts.Commit(req.WorkOrderID, taskID)

	var updated model.WorkOrderTask
	if err := h.gw.Update(c.Request.Context(), gateway.ResourceWorkOrderTask, idString(taskID), committed, &updated); err != nil {
		h.drafts.Stage(req.WorkOrderID, taskID, committed)
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// StageChecklistDraft handles PUT /api/work-orders/:id/drafts/:taskID.
func (h *Handler) StageChecklistDraft(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskID")
	if !ok {
		return
	}

	var patch draft.ChecklistDraft
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Status != nil && !model.ValidChecklistStatus(*patch.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of " + strings.Join(model.ChecklistStatuses, ", ")})
		return
	}
	c.JSON(http.StatusOK, h.drafts.Stage(orderID, taskID, patch))
}

// DiscardChecklistDraft handles DELETE /api/work-orders/:id/drafts/:taskID.
func (h *Handler) DiscardChecklistDraft(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskID")
	if !ok {
		return
	}
	h.drafts.Discard(orderID, taskID)
	c.Status(http.StatusNoContent)
}

// ListChecklistDrafts handles GET /api/work-orders/:id/drafts.
func (h *Handler) ListChecklistDrafts(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.drafts.ForOrder(orderID))
}

type productionEditRequest struct {
	MachineSerial     *string `json:"machine_serial"`
	ScheduledAt       *string `json:"scheduled_at"`
	AssignedTechEmail *string `json:"assigned_tech_email"`
	TechSupport       *string `json:"tech_support"`
	FolioSAI          *string `json:"folio_sai"`
	InitialStatus     *string `json:"initial_status"`
	Comments          *string `json:"comments"`
	Status            *string `json:"status"`
}

// EditProduction handles PUT /api/work-orders/:id/production: the mutable
// production annotations of an order. A transition into CLOSED or FINISHED
// dispatches a completion event.
func (h *Handler) EditProduction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req productionEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodPut,
		URL:    "/work-orders/edit_prod/" + c.Param("id"),
		Body:   req,
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}

	if h.pool != nil && req.Status != nil &&
		(*req.Status == model.OrderStatusClosed || *req.Status == model.OrderStatusFinished) {
		ev := notifier.Event{OrderID: id, Status: *req.Status}
		if req.MachineSerial != nil {
			ev.MachineSerial = *req.MachineSerial
		}
		if req.AssignedTechEmail != nil {
			ev.TechEmail = *req.AssignedTechEmail
		}
		h.pool.Dispatch(ev)
	}
	c.Data(http.StatusOK, "application/json", orEmptyObject(payload))
}

type assignRequest struct {
	Email string `json:"email"`
}

// AssignTechnician handles POST /api/work-orders/:id/assign and notifies the
// technician of the new assignment.
func (h *Handler) AssignTechnician(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "technician email is required"})
		return
	}

	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodPut,
		URL:    "/work-orders/edit_prod/" + c.Param("id"),
		Body:   map[string]any{"assigned_tech_email": req.Email},
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}

	if h.pool != nil {
		h.pool.Dispatch(notifier.Event{OrderID: id, Status: "ASIGNADA", TechEmail: req.Email})
	}
	c.Data(http.StatusOK, "application/json", orEmptyObject(payload))
}

// CancelWorkOrder handles POST /api/work-orders/:id/cancel.
func (h *Handler) CancelWorkOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodPost,
		URL:    "/work-orders/" + c.Param("id") + "/cancel",
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}

	if h.pool != nil {
		h.pool.Dispatch(notifier.Event{OrderID: id, Status: model.OrderStatusCancelled})
	}
	c.Data(http.StatusOK, "application/json", orEmptyObject(payload))
}

// DeleteWorkOrder handles DELETE /api/work-orders/:id. The upstream exposes
// deletion on its own sub-route rather than the uniform shape.
func (h *Handler) DeleteWorkOrder(c *gin.Context) {
	if _, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodDelete,
		URL:    "/work-orders/delete/" + c.Param("id"),
	}); err != nil {
		abortUpstream(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCustomizations handles GET /api/work-orders/:id/customs.
func (h *Handler) ListCustomizations(c *gin.Context) {
	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodGet,
		URL:    "/customs/workorder/" + c.Param("id"),
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}

	var customs []model.Customization
	if err := json.Unmarshal(orEmptyList(payload), &customs); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected customization list shape"})
		return
	}

	total := 0.0
	for _, cu := range customs {
		total += cu.CustomValue
	}
	c.JSON(http.StatusOK, gin.H{"rows": customs, "total_points": total})
}

type customizationRequest struct {
	CustomTitle string  `json:"custom_title"`
	CustomValue float64 `json:"custom_value"`
}

// AddCustomization handles POST /api/work-orders/:id/customs.
func (h *Handler) AddCustomization(c *gin.Context) {
	var req customizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.CustomTitle) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "custom_title is required"})
		return
	}

	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodPost,
		URL:    "/customs/workorder/" + c.Param("id"),
		Body:   req,
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.Data(http.StatusCreated, "application/json", orEmptyObject(payload))
}

// RemoveCustomization handles DELETE /api/work-orders/:id/customs/:customID.
func (h *Handler) RemoveCustomization(c *gin.Context) {
	if _, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodDelete,
		URL:    "/customs/" + c.Param("customID"),
	}); err != nil {
		abortUpstream(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportWorkOrders handles GET /api/reports/work-orders: the order listing
// with checklist progress as a downloadable workbook.
func (h *Handler) ExportWorkOrders(c *gin.Context) {
	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodGet,
		URL:    "/work-orders?include=tasks",
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}

	var orders []model.WorkOrder
	if err := json.Unmarshal(payload, &orders); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected work order list shape"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="ordenes_trabajo.xlsx"`)
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if err := export.WorkOrders(c.Writer, orders); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// orEmptyList keeps JSON list responses well formed when the upstream
// answered with an empty body.
func orEmptyList(payload []byte) []byte {
	if len(payload) == 0 {
		return []byte("[]")
	}
	return payload
}
