package console

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/model"
)

// ListInspections handles GET /api/inspections. The quality workflow lives on
// its own upstream route and always travels with its tasks.
func (h *Handler) ListInspections(c *gin.Context) {
	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodGet,
		URL:    "/quality/inspection/orders_all?include=tasks",
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}

	var orders []model.InspectionOrder
	if err := json.Unmarshal(orEmptyList(payload), &orders); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected inspection list shape"})
		return
	}

	if status := c.Query("status"); status != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	c.JSON(http.StatusOK, gin.H{"rows": orders, "total": len(orders)})
}

type inspectionStatusRequest struct {
	Status string `json:"status"`
}

// SetInspectionStatus handles POST /api/inspections/:id/status.
func (h *Handler) SetInspectionStatus(c *gin.Context) {
	var req inspectionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !model.ValidInspectionStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown inspection status " + req.Status})
		return
	}

	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodPost,
		URL:    "/quality/inspection/orders/" + c.Param("id") + "/status",
		Body:   req,
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", orEmptyObject(payload))
}

type inspectionTaskRequest struct {
	Status      *string `json:"status"`
	Observation *string `json:"observation"`
	PhotoURL    *string `json:"photo_url"`
}

// UpdateInspectionTask handles PUT /api/inspection-tasks/:taskID.
func (h *Handler) UpdateInspectionTask(c *gin.Context) {
	var req inspectionTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != nil && !model.ValidChecklistStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown task status " + *req.Status})
		return
	}

	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodPut,
		URL:    "/quality/inspection/tasks/" + c.Param("taskID"),
		Body:   req,
	})
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", orEmptyObject(payload))
}
