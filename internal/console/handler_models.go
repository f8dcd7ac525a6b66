package console

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/model"
)

// ListModels handles GET /api/models. A q parameter filters by substring
// match over the denormalized display fields.
func (h *Handler) ListModels(c *gin.Context) {
	var models []model.MachineModel
	total, err := h.gw.List(c.Request.Context(), gateway.ResourceModels, nil, nil, &models)
	if err != nil {
		abortUpstream(c, err)
		return
	}

	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		filtered := models[:0]
		for _, m := range models {
			if matchesModel(m, q) {
				filtered = append(filtered, m)
			}
		}
		models = filtered
		total = len(models)
	}
	c.JSON(http.StatusOK, gin.H{"rows": models, "total": total})
}

func matchesModel(m model.MachineModel, q string) bool {
	if strings.Contains(strings.ToLower(m.Name), q) {
		return true
	}
	if m.Manufacturer != nil && strings.Contains(strings.ToLower(*m.Manufacturer), q) {
		return true
	}
	if m.FamilyName != nil && strings.Contains(strings.ToLower(*m.FamilyName), q) {
		return true
	}
	return false
}

type modelRequest struct {
	Name         string   `json:"name"`
	FamilyID     *int64   `json:"family_id"`
	Manufacturer *string  `json:"manufacturer"`
	BondValue    *float64 `json:"bond_value"`
	StandardDays *int     `json:"standard_days"`
}

// CreateModel handles POST /api/models.
func (h *Handler) CreateModel(c *gin.Context) {
	var req modelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "model name must not be empty"})
		return
	}

	var created model.MachineModel
	if err := h.gw.Create(c.Request.Context(), gateway.ResourceModels, req, &created); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateModel handles PUT /api/models/:id.
func (h *Handler) UpdateModel(c *gin.Context) {
	var req modelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "model name must not be empty"})
		return
	}

	var updated model.MachineModel
	if err := h.gw.Update(c.Request.Context(), gateway.ResourceModels, c.Param("id"), req, &updated); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteModel handles DELETE /api/models/:id.
func (h *Handler) DeleteModel(c *gin.Context) {
	if _, err := h.gw.DeleteOne(c.Request.Context(), gateway.ResourceModels, c.Param("id")); err != nil {
		abortUpstream(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
