package console

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/model"
)

// ListFamilies handles GET /api/families.
func (h *Handler) ListFamilies(c *gin.Context) {
	var families []model.MachineFamily
	total, err := h.gw.List(c.Request.Context(), gateway.ResourceFamilies, nil, nil, &families)
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": families, "total": total})
}

type familyRequest struct {
	Name string `json:"name"`
}

// CreateFamily handles POST /api/families.
func (h *Handler) CreateFamily(c *gin.Context) {
	var req familyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "family name must not be empty"})
		return
	}

	var created model.MachineFamily
	if err := h.gw.Create(c.Request.Context(), gateway.ResourceFamilies, req, &created); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateFamily handles PUT /api/families/:id.
func (h *Handler) UpdateFamily(c *gin.Context) {
	var req familyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "family name must not be empty"})
		return
	}

	var updated model.MachineFamily
	if err := h.gw.Update(c.Request.Context(), gateway.ResourceFamilies, c.Param("id"), req, &updated); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteFamily handles DELETE /api/families/:id.
func (h *Handler) DeleteFamily(c *gin.Context) {
	if _, err := h.gw.DeleteOne(c.Request.Context(), gateway.ResourceFamilies, c.Param("id")); err != nil {
		abortUpstream(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
