package console

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fieldops-console-backend/internal/roster"
)

// ListTechnicians handles GET /api/technicians: active roster rows only, the
// population the assignment pickers offer.
func (h *Handler) ListTechnicians(c *gin.Context) {
	if h.roster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "roster API is not configured"})
		return
	}

	techs, err := h.roster.ActiveTechnicians(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": techs, "total": len(techs)})
}

type notifyRequest struct {
	Email   string `json:"correo_tecnico"`
	Subject string `json:"asunto"`
	Message string `json:"mensaje"`
}

// NotifyTechnician handles POST /api/technicians/notify.
func (h *Handler) NotifyTechnician(c *gin.Context) {
	if h.roster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "roster API is not configured"})
		return
	}

	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "correo_tecnico and mensaje are required"})
		return
	}

	n := roster.Notification{Email: req.Email, Subject: req.Subject, Message: req.Message}
	if err := h.roster.Notify(c.Request.Context(), n); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

type registerRequest struct {
	Name  string `json:"nombre_tecnico"`
	Email string `json:"correo_tecnico"`
}

// RegisterOperator handles POST /api/technicians/register: issues operator
// login credentials for a technician through the identity service. The
// service's API key never leaves this process.
func (h *Handler) RegisterOperator(c *gin.Context) {
	if h.identity == nil || !h.identity.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity service is not configured"})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nombre_tecnico and correo_tecnico are required"})
		return
	}

	op, err := h.identity.CreateOperator(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, op)
}
