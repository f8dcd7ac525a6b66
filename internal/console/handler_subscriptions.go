package console

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldops-console-backend/internal/store"
)

// GetSubscription handles GET /api/subscriptions?endpoint=.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	sub, ok := h.subs.Get(endpoint)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

// PutSubscription handles PUT /api/subscriptions: create or replace the
// subscription for a browser endpoint along with its watched orders.
func (h *Handler) PutSubscription(c *gin.Context) {
	var sub store.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if sub.Endpoint == "" || sub.P256DH == "" || sub.Auth == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint, p256dh and auth are required"})
		return
	}

	h.subs.Put(sub)
	c.JSON(http.StatusOK, sub)
}

// DeleteSubscription handles DELETE /api/subscriptions?endpoint=.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}
	h.subs.Delete(endpoint)
	c.Status(http.StatusNoContent)
}

// GetVAPIDPublicKey handles GET /api/vapid_public_key. Browsers need the
// public half to subscribe; without configured keys push is off.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
