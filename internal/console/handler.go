// Package console exposes the admin console's own HTTP surface. Every
// handler is a thin cycle over the gateway: validate, call upstream, surface
// the upstream's message verbatim on failure.
package console

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"fieldops-console-backend/internal/draft"
	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/identity"
	"fieldops-console-backend/internal/notifier"
	"fieldops-console-backend/internal/roster"
	"fieldops-console-backend/internal/store"
)

// Handler holds shared dependencies for console handlers.
type Handler struct {
	gw       *gateway.Gateway
	roster   *roster.Client
	identity *identity.Client
	drafts   *draft.Store
	subs     store.SubscriptionStore
	pool     *notifier.WorkerPool
	webpush  *webpush.Options
}

// NewHandler creates a console handler.
func NewHandler(gw *gateway.Gateway, rosterClient *roster.Client, identityClient *identity.Client,
	drafts *draft.Store, subs store.SubscriptionStore, pool *notifier.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		gw:       gw,
		roster:   rosterClient,
		identity: identityClient,
		drafts:   drafts,
		subs:     subs,
		pool:     pool,
		webpush:  webpushOptions,
	}
}

// abortUpstream maps a gateway failure onto the console response: missing
// required parameters are the caller's fault, upstream failures keep the
// upstream status and message, anything else is a bad gateway.
func abortUpstream(c *gin.Context, err error) {
	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, gateway.ErrMissingParam):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message})
	default:
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// pathID parses a numeric path parameter, aborting with 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// idString formats an already parsed id for gateway paths.
func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
