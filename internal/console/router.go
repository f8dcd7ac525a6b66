package console

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fieldops-console-backend/config"
	"fieldops-console-backend/internal/mw"
)

// NewRouter creates and configures the console's Gin router. Child resources
// hang off their parent path so the upstream's parent-id requirement is
// always satisfied by construction.
func NewRouter(cfg *config.ServerConfig, h *Handler) *gin.Engine {
	r := gin.Default()

	limiter := mw.RateLimit(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	listCache := cache.New(ttl, 2*ttl)
	caching := mw.CacheLists(listCache, ttl)

	api := r.Group("/api")
	api.Use(limiter)
	{
		api.GET("/families", caching, h.ListFamilies)
		api.POST("/families", h.CreateFamily)
		api.PUT("/families/:id", h.UpdateFamily)
		api.DELETE("/families/:id", h.DeleteFamily)

		api.GET("/models", caching, h.ListModels)
		api.POST("/models", h.CreateModel)
		api.PUT("/models/:id", h.UpdateModel)
		api.DELETE("/models/:id", h.DeleteModel)

		api.GET("/templates", caching, h.ListTemplates)
		api.POST("/templates", h.CreateTemplate)
		api.PUT("/templates/:id", h.UpdateTemplate)
		api.POST("/templates/:id/publish", h.PublishTemplate)
		api.GET("/templates/:id/detail", h.TemplateDetail)
		api.GET("/templates/:id/sections", h.ListSections)
		api.POST("/templates/:id/sections", h.CreateSection)
		api.PATCH("/templates/:id/sections/reorder", h.ReorderSections)

		api.PUT("/sections/:id", h.UpdateSection)
		api.DELETE("/sections/:id", h.DeleteSection)
		api.GET("/sections/:id/tasks", h.ListTasks)
		api.POST("/sections/:id/tasks", h.CreateTask)
		api.PATCH("/sections/:id/tasks/reorder", h.ReorderTasks)

		api.PUT("/tasks/:id", h.UpdateTask)
		api.DELETE("/tasks/:id", h.DeleteTask)

		api.GET("/work-orders", h.ListWorkOrders)
		api.POST("/work-orders", h.MaterializeWorkOrder)
		api.GET("/work-orders/:id", h.WorkOrderHeader)
		api.GET("/work-orders/:id/checklist", h.WorkOrderChecklist)
		api.PUT("/work-orders/:id/production", h.EditProduction)
		api.POST("/work-orders/:id/assign", h.AssignTechnician)
		api.POST("/work-orders/:id/cancel", h.CancelWorkOrder)
		api.DELETE("/work-orders/:id", h.DeleteWorkOrder)
		api.GET("/work-orders/:id/drafts", h.ListChecklistDrafts)
		api.PUT("/work-orders/:id/drafts/:taskID", h.StageChecklistDraft)
		api.DELETE("/work-orders/:id/drafts/:taskID", h.DiscardChecklistDraft)
		api.GET("/work-orders/:id/customs", h.ListCustomizations)
		api.POST("/work-orders/:id/customs", h.AddCustomization)
		api.DELETE("/work-orders/:id/customs/:customID", h.RemoveCustomization)

		api.PUT("/work-order-tasks/:taskID", h.UpdateChecklistItem)

		api.GET("/inspections", h.ListInspections)
		api.POST("/inspections/:id/status", h.SetInspectionStatus)
		api.PUT("/inspection-tasks/:taskID", h.UpdateInspectionTask)

		api.GET("/bonuses", h.BonusSummary)

		api.GET("/reports/bonuses", h.ExportBonuses)
		api.GET("/reports/work-orders", h.ExportWorkOrders)

		api.GET("/technicians", caching, h.ListTechnicians)
		api.POST("/technicians/notify", h.NotifyTechnician)
		api.POST("/technicians/register", h.RegisterOperator)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
