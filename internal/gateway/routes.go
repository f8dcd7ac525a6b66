package gateway

import (
	"fmt"
	"net/url"
)

// Logical resource names understood by the gateway. The route table below is
// the closed set of per-resource irregularities; everything absent from it
// follows the default /{resource} shape.
const (
	ResourceFamilies              = "machine-families"
	ResourceModels                = "machine-models"
	ResourceTemplates             = "templates"
	ResourceSections              = "sections"
	ResourceTasks                 = "tasks"
	ResourceWorkOrders            = "work-orders"
	ResourceWorkOrderFromTemplate = "work-orders-from-template"
	ResourceWorkOrderTask         = "work-order-task"
)

// routes fixes the non-uniform endpoints for one resource kind. Adding a
// special case is an entry here, not another branch inside the verbs.
type routes struct {
	// list builds the relative list URL, query string included.
	list func(filters []Filter, meta *Meta) (string, error)
	// getOne builds the relative single-row URL.
	getOne func(id string) string
	// create overrides the POST path.
	create string
	// unwrapCreate strips (possibly nested) {"data": ...} envelopes from the
	// create response.
	unwrapCreate bool
	// update builds the relative PUT URL.
	update func(id string) string
}

// childList returns a list route requiring a parent id parameter. A missing
// parent id is an error rather than a "?param=undefined" URL; the upstream
// contract for the undefined form was never pinned down, so the gateway
// refuses to guess.
func childList(resource, param string) func([]Filter, *Meta) (string, error) {
	return func(filters []Filter, meta *Meta) (string, error) {
		v, ok := queryValue(filters, meta, param)
		if !ok || v == nil {
			return "", fmt.Errorf("%w: %s requires %s", ErrMissingParam, resource, param)
		}
		return fmt.Sprintf("/%s?%s=%s", resource, param, url.QueryEscape(fmt.Sprint(v))), nil
	}
}

var routeTable = map[string]routes{
	ResourceSections: {
		list: childList("sections", "template_id"),
	},
	ResourceTasks: {
		list: childList("tasks", "section_id"),
	},
	ResourceWorkOrders: {
		// The single-row view of a work order is its materialized checklist,
		// not the order header. Callers wanting the header go through Custom.
		getOne: func(id string) string { return "/work-orders/" + id + "/tasks" },
	},
	ResourceWorkOrderFromTemplate: {
		create:       "/work-orders/from-template",
		unwrapCreate: true,
	},
	ResourceWorkOrderTask: {
		update: func(id string) string { return "/work-orders/tasks/" + id },
	},
}
