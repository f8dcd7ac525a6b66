package gateway

// Filter is one node of a view's filter tree. A node is logical when Field is
// non-empty and conditional when it groups child nodes under Filters. The
// tree shape mirrors what list views send: a flat list of logical filters,
// occasionally wrapped in and/or groups.
type Filter struct {
	Field    string
	Operator string
	Value    any
	Filters  []Filter
}

// Meta carries per-call extras alongside a verb: an explicit query-parameter
// bag (which takes precedence over the filter tree) and extra headers.
type Meta struct {
	QueryParams map[string]any
	Headers     map[string]string
}

// FilterValue walks the filter tree depth-first in document order and returns
// the value of the first logical node whose field matches. The second return
// is false when no node matches.
func FilterValue(filters []Filter, field string) (any, bool) {
	for _, f := range filters {
		if f.Field != "" {
			if f.Field == field {
				return f.Value, true
			}
			continue
		}
		if v, ok := FilterValue(f.Filters, field); ok {
			return v, true
		}
	}
	return nil, false
}

// queryValue resolves a required child-list parameter: meta query params win,
// then the filter tree.
func queryValue(filters []Filter, meta *Meta, field string) (any, bool) {
	if meta != nil {
		if v, ok := meta.QueryParams[field]; ok {
			return v, true
		}
	}
	return FilterValue(filters, field)
}
