package model

// Template types used by the upstream API.
const (
	TemplateTypeMaintenance  = "MANTENIMIENTO"
	TemplateTypeInstallation = "INSTALACION"
)

// Template is a versioned, reusable checklist definition for a machine model.
// Publishing is a one-way transition; once published a template becomes
// eligible for materialization into work orders.
type Template struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	TemplateType string  `json:"template_type"`
	ModelID      *int64  `json:"model_id"`
	ModelName    *string `json:"model_name,omitempty"`
	Version      int     `json:"version"`
	IsPublished  bool    `json:"is_published"`
}

// Section is an ordered child of a Template. Position is a dense 1-based rank.
type Section struct {
	ID         int64  `json:"id"`
	TemplateID int64  `json:"template_id"`
	Title      string `json:"title"`
	Position   int    `json:"position"`
}

// Task is an ordered child of a Section.
type Task struct {
	ID              int64   `json:"id"`
	SectionID       int64   `json:"section_id"`
	Title           string  `json:"title"`
	Code            *string `json:"code"`
	ExpectedMinutes *int    `json:"expected_minutes"`
	Position        int     `json:"position"`
	Category        *string `json:"category,omitempty"`
}

// TemplateDetail is the drawer view of a template: its sections in display
// order, each with its tasks in display order.
type TemplateDetail struct {
	Template Template        `json:"template"`
	Sections []SectionDetail `json:"sections"`
}

// SectionDetail pairs a section with its tasks and the per-section expected
// minutes total.
type SectionDetail struct {
	Section
	Tasks           []Task `json:"tasks"`
	ExpectedMinutes int    `json:"expected_minutes_total"`
}
