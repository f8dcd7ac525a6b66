package model

// Work order lifecycle statuses used by the upstream API.
const (
	OrderStatusOpen       = "OPEN"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusClosed     = "CLOSED"
	OrderStatusFinished   = "FINISHED"
	OrderStatusCancelled  = "CANCELLED"
)

// Checklist item statuses. PENDIENTE is the initial value of a materialized row.
const (
	TaskStatusOK       = "OK"
	TaskStatusFollowUp = "SEGUIMIENTO"
	TaskStatusCritical = "CRITICO"
	TaskStatusNA       = "NA"
	TaskStatusPending  = "PENDIENTE"
)

// ChecklistStatuses lists every value accepted for a checklist item.
var ChecklistStatuses = []string{
	TaskStatusOK,
	TaskStatusFollowUp,
	TaskStatusCritical,
	TaskStatusNA,
	TaskStatusPending,
}

// ValidChecklistStatus reports whether s is an accepted checklist item status.
func ValidChecklistStatus(s string) bool {
	for _, v := range ChecklistStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// WorkOrder is a materialized snapshot instance of a published template.
// Structural fields are fixed at materialization time; only the mutable
// fields (status, assignment, scheduling, production annotations) change.
type WorkOrder struct {
	ID                int64   `json:"id"`
	TemplateID        *int64  `json:"template_id"`
	TemplateVersion   *int    `json:"template_version"`
	ModelID           *int64  `json:"model_id"`
	MachineSerial     *string `json:"machine_serial"`
	CustomerName      *string `json:"customer_name"`
	SiteAddress       *string `json:"site_address"`
	AssignedTechEmail *string `json:"assigned_tech_email"`
	Status            string  `json:"status"`
	ScheduledAt       *string `json:"scheduled_at"`
	CreatedAt         *string `json:"created_at"`
	StartedAt         *string `json:"started_at"`
	FinishedAt        *string `json:"finished_at"`
	TechSupport       *string `json:"tech_support,omitempty"`
	FolioSAI          *string `json:"folio_sai,omitempty"`
	InitialStatus     *string `json:"initial_status,omitempty"`
	Comments          *string `json:"comments,omitempty"`

	Tasks   []WorkOrderTask `json:"tasks,omitempty"`
	Customs []Customization `json:"customs,omitempty"`
}

// WorkOrderTask is a denormalized checklist row, independent of the
// originating template task after creation.
type WorkOrderTask struct {
	ID              int64   `json:"id"`
	WorkOrderID     int64   `json:"work_order_id"`
	SectionTitle    string  `json:"section_title"`
	TaskTitle       string  `json:"task_title"`
	Code            *string `json:"code"`
	ExpectedMinutes int     `json:"expected_minutes"`
	Position        int     `json:"position"`
	Status          *string `json:"status"`
	Observation     *string `json:"observation"`
	ActualMinutes   *int    `json:"actual_minutes"`
	PhotoURL        *string `json:"photo_url"`
}

// Customization is an attachable point value added to a work order.
type Customization struct {
	ID          int64   `json:"id"`
	WorkOrderID int64   `json:"work_order_id,omitempty"`
	CustomTitle string  `json:"custom_title"`
	CustomValue float64 `json:"custom_value"`
}

// Progress summarizes checklist completion for a work order list row.
// Percent is completed over total, 0 when the checklist is empty.
type Progress struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

// ChecklistProgress derives completion from the checklist rows: a row counts
// as completed once it left PENDIENTE.
func ChecklistProgress(tasks []WorkOrderTask) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status != nil && *t.Status != TaskStatusPending {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Completed) / float64(p.Total) * 100
	}
	return p
}
