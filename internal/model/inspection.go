package model

// Inspection order statuses. The quality workflow carries its own vocabulary,
// separate from work orders.
const (
	InspectionOpen       = "OPEN"
	InspectionInProgress = "IN_PROGRESS"
	InspectionPending    = "PENDING"
	InspectionClosed     = "CLOSED"
	InspectionFinished   = "FINISHED"
)

// ValidInspectionStatus reports whether s belongs to the inspection vocabulary.
func ValidInspectionStatus(s string) bool {
	switch s {
	case InspectionOpen, InspectionInProgress, InspectionPending, InspectionClosed, InspectionFinished:
		return true
	}
	return false
}

// InspectionOrder mirrors WorkOrder for the quality-inspection workflow.
type InspectionOrder struct {
	ID            int64            `json:"id"`
	WorkOrderID   *int64           `json:"work_order_id"`
	MachineSerial *string          `json:"machine_serial"`
	Inspector     *string          `json:"inspector"`
	Status        string           `json:"status"`
	CreatedAt     *string          `json:"created_at"`
	FinishedAt    *string          `json:"finished_at"`
	Evidence      []string         `json:"evidencias,omitempty"`
	Tasks         []InspectionTask `json:"tasks,omitempty"`
}

// InspectionTask mirrors WorkOrderTask for inspections.
type InspectionTask struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"order_id"`
	SectionTitle string  `json:"section_title"`
	TaskTitle    string  `json:"task_title"`
	Position     int     `json:"position"`
	Status       *string `json:"status"`
	Observation  *string `json:"observation"`
	PhotoURL     *string `json:"photo_url"`
}
