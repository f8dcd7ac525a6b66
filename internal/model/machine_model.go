package model

// MachineModel represents an equipment model within a family. BondValue is the
// point value a technician earns for completing an order on this model;
// StandardDays is the expected turnaround used by efficiency scoring upstream.
type MachineModel struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	FamilyID     *int64   `json:"family_id"`
	FamilyName   *string  `json:"family_name,omitempty"`
	Manufacturer *string  `json:"manufacturer"`
	BondValue    *float64 `json:"bond_value"`
	StandardDays *int     `json:"standard_days"`
}
