package model

// MachineFamily represents a flat equipment family. There is no hierarchy
// below the family level.
type MachineFamily struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
