package model

// Technician is a roster row from the secondary API. Field names follow that
// API's Spanish vocabulary verbatim.
type Technician struct {
	ID        int64  `json:"id"`
	Status    string `json:"estatus"`
	Branch    string `json:"sucursal"`
	Name      string `json:"nombre_tecnico"`
	Email     string `json:"correo_tecnico"`
	Phone     string `json:"telefono"`
	Role      string `json:"puesto"`
	BonusName string `json:"nombre_bonos"`
}
