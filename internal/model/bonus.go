package model

// PointValue converts bonus points into currency. The upstream reports points;
// payout is points times this factor.
const PointValue = 100

// BonusSummary is one technician's row of the production bonus report as
// returned by the upstream bonds endpoint.
type BonusSummary struct {
	TechnicianName  string  `json:"nombre_tecnico"`
	TechnicianEmail string  `json:"correo_tecnico"`
	OrderCount      int     `json:"conteo_ordenes"`
	MachinePoints   float64 `json:"suma_puntos_maquina"`
	CustomPoints    float64 `json:"suma_puntos_customs"`
	SecondaryPoints float64 `json:"puntos_secundario"`
	ExtraPoints     float64 `json:"puntos_extra"`
}

// TotalPoints sums the point categories that pay out.
func (b BonusSummary) TotalPoints() float64 {
	return b.MachinePoints + b.CustomPoints + b.SecondaryPoints
}

// Payout is the currency amount for this row.
func (b BonusSummary) Payout() float64 {
	return b.TotalPoints() * PointValue
}
