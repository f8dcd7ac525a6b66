// Package export writes XLSX reports for the console's download links.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fieldops-console-backend/internal/model"
)

// ContentType is the response content type for generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeSheet fills a single-sheet workbook with a bold header row plus data
// rows and streams it to w.
func writeSheet(w io.Writer, sheetName string, headers []string, data [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return f.Write(w)
}

// BonusSummary writes the production bonus report: one row per technician
// plus payout amounts.
func BonusSummary(w io.Writer, rows []model.BonusSummary) error {
	headers := []string{
		"Nombre Técnico", "Correo Técnico", "Órdenes Completadas",
		"Puntos Máquina", "Puntos Custom", "Puntos Op. Secundario", "Total Bono ($)",
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.TechnicianName,
			r.TechnicianEmail,
			r.OrderCount,
			strconv.FormatFloat(r.MachinePoints, 'f', 2, 64),
			strconv.FormatFloat(r.CustomPoints, 'f', 2, 64),
			strconv.FormatFloat(r.SecondaryPoints, 'f', 2, 64),
			strconv.FormatFloat(r.Payout(), 'f', 2, 64),
		})
	}
	return writeSheet(w, "Bonos Técnicos", headers, data)
}

// WorkOrders writes the work order listing with checklist progress.
func WorkOrders(w io.Writer, orders []model.WorkOrder) error {
	headers := []string{
		"ID", "Cliente", "Serie", "Técnico", "Estado",
		"Programada", "Creada", "Finalizada", "Avance (%)",
	}
	data := make([][]any, 0, len(orders))
	for _, o := range orders {
		progress := model.ChecklistProgress(o.Tasks)
		data = append(data, []any{
			o.ID,
			deref(o.CustomerName),
			deref(o.MachineSerial),
			deref(o.AssignedTechEmail),
			o.Status,
			deref(o.ScheduledAt),
			deref(o.CreatedAt),
			deref(o.FinishedAt),
			strconv.FormatFloat(progress.Percent, 'f', 1, 64),
		})
	}
	return writeSheet(w, "Órdenes de Trabajo", headers, data)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
