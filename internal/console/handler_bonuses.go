package console

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"fieldops-console-backend/internal/export"
	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/model"
)

type bonusRow struct {
	model.BonusSummary
	TotalPoints float64 `json:"total_puntos"`
	Payout      float64 `json:"total_bono"`
}

// fetchBonuses pulls the bonus report for the inicio..fin window. Both bounds
// are required; the upstream silently returns garbage for half-open windows.
func (h *Handler) fetchBonuses(c *gin.Context) ([]model.BonusSummary, bool) {
	inicio := c.Query("inicio")
	fin := c.Query("fin")
	if inicio == "" || fin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inicio and fin are required"})
		return nil, false
	}

	q := url.Values{}
	q.Set("inicio", inicio)
	q.Set("fin", fin)
	payload, err := h.gw.Custom(c.Request.Context(), gateway.Request{
		Method: http.MethodGet,
		URL:    "/bonds/visualizar?" + q.Encode(),
	})
	if err != nil {
		abortUpstream(c, err)
		return nil, false
	}

	var envelope struct {
		Resumen []model.BonusSummary `json:"resumen"`
	}
	if err := json.Unmarshal(orEmptyObject(payload), &envelope); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected bonus report shape"})
		return nil, false
	}
	return envelope.Resumen, true
}

// BonusSummary handles GET /api/bonuses?inicio=&fin=: the per-technician
// production bonus report with derived payout amounts and a grand total.
func (h *Handler) BonusSummary(c *gin.Context) {
	summaries, ok := h.fetchBonuses(c)
	if !ok {
		return
	}

	rows := make([]bonusRow, len(summaries))
	grandTotal := 0.0
	for i, s := range summaries {
		rows[i] = bonusRow{BonusSummary: s, TotalPoints: s.TotalPoints(), Payout: s.Payout()}
		grandTotal += s.Payout()
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows), "total_bonos": grandTotal})
}

// ExportBonuses handles GET /api/reports/bonuses?inicio=&fin=: the same
// report as a downloadable workbook.
func (h *Handler) ExportBonuses(c *gin.Context) {
	summaries, ok := h.fetchBonuses(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bonos_tecnicos.xlsx"`)
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if err := export.BonusSummary(c.Writer, summaries); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
