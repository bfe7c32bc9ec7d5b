package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/i18n"
	"github.com/diewo77/go-crm-panel/internal/models"
	"github.com/diewo77/go-crm-panel/internal/session"
)

const exportSheet = "Clients"

var exportColumns = []struct {
	code  string
	width float64
}{
	{"col_client", 24},
	{"col_email", 28},
	{"col_phone", 18},
	{"col_company", 22},
	{"col_position", 18},
	{"col_timezone", 22},
	{"col_last_update", 26},
}

// Export downloads the selected clients as an XLSX workbook.
func (h *ClientHandler) Export(w http.ResponseWriter, r *http.Request) {
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if st.Selection.Count() == 0 {
		st.Flash(session.NoticeError, tr(r, "notice_nothing_selected"))
		h.redirect(w, r, st, "/clients")
		return
	}
	clients, err := h.backend.ListClients(r.Context())
	if err != nil {
		h.flashFailure(r, st, "list_clients", err, "error_generic_load")
		h.redirect(w, r, st, "/clients")
		return
	}
	selected := make([]models.Client, 0, st.Selection.Count())
	for _, c := range clients {
		if st.Selection.Has(c.ID) {
			selected = append(selected, c)
		}
	}
	body, err := ExportWorkbook(i18n.LangFromContext(r.Context()), selected)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.save(r, st)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="clients.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if _, err := w.Write(body); err != nil {
		h.log().Warn("export write failed", zap.Error(err))
	}
}

// ExportWorkbook renders clients into a single-sheet workbook with a frozen,
// bold header row.
func ExportWorkbook(lang string, clients []models.Client) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	for i, col := range exportColumns {
		if err := setCell(f, i+1, 1, i18n.T(lang, col.code)); err != nil {
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, name, name, col.width); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, header); err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	for i, c := range clients {
		phone := c.Phone
		if cc := models.Str(c.CountryCode); cc != "" {
			phone = "+" + cc + " " + phone
		}
		row := []any{c.Name, c.Email, phone, c.Company, c.Position, models.Str(c.Timezone), c.LastUpdateLabel()}
		for col, v := range row {
			if err := setCell(f, col+1, i+2, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("export: freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("export: write: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(exportSheet, cell, v); err != nil {
		return fmt.Errorf("export: cell %s: %w", cell, err)
	}
	return nil
}
