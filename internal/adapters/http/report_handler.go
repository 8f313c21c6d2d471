package httpadapter

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// usageReport streams the per-user usage aggregate as a spreadsheet.
func (rt *Router) usageReport(w http.ResponseWriter, r *http.Request) {
	report, err := rt.reports.UsageReport(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	book := excelize.NewFile()
	defer book.Close()

	const sheet = "Usage"
	index, err := book.NewSheet(sheet)
	if err != nil {
		writeError(w, err)
		return
	}
	book.SetActiveSheet(index)
	_ = book.DeleteSheet("Sheet1")

	headers := []string{"Name", "Email", "Documents", "Exports", "Last upload"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = book.SetCellValue(sheet, cell, header)
	}

	for i, row := range report {
		lastUpload := ""
		if !row.LastUploadAt.IsZero() {
			lastUpload = row.LastUploadAt.Format(time.RFC3339)
		}
		values := []any{row.UserName, row.UserEmail, row.DocumentCount, row.ExportCount, lastUpload}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = book.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("usage_report_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := book.Write(w); err != nil {
		slog.Error("usage_report_write_failed", "error", err)
	}
}
