package handlers

import (
	"fmt"
	"net/http"
	"time"

	"dealerinspect/middleware"
	"dealerinspect/models"
	"dealerinspect/pkg/inspection"
	"dealerinspect/utils"
)

// ExportVehicleResults downloads one vehicle's saved snapshot as a
// spreadsheet. This is a verbatim dump of the stored result, not a report
// aggregation.
// GET /api/v1/vehicles/{id}/results/export?purpose=inspection&format=xlsx
func ExportVehicleResults(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	v, ok := loadVehicle(w, r, companyID)
	if !ok {
		return
	}

	purpose := r.URL.Query().Get("purpose")
	if purpose == "" {
		purpose = v.Type
	}
	if err := inspection.ValidatePurpose(purpose); err != nil {
		writeError(w, err)
		return
	}

	var rows []utils.ResultRow
	if purpose == models.PurposeTradeIn {
		secs, err := v.TradeInSnapshot()
		if err != nil {
			writeError(w, &inspection.ValidationError{Invariant: "stored trade-in snapshot is not parseable"})
			return
		}
		rows = utils.FlattenTradeIn(secs)
	} else {
		cats, err := v.InspectionSnapshot()
		if err != nil {
			writeError(w, &inspection.ValidationError{Invariant: "stored inspection snapshot is not parseable"})
			return
		}
		rows = utils.FlattenInspection(cats)
	}

	base := fmt.Sprintf("%s_%s_%s", utils.SanitizeFilename(v.StockID), purpose,
		time.Now().Format("20060102_150405"))

	if r.URL.Query().Get("format") == "csv" {
		data, err := utils.ResultsCSV(rows)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", base))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	book, err := utils.ResultsWorkbook("Results", rows)
	if err != nil {
		writeError(w, err)
		return
	}
	buffer, err := book.WriteToBuffer()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", base))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}
