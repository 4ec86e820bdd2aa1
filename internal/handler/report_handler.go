package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"coworking-reservation-server/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Reservations streams every reservation as an xlsx workbook. The workbook is
// built in memory first so a failure can still be reported as JSON.
func (h *ReportHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.reportService.ReservationsWorkbook(r.Context(), &buf); err != nil {
		writeServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("reservations-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
