package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"coworking-reservation-server/internal/repository"

	"github.com/xuri/excelize/v2"
)

const reservationsSheet = "Reservations"

var reservationColumns = []string{
	"Reservation ID", "Workspace ID", "Workspace Type", "Price", "Customer", "Start", "End", "Created", "Status",
}

type ReportService struct {
	workspaceRepo   repository.WorkspaceRepository
	reservationRepo repository.ReservationRepository
}

func NewReportService(workspaceRepo repository.WorkspaceRepository, reservationRepo repository.ReservationRepository) *ReportService {
	return &ReportService{
		workspaceRepo:   workspaceRepo,
		reservationRepo: reservationRepo,
	}
}

// ReservationsWorkbook writes every reservation, active or cancelled, as an
// xlsx workbook to w.
func (s *ReportService) ReservationsWorkbook(ctx context.Context, w io.Writer) error {
	reservations, err := s.reservationRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reservationsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(reservationColumns))
	for i, col := range reservationColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(reservationsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end, _ := excelize.CoordinatesToCellName(len(reservationColumns), 1)
		_ = f.SetCellStyle(reservationsSheet, "A1", end, style)
	}

	type workspaceInfo struct{ kind, price string }
	workspaces := make(map[string]workspaceInfo)
	for i, r := range reservations {
		info, ok := workspaces[r.WorkspaceID]
		if !ok {
			ws, err := s.workspaceRepo.GetByID(ctx, r.WorkspaceID)
			if err != nil {
				return translateRepoError(err)
			}
			info = workspaceInfo{kind: ws.Type, price: ws.Price.StringFixed(2)}
			workspaces[r.WorkspaceID] = info
		}

		row := []interface{}{
			r.ID,
			r.WorkspaceID,
			info.kind,
			info.price,
			r.CustomerName,
			r.StartDateTime.Format(time.RFC3339),
			r.EndDateTime.Format(time.RFC3339),
			r.CreatedAt.Format(time.RFC3339),
			string(r.Status()),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(reservationsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
