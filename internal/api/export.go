package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet = "Bookings"
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{"ID", "Item", "Booker", "Booker email", "Start", "End", "Status"}

func (h *handlers) exportOwnerBookings(c *gin.Context) {
	state, ok := stateParam(c)
	if !ok {
		return
	}
	ownerID := callerID(c)
	bookings, err := h.svc.Bookings.ExportForOwner(c.Request.Context(), ownerID, state)
	if err != nil {
		h.fail(c, err)
		return
	}

	data, err := bookingsWorkbook(bookings)
	if err != nil {
		h.fail(c, fmt.Errorf("build export: %w", err))
		return
	}

	fileName := fmt.Sprintf("bookings_%d_%s.xlsx", ownerID, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxMIME, data)
}

// bookingsWorkbook renders one row per booking under a bold header row.
func bookingsWorkbook(bookings []models.BookingDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, title := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(exportSheet, cell, title)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "G1", style)
	}

	for i, b := range bookings {
		row := i + 2
		name := ""
		if b.Item.Name != nil {
			name = *b.Item.Name
		}
		values := []any{
			b.ID,
			name,
			b.Booker.Name,
			b.Booker.Email,
			b.Start.UTC().Format(time.RFC3339),
			b.End.UTC().Format(time.RFC3339),
			string(b.Status),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(exportSheet, cell, v)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "D", 25)
	_ = f.SetColWidth(exportSheet, "E", "F", 22)
	_ = f.SetColWidth(exportSheet, "G", "G", 12)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
