package xlsreport

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	formapimodels "vessel-works-backend/models/api/form"
	workorderapimodels "vessel-works-backend/models/api/workorder"
)

var entryHeaders = []string{
	"Component", "Category", "Status", "Condition", "Fouling rating",
	"Fouling type", "Coverage %", "Coating condition", "Corrosion type",
	"Corrosion severity", "Measurement", "Notes", "Recommendation", "Action required",
}

var registerHeaders = []string{
	"Reference", "Title", "Vessel", "Type", "Priority", "Status", "Created", "Completed",
}

// GenerateInspection builds the per-component inspection sheet for one
// work order.
func GenerateInspection(entries []formapimodels.FormEntryView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer closeFile(f)
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, entryHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write xlsx header")
	}
	for _, entry := range entries {
		row++
		values := []interface{}{
			entry.ComponentName,
			entry.ComponentCategory,
			string(entry.Status),
			entry.Condition,
			intOrBlank(entry.FoulingRating),
			entry.FoulingType,
			intOrBlank(entry.Coverage),
			entry.CoatingCondition,
			entry.CorrosionType,
			entry.CorrosionSeverity,
			measurement(entry),
			entry.Notes,
			entry.Recommendation,
			entry.ActionRequired,
		}
		if err = writeRow(f, sheet, row, values); err != nil {
			return nil, errors.Wrap(err, "failed to write xlsx data row")
		}
	}
	f.SetSheetName(sheet, "Inspection")
	return f.WriteToBuffer()
}

// GenerateRegister builds the work-order register export.
func GenerateRegister(list []workorderapimodels.WorkOrderView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer closeFile(f)
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, registerHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write xlsx header")
	}
	for _, item := range list {
		row++
		completed := ""
		if item.CompletedAt != nil {
			completed = item.CompletedAt.Format("02.01.2006")
		}
		values := []interface{}{
			item.ReferenceNumber,
			item.Title,
			item.VesselName,
			string(item.Type),
			string(item.Priority),
			string(item.Status),
			item.CreatedAt.Format("02.01.2006"),
			completed,
		}
		if err = writeRow(f, sheet, row, values); err != nil {
			return nil, errors.Wrap(err, "failed to write xlsx data row")
		}
	}
	f.SetSheetName(sheet, "Work orders")
	return f.WriteToBuffer()
}

func closeFile(f *excelize.File) {
	if err := f.Close(); err != nil {
		log.WithError(err).Error("failed to close xlsx file")
	}
}

func writeColumn(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for idx, value := range values {
		if err := writeColumn(f, sheet, idx+1, row, value); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string) (int, error) {
	row++
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
	})
	if err != nil {
		return row, err
	}
	cellFirst, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return row, err
	}
	cellLast, err := excelize.CoordinatesToCellName(len(headers), row)
	if err != nil {
		return row, err
	}
	if err = f.SetCellStyle(sheet, cellFirst, cellLast, style); err != nil {
		return row, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return row, err
	}
	if err = f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return row, err
	}
	for idx, value := range headers {
		if err = writeColumn(f, sheet, idx+1, row, value); err != nil {
			return row, err
		}
	}
	return row, nil
}

func intOrBlank(value *int) interface{} {
	if value == nil {
		return ""
	}
	return *value
}

func measurement(entry formapimodels.FormEntryView) string {
	if entry.MeasurementValue == nil {
		return ""
	}
	return fmt.Sprintf("%v: %v %v", entry.MeasurementType, *entry.MeasurementValue, entry.MeasurementUnit)
}
