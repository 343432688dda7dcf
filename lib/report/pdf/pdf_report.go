package pdfreport

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	formapimodels "vessel-works-backend/models/api/form"
	workorderapimodels "vessel-works-backend/models/api/workorder"
)

// Generate renders the biofouling inspection report for one work order.
func Generate(workOrder workorderapimodels.WorkOrderView, entries []formapimodels.FormEntryView) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("pdf generation panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Vessel Inspection Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	writeMeta(pdf, "Reference", workOrder.ReferenceNumber)
	writeMeta(pdf, "Title", workOrder.Title)
	writeMeta(pdf, "Vessel", workOrder.VesselName)
	writeMeta(pdf, "Type", string(workOrder.Type))
	writeMeta(pdf, "Status", string(workOrder.Status))
	if workOrder.CompletedAt != nil {
		writeMeta(pdf, "Completed", workOrder.CompletedAt.Format("02.01.2006 15:04"))
	}
	pdf.Ln(6)

	for _, entry := range entries {
		writeEntry(pdf, entry)
	}

	if pdf.Error() != nil {
		return nil, pdf.Error()
	}
	buf := new(bytes.Buffer)
	if err = pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMeta(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func writeEntry(pdf *fpdf.Fpdf, entry formapimodels.FormEntryView) {
	pdf.SetFont("Helvetica", "B", 12)
	title := entry.ComponentName
	if entry.ComponentCategory != "" {
		title = fmt.Sprintf("%v (%v)", title, entry.ComponentCategory)
	}
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	writeField(pdf, "Status", string(entry.Status))
	writeField(pdf, "Condition", entry.Condition)
	if entry.FoulingRating != nil {
		writeField(pdf, "Fouling rating", fmt.Sprintf("%v", *entry.FoulingRating))
	}
	writeField(pdf, "Fouling type", entry.FoulingType)
	if entry.Coverage != nil {
		writeField(pdf, "Coverage", fmt.Sprintf("%v%%", *entry.Coverage))
	}
	writeField(pdf, "Coating condition", entry.CoatingCondition)
	writeField(pdf, "Corrosion", joinNonEmpty(entry.CorrosionType, entry.CorrosionSeverity))
	if entry.MeasurementValue != nil {
		writeField(pdf, "Measurement",
			fmt.Sprintf("%v: %v %v", entry.MeasurementType, *entry.MeasurementValue, entry.MeasurementUnit))
	}
	writeField(pdf, "Notes", entry.Notes)
	writeField(pdf, "Recommendation", entry.Recommendation)
	writeField(pdf, "Action required", entry.ActionRequired)
	if len(entry.Attachments) > 0 {
		writeField(pdf, "Attachments", fmt.Sprintf("%v image(s) on file", len(entry.Attachments)))
	}
	pdf.Ln(4)
}

func writeField(pdf *fpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(45, 5, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, value, "", "L", false)
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + ", " + b
}
