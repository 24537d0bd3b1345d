package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const statementSheet = "Statement"

var statementHeaders = []string{"Date", "Description", "Qty", "Unit Amount", "Amount"}

// StatementXLSX renders a client's statement of account as a
// spreadsheet and returns the bytes plus a download file name
func (s *AccountService) StatementXLSX(clientID uint, start, end string) ([]byte, string, error) {
	report, err := s.Statement(clientID, start, end)
	if err != nil {
		return nil, "", err
	}

	data, err := renderStatementXLSX(report)
	if err != nil {
		return nil, "", err
	}

	fileName := fmt.Sprintf("statement_%d_%s.xlsx", clientID, time.Now().Format("20060102"))
	return data, fileName, nil
}

func renderStatementXLSX(report *StatementReport) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(statementSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating title style: %w", err)
	}
	f.SetCellValue(statementSheet, "A1", "Statement of Account")
	f.SetCellStyle(statementSheet, "A1", "A1", titleStyle)
	f.SetCellValue(statementSheet, "A2", report.Client.CompanyName)
	f.SetCellValue(statementSheet, "A3", statementPeriod(report.Start, report.End))

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	const headerRow = 5
	for col, header := range statementHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("converting coordinates: %w", err)
		}
		f.SetCellValue(statementSheet, cell, header)
		f.SetCellStyle(statementSheet, cell, cell, headerStyle)
	}

	row := headerRow + 1
	for _, item := range report.Items {
		writeStatementRow(f, row, []interface{}{
			item.Date.Format("2006-01-02"), item.Description, item.Quantity, item.UnitAmount, item.Amount,
		})
		row++
	}
	for _, adhoc := range report.Adhoc {
		writeStatementRow(f, row, []interface{}{
			adhoc.UpdatedAt.Format("2006-01-02"), "Ad-hoc: " + adhoc.Title, float64(1), adhoc.Fee, adhoc.Fee,
		})
		row++
	}

	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating total style: %w", err)
	}

	row++
	writeStatementRow(f, row, []interface{}{"", "Items total", "", "", report.ItemsTotal})
	row++
	writeStatementRow(f, row, []interface{}{"", "Ad-hoc total", "", "", report.AdhocTotal})
	row++
	writeStatementRow(f, row, []interface{}{"", "Total", "", "", report.GrandTotal})
	if labelCell, err := excelize.CoordinatesToCellName(2, row); err == nil {
		f.SetCellStyle(statementSheet, labelCell, labelCell, totalStyle)
	}
	if amountCell, err := excelize.CoordinatesToCellName(5, row); err == nil {
		f.SetCellStyle(statementSheet, amountCell, amountCell, totalStyle)
	}

	for i, width := range statementColumnWidths(report) {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		f.SetColWidth(statementSheet, name, name, width)
	}

	if err := f.SetPanes(statementSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freezing header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func writeStatementRow(f *excelize.File, row int, values []interface{}) {
	for col, value := range values {
		if value == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		f.SetCellValue(statementSheet, cell, value)
	}
}

// statementColumnWidths sizes each column to its longest cell, within
// bounds that keep the sheet readable
func statementColumnWidths(report *StatementReport) []float64 {
	widths := make([]float64, len(statementHeaders))
	for i, header := range statementHeaders {
		widths[i] = float64(len(header))
	}

	note := func(col int, value string) {
		if w := float64(len(value)); w > widths[col] {
			widths[col] = w
		}
	}

	for _, item := range report.Items {
		note(1, item.Description)
		note(4, fmt.Sprintf("%.2f", item.Amount))
	}
	for _, adhoc := range report.Adhoc {
		note(1, "Ad-hoc: "+adhoc.Title)
		note(4, fmt.Sprintf("%.2f", adhoc.Fee))
	}
	note(0, "2006-01-02")
	note(4, fmt.Sprintf("%.2f", report.GrandTotal))

	for i := range widths {
		widths[i] += 2
		if widths[i] > 60 {
			widths[i] = 60
		}
		if widths[i] < 10 {
			widths[i] = 10
		}
	}
	return widths
}

func statementPeriod(start, end string) string {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf("Period: %s to %s", start, end)
	case start != "":
		return fmt.Sprintf("Period: from %s", start)
	case end != "":
		return fmt.Sprintf("Period: through %s", end)
	default:
		return "Period: all activity"
	}
}
