package render

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/xrdthermo/internal/peak"
	"github.com/xuri/excelize/v2"
)

// Sheet names in exported workbooks.
const (
	SummarySheet = "Summary"
	SamplesSheet = "Samples"
)

// XLSX writes curve to a workbook at path.
func XLSX(path string, curve peak.Curve) error {
	f, err := workbook(curve)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteXLSX streams the workbook for curve to w.
func WriteXLSX(w io.Writer, curve peak.Curve) error {
	f, err := workbook(curve)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func workbook(curve peak.Curve) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("summary sheet: %w", err)
	}

	p := curve.Params
	summary := [][]any{
		{"Field", "Value"},
		{"Peak position (2θ°)", p.Position},
		{"FWHM (°)", p.Width},
		{"Intensity (a.u.)", p.Height},
		{"Peak shift (°)", p.Shift()},
		{"Temperature (°C)", temperatureOf(curve)},
		{"X min (2θ°)", curve.Axis.XMin},
		{"X max (2θ°)", curve.Axis.XMax},
		{"Y max", curve.Axis.YMax},
		{"Range", curve.Axis.Label},
		{"Severity", curve.Axis.Severity.String()},
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(SamplesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("samples sheet: %w", err)
	}
	rows := make([][]any, 0, len(curve.Samples)+1)
	rows = append(rows, []any{"2θ (°)", "Intensity (a.u.)", "Temperature (°C)"})
	for _, s := range curve.Samples {
		rows = append(rows, []any{s.Angle, s.Intensity, s.Temperature})
	}
	if err := writeRows(f, SamplesSheet, rows); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
