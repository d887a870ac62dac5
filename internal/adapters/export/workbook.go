// Package export writes reconstructed series as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/okian/recap/internal/domain/series"
	"github.com/okian/recap/pkg/metrics"
)

// Header is the first row of an exported sheet.
var Header = []any{"date", "count", "daily_delta"}

// WriteSeries writes s as an xlsx workbook with one row per day.
func WriteSeries(w io.Writer, s series.Series, opts ...Option) error {
	if len(s.Points) == 0 {
		return ErrEmptySeries
	}
	cfg := config{sheet: DefaultSheet, dateFormat: DefaultDateFormat}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := fill(f, s, cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteWorkbook, err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteWorkbook, err)
	}
	metrics.RecordExport(len(s.Points))
	return nil
}

// SaveSeries writes the workbook to path.
func SaveSeries(path string, s series.Series, opts ...Option) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteWorkbook, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWriteWorkbook, cerr)
		}
	}()
	return WriteSeries(out, s, opts...)
}

func fill(f *excelize.File, s series.Series, cfg config) error {
	if err := f.SetSheetName(f.GetSheetName(0), cfg.sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(cfg.sheet, "A1", &Header); err != nil {
		return err
	}

	deltas := s.Deltas()
	for i, p := range s.Points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{p.Date, p.Value, deltas[i]}
		if err := f.SetSheetRow(cfg.sheet, cell, &row); err != nil {
			return err
		}
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &cfg.dateFormat})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(1, len(s.Points)+1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(cfg.sheet, "A2", last, dateStyle); err != nil {
		return err
	}
	return f.SetColWidth(cfg.sheet, "A", "A", 12)
}
