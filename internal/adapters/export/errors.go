package export

import "errors"

// Sentinel kinds for export errors.
var (
	ErrEmptySeries   = errors.New("series has no points to export")
	ErrWriteWorkbook = errors.New("write workbook")
)
