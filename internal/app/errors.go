package service

import (
	"context"
	"errors"

	"github.com/okian/recap/internal/adapters/dataset"
	"github.com/okian/recap/internal/adapters/export"
	"github.com/okian/recap/internal/domain/aggregate"
	"github.com/okian/recap/internal/domain/series"
)

// ErrNotStarted is returned by section builders before Start.
var ErrNotStarted = errors.New("report service not started")

// Section error codes.
const (
	CodeDatasetNotFound   = "dataset_not_found"
	CodeDirectoryMissing  = "directory_missing"
	CodeMalformedDataset  = "malformed_dataset"
	CodeEmptyObservations = "empty_observations"
	CodeNoRecords         = "no_records"
	CodeInvalidSeries     = "invalid_series"
	CodeCanceled          = "canceled"
	CodeInternal          = "internal"
)

// Code classifies err into a stable section error code.
func Code(err error) string {
	switch {
	case errors.Is(err, dataset.ErrDirectoryMissing):
		return CodeDirectoryMissing
	case errors.Is(err, dataset.ErrDatasetNotFound):
		return CodeDatasetNotFound
	case errors.Is(err, dataset.ErrMalformedDataset):
		return CodeMalformedDataset
	case errors.Is(err, series.ErrEmptyObservations), errors.Is(err, export.ErrEmptySeries):
		return CodeEmptyObservations
	case errors.Is(err, aggregate.ErrNoRecords):
		return CodeNoRecords
	case errors.Is(err, series.ErrDuplicateDate),
		errors.Is(err, series.ErrInvalidRange),
		errors.Is(err, series.ErrMissingCutoff),
		errors.Is(err, series.ErrUnknownPolicy):
		return CodeInvalidSeries
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeInternal
	}
}
