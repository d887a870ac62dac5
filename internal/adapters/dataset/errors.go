package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrDirectoryMissing = errors.New("data directory missing")
	ErrDatasetNotFound  = errors.New("dataset not found")
	ErrMalformedDataset = errors.New("malformed dataset")
)
