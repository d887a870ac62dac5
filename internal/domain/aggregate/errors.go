package aggregate

import "errors"

// Sentinel error kinds for aggregate reducers.
var (
	ErrNoRecords = errors.New("no records for category")
)
