package store

import "errors"

var (
	ErrExecutingQuery = errors.New("failed to execute query")
	ErrScanningRow    = errors.New("failed to scan row")
	ErrScanningRows   = errors.New("error during rows iteration")
	ErrBuildingQuery  = errors.New("failed to build query")
)
