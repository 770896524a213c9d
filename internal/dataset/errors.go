package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumns    = errors.New("missing required columns")
	ErrDuplicateID       = errors.New("duplicate restaurant id")
	ErrInvalidID         = errors.New("invalid id")
	ErrNoPriceColumn     = errors.New("restaurant table has neither price nor cost column")
	ErrUnknownSourceType = errors.New("unknown dataset source type")
)

// DataLoadError reports a dataset table that could not be read or is malformed.
// It is fatal at startup.
type DataLoadError struct {
	Table string
	Err   error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to load %s table: %v", e.Table, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

func loadError(table string, err error) error {
	var dle *DataLoadError
	if errors.As(err, &dle) {
		return err
	}
	return &DataLoadError{Table: table, Err: err}
}
