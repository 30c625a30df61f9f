package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownField is returned when a sort field name is not one of the invoice columns.
var ErrUnknownField = errors.New("unknown invoice field")

// SourceFetchError reports a failure of the data source to deliver the record set.
type SourceFetchError struct {
	// Source name of the data source, e.g. "postgrest".
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetch invoices from %s: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}
