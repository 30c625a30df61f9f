package clients

import (
	"context"
	"slices"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

// StaticClient serves a fixed record set, or a fixed error.
type StaticClient struct {
	records []domain.Invoice
	err     error
}

// NewStaticClient creates a client returning records.
func NewStaticClient(records []domain.Invoice) *StaticClient {
	return &StaticClient{records: records}
}

// NewFailingClient creates a client whose every fetch fails with err.
func NewFailingClient(err error) *StaticClient {
	return &StaticClient{err: err}
}

// Name identifies the source in logs.
func (c *StaticClient) Name() string {
	return "static"
}

// FetchAll returns a copy of the configured records.
func (c *StaticClient) FetchAll(ctx context.Context) ([]domain.Invoice, error) {
	if c.err != nil {
		return nil, c.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(c.records), nil
}
