package internal

import (
	"fmt"

	"github.com/vadiminshakov/invoiceview/config"
	"github.com/vadiminshakov/invoiceview/internal/clients"
	"github.com/vadiminshakov/invoiceview/internal/services/view"
)

// createSource is the single point of dispatch from the configured source kind
// to its client.
func createSource(conf config.Config) (view.Source, error) {
	switch conf.Source {
	case config.SourcePostgrest:
		return clients.NewPostgrestClient(conf.URL, conf.APIKey, conf.Table, conf.FetchTimeout), nil
	case config.SourcePostgres:
		return clients.NewPostgresClient(conf.DSN, conf.Table)
	case config.SourceCSV:
		return clients.NewCSVClient(conf.CSVPath), nil
	default:
		return nil, fmt.Errorf("unsupported source: %s", conf.Source)
	}
}
