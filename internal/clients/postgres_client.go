package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

var invoiceColumns = []string{
	"id",
	"date_time",
	"user_name",
	"rub",
	"total_crypto",
	"type_crypto",
	"paymentMethodName",
	"paymentOption",
	"requisites",
	"holder",
	"status",
}

// PostgresClient reads the invoice table straight from PostgreSQL.
type PostgresClient struct {
	db    *sqlx.DB
	query string
}

// NewPostgresClient opens a connection pool for dsn. The connection itself is
// established lazily on the first fetch.
func NewPostgresClient(dsn, table string) (*PostgresClient, error) {
	if dsn == "" {
		return nil, errors.New("postgres DSN is empty")
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres connection")
	}
	db.SetMaxOpenConns(2)

	return &PostgresClient{db: db, query: selectInvoicesQuery(table)}, nil
}

// Name identifies the source in logs.
func (c *PostgresClient) Name() string {
	return "postgres"
}

// FetchAll selects every row of the table.
func (c *PostgresClient) FetchAll(ctx context.Context) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	if err := c.db.SelectContext(ctx, &invoices, c.query); err != nil {
		return nil, errors.Wrap(err, "select invoices")
	}
	return invoices, nil
}

// Close releases the connection pool.
func (c *PostgresClient) Close() error {
	return c.db.Close()
}

func selectInvoicesQuery(table string) string {
	if table == "" {
		table = defaultTable
	}
	quoted := make([]string, 0, len(invoiceColumns))
	for _, col := range invoiceColumns {
		quoted = append(quoted, pq.QuoteIdentifier(col))
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), pq.QuoteIdentifier(table))
}
