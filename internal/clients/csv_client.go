package clients

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

// CSVClient reads invoices from a CSV export of the table. The header must use
// the table's column names; empty cells are treated as null.
type CSVClient struct {
	path string
}

// NewCSVClient creates a client reading the file at path.
func NewCSVClient(path string) *CSVClient {
	return &CSVClient{path: path}
}

// Name identifies the source in logs.
func (c *CSVClient) Name() string {
	return "csv"
}

type csvRow struct {
	ID                string `csv:"id"`
	DateTime          string `csv:"date_time"`
	UserName          string `csv:"user_name"`
	Rub               string `csv:"rub"`
	TotalCrypto       string `csv:"total_crypto"`
	TypeCrypto        string `csv:"type_crypto"`
	PaymentMethodName string `csv:"paymentMethodName"`
	PaymentOption     string `csv:"paymentOption"`
	Requisites        string `csv:"requisites"`
	Holder            string `csv:"holder"`
	Status            string `csv:"status"`
}

// FetchAll parses the whole file.
func (c *CSVClient) FetchAll(ctx context.Context) ([]domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, errors.Wrap(err, "open csv")
	}
	defer f.Close()

	var rows []csvRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, errors.Wrapf(err, "parse csv %s", c.path)
	}

	invoices := make([]domain.Invoice, 0, len(rows))
	for i, row := range rows {
		inv, err := row.toInvoice()
		if err != nil {
			// header is line 1
			return nil, errors.Wrapf(err, "csv line %d", i+2)
		}
		invoices = append(invoices, inv)
	}

	return invoices, nil
}

func (r csvRow) toInvoice() (domain.Invoice, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.ID), 10, 64)
	if err != nil {
		return domain.Invoice{}, errors.Wrap(err, "parse id")
	}
	dateTime, err := domain.ParseTimestamp(r.DateTime)
	if err != nil {
		return domain.Invoice{}, err
	}
	rub, err := parseNullDecimal(r.Rub)
	if err != nil {
		return domain.Invoice{}, errors.Wrap(err, "parse rub")
	}
	totalCrypto, err := parseNullDecimal(r.TotalCrypto)
	if err != nil {
		return domain.Invoice{}, errors.Wrap(err, "parse total_crypto")
	}

	return domain.Invoice{
		ID:                id,
		DateTime:          dateTime,
		UserName:          domain.NullableString(r.UserName),
		Rub:               rub,
		TotalCrypto:       totalCrypto,
		TypeCrypto:        domain.NullableString(r.TypeCrypto),
		PaymentMethodName: domain.NullableString(r.PaymentMethodName),
		PaymentOption:     domain.NullableString(r.PaymentOption),
		Requisites:        domain.NullableString(r.Requisites),
		Holder:            domain.NullableString(r.Holder),
		Status:            domain.NullableString(r.Status),
	}, nil
}

func parseNullDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
