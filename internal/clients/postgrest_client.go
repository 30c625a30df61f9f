package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

const defaultTable = "Exchange_users_invoices"

// PostgrestClient reads the invoice table through the Supabase REST API.
type PostgrestClient struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
}

// NewPostgrestClient creates a client for the project at baseURL, e.g. https://xyz.supabase.co.
// A zero timeout means the request is bounded only by the caller's context.
func NewPostgrestClient(baseURL, apiKey, table string, timeout time.Duration) *PostgrestClient {
	if table == "" {
		table = defaultTable
	}
	return &PostgrestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   table,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name identifies the source in logs.
func (c *PostgrestClient) Name() string {
	return "postgrest"
}

type postgrestRow struct {
	ID                int64               `json:"id"`
	DateTime          *string             `json:"date_time"`
	UserName          *string             `json:"user_name"`
	Rub               decimal.NullDecimal `json:"rub"`
	TotalCrypto       decimal.NullDecimal `json:"total_crypto"`
	TypeCrypto        *string             `json:"type_crypto"`
	PaymentMethodName *string             `json:"paymentMethodName"`
	PaymentOption     *string             `json:"paymentOption"`
	Requisites        *string             `json:"requisites"`
	Holder            *string             `json:"holder"`
	Status            *string             `json:"status"`
}

type postgrestError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Hint    string `json:"hint"`
}

// FetchAll selects every row of the table in one request.
func (c *PostgrestClient) FetchAll(ctx context.Context) ([]domain.Invoice, error) {
	if c.baseURL == "" {
		return nil, errors.New("postgrest base URL is empty")
	}
	if c.apiKey == "" {
		return nil, errors.New("postgrest API key is empty")
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=*", c.baseURL, url.PathEscape(c.table))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr postgrestError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("postgrest returned status %d: %s (code: %s)", resp.StatusCode, apiErr.Message, apiErr.Code)
		}
		return nil, fmt.Errorf("postgrest returned status %d: %s", resp.StatusCode, string(body))
	}

	var rows []postgrestRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	invoices := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		inv, err := row.toInvoice()
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row.ID)
		}
		invoices = append(invoices, inv)
	}

	return invoices, nil
}

func (r postgrestRow) toInvoice() (domain.Invoice, error) {
	var dateTime *time.Time
	if r.DateTime != nil {
		ts, err := domain.ParseTimestamp(*r.DateTime)
		if err != nil {
			return domain.Invoice{}, err
		}
		dateTime = ts
	}

	return domain.Invoice{
		ID:                r.ID,
		DateTime:          dateTime,
		UserName:          r.UserName,
		Rub:               r.Rub,
		TotalCrypto:       r.TotalCrypto,
		TypeCrypto:        r.TypeCrypto,
		PaymentMethodName: r.PaymentMethodName,
		PaymentOption:     r.PaymentOption,
		Requisites:        r.Requisites,
		Holder:            r.Holder,
		Status:            r.Status,
	}, nil
}
