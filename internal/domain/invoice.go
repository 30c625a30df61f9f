// Package domain defines the exchange invoice record and the types used to filter and sort it.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is one row of the exchange transactions table.
// Nullable columns are pointers or decimal.NullDecimal so that a missing value
// stays distinguishable from a zero value.
type Invoice struct {
	// ID unique row identifier, used by renderers as the row key.
	ID int64 `json:"id" db:"id"`
	// DateTime moment the exchange was created.
	DateTime *time.Time `json:"date_time" db:"date_time"`
	// UserName name of the user who requested the exchange.
	UserName *string `json:"user_name" db:"user_name"`
	// Rub fiat amount in roubles.
	Rub decimal.NullDecimal `json:"rub" db:"rub"`
	// TotalCrypto crypto amount.
	TotalCrypto decimal.NullDecimal `json:"total_crypto" db:"total_crypto"`
	// TypeCrypto crypto currency symbol, e.g. USDT.
	TypeCrypto *string `json:"type_crypto" db:"type_crypto"`
	PaymentMethodName *string `json:"paymentMethodName" db:"paymentMethodName"`
	PaymentOption     *string `json:"paymentOption" db:"paymentOption"`
	Requisites        *string `json:"requisites" db:"requisites"`
	Holder            *string `json:"holder" db:"holder"`
	// Status free-form status string, not validated.
	Status *string `json:"status" db:"status"`
}

// StringOrEmpty dereferences s, returning "" for nil.
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// NullableString returns nil for an empty string and a pointer to s otherwise.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Clone returns a deep copy of inv; the copy shares no pointers with inv.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.DateTime != nil {
		t := *inv.DateTime
		out.DateTime = &t
	}
	out.UserName = cloneString(inv.UserName)
	out.TypeCrypto = cloneString(inv.TypeCrypto)
	out.PaymentMethodName = cloneString(inv.PaymentMethodName)
	out.PaymentOption = cloneString(inv.PaymentOption)
	out.Requisites = cloneString(inv.Requisites)
	out.Holder = cloneString(inv.Holder)
	out.Status = cloneString(inv.Status)
	return out
}

// CloneInvoices deep-copies every record of invs.
func CloneInvoices(invs []Invoice) []Invoice {
	if invs == nil {
		return nil
	}
	out := make([]Invoice, len(invs))
	for i, inv := range invs {
		out[i] = inv.Clone()
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
