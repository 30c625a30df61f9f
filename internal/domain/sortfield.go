package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// SortField identifies an invoice column that the view can be ordered by.
type SortField int

const (
	FieldID SortField = iota
	FieldDateTime
	FieldUserName
	FieldRub
	FieldTotalCrypto
	FieldTypeCrypto
	FieldPaymentMethodName
	FieldPaymentOption
	FieldRequisites
	FieldHolder
	FieldStatus
)

type fieldSpec struct {
	name   string
	access func(Invoice) Value
}

var fieldSpecs = map[SortField]fieldSpec{
	FieldID:                {"id", func(i Invoice) Value { return Number(decimal.NewFromInt(i.ID)) }},
	FieldDateTime:          {"date_time", func(i Invoice) Value { return nullableTime(i.DateTime) }},
	FieldUserName:          {"user_name", func(i Invoice) Value { return nullableText(i.UserName) }},
	FieldRub:               {"rub", func(i Invoice) Value { return nullableNumber(i.Rub) }},
	FieldTotalCrypto:       {"total_crypto", func(i Invoice) Value { return nullableNumber(i.TotalCrypto) }},
	FieldTypeCrypto:        {"type_crypto", func(i Invoice) Value { return nullableText(i.TypeCrypto) }},
	FieldPaymentMethodName: {"paymentMethodName", func(i Invoice) Value { return nullableText(i.PaymentMethodName) }},
	FieldPaymentOption:     {"paymentOption", func(i Invoice) Value { return nullableText(i.PaymentOption) }},
	FieldRequisites:        {"requisites", func(i Invoice) Value { return nullableText(i.Requisites) }},
	FieldHolder:            {"holder", func(i Invoice) Value { return nullableText(i.Holder) }},
	FieldStatus:            {"status", func(i Invoice) Value { return nullableText(i.Status) }},
}

// ColumnFields are the fields shown as clickable table headers, in display order.
var ColumnFields = []SortField{
	FieldID,
	FieldDateTime,
	FieldUserName,
	FieldRub,
	FieldTotalCrypto,
	FieldPaymentMethodName,
	FieldRequisites,
	FieldHolder,
	FieldStatus,
}

// ParseSortField maps a wire column name to its SortField.
func ParseSortField(name string) (SortField, error) {
	for f, spec := range fieldSpecs {
		if spec.name == name {
			return f, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownField, "%q", name)
}

// String returns the wire column name.
func (f SortField) String() string {
	if spec, ok := fieldSpecs[f]; ok {
		return spec.name
	}
	return "unknown"
}

// Value extracts the field from the invoice.
func (f SortField) Value(inv Invoice) Value {
	spec, ok := fieldSpecs[f]
	if !ok {
		return Null()
	}
	return spec.access(inv)
}

// MarshalText implements encoding.TextMarshaler so snapshots carry the wire name.
func (f SortField) MarshalText() ([]byte, error) {
	if _, ok := fieldSpecs[f]; !ok {
		return nil, errors.Wrapf(ErrUnknownField, "%d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *SortField) UnmarshalText(text []byte) error {
	parsed, err := ParseSortField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Direction sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "asc":
		*d = Ascending
	case "desc":
		*d = Descending
	default:
		return errors.Errorf("unknown sort direction %q", string(text))
	}
	return nil
}
