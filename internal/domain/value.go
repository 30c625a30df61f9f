package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindNumber
	kindTime
	kindText
)

// Value is a typed, nullable field value extracted from an Invoice for comparison.
type Value struct {
	kind valueKind
	num  decimal.Decimal
	ts   time.Time
	text string
}

// Null returns the null value.
func Null() Value {
	return Value{kind: kindNull}
}

// Number wraps a numeric value.
func Number(d decimal.Decimal) Value {
	return Value{kind: kindNumber, num: d}
}

// Time wraps a timestamp.
func Time(t time.Time) Value {
	return Value{kind: kindTime, ts: t}
}

// Text wraps a string value.
func Text(s string) Value {
	return Value{kind: kindText, text: s}
}

func nullableNumber(d decimal.NullDecimal) Value {
	if !d.Valid {
		return Null()
	}
	return Number(d.Decimal)
}

func nullableTime(t *time.Time) Value {
	if t == nil {
		return Null()
	}
	return Time(*t)
}

func nullableText(s *string) Value {
	if s == nil {
		return Null()
	}
	return Text(*s)
}

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool {
	return v.kind == kindNull
}

// String returns a plain textual form of the value, "" for null.
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return v.num.String()
	case kindTime:
		return v.ts.Format(time.RFC3339)
	case kindText:
		return v.text
	default:
		return ""
	}
}

// StringComparer compares two strings, returning -1, 0 or 1.
// *collate.Collator satisfies it.
type StringComparer interface {
	CompareString(a, b string) int
}

// Compare orders two non-null values of the same field.
// Numbers compare numerically, times chronologically, everything else goes
// through the string comparer. Values of mismatching kinds fall back to their
// textual form.
func Compare(a, b Value, cmp StringComparer) int {
	switch {
	case a.kind == kindNumber && b.kind == kindNumber:
		return a.num.Cmp(b.num)
	case a.kind == kindTime && b.kind == kindTime:
		return a.ts.Compare(b.ts)
	default:
		return cmp.CompareString(a.String(), b.String())
	}
}
