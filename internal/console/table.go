// Package console renders invoice snapshots in the terminal.
package console

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

const dateLayout = "02.01.2006, 15:04:05"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	headerStyle       = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	activeHeaderStyle = headerStyle.Foreground(lipgloss.Color("230")).Background(highlight)
	cellStyle         = lipgloss.NewStyle().Padding(0, 1)
	statusStyle       = lipgloss.NewStyle().Foreground(subtle).Italic(true)
)

var columnLabels = map[domain.SortField]string{
	domain.FieldID:                "ID",
	domain.FieldDateTime:          "Дата",
	domain.FieldUserName:          "Пользователь",
	domain.FieldRub:               "₽",
	domain.FieldTotalCrypto:       "Крипта",
	domain.FieldPaymentMethodName: "Тип",
	domain.FieldRequisites:        "Реквизиты",
	domain.FieldHolder:            "ФИО",
	domain.FieldStatus:            "Статус",
}

// ColumnLabel returns the header caption of a column.
func ColumnLabel(f domain.SortField) string {
	if label, ok := columnLabels[f]; ok {
		return label
	}
	return f.String()
}

// Cells formats one invoice as table cells in column order. Timestamps are shown in loc.
func Cells(inv domain.Invoice, loc *time.Location) []string {
	date := ""
	if inv.DateTime != nil {
		date = inv.DateTime.In(loc).Format(dateLayout)
	}

	return []string{
		fmt.Sprint(inv.ID),
		date,
		domain.StringOrEmpty(inv.UserName),
		nullDecimal(inv.Rub.Valid, inv.Rub.Decimal.String()),
		fmt.Sprintf("%s %s", nullDecimal(inv.TotalCrypto.Valid, inv.TotalCrypto.Decimal.String()), domain.StringOrEmpty(inv.TypeCrypto)),
		fmt.Sprintf("%s / %s", domain.StringOrEmpty(inv.PaymentMethodName), domain.StringOrEmpty(inv.PaymentOption)),
		domain.StringOrEmpty(inv.Requisites),
		domain.StringOrEmpty(inv.Holder),
		domain.StringOrEmpty(inv.Status),
	}
}

func nullDecimal(valid bool, s string) string {
	if !valid {
		return ""
	}
	return s
}

// Render draws the snapshot as a table, or a loading line while the first load is pending.
func Render(snap domain.Snapshot, loc *time.Location) string {
	if snap.Loading {
		return statusStyle.Render("Загрузка...")
	}

	headers := make([]string, 0, len(domain.ColumnFields))
	for _, f := range domain.ColumnFields {
		label := ColumnLabel(f)
		if snap.IsSortedBy(f) {
			if snap.Sort.Direction == domain.Descending {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		headers = append(headers, label)
	}

	rows := make([][]string, 0, len(snap.Records))
	for _, inv := range snap.Records {
		rows = append(rows, Cells(inv, loc))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(subtle)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if col < len(domain.ColumnFields) && snap.IsSortedBy(domain.ColumnFields[col]) {
					return activeHeaderStyle
				}
				return headerStyle
			}
			return cellStyle
		})

	summary := fmt.Sprintf("%d / %d", len(snap.Records), snap.Total)
	if snap.Filter != "" {
		summary += fmt.Sprintf("  filter: %q", snap.Filter)
	}

	return lipgloss.JoinVertical(lipgloss.Left, t.Render(), statusStyle.Render(summary))
}

// Print writes the rendered snapshot to w.
func Print(w io.Writer, snap domain.Snapshot, loc *time.Location) error {
	_, err := fmt.Fprintln(w, Render(snap, loc))
	return err
}
