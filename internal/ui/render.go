package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"monexel/internal/core"
	"monexel/internal/report"
	"monexel/internal/tabs"
)

const (
	maxCellWidth = 28
	columnGap    = "  "
	noRecords    = "No records found"
)

type card struct {
	title string
	value core.Money
	color lipgloss.Color
}

// SummaryCards renders the four dashboard figures side by side.
func SummaryCards(s core.DashboardSummary, currency string) string {
	cards := []card{
		{"Total Income", s.TotalIncome, colorSuccess},
		{"Total Expense", s.TotalExpense, colorDanger},
		{"Borrowed Money", s.TotalBorrowed, colorWarning},
		{"Net Balance", s.NetBalance, colorInfo},
	}
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		body := fg(c.color).Render(c.title) + "\n" + fg(c.color).Bold(true).Render(c.value.Format(currency))
		rendered = append(rendered, cardStyle.BorderForeground(c.color).Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Table renders rows under headers. Cells wider than maxCellWidth are
// truncated.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = ansi.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], min(ansi.StringWidth(row[i]), maxCellWidth))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			var v string
			if i < len(cells) {
				v = ansi.Truncate(cells[i], w, "…")
			}
			parts[i] = style.Width(w).Render(v)
		}
		return strings.TrimRight(strings.Join(parts, columnGap), " ")
	}

	var b strings.Builder
	b.WriteString(line(headers, headerStyle))
	b.WriteByte('\n')
	total := 0
	for _, w := range widths {
		total += w
	}
	total += len(columnGap) * max(len(widths)-1, 0)
	b.WriteString(mutedStyle.Render(strings.Repeat("─", total)))
	if len(rows) == 0 {
		b.WriteByte('\n')
		b.WriteString(mutedStyle.Render(noRecords))
		return b.String()
	}
	for _, row := range rows {
		b.WriteByte('\n')
		b.WriteString(line(row, lipgloss.NewStyle()))
	}
	return b.String()
}

// TransactionTable renders a tab with a leading ID column so rows can be
// addressed by edit and delete.
func TransactionTable(kind core.Kind, rows []tabs.Row) string {
	headers := append([]string{"ID"}, tabs.Columns(kind)...)
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, append([]string{strconv.FormatInt(r.Tx.TransactionID(), 10)}, r.Cells...))
	}
	return titleStyle.Render(kind.Label()) + "\n" + Table(headers, cells)
}

// Dashboard renders the summary cards followed by every tab.
func Dashboard(snap core.Snapshot, rng core.DateRange, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Dashboard"), mutedStyle.Render(RangeLabel(rng)))
	b.WriteString(SummaryCards(snap.Summary, currency))
	for _, kind := range core.Kinds() {
		txs := snap.Rows(kind)
		rows := make([]tabs.Row, 0, len(txs))
		for _, tx := range txs {
			rows = append(rows, tabs.Row{Tx: tx, Cells: tabs.Cells(tx, currency)})
		}
		b.WriteString("\n\n")
		b.WriteString(TransactionTable(kind, rows))
	}
	return b.String()
}

func RangeLabel(rng core.DateRange) string {
	start, end := rng.Start.String(), rng.End.String()
	if start == "" {
		start = "?"
	}
	if end == "" {
		end = "?"
	}
	return start + " → " + end
}

// Categories renders the categories visible to a user.
func Categories(cats []core.Category) string {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		scope := "global"
		if !c.IsGlobal() {
			scope = "custom"
		}
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, cellOr(c.Description), scope})
	}
	return Table([]string{"ID", "Name", "Description", "Scope"}, rows)
}

// Profile renders a user's details.
func Profile(u core.User) string {
	rows := [][]string{
		{"ID", u.ID.String()},
		{"Name", cellOr(u.Name)},
		{"Email", cellOr(u.Email)},
		{"Phone", cellOr(u.PhoneNumber)},
		{"Role", cellOr(u.Role)},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile"))
	for _, r := range rows {
		b.WriteByte('\n')
		b.WriteString(headerStyle.Width(6).Render(r[0]))
		b.WriteString(columnGap)
		b.WriteString(r[1])
	}
	return b.String()
}

// Report renders the totals of a report with each kind's share.
func Report(r report.Report, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Report"), mutedStyle.Render(RangeLabel(r.Range)))
	rows := [][]string{
		{"Income", r.TotalIncome.Format(currency), strconv.Itoa(r.Counts[core.KindIncome]), r.Share(core.KindIncome).String() + "%"},
		{"Expense", r.TotalExpense.Format(currency), strconv.Itoa(r.Counts[core.KindExpense]), r.Share(core.KindExpense).String() + "%"},
		{"Borrowed", r.TotalBorrowed.Format(currency), strconv.Itoa(r.Counts[core.KindBorrowed]), r.Share(core.KindBorrowed).String() + "%"},
	}
	b.WriteString(Table([]string{"Type", "Total", "Records", "Share"}, rows))
	b.WriteString("\n\n")
	net := r.Net()
	style := fg(colorSuccess)
	if net.IsNegative() {
		style = fg(colorDanger)
	}
	fmt.Fprintf(&b, "%s %s", headerStyle.Render("Income - Expense:"), style.Render(net.Format(currency)))
	return b.String()
}

func cellOr(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
