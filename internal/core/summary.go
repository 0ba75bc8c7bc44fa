package core

import (
	"net/url"
	"slices"
)

// DashboardSummary is computed by the server for a user and range.
type DashboardSummary struct {
	TotalIncome   Money `json:"totalIncome"`
	TotalExpense  Money `json:"totalExpense"`
	TotalBorrowed Money `json:"totalBorrowed"`
	NetBalance    Money `json:"netBalance"`
}

// IsZero reports whether every figure is zero, which is also what the
// dashboard shows when the summary could not be loaded.
func (s DashboardSummary) IsZero() bool {
	return s.TotalIncome.IsZero() && s.TotalExpense.IsZero() &&
		s.TotalBorrowed.IsZero() && s.NetBalance.IsZero()
}

// DateRange is the dashboard filter. Both ends are inclusive.
type DateRange struct {
	Start Date
	End   Date
}

func NewDateRange(start, end Date) DateRange {
	return DateRange{Start: start, End: end}
}

// Complete reports whether both ends are set.
func (r DateRange) Complete() bool {
	return !r.Start.IsEmpty() && !r.End.IsEmpty()
}

func (r DateRange) Validate() error {
	if !r.Complete() {
		return ErrRangeIncomplete
	}
	if r.End.Before(r.Start.Time) {
		return ErrRangeInverted
	}
	return nil
}

// Query encodes the range as startDate/endDate parameters. Empty ends are
// omitted.
func (r DateRange) Query() url.Values {
	q := url.Values{}
	if !r.Start.IsEmpty() {
		q.Set("startDate", r.Start.String())
	}
	if !r.End.IsEmpty() {
		q.Set("endDate", r.End.String())
	}
	return q
}

// Snapshot is the dashboard state every view renders from.
type Snapshot struct {
	Summary  DashboardSummary
	Income   []Income
	Expense  []Expense
	Borrowed []Borrowed
}

// Clone returns a copy that shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Summary:  s.Summary,
		Income:   slices.Clone(s.Income),
		Expense:  slices.Clone(s.Expense),
		Borrowed: slices.Clone(s.Borrowed),
	}
}

// Rows returns the list for kind as transactions, in server order.
func (s Snapshot) Rows(kind Kind) []Transaction {
	var out []Transaction
	switch kind {
	case KindIncome:
		out = make([]Transaction, 0, len(s.Income))
		for _, v := range s.Income {
			out = append(out, v)
		}
	case KindExpense:
		out = make([]Transaction, 0, len(s.Expense))
		for _, v := range s.Expense {
			out = append(out, v)
		}
	case KindBorrowed:
		out = make([]Transaction, 0, len(s.Borrowed))
		for _, v := range s.Borrowed {
			out = append(out, v)
		}
	}
	return out
}
