package form

import (
	"time"

	"monexel/internal/core"
)

// Field describes one input of the form.
type Field struct {
	Name     string
	Label    string
	Required bool
	Date     bool
	// Capped date inputs refuse values after the end of the current month.
	Capped bool
}

var fieldsByKind = map[core.Kind][]Field{
	core.KindIncome: {
		{Name: "source", Label: "Source", Required: true},
		{Name: "amount", Label: "Amount", Required: true},
		{Name: "date", Label: "Date", Required: true, Date: true, Capped: true},
		{Name: "description", Label: "Description", Required: true},
	},
	core.KindExpense: {
		{Name: "title", Label: "Title", Required: true},
		{Name: "amount", Label: "Amount", Required: true},
		{Name: "date", Label: "Date", Required: true, Date: true},
		{Name: "categoryId", Label: "Category", Required: true},
	},
	core.KindBorrowed: {
		{Name: "borrowedFrom", Label: "Borrowed From", Required: true},
		{Name: "amount", Label: "Amount", Required: true},
		{Name: "borrowedDate", Label: "Borrowed Date", Required: true, Date: true, Capped: true},
		{Name: "dueDate", Label: "Due Date", Date: true},
	},
}

// Fields lists the inputs for kind in display order.
func Fields(kind core.Kind) []Field {
	return append([]Field(nil), fieldsByKind[kind]...)
}

func lookupField(kind core.Kind, name string) (Field, bool) {
	for _, f := range fieldsByKind[kind] {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MaxDate is the latest date a capped input accepts: the last day of the
// current month on the client clock.
func MaxDate(now time.Time) core.Date {
	return core.EndOfMonth(now)
}

func requiredMessage(kind core.Kind) string {
	switch kind {
	case core.KindBorrowed:
		return "Please fill all borrowed money fields"
	default:
		return "Please fill all " + kind.String() + " fields"
	}
}
