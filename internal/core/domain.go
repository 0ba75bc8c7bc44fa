package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	KindIncome   Kind = "income"
	KindExpense  Kind = "expense"
	KindBorrowed Kind = "borrowed"
)

const dateLayout = "2006-01-02"

type (
	// Kind is the discriminator selecting which transaction shape a form or
	// list is operating on.
	Kind string

	// UserID is the numeric user id. Ids arriving as strings are parsed once
	// with ParseUserID and compared as numbers everywhere else.
	UserID int64

	Date struct {
		time.Time
	}

	Income struct {
		ID          int64  `json:"id,omitempty"`
		Source      string `json:"source"`
		Amount      Money  `json:"amount"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		UserID      UserID `json:"userId,omitempty"`
	}

	Expense struct {
		ID           int64  `json:"id,omitempty"`
		Title        string `json:"title"`
		Amount       Money  `json:"amount"`
		Date         Date   `json:"date"`
		CategoryID   int64  `json:"categoryId,omitempty"`
		CategoryName string `json:"categoryName,omitempty"`
		UserID       UserID `json:"userId,omitempty"`
	}

	Borrowed struct {
		ID           int64  `json:"id,omitempty"`
		Amount       Money  `json:"amount"`
		BorrowedFrom string `json:"borrowedFrom"`
		BorrowedDate Date   `json:"borrowedDate"`
		DueDate      Date   `json:"dueDate"`
		UserID       UserID `json:"userId,omitempty"`
	}

	Category struct {
		ID              int64   `json:"id,omitempty"`
		Name            string  `json:"name"`
		Description     string  `json:"description,omitempty"`
		UserID          UserID  `json:"userId,omitempty"`
		CreatedByUserID *UserID `json:"createdByUserId"`
	}

	// Transaction is implemented by Income, Expense and Borrowed.
	Transaction interface {
		Kind() Kind
		TransactionID() int64
		Total() Money
	}
)

var (
	ErrInvalidKind       = errors.New("invalid transaction type")
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrRangeInverted     = errors.New("end date must be after start date")
	ErrRangeIncomplete   = errors.New("start and end date are required")
	ErrEmptyCategory     = errors.New("category name is required")
	ErrInvalidDate       = errors.New("invalid date")
	ErrDueBeforeBorrow   = errors.New("due date must be after borrowed date")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)

// Kinds returns every discriminator in tab order.
func Kinds() []Kind {
	return []Kind{KindIncome, KindExpense, KindBorrowed}
}

func (k Kind) Validate() error {
	switch k {
	case KindIncome, KindExpense, KindBorrowed:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
	}
}

// Label is the human name of the tab.
func (k Kind) Label() string {
	switch k {
	case KindIncome:
		return "Income"
	case KindExpense:
		return "Expense"
	case KindBorrowed:
		return "Borrowed Money"
	default:
		return string(k)
	}
}

func (k Kind) String() string { return string(k) }

// ParseKind accepts the discriminator names plus the "borrowed-money" alias.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "borrowed-money" || k == "borrowedmoney" {
		k = KindBorrowed
	}
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// ParseUserID normalizes an id read from persisted or user-supplied state.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidUserID
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUserID, s)
	}
	return UserID(id), nil
}

func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EndOfMonth returns the last calendar day of t's month.
func EndOfMonth(t time.Time) Date {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Date{Time: first.AddDate(0, 1, -1)}
}

func (i Income) Kind() Kind             { return KindIncome }
func (i Income) TransactionID() int64   { return i.ID }
func (i Income) Total() Money           { return i.Amount }
func (e Expense) Kind() Kind            { return KindExpense }
func (e Expense) TransactionID() int64  { return e.ID }
func (e Expense) Total() Money          { return e.Amount }
func (b Borrowed) Kind() Kind           { return KindBorrowed }
func (b Borrowed) TransactionID() int64 { return b.ID }
func (b Borrowed) Total() Money         { return b.Amount }

// Validate checks the borrowed-specific date ordering.
func (b Borrowed) Validate() error {
	if !b.Amount.Positive() {
		return ErrAmountNotPositive
	}
	if !b.BorrowedDate.IsEmpty() && !b.DueDate.IsEmpty() && !b.DueDate.After(b.BorrowedDate.Time) {
		return ErrDueBeforeBorrow
	}
	return nil
}

// IsGlobal reports whether the category has no creator.
func (c Category) IsGlobal() bool {
	return c.CreatedByUserID == nil
}

// VisibleTo keeps global categories and those created by user.
func VisibleTo(cats []Category, user UserID) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		if c.CreatedByUserID == nil || *c.CreatedByUserID == user {
			out = append(out, c)
		}
	}
	return out
}
