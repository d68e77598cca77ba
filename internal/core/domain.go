package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type (
	// Date wraps time.Time so that an absent date (zero value) is
	// representable and serializes as an empty string.
	Date struct {
		time.Time
	}

	// Money is an exact amount in minor currency units.
	Money struct {
		Cents int64
	}

	// Record is a single durable expense entry.
	Record struct {
		ID       int64  `json:"id"`
		Date     Date   `json:"date"`
		Amount   Money  `json:"amount"`
		Category string `json:"category"` // registry id, resolved for display
		Memo     string `json:"memo"`
	}

	// Category is one entry of the user-local taxonomy.
	Category struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Icon   string `json:"icon"`
		Custom bool   `json:"custom,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidDate   = errors.New("invalid date")
	ErrMemoTooLong   = errors.New("memo too long (max 500 characters)")
)

// dateLayouts accepted on input: full timestamps (the store, API
// clients) and date-only (the entry form).
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a date string in any accepted layout. An empty
// string yields the zero Date, not an error.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, ErrInvalidDate
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// MonthKey returns the year-month grouping key ("2006-01"), or the
// empty string when the date is absent.
func (d Date) MonthKey() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MonthKey returns the record's year-month key, or "" when the record
// carries no usable date.
func (r Record) MonthKey() string {
	return r.Date.MonthKey()
}

// Validate checks the fields required at creation time. Date is
// optional (the store assigns the current time) and memo may be empty.
func (r Record) Validate() error {
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if len(r.Memo) > 500 {
		return ErrMemoTooLong
	}
	return nil
}

// Display returns the label shown for a category: icon and name when
// both are set, otherwise just the name.
func (c Category) Display() string {
	if c.Icon != "" {
		return c.Icon + " " + c.Name
	}
	return c.Name
}
