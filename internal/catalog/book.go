package catalog

import (
	"fmt"
	"math/rand"
	"time"
)

// DateLayout is the wire format of every date in the catalog: dd/MM/yyyy.
const DateLayout = "02/01/2006"

// Book is a single catalog entry. DateTaken is set iff IsTaken.
type Book struct {
	Code      string // unique key, "B" + 3-5 digits
	Title     string
	Author    string
	IsTaken   bool
	DateTaken time.Time // zero when the book is on the shelf
}

// FormatDate renders t as dd/MM/yyyy, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a dd/MM/yyyy string. Empty or malformed input yields the
// zero time; mirrors tolerate bad dates instead of failing a whole load.
func ParseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// GenerateBookCode produces a random code of the form B1000..B9998 that does
// not collide with any book in existing. Callers must pass the full current
// collection.
func GenerateBookCode(existing []Book) string {
	for {
		code := fmt.Sprintf("B%d", 1000+rand.Intn(8999))
		taken := false
		for _, b := range existing {
			if b.Code == code {
				taken = true
				break
			}
		}
		if !taken {
			return code
		}
	}
}
