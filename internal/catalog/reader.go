package catalog

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"
)

// Gender of a reader. The integer values are part of the persisted formats.
type Gender int

const (
	Female Gender = iota
	Male
)

func (g Gender) String() string {
	if g == Male {
		return "male"
	}
	return "female"
}

// Reader is a registered library member. TakenBooks holds book codes in
// insertion order; order matters for display only.
type Reader struct {
	ID           string // unique key, "R" + 4 digits
	LastName     string
	FirstName    string
	MiddleName   string // optional
	Gender       Gender
	RegisteredAt time.Time
	TakenBooks   []string
}

// FullName joins the name parts, skipping an absent middle name.
func (r Reader) FullName() string {
	parts := []string{r.LastName, r.FirstName}
	if r.MiddleName != "" {
		parts = append(parts, r.MiddleName)
	}
	return strings.Join(parts, " ")
}

// Holds reports whether the reader currently has the book with this code.
func (r Reader) Holds(code string) bool {
	return slices.Contains(r.TakenBooks, code)
}

func (r Reader) clone() Reader {
	r.TakenBooks = slices.Clone(r.TakenBooks)
	return r
}

// GenerateReaderID produces a random id of the form R1000..R9998 that does
// not collide with any reader in existing.
func GenerateReaderID(existing []Reader) string {
	for {
		id := fmt.Sprintf("R%d", 1000+rand.Intn(8999))
		taken := false
		for _, r := range existing {
			if r.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}
