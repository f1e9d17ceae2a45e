// Package validate checks raw human input before it reaches the catalog.
//
// Every function normalizes whitespace first (collapse runs, trim ends) and
// fails with a *ValidationError carrying a branchable Kind; message text for
// the user is the caller's concern.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Kind identifies the validation failure class.
type Kind string

const (
	KindEmptyTitle    Kind = "empty_title"
	KindEmptyAuthor   Kind = "empty_author"
	KindInvalidTitle  Kind = "invalid_title"
	KindInvalidAuthor Kind = "invalid_author"
	KindEmptyName     Kind = "empty_name"
	KindInvalidName   Kind = "invalid_name"
	KindInvalidInput  Kind = "invalid_input"
)

// ValidationError is the failure type of every check in this package.
type ValidationError struct {
	Field  string
	Kind   Kind
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s (%s)", e.Field, e.Reason, e.Kind)
}

func fail(field string, kind Kind, reason string) error {
	return &ValidationError{Field: field, Kind: kind, Reason: reason}
}

var (
	// Characters a title (and a search query) may contain.
	allowedTitleRe = regexp.MustCompile(`^[\p{L}\p{N}\s.,:;!?()\[\]{}'"«»\-–—/\\+&%#@]+$`)

	// Characters a person or author name may contain.
	nameRe = regexp.MustCompile(`^[\p{L}\-'.\s]+$`)

	codeRe     = regexp.MustCompile(`(?i)^B[0-9]{3,5}$`)
	readerIDRe = regexp.MustCompile(`(?i)^R[0-9]{4}$`)
)

// Normalize collapses whitespace runs to single spaces and trims the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// hasRepeatedPunct reports whether s contains a run of three or more
// identical punctuation or symbol characters.
func hasRepeatedPunct(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if (unicode.IsPunct(r) || unicode.IsSymbol(r)) && r == prev {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
		prev = r
	}
	return false
}

func hasDoubledSeparators(s string) bool {
	return strings.Contains(s, "--") || strings.Contains(s, "''") || strings.Contains(s, "``")
}

func firstAlnumIndex(s string) int {
	for i, r := range []rune(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return i
		}
	}
	return -1
}

func lastAlnumIndex(s string) int {
	rs := []rune(s)
	for i := len(rs) - 1; i >= 0; i-- {
		if unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) {
			return i
		}
	}
	return -1
}

// BookFields validates a book title and author as entered by the user.
func BookFields(title, author string) error {
	t := Normalize(title)
	if t == "" {
		return fail("title", KindEmptyTitle, "title is required")
	}
	if !allowedTitleRe.MatchString(t) {
		return fail("title", KindInvalidTitle, "title contains forbidden characters")
	}

	letters := countLetters(t)
	digits := countDigits(t)
	if letters+digits < 1 {
		return fail("title", KindInvalidTitle, "title has no letters or digits")
	}
	if hasRepeatedPunct(t) {
		return fail("title", KindInvalidTitle, "repeated punctuation")
	}
	if hasDoubledSeparators(t) {
		return fail("title", KindInvalidTitle, "doubled hyphens or apostrophes")
	}

	if firstAlnumIndex(t) > 3 {
		return fail("title", KindInvalidTitle, "too much leading punctuation")
	}
	if len([]rune(t))-1-lastAlnumIndex(t) > 3 {
		return fail("title", KindInvalidTitle, "too much trailing punctuation")
	}
	// One-letter titles are allowed only for things like "C++" or "C#".
	if letters > 0 && letters < 2 && digits == 0 &&
		!strings.ContainsAny(t, "+#") {
		return fail("title", KindInvalidTitle, "title too short")
	}

	a := Normalize(author)
	if a == "" {
		return fail("author", KindEmptyAuthor, "author is required")
	}
	if err := checkName(a, "author", KindInvalidAuthor); err != nil {
		return err
	}
	return nil
}

// checkName applies the shared letter/hyphen/apostrophe/dot rule. The value
// must already be normalized and non-empty.
func checkName(v, field string, kind Kind) error {
	if !nameRe.MatchString(v) {
		return fail(field, kind, "forbidden characters")
	}
	if hasDoubledSeparators(v) {
		return fail(field, kind, "doubled hyphens or apostrophes")
	}
	rs := []rune(v)
	first, last := rs[0], rs[len(rs)-1]
	if strings.ContainsRune("-'.", first) || strings.ContainsRune("-'.", last) {
		return fail(field, kind, "starts or ends with punctuation")
	}
	if countLetters(v) < 2 {
		return fail(field, kind, "needs at least 2 letters")
	}
	return nil
}

// PersonName validates a required name field (last or first name).
func PersonName(value, field string) error {
	v := Normalize(value)
	if v == "" {
		return fail(field, KindEmptyName, "field is required")
	}
	return checkName(v, field, KindInvalidName)
}

// MiddleName validates the optional middle name. Empty is fine; a value of
// two or fewer characters must contain a dot (abbreviation exception).
func MiddleName(value string) error {
	v := Normalize(value)
	if v == "" {
		return nil
	}
	if len([]rune(v)) <= 2 && !strings.Contains(v, ".") {
		return fail("middle name", KindInvalidName, "too short")
	}
	return checkName(v, "middle name", KindInvalidName)
}

// ReaderFields validates the full reader name triple.
func ReaderFields(lastName, firstName, middleName string) error {
	if err := PersonName(lastName, "last name"); err != nil {
		return err
	}
	if err := PersonName(firstName, "first name"); err != nil {
		return err
	}
	return MiddleName(middleName)
}

// CheckoutInput validates a book code / reader id pair and returns both
// upper-cased. Matching is case-insensitive.
func CheckoutInput(code, readerID string) (string, string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	r := strings.ToUpper(strings.TrimSpace(readerID))

	if c == "" || r == "" {
		return "", "", fail("checkout", KindInvalidInput, "book code and reader id are required")
	}
	if !codeRe.MatchString(c) {
		return "", "", fail("book code", KindInvalidInput, "format is B + 3-5 digits")
	}
	if !readerIDRe.MatchString(r) {
		return "", "", fail("reader id", KindInvalidInput, "format is R + 4 digits")
	}
	return c, r, nil
}

// SearchQuery validates a catalog search string.
func SearchQuery(query string) error {
	q := strings.TrimSpace(query)
	if q == "" {
		return fail("query", KindInvalidInput, "query is required")
	}
	if !allowedTitleRe.MatchString(q) {
		return fail("query", KindInvalidInput, "forbidden characters")
	}
	return nil
}
