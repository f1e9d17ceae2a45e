package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Kind
}

func TestBookFields_Valid(t *testing.T) {
	cases := []struct {
		name   string
		title  string
		author string
	}{
		{"plain", "War and Peace", "Leo Tolstoy"},
		{"digits only", "1984", "George Orwell"},
		{"one letter with plus", "C++", "Bjarne Stroustrup"},
		{"one letter with hash", "C#", "Anders Hejlsberg"},
		{"punctuation inside", "What? Where? When?", "Vladimir Voroshilov"},
		{"cyrillic", "Война и мир", "Лев Толстой"},
		{"messy whitespace", "  War   and   Peace  ", "Leo  Tolstoy"},
		{"hyphenated author", "Demian", "Erich Maria-Remarque"},
		{"apostrophe author", "Ulysses", "Flann O'Brien"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, BookFields(tc.title, tc.author))
		})
	}
}

func TestBookFields_EmptyTitle(t *testing.T) {
	err := BookFields("", "Tolstoy")
	require.Error(t, err)
	assert.Equal(t, KindEmptyTitle, kindOf(t, err))

	err = BookFields("   ", "Tolstoy")
	require.Error(t, err)
	assert.Equal(t, KindEmptyTitle, kindOf(t, err))
}

func TestBookFields_InvalidTitle(t *testing.T) {
	cases := []struct {
		name  string
		title string
	}{
		{"repeated punctuation", "War!!!"},
		{"forbidden character", "War $ Peace"},
		{"no alphanumerics", "!?!?"},
		{"doubled hyphens", "War--Peace"},
		{"doubled apostrophes", "War''Peace"},
		{"too much leading punctuation", "([{'Peace"},
		{"too much trailing punctuation", "War)]};'"},
		{"single letter", "A"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := BookFields(tc.title, "Tolstoy")
			require.Error(t, err)
			assert.Equal(t, KindInvalidTitle, kindOf(t, err))
		})
	}
}

func TestBookFields_Author(t *testing.T) {
	err := BookFields("War and Peace", "")
	require.Error(t, err)
	assert.Equal(t, KindEmptyAuthor, kindOf(t, err))

	for _, author := range []string{
		"Tolstoy42",   // digits forbidden
		"-Tolstoy",    // leading punctuation
		"Tolstoy.",    // trailing punctuation
		"Tol--stoy",   // doubled hyphen
		"T",           // fewer than 2 letters
		"Lev & Sofia", // forbidden character
	} {
		err := BookFields("War and Peace", author)
		require.Error(t, err, "author %q should fail", author)
		assert.Equal(t, KindInvalidAuthor, kindOf(t, err))
	}
}

func TestPersonName(t *testing.T) {
	assert.NoError(t, PersonName("Ivanov", "last name"))
	assert.NoError(t, PersonName("O'Brien", "last name"))
	assert.NoError(t, PersonName("Anna-Maria", "first name"))

	err := PersonName("", "last name")
	require.Error(t, err)
	assert.Equal(t, KindEmptyName, kindOf(t, err))

	err = PersonName("X", "first name")
	require.Error(t, err)
	assert.Equal(t, KindInvalidName, kindOf(t, err))

	err = PersonName("Ivan0v", "last name")
	require.Error(t, err)
	assert.Equal(t, KindInvalidName, kindOf(t, err))
}

func TestMiddleName(t *testing.T) {
	assert.NoError(t, MiddleName(""))
	assert.NoError(t, MiddleName("   "))
	assert.NoError(t, MiddleName("Ivanovich"))

	// Two characters without a dot are a rejected abbreviation.
	err := MiddleName("Iv")
	require.Error(t, err)
	assert.Equal(t, KindInvalidName, kindOf(t, err))
}

func TestReaderFields(t *testing.T) {
	assert.NoError(t, ReaderFields("Ivanov", "Ivan", "Ivanovich"))
	assert.NoError(t, ReaderFields("Petrova", "Anna", ""))

	err := ReaderFields("", "Ivan", "")
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "last name", verr.Field)
}

func TestCheckoutInput(t *testing.T) {
	code, id, err := CheckoutInput("b001", "r0001")
	require.NoError(t, err)
	assert.Equal(t, "B001", code)
	assert.Equal(t, "R0001", id)

	code, id, err = CheckoutInput("  B12345 ", "R9999")
	require.NoError(t, err)
	assert.Equal(t, "B12345", code)
	assert.Equal(t, "R9999", id)
}

func TestCheckoutInput_Invalid(t *testing.T) {
	cases := []struct {
		name string
		code string
		id   string
	}{
		{"empty code", "", "R0001"},
		{"empty id", "B001", ""},
		{"code too short", "B1", "R0001"},
		{"code too long", "B123456", "R0001"},
		{"code wrong prefix", "X001", "R0001"},
		{"id too short", "B001", "R001"},
		{"id too long", "B001", "R00001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := CheckoutInput(tc.code, tc.id)
			require.Error(t, err)
			assert.Equal(t, KindInvalidInput, kindOf(t, err))
		})
	}
}

func TestSearchQuery(t *testing.T) {
	assert.NoError(t, SearchQuery("War and Peace"))
	assert.NoError(t, SearchQuery("B001"))

	err := SearchQuery("   ")
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, kindOf(t, err))

	err = SearchQuery("drop $ table")
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, kindOf(t, err))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "War and Peace", Normalize("  War \t and\n Peace "))
	assert.Equal(t, "", Normalize("   "))
}
