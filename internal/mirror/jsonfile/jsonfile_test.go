package jsonfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmikhailov/librarium/internal/catalog"
)

func TestBooksRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	taken := time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC)
	in := []catalog.Book{
		{Code: "B001", Title: "War and Peace", Author: "Leo Tolstoy", IsTaken: true, DateTaken: taken},
		{Code: "B002", Title: "Crime and Punishment", Author: "Fyodor Dostoevsky"},
	}

	require.NoError(t, SaveBooks(path, in))
	out, err := LoadBooks(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readers.json")
	reg := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	in := []catalog.Reader{
		{
			ID: "R0001", LastName: "Ivanov", FirstName: "Ivan", MiddleName: "Ivanovich",
			Gender: catalog.Male, RegisteredAt: reg, TakenBooks: []string{"B001"},
		},
		{ID: "R0002", LastName: "Petrova", FirstName: "Anna", Gender: catalog.Female, RegisteredAt: reg},
	}

	require.NoError(t, SaveReaders(path, in))
	out, err := LoadReaders(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEmptyDateTravelsAsEmptyString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, SaveBooks(path, []catalog.Book{{Code: "B001", Title: "T", Author: "A"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date_taken": ""`)
}

func TestLoadMissingFieldsDefaultToZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readers.json")
	raw := `[{"id": "R0010", "last_name": "Sidorov", "first_name": "Pavel"}]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	readers, err := LoadReaders(path)
	require.NoError(t, err)
	require.Len(t, readers, 1)
	assert.Equal(t, catalog.Female, readers[0].Gender)
	assert.True(t, readers[0].RegisteredAt.IsZero())
	assert.Empty(t, readers[0].TakenBooks)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadBooks(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
	_, err = LoadReaders(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadBooks(path)
	assert.Error(t, err)
}
