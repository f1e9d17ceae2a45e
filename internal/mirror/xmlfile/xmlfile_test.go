package xmlfile

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
	path := filepath.Join(t.TempDir(), "books.xml")
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
	path := filepath.Join(t.TempDir(), "readers.xml")
	reg := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	in := []catalog.Reader{
		{
			ID: "R0001", LastName: "Ivanov", FirstName: "Ivan", MiddleName: "Ivanovich",
			Gender: catalog.Male, RegisteredAt: reg, TakenBooks: []string{"B001", "B002"},
		},
		{ID: "R0002", LastName: "Petrova", FirstName: "Anna", Gender: catalog.Female, RegisteredAt: reg},
	}

	require.NoError(t, SaveReaders(path, in))
	out, err := LoadReaders(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadBooksMissingOptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.xml")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<books>
  <book>
    <code>B010</code>
    <title>Dead Souls</title>
    <author>Nikolai Gogol</author>
  </book>
  <book>
    <code>B011</code>
    <title>The Idiot</title>
    <author>Fyodor Dostoevsky</author>
    <is_taken>1</is_taken>
    <date_taken>not-a-date</date_taken>
  </book>
</books>
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	books, err := LoadBooks(path)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.False(t, books[0].IsTaken)
	assert.True(t, books[0].DateTaken.IsZero())

	// A malformed date means "no date", not a load failure.
	assert.True(t, books[1].IsTaken)
	assert.True(t, books[1].DateTaken.IsZero())
}

func TestLoadReadersDropsBlankCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readers.xml")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<readers>
  <reader>
    <id>R0010</id>
    <last_name>Sidorov</last_name>
    <first_name>Pavel</first_name>
    <gender>true</gender>
    <taken_books>
      <book>B001</book>
      <book>  </book>
      <book></book>
    </taken_books>
  </reader>
</readers>
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	readers, err := LoadReaders(path)
	require.NoError(t, err)
	require.Len(t, readers, 1)
	assert.Equal(t, []string{"B001"}, readers[0].TakenBooks)
	assert.Equal(t, catalog.Male, readers[0].Gender)
	assert.Empty(t, readers[0].MiddleName)
	assert.True(t, readers[0].RegisteredAt.IsZero())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadBooks(filepath.Join(t.TempDir(), "absent.xml"))
	assert.Error(t, err)
	_, err = LoadReaders(filepath.Join(t.TempDir(), "absent.xml"))
	assert.Error(t, err)
}

func TestSaveEmptyCollections(t *testing.T) {
	dir := t.TempDir()
	booksPath := filepath.Join(dir, "books.xml")
	readersPath := filepath.Join(dir, "readers.xml")

	require.NoError(t, SaveBooks(booksPath, nil))
	require.NoError(t, SaveReaders(readersPath, nil))

	books, err := LoadBooks(booksPath)
	require.NoError(t, err)
	assert.Empty(t, books)

	readers, err := LoadReaders(readersPath)
	require.NoError(t, err)
	assert.Empty(t, readers)
}
