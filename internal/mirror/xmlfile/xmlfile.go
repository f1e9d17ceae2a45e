// Package xmlfile is the structured-file mirror: one element per entity with
// a nested taken_books list per reader. The tag-based decoder tolerates
// missing optional elements; absent fields come back as zero values and a
// malformed date means "no date".
package xmlfile

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/kmikhailov/librarium/internal/catalog"
)

type xmlBook struct {
	Code      string `xml:"code"`
	Title     string `xml:"title"`
	Author    string `xml:"author"`
	IsTaken   string `xml:"is_taken"`
	DateTaken string `xml:"date_taken"`
}

type xmlBooks struct {
	XMLName xml.Name  `xml:"books"`
	Books   []xmlBook `xml:"book"`
}

type xmlReader struct {
	ID         string   `xml:"id"`
	LastName   string   `xml:"last_name"`
	FirstName  string   `xml:"first_name"`
	MiddleName string   `xml:"middle_name"`
	Gender     string   `xml:"gender"`
	RegDate    string   `xml:"reg_date"`
	TakenBooks []string `xml:"taken_books>book"`
}

type xmlReaders struct {
	XMLName xml.Name    `xml:"readers"`
	Readers []xmlReader `xml:"reader"`
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseFlag(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true"
}

func writeDoc(path string, doc any) error {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// SaveBooks writes the collection to path as a <books> document.
func SaveBooks(path string, books []catalog.Book) error {
	doc := xmlBooks{Books: make([]xmlBook, 0, len(books))}
	for _, b := range books {
		doc.Books = append(doc.Books, xmlBook{
			Code:      b.Code,
			Title:     b.Title,
			Author:    b.Author,
			IsTaken:   boolFlag(b.IsTaken),
			DateTaken: catalog.FormatDate(b.DateTaken),
		})
	}
	return writeDoc(path, doc)
}

// LoadBooks reads a <books> document from path.
func LoadBooks(path string) ([]catalog.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc xmlBooks
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	books := make([]catalog.Book, 0, len(doc.Books))
	for _, b := range doc.Books {
		books = append(books, catalog.Book{
			Code:      b.Code,
			Title:     b.Title,
			Author:    b.Author,
			IsTaken:   parseFlag(b.IsTaken),
			DateTaken: catalog.ParseDate(b.DateTaken),
		})
	}
	return books, nil
}

// SaveReaders writes the collection to path as a <readers> document.
func SaveReaders(path string, readers []catalog.Reader) error {
	doc := xmlReaders{Readers: make([]xmlReader, 0, len(readers))}
	for _, r := range readers {
		doc.Readers = append(doc.Readers, xmlReader{
			ID:         r.ID,
			LastName:   r.LastName,
			FirstName:  r.FirstName,
			MiddleName: r.MiddleName,
			Gender:     boolFlag(r.Gender == catalog.Male),
			RegDate:    catalog.FormatDate(r.RegisteredAt),
			TakenBooks: r.TakenBooks,
		})
	}
	return writeDoc(path, doc)
}

// LoadReaders reads a <readers> document from path. Blank nested book codes
// are dropped.
func LoadReaders(path string) ([]catalog.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc xmlReaders
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	readers := make([]catalog.Reader, 0, len(doc.Readers))
	for _, r := range doc.Readers {
		gender := catalog.Female
		if parseFlag(r.Gender) {
			gender = catalog.Male
		}
		var taken []string
		for _, code := range r.TakenBooks {
			if c := strings.TrimSpace(code); c != "" {
				taken = append(taken, c)
			}
		}
		readers = append(readers, catalog.Reader{
			ID:           r.ID,
			LastName:     r.LastName,
			FirstName:    r.FirstName,
			MiddleName:   r.MiddleName,
			Gender:       gender,
			RegisteredAt: catalog.ParseDate(r.RegDate),
			TakenBooks:   taken,
		})
	}
	return readers, nil
}
