// Package jsonfile is the flat-record mirror: the whole collection as one
// JSON array of field records. Dates are dd/MM/yyyy strings, "" = no date;
// missing fields decode to zero values.
package jsonfile

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/kmikhailov/librarium/internal/catalog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type bookRecord struct {
	Code      string `json:"code"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	IsTaken   bool   `json:"is_taken"`
	DateTaken string `json:"date_taken"`
}

type readerRecord struct {
	ID         string   `json:"id"`
	LastName   string   `json:"last_name"`
	FirstName  string   `json:"first_name"`
	MiddleName string   `json:"middle_name"`
	Gender     int      `json:"gender"`
	RegDate    string   `json:"reg_date"`
	TakenBooks []string `json:"taken_books"`
}

func write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// SaveBooks writes the collection to path.
func SaveBooks(path string, books []catalog.Book) error {
	records := make([]bookRecord, 0, len(books))
	for _, b := range books {
		records = append(records, bookRecord{
			Code:      b.Code,
			Title:     b.Title,
			Author:    b.Author,
			IsTaken:   b.IsTaken,
			DateTaken: catalog.FormatDate(b.DateTaken),
		})
	}
	return write(path, records)
}

// LoadBooks reads the collection from path.
func LoadBooks(path string) ([]catalog.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []bookRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	books := make([]catalog.Book, 0, len(records))
	for _, r := range records {
		books = append(books, catalog.Book{
			Code:      r.Code,
			Title:     r.Title,
			Author:    r.Author,
			IsTaken:   r.IsTaken,
			DateTaken: catalog.ParseDate(r.DateTaken),
		})
	}
	return books, nil
}

// SaveReaders writes the collection to path.
func SaveReaders(path string, readers []catalog.Reader) error {
	records := make([]readerRecord, 0, len(readers))
	for _, r := range readers {
		records = append(records, readerRecord{
			ID:         r.ID,
			LastName:   r.LastName,
			FirstName:  r.FirstName,
			MiddleName: r.MiddleName,
			Gender:     int(r.Gender),
			RegDate:    catalog.FormatDate(r.RegisteredAt),
			TakenBooks: r.TakenBooks,
		})
	}
	return write(path, records)
}

// LoadReaders reads the collection from path.
func LoadReaders(path string) ([]catalog.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []readerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	readers := make([]catalog.Reader, 0, len(records))
	for _, r := range records {
		readers = append(readers, catalog.Reader{
			ID:           r.ID,
			LastName:     r.LastName,
			FirstName:    r.FirstName,
			MiddleName:   r.MiddleName,
			Gender:       catalog.Gender(r.Gender),
			RegisteredAt: catalog.ParseDate(r.RegDate),
			TakenBooks:   r.TakenBooks,
		})
	}
	return readers, nil
}
