// Package sqlstore is the relational mirror: one sqlite table per entity,
// keyed by code/id, with upsert semantics. It is the live replica the
// catalog store propagates every mutation to.
package sqlstore

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kmikhailov/librarium/internal/catalog"
)

// BookRow mirrors one book. Dates travel as dd/MM/yyyy strings, "" = none.
type BookRow struct {
	Code      string `gorm:"column:code;primaryKey"`
	Title     string `gorm:"column:title;not null"`
	Author    string `gorm:"column:author;not null"`
	IsTaken   bool   `gorm:"column:is_taken;not null"`
	DateTaken string `gorm:"column:date_taken"`
}

func (BookRow) TableName() string { return "books" }

// ReaderRow mirrors one reader; taken_books is a comma-joined code list.
type ReaderRow struct {
	ID         string `gorm:"column:id;primaryKey"`
	LastName   string `gorm:"column:last_name;not null"`
	FirstName  string `gorm:"column:first_name;not null"`
	MiddleName string `gorm:"column:middle_name"`
	Gender     int    `gorm:"column:gender;not null"`
	RegDate    string `gorm:"column:reg_date"`
	TakenBooks string `gorm:"column:taken_books"`
}

func (ReaderRow) TableName() string { return "readers" }

// Store wraps the shared database handle. The handle is opened once by the
// composition root and injected everywhere; nothing here is a singleton.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database at path and ensures both
// tables exist. Schema creation is idempotent.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open relational mirror: %w", err)
	}
	if err := db.AutoMigrate(&BookRow{}, &ReaderRow{}); err != nil {
		return nil, fmt.Errorf("migrate relational mirror: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an already-open handle (tests, shared connections).
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func rowFromBook(b catalog.Book) BookRow {
	return BookRow{
		Code:      b.Code,
		Title:     b.Title,
		Author:    b.Author,
		IsTaken:   b.IsTaken,
		DateTaken: catalog.FormatDate(b.DateTaken),
	}
}

func bookFromRow(r BookRow) catalog.Book {
	return catalog.Book{
		Code:      r.Code,
		Title:     r.Title,
		Author:    r.Author,
		IsTaken:   r.IsTaken,
		DateTaken: catalog.ParseDate(r.DateTaken),
	}
}

func rowFromReader(r catalog.Reader) ReaderRow {
	return ReaderRow{
		ID:         r.ID,
		LastName:   r.LastName,
		FirstName:  r.FirstName,
		MiddleName: r.MiddleName,
		Gender:     int(r.Gender),
		RegDate:    catalog.FormatDate(r.RegisteredAt),
		TakenBooks: strings.Join(r.TakenBooks, ","),
	}
}

func readerFromRow(row ReaderRow) catalog.Reader {
	var taken []string
	if row.TakenBooks != "" {
		taken = strings.Split(row.TakenBooks, ",")
	}
	return catalog.Reader{
		ID:           row.ID,
		LastName:     row.LastName,
		FirstName:    row.FirstName,
		MiddleName:   row.MiddleName,
		Gender:       catalog.Gender(row.Gender),
		RegisteredAt: catalog.ParseDate(row.RegDate),
		TakenBooks:   taken,
	}
}

// LoadBooks returns every book row in insertion (rowid) order.
func (s *Store) LoadBooks() ([]catalog.Book, error) {
	var rows []BookRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	books := make([]catalog.Book, 0, len(rows))
	for _, r := range rows {
		books = append(books, bookFromRow(r))
	}
	return books, nil
}

// LoadReaders returns every reader row in insertion (rowid) order.
func (s *Store) LoadReaders() ([]catalog.Reader, error) {
	var rows []ReaderRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load readers: %w", err)
	}
	readers := make([]catalog.Reader, 0, len(rows))
	for _, r := range rows {
		readers = append(readers, readerFromRow(r))
	}
	return readers, nil
}

// UpsertBook inserts the book or, on a code conflict, updates all non-key
// columns.
func (s *Store) UpsertBook(b catalog.Book) error {
	row := rowFromBook(b)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (s *Store) DeleteBook(code string) error {
	return s.db.Delete(&BookRow{}, "code = ?", code).Error
}

// RenameBook updates the primary key and all columns in one statement keyed
// by the old code; an upsert by the new key could not find the old row.
func (s *Store) RenameBook(oldCode string, b catalog.Book) error {
	return s.db.Model(&BookRow{}).Where("code = ?", oldCode).Updates(map[string]any{
		"code":       b.Code,
		"title":      b.Title,
		"author":     b.Author,
		"is_taken":   b.IsTaken,
		"date_taken": catalog.FormatDate(b.DateTaken),
	}).Error
}

// UpsertReader inserts the reader or, on an id conflict, updates all non-key
// columns.
func (s *Store) UpsertReader(r catalog.Reader) error {
	row := rowFromReader(r)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (s *Store) DeleteReader(id string) error {
	return s.db.Delete(&ReaderRow{}, "id = ?", id).Error
}

// SaveAll upserts the full collections, for checkpoint convergence.
func (s *Store) SaveAll(books []catalog.Book, readers []catalog.Reader) error {
	for _, b := range books {
		if err := s.UpsertBook(b); err != nil {
			return err
		}
	}
	for _, r := range readers {
		if err := s.UpsertReader(r); err != nil {
			return err
		}
	}
	return nil
}
