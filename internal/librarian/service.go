// Package librarian is the synchronization policy tying the catalog store
// to its three persistence mirrors.
//
// The relational mirror is the live replica: the store propagates every
// mutation to it synchronously. The file mirrors are snapshots refreshed
// only on explicit checkpoints, so between checkpoints they are stale by
// design. Startup load prefers the relational mirror and falls back to the
// structured XML file, then the flat JSON file.
package librarian

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/robfig/cron/v3"

	"github.com/kmikhailov/librarium/internal/catalog"
	"github.com/kmikhailov/librarium/internal/config"
	"github.com/kmikhailov/librarium/internal/logger"
	"github.com/kmikhailov/librarium/internal/mirror/jsonfile"
	"github.com/kmikhailov/librarium/internal/mirror/sqlstore"
	"github.com/kmikhailov/librarium/internal/mirror/xmlfile"
	"github.com/kmikhailov/librarium/internal/report"
)

// Service owns the load/checkpoint lifecycle. The db handle is opened by
// the composition root and injected here; Close releases it.
type Service struct {
	store *catalog.Store
	db    *sqlstore.Store
	paths config.Mirrors
	cron  *cron.Cron
}

func New(store *catalog.Store, db *sqlstore.Store, paths config.Mirrors) *Service {
	return &Service{store: store, db: db, paths: paths}
}

// Store exposes the catalog for the GUI collaborators.
func (s *Service) Store() *catalog.Store {
	return s.store
}

// Load fills the store: relational mirror first, then the XML file, then
// the JSON file, independently per entity. If both collections end up empty
// a small sample data set is seeded (and, through store propagation,
// written to the relational mirror).
func (s *Service) Load() error {
	books := s.loadBooks()
	readers := s.loadReaders()
	s.store.Replace(books, readers)

	if len(books) == 0 && len(readers) == 0 {
		s.seed()
	}
	return nil
}

func (s *Service) loadBooks() []catalog.Book {
	log := logger.Get()
	if books, err := s.db.LoadBooks(); err == nil && len(books) > 0 {
		return books
	} else if err != nil {
		log.Warn().Err(err).Msg("relational mirror unavailable for books")
	}
	if books, err := xmlfile.LoadBooks(s.paths.BooksXML); err == nil && len(books) > 0 {
		return books
	}
	if books, err := jsonfile.LoadBooks(s.paths.BooksJSON); err == nil && len(books) > 0 {
		return books
	}
	return nil
}

func (s *Service) loadReaders() []catalog.Reader {
	log := logger.Get()
	if readers, err := s.db.LoadReaders(); err == nil && len(readers) > 0 {
		return readers
	} else if err != nil {
		log.Warn().Err(err).Msg("relational mirror unavailable for readers")
	}
	if readers, err := xmlfile.LoadReaders(s.paths.ReadersXML); err == nil && len(readers) > 0 {
		return readers
	}
	if readers, err := jsonfile.LoadReaders(s.paths.ReadersJSON); err == nil && len(readers) > 0 {
		return readers
	}
	return nil
}

func (s *Service) seed() {
	logger.Get().Info().Msg("all mirrors empty, seeding sample data")
	s.store.AddBook(catalog.Book{
		Code: "B001", Title: "War and Peace", Author: "Leo Tolstoy",
		IsTaken: true, DateTaken: catalog.ParseDate("14/04/2006"),
	})
	s.store.AddBook(catalog.Book{
		Code: "B002", Title: "Crime and Punishment", Author: "Fyodor Dostoevsky",
	})
	s.store.AddReader(catalog.Reader{
		ID: "R0001", LastName: "Ivanov", FirstName: "Ivan", MiddleName: "Ivanovich",
		Gender: catalog.Male, RegisteredAt: time.Now(), TakenBooks: []string{"B001"},
	})
	s.store.AddReader(catalog.Reader{
		ID: "R0002", LastName: "Petrova", FirstName: "Anna", MiddleName: "Sergeevna",
		Gender: catalog.Female, RegisteredAt: time.Now(),
	})
}

// Checkpoint flushes the in-memory state to all three mirrors. Per-mirror
// failures are aggregated; the in-memory state is never rolled back.
func (s *Service) Checkpoint() error {
	books, readers := s.store.Snapshot()

	var result *multierror.Error
	if err := jsonfile.SaveBooks(s.paths.BooksJSON, books); err != nil {
		result = multierror.Append(result, fmt.Errorf("json mirror: %w", err))
	}
	if err := jsonfile.SaveReaders(s.paths.ReadersJSON, readers); err != nil {
		result = multierror.Append(result, fmt.Errorf("json mirror: %w", err))
	}
	if err := xmlfile.SaveBooks(s.paths.BooksXML, books); err != nil {
		result = multierror.Append(result, fmt.Errorf("xml mirror: %w", err))
	}
	if err := xmlfile.SaveReaders(s.paths.ReadersXML, readers); err != nil {
		result = multierror.Append(result, fmt.Errorf("xml mirror: %w", err))
	}
	if err := s.db.SaveAll(books, readers); err != nil {
		result = multierror.Append(result, fmt.Errorf("relational mirror: %w", err))
	}
	return result.ErrorOrNil()
}

// StartAutosave schedules periodic checkpoints. Returns the scheduler error
// for a malformed schedule expression.
func (s *Service) StartAutosave(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := s.Checkpoint(); err != nil {
			logger.Get().Warn().Err(err).Msg("autosave checkpoint failed")
		}
	})
	if err != nil {
		return fmt.Errorf("autosave schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	logger.Get().Info().Str("schedule", schedule).Msg("autosave started")
	return nil
}

// RunReport executes the report pipeline into sink.
func (s *Service) RunReport(sink io.Writer) error {
	return report.New(s.store).Run(sink)
}

// RunReportToFile runs the pipeline into a file at path.
func (s *Service) RunReportToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	return s.RunReport(f)
}

// Close checkpoints and releases the database handle.
func (s *Service) Close() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	var result *multierror.Error
	if err := s.Checkpoint(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.db.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
