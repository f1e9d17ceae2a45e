// Package catalog holds the authoritative in-memory book and reader
// collections and keeps them mutually consistent: a book is taken iff
// exactly one reader's taken-list contains its code.
//
// The store is effectively single-writer; the RWMutex exists so the report
// pipeline can snapshot the collections while the GUI thread is idle. Every
// committed mutation is propagated synchronously to the injected relational
// mirror; a failed propagation is logged and never rolls back memory.
package catalog

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kmikhailov/librarium/internal/logger"
)

// Mirror is the live relational replica. Implemented by sqlstore.
type Mirror interface {
	UpsertBook(b Book) error
	DeleteBook(code string) error
	RenameBook(oldCode string, b Book) error
	UpsertReader(r Reader) error
	DeleteReader(id string) error
}

// Store owns both collections at runtime.
type Store struct {
	mu      sync.RWMutex
	books   []Book
	readers []Reader
	mirror  Mirror
}

// NewStore creates an empty store. mirror may be nil (no live replica).
func NewStore(mirror Mirror) *Store {
	return &Store{mirror: mirror}
}

func (s *Store) propagate(op, key string, fn func(Mirror) error) {
	if s.mirror == nil {
		return
	}
	if err := fn(s.mirror); err != nil {
		logger.Get().Warn().
			Str("op", op).
			Str("key", key).
			Err(err).
			Msg("relational mirror propagation failed")
	}
}

func (s *Store) indexOfBook(code string) int {
	return slices.IndexFunc(s.books, func(b Book) bool { return b.Code == code })
}

func (s *Store) indexOfReader(id string) int {
	return slices.IndexFunc(s.readers, func(r Reader) bool { return r.ID == id })
}

// Replace installs collections loaded from a mirror without propagating
// anything back. Used only on startup by the synchronization policy.
func (s *Store) Replace(books []Book, readers []Reader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = slices.Clone(books)
	s.readers = make([]Reader, 0, len(readers))
	for _, r := range readers {
		s.readers = append(s.readers, r.clone())
	}
}

// Books returns a copy of the book collection in insertion order.
func (s *Store) Books() []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.books)
}

// Readers returns a deep copy of the reader collection in insertion order.
func (s *Store) Readers() []Reader {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Reader, 0, len(s.readers))
	for _, r := range s.readers {
		out = append(out, r.clone())
	}
	return out
}

// Snapshot returns point-in-time copies of both collections under one read
// lock, for the report pipeline.
func (s *Store) Snapshot() ([]Book, []Reader) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := slices.Clone(s.books)
	readers := make([]Reader, 0, len(s.readers))
	for _, r := range s.readers {
		readers = append(readers, r.clone())
	}
	return books, readers
}

// AddBook appends a book. The caller supplies a validated, unique code.
func (s *Store) AddBook(b Book) {
	s.mu.Lock()
	s.books = append(s.books, b)
	s.mu.Unlock()
	s.propagate("add_book", b.Code, func(m Mirror) error { return m.UpsertBook(b) })
}

// RemoveBook deletes a book by code. A taken book cannot be removed.
// The bool reports whether the code existed.
func (s *Store) RemoveBook(code string) (bool, error) {
	s.mu.Lock()
	i := s.indexOfBook(code)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	if s.books[i].IsTaken {
		s.mu.Unlock()
		return true, &DeleteForbiddenError{Entity: EntityBook, Key: code, Reason: "book is currently taken"}
	}
	s.books = slices.Delete(s.books, i, i+1)
	s.mu.Unlock()
	s.propagate("remove_book", code, func(m Mirror) error { return m.DeleteBook(code) })
	return true, nil
}

// FindBook looks a book up by exact code.
func (s *Store) FindBook(code string) (Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfBook(code)
	if i < 0 {
		return Book{}, false
	}
	return s.books[i], true
}

// UpdateBook edits title, author and status of an existing book. Clearing
// the taken flag also clears the date.
func (s *Store) UpdateBook(code, title, author string, taken bool) bool {
	s.mu.Lock()
	i := s.indexOfBook(code)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.books[i].Title = title
	s.books[i].Author = author
	s.books[i].IsTaken = taken
	if !taken {
		s.books[i].DateTaken = time.Time{}
	}
	b := s.books[i]
	s.mu.Unlock()
	s.propagate("update_book", code, func(m Mirror) error { return m.UpsertBook(b) })
	return true
}

func (s *Store) setTakenLocked(code string, taken bool, date time.Time) bool {
	i := s.indexOfBook(code)
	if i < 0 {
		return false
	}
	s.books[i].IsTaken = taken
	if taken {
		s.books[i].DateTaken = date
	} else {
		s.books[i].DateTaken = time.Time{}
	}
	return true
}

// SetBookTaken sets the taken status and date atomically. Callers pairing it
// with LinkBook/UnlinkBook should prefer Checkout/Return, which do both
// under one lock.
func (s *Store) SetBookTaken(code string, taken bool, date time.Time) bool {
	s.mu.Lock()
	if !s.setTakenLocked(code, taken, date) {
		s.mu.Unlock()
		return false
	}
	b := s.books[s.indexOfBook(code)]
	s.mu.Unlock()
	s.propagate("set_taken", code, func(m Mirror) error { return m.UpsertBook(b) })
	return true
}

// RenameBookCode changes a book's primary key and rewrites every reader's
// taken-list referencing the old code. The bool reports whether oldCode
// existed; a colliding newCode yields a DuplicateKeyError and no change.
func (s *Store) RenameBookCode(oldCode, newCode string) (bool, error) {
	s.mu.Lock()
	i := s.indexOfBook(oldCode)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	if newCode != oldCode && s.indexOfBook(newCode) >= 0 {
		s.mu.Unlock()
		return true, &DuplicateKeyError{Entity: EntityBook, Key: newCode}
	}
	s.books[i].Code = newCode
	b := s.books[i]
	changed := s.rewriteBookCodeLocked(oldCode, newCode)
	s.mu.Unlock()

	s.propagate("rename_book", oldCode, func(m Mirror) error { return m.RenameBook(oldCode, b) })
	for _, r := range changed {
		r := r
		s.propagate("rename_book_reader", r.ID, func(m Mirror) error { return m.UpsertReader(r) })
	}
	return true, nil
}

func (s *Store) rewriteBookCodeLocked(oldCode, newCode string) []Reader {
	var changed []Reader
	for i := range s.readers {
		touched := false
		for j, code := range s.readers[i].TakenBooks {
			if code == oldCode {
				s.readers[i].TakenBooks[j] = newCode
				touched = true
			}
		}
		if touched {
			changed = append(changed, s.readers[i].clone())
		}
	}
	return changed
}

// UpdateBookCodeForAllReaders rewrites oldCode to newCode in every reader's
// taken-list and returns the number of readers touched. RenameBookCode calls
// this internally; it is exported for mirrors rebuilt out of band.
func (s *Store) UpdateBookCodeForAllReaders(oldCode, newCode string) int {
	s.mu.Lock()
	changed := s.rewriteBookCodeLocked(oldCode, newCode)
	s.mu.Unlock()
	for _, r := range changed {
		r := r
		s.propagate("update_book_code", r.ID, func(m Mirror) error { return m.UpsertReader(r) })
	}
	return len(changed)
}

// AddReader appends a reader. The caller supplies a validated, unique id.
func (s *Store) AddReader(r Reader) {
	r = r.clone()
	s.mu.Lock()
	s.readers = append(s.readers, r)
	s.mu.Unlock()
	s.propagate("add_reader", r.ID, func(m Mirror) error { return m.UpsertReader(r) })
}

// RemoveReader deletes a reader by id. A reader still holding books cannot
// be removed. The bool reports whether the id existed.
func (s *Store) RemoveReader(id string) (bool, error) {
	s.mu.Lock()
	i := s.indexOfReader(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	if len(s.readers[i].TakenBooks) > 0 {
		s.mu.Unlock()
		return true, &DeleteForbiddenError{Entity: EntityReader, Key: id, Reason: "reader still holds books"}
	}
	s.readers = slices.Delete(s.readers, i, i+1)
	s.mu.Unlock()
	s.propagate("remove_reader", id, func(m Mirror) error { return m.DeleteReader(id) })
	return true, nil
}

// FindReader looks a reader up by exact id.
func (s *Store) FindReader(id string) (Reader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfReader(id)
	if i < 0 {
		return Reader{}, false
	}
	return s.readers[i].clone(), true
}

// UpdateReader edits the name fields and gender of an existing reader.
func (s *Store) UpdateReader(id, lastName, firstName, middleName string, g Gender) bool {
	s.mu.Lock()
	i := s.indexOfReader(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.readers[i].LastName = lastName
	s.readers[i].FirstName = firstName
	s.readers[i].MiddleName = middleName
	s.readers[i].Gender = g
	r := s.readers[i].clone()
	s.mu.Unlock()
	s.propagate("update_reader", id, func(m Mirror) error { return m.UpsertReader(r) })
	return true
}

func (s *Store) linkLocked(readerIdx int, code string) bool {
	if s.readers[readerIdx].Holds(code) {
		return false
	}
	s.readers[readerIdx].TakenBooks = append(s.readers[readerIdx].TakenBooks, code)
	return true
}

func (s *Store) unlinkLocked(readerIdx int, code string) bool {
	if !s.readers[readerIdx].Holds(code) {
		return false
	}
	s.readers[readerIdx].TakenBooks = slices.DeleteFunc(
		s.readers[readerIdx].TakenBooks,
		func(c string) bool { return c == code },
	)
	return true
}

// LinkBook adds a book code to a reader's taken-list. Linking an absent
// reader or an already-linked code is a no-op returning false.
func (s *Store) LinkBook(readerID, code string) bool {
	s.mu.Lock()
	i := s.indexOfReader(readerID)
	if i < 0 || !s.linkLocked(i, code) {
		s.mu.Unlock()
		return false
	}
	r := s.readers[i].clone()
	s.mu.Unlock()
	s.propagate("link_book", readerID, func(m Mirror) error { return m.UpsertReader(r) })
	return true
}

// UnlinkBook removes a book code from a reader's taken-list. Unlinking an
// absent reader or code is a no-op returning false.
func (s *Store) UnlinkBook(readerID, code string) bool {
	s.mu.Lock()
	i := s.indexOfReader(readerID)
	if i < 0 || !s.unlinkLocked(i, code) {
		s.mu.Unlock()
		return false
	}
	r := s.readers[i].clone()
	s.mu.Unlock()
	s.propagate("unlink_book", readerID, func(m Mirror) error { return m.UpsertReader(r) })
	return true
}

// Checkout hands a book to a reader: link plus status flip under one lock,
// so no caller can observe a half-applied state.
func (s *Store) Checkout(code, readerID string, date time.Time) error {
	s.mu.Lock()
	bi := s.indexOfBook(code)
	if bi < 0 {
		s.mu.Unlock()
		return &NotFoundError{Entity: EntityBook, Key: code}
	}
	if s.books[bi].IsTaken {
		s.mu.Unlock()
		return &AlreadyInStateError{Entity: EntityBook, Key: code, State: "taken"}
	}
	ri := s.indexOfReader(readerID)
	if ri < 0 {
		s.mu.Unlock()
		return &NotFoundError{Entity: EntityReader, Key: readerID}
	}
	if !s.linkLocked(ri, code) {
		s.mu.Unlock()
		return ErrAlreadyLinked
	}
	// bi was verified above and the lock is still held, so the flip
	// cannot fail once the link is in.
	s.books[bi].IsTaken = true
	s.books[bi].DateTaken = date
	b := s.books[bi]
	r := s.readers[ri].clone()
	s.mu.Unlock()

	s.propagate("checkout_reader", readerID, func(m Mirror) error { return m.UpsertReader(r) })
	s.propagate("checkout_book", code, func(m Mirror) error { return m.UpsertBook(b) })
	logger.Get().Debug().Str("code", code).Str("reader", readerID).Msg("book checked out")
	return nil
}

// Return takes a book back from a reader: unlink plus status clear under one
// lock.
func (s *Store) Return(code, readerID string) error {
	s.mu.Lock()
	bi := s.indexOfBook(code)
	if bi < 0 {
		s.mu.Unlock()
		return &NotFoundError{Entity: EntityBook, Key: code}
	}
	if !s.books[bi].IsTaken {
		s.mu.Unlock()
		return &AlreadyInStateError{Entity: EntityBook, Key: code, State: "available"}
	}
	ri := s.indexOfReader(readerID)
	if ri < 0 {
		s.mu.Unlock()
		return &NotFoundError{Entity: EntityReader, Key: readerID}
	}
	if !s.unlinkLocked(ri, code) {
		s.mu.Unlock()
		return ErrNotLinked
	}
	s.books[bi].IsTaken = false
	s.books[bi].DateTaken = time.Time{}
	b := s.books[bi]
	r := s.readers[ri].clone()
	s.mu.Unlock()

	s.propagate("return_reader", readerID, func(m Mirror) error { return m.UpsertReader(r) })
	s.propagate("return_book", code, func(m Mirror) error { return m.UpsertBook(b) })
	logger.Get().Debug().Str("code", code).Str("reader", readerID).Msg("book returned")
	return nil
}

// SearchBooks matches by exact code or title substring, case-insensitively.
func (s *Store) SearchBooks(query string) []Book {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Book
	for _, b := range s.books {
		if strings.EqualFold(b.Code, q) || strings.Contains(strings.ToLower(b.Title), q) {
			out = append(out, b)
		}
	}
	return out
}

// SearchReader matches by exact id or full-name substring, case-insensitively.
func (s *Store) SearchReader(query string) (Reader, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.readers {
		if strings.EqualFold(r.ID, q) || strings.Contains(strings.ToLower(r.FullName()), q) {
			return r.clone(), true
		}
	}
	return Reader{}, false
}
