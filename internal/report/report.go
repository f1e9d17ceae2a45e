// Package report builds the statistical report through a fixed three-stage
// concurrent pipeline: snapshot -> transform -> render. Stages run as three
// goroutines joined before Run returns; each hands its result to the next
// through a single-element channel, and a closed channel without a value
// means the upstream stage failed, so downstream stages return without work.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kmikhailov/librarium/internal/catalog"
	"github.com/kmikhailov/librarium/internal/logger"
)

// Snapshotter yields point-in-time copies of the catalog collections.
// Implemented by *catalog.Store.
type Snapshotter interface {
	Snapshot() ([]catalog.Book, []catalog.Reader)
}

type snapshot struct {
	Books   []catalog.Book
	Readers []catalog.Reader
	TakenAt time.Time
}

// Debtor is a reader currently holding at least one taken book.
type Debtor struct {
	ID       string
	FullName string
	Held     []string // codes resolving to currently-taken books
}

// Stats is everything the rendered document needs.
type Stats struct {
	RunID       string
	GeneratedAt time.Time

	TotalBooks     int
	TakenBooks     int
	AvailableBooks int
	TotalReaders   int

	CheckoutsThisMonth     int
	RegistrationsThisMonth int

	Debtors []Debtor
	Books   []catalog.Book
	Readers []catalog.Reader
}

// Pipeline renders reports from a catalog source.
type Pipeline struct {
	src Snapshotter
	now func() time.Time
}

func New(src Snapshotter) *Pipeline {
	return &Pipeline{src: src, now: time.Now}
}

// Run executes all three stages and writes the document to sink. The first
// stage error wins; every stage is joined before Run returns.
func (p *Pipeline) Run(sink io.Writer) error {
	runID := uuid.NewString()
	log := logger.Get().With().Str("run_id", runID).Logger()
	log.Info().Msg("report pipeline started")

	snapCh := make(chan snapshot, 1)
	sortCh := make(chan snapshot, 1)

	var g errgroup.Group

	g.Go(func() error {
		defer close(snapCh)
		books, readers := p.src.Snapshot()
		snapCh <- snapshot{Books: books, Readers: readers, TakenAt: p.now()}
		return nil
	})

	g.Go(func() error {
		defer close(sortCh)
		snap, ok := <-snapCh
		if !ok {
			return nil
		}
		sort.SliceStable(snap.Books, func(i, j int) bool {
			return snap.Books[i].Title < snap.Books[j].Title
		})
		sort.SliceStable(snap.Readers, func(i, j int) bool {
			ri, rj := snap.Readers[i], snap.Readers[j]
			if ri.LastName != rj.LastName {
				return ri.LastName < rj.LastName
			}
			return ri.FirstName < rj.FirstName
		})
		sortCh <- snap
		return nil
	})

	g.Go(func() error {
		snap, ok := <-sortCh
		if !ok {
			return nil
		}
		stats := buildStats(runID, snap)
		return render(sink, stats)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("report pipeline failed")
		return err
	}
	log.Info().Msg("report pipeline finished")
	return nil
}

func sameMonth(t, ref time.Time) bool {
	return !t.IsZero() && t.Year() == ref.Year() && t.Month() == ref.Month()
}

func buildStats(runID string, snap snapshot) Stats {
	stats := Stats{
		RunID:        runID,
		GeneratedAt:  snap.TakenAt,
		TotalBooks:   len(snap.Books),
		TotalReaders: len(snap.Readers),
		Books:        snap.Books,
		Readers:      snap.Readers,
	}

	takenCodes := make(map[string]bool, len(snap.Books))
	for _, b := range snap.Books {
		if b.IsTaken {
			stats.TakenBooks++
			takenCodes[b.Code] = true
			if sameMonth(b.DateTaken, snap.TakenAt) {
				stats.CheckoutsThisMonth++
			}
		}
	}
	stats.AvailableBooks = stats.TotalBooks - stats.TakenBooks

	for _, r := range snap.Readers {
		if sameMonth(r.RegisteredAt, snap.TakenAt) {
			stats.RegistrationsThisMonth++
		}
		var held []string
		for _, code := range r.TakenBooks {
			if takenCodes[code] {
				held = append(held, code)
			}
		}
		if len(held) > 0 {
			stats.Debtors = append(stats.Debtors, Debtor{
				ID:       r.ID,
				FullName: r.FullName(),
				Held:     held,
			})
		}
	}
	return stats
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"date": catalog.FormatDate,
	"join": func(parts []string) string { return strings.Join(parts, ", ") },
}).Parse(`LIBRARY REPORT {{.RunID}}
Generated at: {{.GeneratedAt.Format "02/01/2006 15:04:05"}}

Books total:              {{.TotalBooks}}
Books currently taken:    {{.TakenBooks}}
Books available:          {{.AvailableBooks}}
Readers registered:       {{.TotalReaders}}
Checkouts this month:     {{.CheckoutsThisMonth}}
Registrations this month: {{.RegistrationsThisMonth}}

BOOKS (by title)
{{range .Books}}  {{.Code}}  {{.Title}} / {{.Author}}{{if .IsTaken}} [taken {{date .DateTaken}}]{{end}}
{{end}}
READERS (by name)
{{range .Readers}}  {{.ID}}  {{.FullName}} ({{len .TakenBooks}} taken)
{{end}}
DEBTORS
{{if not .Debtors}}  none
{{end}}{{range .Debtors}}  {{.ID}}  {{.FullName}}: {{join .Held}}
{{end}}`))

func render(sink io.Writer, stats Stats) error {
	if err := reportTmpl.Execute(sink, stats); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
