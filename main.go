package main

import (
	"fmt"
	"os"

	"github.com/kmikhailov/librarium/internal/catalog"
	"github.com/kmikhailov/librarium/internal/config"
	"github.com/kmikhailov/librarium/internal/librarian"
	"github.com/kmikhailov/librarium/internal/logger"
	"github.com/kmikhailov/librarium/internal/mirror/sqlstore"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	command := "summary"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "summary":
		withService(cfg, func(svc *librarian.Service) error {
			books := svc.Store().Books()
			taken := 0
			for _, b := range books {
				if b.IsTaken {
					taken++
				}
			}
			fmt.Printf("librarium %s (%s)\n", Version, Commit)
			fmt.Printf("books: %d (%d taken), readers: %d\n",
				len(books), taken, len(svc.Store().Readers()))
			return nil
		})

	case "report":
		withService(cfg, func(svc *librarian.Service) error {
			if err := svc.RunReportToFile(cfg.Report.OutputPath); err != nil {
				return err
			}
			fmt.Printf("report written to %s\n", cfg.Report.OutputPath)
			return nil
		})

	case "checkpoint":
		withService(cfg, func(svc *librarian.Service) error {
			return svc.Checkpoint()
		})

	case "seed":
		// Load already seeds when every mirror is empty; Close checkpoints.
		withService(cfg, func(*librarian.Service) error { return nil })

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// withService owns the database handle lifecycle around one command.
func withService(cfg *config.Config, fn func(*librarian.Service) error) {
	db, err := sqlstore.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := catalog.NewStore(db)
	svc := librarian.New(store, db, cfg.Mirrors)
	if err := svc.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Autosave.Enabled {
		if err := svc.StartAutosave(cfg.Autosave.Schedule); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	runErr := fn(svc)
	if err := svc.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  summary     Print catalog counts (default)\n")
	fmt.Fprintf(os.Stderr, "  report      Run the report pipeline into the configured file\n")
	fmt.Fprintf(os.Stderr, "  checkpoint  Flush all persistence mirrors\n")
	fmt.Fprintf(os.Stderr, "  seed        Initialize mirrors, seeding sample data if empty\n")
}
