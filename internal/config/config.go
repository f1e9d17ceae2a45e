package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		Mirrors
		Report
		Autosave
		Logging
	}

	Database struct {
		Path string
	}

	// Mirrors holds the conventional file paths of the two file mirrors.
	Mirrors struct {
		BooksJSON   string
		ReadersJSON string
		BooksXML    string
		ReadersXML  string
	}

	Report struct {
		OutputPath string
	}

	Autosave struct {
		Enabled  bool
		Schedule string // cron format, "@every 5m" by default
	}

	Logging struct {
		Level string
		File  string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("database_path", "library.db")
	v.SetDefault("books_json_path", "books.json")
	v.SetDefault("readers_json_path", "readers.json")
	v.SetDefault("books_xml_path", "books.xml")
	v.SetDefault("readers_xml_path", "readers.xml")
	v.SetDefault("report_output_path", "report.txt")
	v.SetDefault("autosave_enabled", false)
	v.SetDefault("autosave_schedule", "@every 5m")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	return &Config{
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Mirrors: Mirrors{
			BooksJSON:   v.GetString("BOOKS_JSON_PATH"),
			ReadersJSON: v.GetString("READERS_JSON_PATH"),
			BooksXML:    v.GetString("BOOKS_XML_PATH"),
			ReadersXML:  v.GetString("READERS_XML_PATH"),
		},
		Report: Report{
			OutputPath: v.GetString("REPORT_OUTPUT_PATH"),
		},
		Autosave: Autosave{
			Enabled:  v.GetBool("AUTOSAVE_ENABLED"),
			Schedule: v.GetString("AUTOSAVE_SCHEDULE"),
		},
		Logging: Logging{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
	}
}
