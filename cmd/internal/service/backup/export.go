package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
	"os"
	"promptlib/cmd/internal/contract"
	"promptlib/cmd/internal/domain/seed"
	"promptlib/cmd/internal/domain/sqlite"
	"strings"
	"time"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatSQL    Format = "sql"
	FormatSQLite Format = "sqlite"
	FormatAll    Format = "all"
)

var ErrNoDatabase = errors.New("export format requires a database file")

func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatSQL, FormatSQLite, FormatAll:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (expected json, sql, sqlite or all)", value)
	}
}

type ExportOptions struct {
	Format Format
	// Output is the target file. With FormatAll it is a base name that gets
	// each format's extension appended.
	Output string
	// DB is the local database, required by the sql and sqlite formats.
	DB *gorm.DB
}

// Export writes the requested formats and returns the written paths.
func (s *Service) Export(ctx context.Context, opts ExportOptions) ([]string, error) {
	formats := []Format{opts.Format}
	if opts.Format == FormatAll {
		formats = []Format{FormatJSON, FormatSQL, FormatSQLite}
	}

	for _, f := range formats {
		if f != FormatJSON && opts.DB == nil {
			return nil, ErrNoDatabase
		}
	}

	date := s.Now()
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		path := ExportPath(f, opts.Output, opts.Format == FormatAll, date)

		var err error
		switch f {
		case FormatJSON:
			err = s.exportJSON(ctx, path)
		case FormatSQL:
			err = exportSQL(opts.DB, path)
		case FormatSQLite:
			err = sqlite.CopyTo(opts.DB, path)
		default:
			err = fmt.Errorf("unknown export format %q", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s export failed: %w", f, err)
		}

		log.Infof("%s export written to %s", f, path)
		written = append(written, path)
	}
	return written, nil
}

// ExportPath resolves the file for format. An explicit output wins; in
// multi-format runs it is treated as a base name.
func ExportPath(format Format, output string, multi bool, date time.Time) string {
	ext := extension(format)
	if output != "" {
		if multi {
			return output + ext
		}
		return output
	}

	day := date.Format(time.DateOnly)
	if format == FormatSQLite {
		return "database-backup-" + day + ext
	}
	return "database-export-" + day + ext
}

func extension(format Format) string {
	switch format {
	case FormatSQL:
		return ".sql"
	case FormatSQLite:
		return ".sqlite"
	default:
		return ".json"
	}
}

func (s *Service) exportJSON(ctx context.Context, path string) error {
	prompts, err := s.API.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch prompts: %w", err)
	}
	if prompts == nil {
		prompts = []*contract.PromptResponse{}
	}

	data, err := json.MarshalIndent(prompts, "", "  ")
	if err != nil {
		return err
	}
	log.Infof("exporting %d prompts", len(prompts))
	return os.WriteFile(path, data, 0o644)
}

func exportSQL(db *gorm.DB, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := sqlite.Dump(db, f); err != nil {
		return err
	}
	return f.Close()
}

// Seed posts the catalog entries through the API, skipping titles that are
// already present.
func (s *Service) Seed(ctx context.Context, entries []*seed.Entry) (*contract.RestoreSummary, error) {
	prompts := make([]*contract.PromptResponse, len(entries))
	for i, e := range entries {
		prompts[i] = &contract.PromptResponse{
			Title:  e.Title,
			Body:   e.Body,
			Tags:   e.Tags,
			Locked: contract.Flag(e.Locked),
		}
	}

	snap := contract.NewSnapshot(FormatTimestamp(s.Now()), prompts)
	return s.RestoreSnapshot(ctx, snap, RestoreOptions{SkipExisting: true})
}
