// package formatter renders curate run results as reports (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/plexlist/internal/models"
	"github.com/desertthunder/plexlist/internal/shared"
	"github.com/desertthunder/plexlist/internal/tasks"
)

// Format is a report output format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in flag help order.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat converts a flag value to a [Format]. "md" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Export renders result in the given format.
func Export(result *tasks.CurateResult, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(result)
	case FormatMarkdown:
		return ExportToMarkdown(result)
	case FormatText:
		return ExportToText(result)
	case FormatJSON:
		return ExportToJSON(result)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToCSV converts a CurateResult to CSV with one row per match: Section, Kind, ID, Title, Show, Year
func ExportToCSV(result *tasks.CurateResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Section", "Kind", "ID", "Title", "Show", "Year"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, outcome := range result.Sections {
		for _, item := range outcome.Matches {
			year := ""
			if item.Year > 0 {
				year = strconv.Itoa(item.Year)
			}
			record := []string{
				outcome.Name,
				string(item.Kind),
				item.ID,
				item.Title,
				item.ShowTitle,
				year,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a CurateResult to Markdown: a summary, the section outcomes and the numbered matches
func ExportToMarkdown(result *tasks.CurateResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", result.Playlist)
	fmt.Fprintf(&buf, "**Keywords**: %s\n", result.Filter)
	fmt.Fprintf(&buf, "**Matches**: %d\n", result.MatchCount())
	fmt.Fprintf(&buf, "**Playlist**: %s\n\n", playlistState(result))

	buf.WriteString("## Sections\n\n")
	for _, outcome := range result.Sections {
		fmt.Fprintf(&buf, "- **%s** (%s): %s\n", outcome.Name, outcomeLabel(outcome), outcome.Message())
	}

	buf.WriteString("\n## Matches\n\n")
	if result.MatchCount() == 0 {
		buf.WriteString("_No matching items._\n")
	}
	for i, item := range result.Matches {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, itemLine(item))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a CurateResult to plain text format
func ExportToText(result *tasks.CurateResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s (%s)\n", result.Playlist, playlistState(result))
	fmt.Fprintf(&buf, "Keywords: %s\n", result.Filter)
	fmt.Fprintf(&buf, "Matches: %d\n\n", result.MatchCount())

	for _, outcome := range result.Sections {
		fmt.Fprintf(&buf, "[%s] %s\n", outcomeLabel(outcome), outcome.Message())
	}

	if result.MatchCount() > 0 {
		buf.WriteString("\n")
	}
	for i, item := range result.Matches {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, itemLine(item))
	}

	return buf.Bytes(), nil
}

type sectionJSON struct {
	Name        string        `json:"name"`
	Kind        models.Kind   `json:"kind,omitempty"`
	Status      string        `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	Message     string        `json:"message"`
	Scanned     int           `json:"scanned"`
	FailedShows int           `json:"failed_shows,omitempty"`
	Matches     []models.Item `json:"matches"`
}

type reportJSON struct {
	Playlist string           `json:"playlist"`
	Keywords []string         `json:"keywords"`
	Mode     models.MatchMode `json:"mode"`
	DryRun   bool             `json:"dry_run"`
	Created  bool             `json:"created"`
	Added    int              `json:"added"`
	Matches  int              `json:"match_count"`
	Sections []sectionJSON    `json:"sections"`
}

// ExportToJSON converts a CurateResult to indented JSON
func ExportToJSON(result *tasks.CurateResult) ([]byte, error) {
	report := reportJSON{
		Playlist: result.Playlist,
		Keywords: result.Filter.Keywords,
		Mode:     result.Filter.Mode,
		DryRun:   result.DryRun,
		Matches:  result.MatchCount(),
		Sections: make([]sectionJSON, len(result.Sections)),
	}
	if result.Update != nil {
		report.Created = result.Update.Created
		report.Added = result.Update.Added
	}

	for i, o := range result.Sections {
		matches := o.Matches
		if matches == nil {
			matches = []models.Item{}
		}
		report.Sections[i] = sectionJSON{
			Name:        o.Name,
			Kind:        o.Kind,
			Status:      string(o.Status),
			Reason:      string(o.Reason),
			Message:     o.Message(),
			Scanned:     o.Scanned,
			FailedShows: o.FailedShows,
			Matches:     matches,
		}
	}

	data, err := shared.MarshalJSON(report, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// Write renders result in the given format to w.
func Write(w io.Writer, result *tasks.CurateResult, format Format) error {
	data, err := Export(result, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteFile renders result in the given format to path, creating parent directories.
//
// Defaults to {playlist}_report.{ext} in the working directory.
func WriteFile(result *tasks.CurateResult, format Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_report.%s", slugify(result.Playlist), format.Extension())
	}

	data, err := Export(result, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}

func playlistState(result *tasks.CurateResult) string {
	switch {
	case result.DryRun:
		return "dry run, not written"
	case result.Update == nil:
		return "not written"
	case result.Update.Created:
		return fmt.Sprintf("created with %d %s", result.Update.Added, shared.Pluralize(result.Update.Added, "item", "items"))
	default:
		return fmt.Sprintf("appended %d %s", result.Update.Added, shared.Pluralize(result.Update.Added, "item", "items"))
	}
}

func outcomeLabel(o tasks.SectionOutcome) string {
	if o.Skipped() {
		return fmt.Sprintf("%s: %s", o.Status, o.Reason)
	}
	return string(o.Status)
}

func itemLine(item models.Item) string {
	line := item.DisplayTitle()
	if item.Year > 0 {
		line += fmt.Sprintf(" (%d)", item.Year)
	}
	return line
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "playlist"
	}
	return slug
}
