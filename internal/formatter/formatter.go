// package formatter exports playlist history items to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

// Format is an export format name as accepted on the command line.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "txt"
	JSON     Format = "json"
)

// ParseFormat resolves a format name, accepting a few common aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (expected csv, md, txt or json)", shared.ErrInvalidArgument, name)
	}
}

// Extension returns the file extension used for f, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Export renders item in format f.
func Export(item *models.PlaylistHistoryItem, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExportToCSV(item)
	case Markdown:
		return ExportToMarkdown(item)
	case Text:
		return ExportToText(item)
	case JSON:
		return ExportToJSON(item)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// ExportToCSV converts a history item to CSV format with columns: Position, Title, Artist
func ExportToCSV(item *models.PlaylistHistoryItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "Title", "Artist"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, song := range item.Songs {
		if err := writer.Write([]string{strconv.Itoa(i + 1), song.Title, song.Artist}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a history item to a Markdown document
func ExportToMarkdown(item *models.PlaylistHistoryItem) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", item.Name)
	fmt.Fprintf(&buf, "**Mood**: %s\n", item.Mood)
	if item.Genre != "" {
		fmt.Fprintf(&buf, "**Genre**: %s\n", item.Genre)
	}
	fmt.Fprintf(&buf, "**Created**: %s\n", item.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(&buf, "**Added**: %d of %d\n", item.AddedCount, len(item.Songs))
	if item.SpotifyURL != "" {
		fmt.Fprintf(&buf, "**Spotify**: [Open playlist](%s)\n", item.SpotifyURL)
	}

	buf.WriteString("\n## Songs\n\n")
	for i, song := range item.Songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, song.Artist, song.Title)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a history item to plain text format
func ExportToText(item *models.PlaylistHistoryItem) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", item.Name)
	fmt.Fprintf(&buf, "Mood: %s\n", item.Mood)
	if item.Genre != "" {
		fmt.Fprintf(&buf, "Genre: %s\n", item.Genre)
	}
	if item.SpotifyURL != "" {
		fmt.Fprintf(&buf, "URL: %s\n", item.SpotifyURL)
	}
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(item.Songs))

	for i, song := range item.Songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, song.Artist, song.Title)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a history item to indented JSON
func ExportToJSON(item *models.PlaylistHistoryItem) ([]byte, error) {
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history item: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport writes item to path in format f and returns the path written.
//
// Defaults to {item.ID}.{ext} as the filename.
func WriteExport(item *models.PlaylistHistoryItem, f Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.%s", item.ID, f.Extension())
	}

	data, err := Export(item, f)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
