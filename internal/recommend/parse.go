package recommend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

var (
	bracketSpan = regexp.MustCompile(`\[[\s\S]*\]`)
	songLine    = regexp.MustCompile(`(?i)(?:\d+\.|-)?\s*["']?([^"']+)["']?\s+by\s+["']?([^"'.]+)["']?`)
	genreSplit  = regexp.MustCompile(`,|\n`)
)

// ParseSongs extracts up to [MaxSongs] songs from a model reply.
func ParseSongs(content string) ([]models.Song, error) {
	entries, ok := decodeEntries(content)
	if !ok {
		entries = parseLines(content)
	}

	songs := make([]models.Song, 0, MaxSongs)
	for _, e := range entries {
		song := models.Song{
			Title:  firstString(e, "title", "name"),
			Artist: firstString(e, "artist", "by"),
		}
		if shared.Validate(song) != nil {
			continue
		}
		songs = append(songs, song)
		if len(songs) == MaxSongs {
			break
		}
	}

	if len(songs) == 0 {
		return nil, fmt.Errorf("%w: no songs with a title and an artist", shared.ErrUnparseable)
	}
	return songs, nil
}

// ParseGenres extracts up to [MaxGenres] genre names from a model reply.
func ParseGenres(content string) ([]string, error) {
	var values []any
	if !decodeArray(content, &values) {
		for _, part := range genreSplit.Split(content, -1) {
			part = strings.TrimSpace(part)
			if part == "" || strings.ContainsAny(part, "[]") {
				continue
			}
			values = append(values, part)
		}
	}

	genres := make([]string, 0, MaxGenres)
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		genres = append(genres, s)
		if len(genres) == MaxGenres {
			break
		}
	}

	if len(genres) == 0 {
		return nil, fmt.Errorf("%w: no genres", shared.ErrUnparseable)
	}
	return genres, nil
}

// decodeEntries decodes content (or its first bracketed span) as a JSON array of objects.
// A top-level {"songs": [...]} wrapper is accepted.
func decodeEntries(content string) ([]map[string]any, bool) {
	var entries []map[string]any
	if decodeArray(content, &entries) {
		return entries, true
	}

	var wrapped struct {
		Songs []map[string]any `json:"songs"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &wrapped); err == nil && wrapped.Songs != nil {
		return wrapped.Songs, true
	}
	return nil, false
}

func decodeArray(content string, dst any) bool {
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), dst); err == nil {
		return true
	}
	span := bracketSpan.FindString(content)
	if span == "" {
		return false
	}
	return json.Unmarshal([]byte(span), dst) == nil
}

func parseLines(content string) []map[string]any {
	var entries []map[string]any
	for _, line := range strings.Split(content, "\n") {
		m := songLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		entries = append(entries, map[string]any{
			"title":  strings.TrimSpace(m[1]),
			"artist": strings.TrimSpace(m[2]),
		})
	}
	return entries
}

func firstString(e map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := e[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
