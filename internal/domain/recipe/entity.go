// Package recipe contains the core domain types of the recipe gallery:
// the ingredient catalog, persisted recipe entries and their display rules.
package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// TimestampLayout is the persisted creation time format (local clock)
	TimestampLayout = "2006-01-02 15:04:05"

	// DefaultTitle is used when an upload carries no title field
	DefaultTitle = "(No Title)"
	// DefaultAuthor is used when an upload carries no author field
	DefaultAuthor = "(No Author)"

	// EmptyCounts is the draft text returned for sessions without a selection
	EmptyCounts = "{}"
)

// Entry is one persisted recipe submission.
// Entries are immutable once appended to the store.
type Entry struct {
	Filename  string `json:"filename"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Counts    Counts `json:"counts"`
}

// NewEntry creates an entry stamped with now, truncated to seconds
func NewEntry(filename, title, author, content string, counts Counts, now time.Time) (*Entry, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	if counts == nil {
		counts = Counts{}
	}

	return &Entry{
		Filename:  filename,
		Title:     title,
		Author:    author,
		Content:   content,
		Timestamp: now.Format(TimestampLayout),
		Counts:    counts,
	}, nil
}

// ParseEntry decodes one stored record. Missing title and author fall back
// to their placeholders.
func ParseEntry(data []byte) (*Entry, error) {
	entry := &Entry{
		Title:  DefaultTitle,
		Author: DefaultAuthor,
	}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if entry.Counts == nil {
		entry.Counts = Counts{}
	}
	return entry, nil
}

// Date returns the date portion of the timestamp
func (e *Entry) Date() string {
	date, _, _ := strings.Cut(e.Timestamp, " ")
	return date
}

// Counts maps ingredient keys to the quantity chosen on the counter page
type Counts map[string]float64

// ParseCounts decodes draft counts text. Numbers and numeric strings are
// accepted as values; a JSON null decodes to an empty mapping.
func ParseCounts(text string) (Counts, error) {
	var counts Counts
	if err := json.Unmarshal([]byte(text), &counts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCounts, err)
	}
	if counts == nil {
		counts = Counts{}
	}
	return counts, nil
}

// UnmarshalJSON accepts both numeric and numeric-string values
func (c *Counts) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Counts, len(raw))
	for key, value := range raw {
		n, err := parseCount(value)
		if err != nil {
			return fmt.Errorf("count for %q: %w", key, err)
		}
		out[key] = n
	}
	*c = out
	return nil
}

func parseCount(value json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(value, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return 0, fmt.Errorf("unsupported value %s", string(value))
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return n, nil
}
