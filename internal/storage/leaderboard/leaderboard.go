// Package leaderboard keeps the flat score file shared by every playthrough.
package leaderboard

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DateLayout is the layout of the date column.
const DateLayout = "2006-01-02"

// TopN is the number of entries Top returns by default.
const TopN = 5

// Entry is one finished playthrough.
type Entry struct {
	Date  time.Time
	Name  string
	Score int
	Topic string
}

// Line renders the entry as a "date,name,score,topic" record.
func (e Entry) Line() string {
	return fmt.Sprintf("%s,%s,%d,%s", e.Date.Format(DateLayout), clean(e.Name), e.Score, clean(e.Topic))
}

// clean strips the separators a record cannot carry.
func clean(s string) string {
	s = strings.NewReplacer(",", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.TrimSpace(s)
}

// ParseLine decodes a record written by Line.
//
// Postcondition: Returns an error for any record without four fields, a valid
// date and an integer score.
func ParseLine(line string) (Entry, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 4 {
		return Entry{}, fmt.Errorf("leaderboard record %q: want 4 fields, got %d", line, len(parts))
	}
	date, err := time.Parse(DateLayout, parts[0])
	if err != nil {
		return Entry{}, fmt.Errorf("leaderboard record %q: %w", line, err)
	}
	score, err := strconv.Atoi(parts[2])
	if err != nil {
		return Entry{}, fmt.Errorf("leaderboard record %q: %w", line, err)
	}
	return Entry{Date: date, Name: parts[1], Score: score, Topic: parts[3]}, nil
}

// Board is a leaderboard file on disk.
type Board struct {
	path   string
	logger *zap.Logger
}

// New returns a Board backed by path. The file is created on the first Add.
//
// Precondition: path must be non-empty.
func New(path string, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{path: path, logger: logger}
}

// Path returns the backing file path.
func (b *Board) Path() string { return b.path }

// Add appends e to the file.
//
// Postcondition: The file ends with e's record and a newline, or a non-nil error is returned.
func (b *Board) Add(e Entry) error {
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating leaderboard dir: %w", err)
		}
	}
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening leaderboard: %w", err)
	}
	if _, err := fmt.Fprintln(f, e.Line()); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing leaderboard: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing leaderboard: %w", err)
	}
	b.logger.Info("leaderboard entry added",
		zap.String("name", e.Name),
		zap.Int("score", e.Score),
		zap.String("topic", e.Topic),
	)
	return nil
}

// All returns every well-formed entry, highest score first. Entries with equal
// scores keep file order. A missing file yields no entries.
func (b *Board) All() ([]Entry, error) {
	f, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening leaderboard: %w", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			b.logger.Warn("skipping malformed leaderboard line", zap.Int("line", n), zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	slices.SortStableFunc(entries, func(a, b Entry) int { return b.Score - a.Score })
	return entries, nil
}

// Top returns at most n entries, highest score first.
//
// Precondition: n >= 0.
func (b *Board) Top(n int) ([]Entry, error) {
	entries, err := b.All()
	if err != nil {
		return nil, err
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
