package annotate

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"furiganalyrics/model"
)

var (
	// ErrEmptyLyrics reports a request without lyrics text.
	ErrEmptyLyrics = errors.New("lyrics are required")
	// ErrTooLong reports lyrics longer than the configured limit.
	ErrTooLong = errors.New("lyrics too long")
)

// Job is an accepted conversion request.
type Job struct {
	ID        string
	Lines     []string
	Katakana  bool
	CreatedAt time.Time
}

// generateID creates a short random hex id. Falls back to a timestamp string on error.
func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// Ingest checks the length limit, NFC-normalises the lyrics and splits them
// into lines. maxRunes <= 0 disables the limit. Blank lyrics are accepted
// and yield blank lines.
func Ingest(req model.Request, maxRunes int) (Job, error) {
	if n := utf8.RuneCountInString(req.Lyrics); maxRunes > 0 && n > maxRunes {
		return Job{}, fmt.Errorf("%w: %d characters, maximum is %d", ErrTooLong, n, maxRunes)
	}
	text := norm.NFC.String(req.Lyrics)
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return Job{
		ID:        generateID(),
		Lines:     lines,
		Katakana:  req.Katakana,
		CreatedAt: time.Now().UTC(),
	}, nil
}
