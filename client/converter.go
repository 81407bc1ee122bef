package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"furiganalyrics/model"
)

// ErrSuperseded is returned for a conversion cancelled by a newer one.
var ErrSuperseded = errors.New("conversion superseded by a newer request")

// Converter runs at most one conversion at a time: starting a conversion
// cancels the one in flight.
type Converter struct {
	backend Backend

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
}

// NewConverter returns a Converter on b.
func NewConverter(b Backend) *Converter {
	return &Converter{backend: b}
}

// Convert annotates lyrics. Blank input returns nil, nil without touching
// the in-flight conversion.
func (c *Converter) Convert(ctx context.Context, lyrics string, katakana bool) ([]model.Line, error) {
	if strings.TrimSpace(lyrics) == "" {
		return nil, nil
	}

	ctx, cancel := context.WithCancelCause(ctx)
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel(ErrSuperseded)
	}
	c.seq++
	seq := c.seq
	c.cancel = cancel
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.seq == seq {
			c.cancel = nil
		}
		c.mu.Unlock()
		cancel(nil)
	}()

	lines, err := c.backend.Fetch(ctx, model.Request{Lyrics: lyrics, Katakana: katakana})
	if errors.Is(context.Cause(ctx), ErrSuperseded) {
		log.Debug("conversion superseded", "seq", seq)
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	return lines, nil
}
