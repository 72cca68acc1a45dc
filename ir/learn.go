package ir

import (
	"context"
	"log/slog"
	"time"
)

// Outcome classifies what a learning session did with one decoded code.
type Outcome int

const (
	// OutcomeAccepted binds the code to the next expected button.
	OutcomeAccepted Outcome = iota
	// OutcomeRejected discards a code already bound to an earlier button.
	OutcomeRejected
	// OutcomeIgnored discards a code arriving too soon after an accepted
	// one, so a held button repeating frames is not counted twice.
	OutcomeIgnored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "ignored"
	}
}

// DefaultMinAcceptDelay is the minimum gap enforced between two accepted
// captures.
const DefaultMinAcceptDelay = 500 * time.Millisecond

// SessionConfig tunes a learning Session. Zero values select the defaults.
type SessionConfig struct {
	MinAcceptDelay time.Duration
}

// Session learns a Keymap interactively: it walks an ordered list of
// expected button names and binds each to the next fresh code it is offered.
// No two buttons can ever share a code; duplicate presses are rejected, not
// overwritten.
type Session struct {
	expected   []string
	keymap     Keymap
	cursor     int
	minDelay   time.Duration
	now        func() time.Time
	lastAccept time.Time
}

// NewSession starts a session expecting the given buttons in order.
func NewSession(buttons []string, cfg SessionConfig) *Session {
	if cfg.MinAcceptDelay <= 0 {
		cfg.MinAcceptDelay = DefaultMinAcceptDelay
	}
	return &Session{
		expected: buttons,
		keymap:   make(Keymap, len(buttons)),
		minDelay: cfg.MinAcceptDelay,
		now:      time.Now,
	}
}

// Done reports whether every expected button has been learned.
func (s *Session) Done() bool {
	return s.cursor >= len(s.expected)
}

// Next returns the button the session is currently listening for, or "" once
// the session is done.
func (s *Session) Next() string {
	if s.Done() {
		return ""
	}
	return s.expected[s.cursor]
}

// Learned returns how many buttons have been bound so far.
func (s *Session) Learned() int {
	return s.cursor
}

// Keymap returns the mapping built so far. Complete once Done reports true.
func (s *Session) Keymap() Keymap {
	return s.keymap
}

// Offer hands one decoded code to the session and returns the button it was
// bound to (for OutcomeAccepted) plus the outcome. Repeat and invalid decode
// results must not be offered; the caller skips them and keeps listening.
func (s *Session) Offer(code Code) (string, Outcome) {
	if s.Done() {
		return "", OutcomeIgnored
	}
	if s.keymap.HasCode(code) {
		return "", OutcomeRejected
	}
	if !s.lastAccept.IsZero() && s.now().Sub(s.lastAccept) < s.minDelay {
		return "", OutcomeIgnored
	}
	name := s.expected[s.cursor]
	s.keymap[code] = name
	s.cursor++
	s.lastAccept = s.now()
	return name, OutcomeAccepted
}

// Run drives capture and decode until every expected button is learned and
// returns the finished Keymap. Decode failures and repeat frames keep the
// session listening; only ctx cancellation or a source failure abort it.
func (s *Session) Run(ctx context.Context, src BurstSource, dec *Decoder, logger *slog.Logger) (Keymap, error) {
	for !s.Done() {
		logger.Info("press button", "button", s.Next(), "learned", s.Learned(), "total", len(s.expected))
		burst, err := src.CaptureBurst(ctx)
		if err != nil {
			return nil, err
		}
		res, err := dec.Decode(burst)
		if err != nil {
			logger.Debug("discarding capture", "reason", err)
			continue
		}
		if res.Repeat {
			continue
		}
		name, outcome := s.Offer(res.Code)
		switch outcome {
		case OutcomeAccepted:
			logger.Info("learned button", "button", name, "code", res.Code, "learned", s.Learned(), "total", len(s.expected))
		case OutcomeRejected:
			logger.Warn("code already bound, press the next button once", "code", res.Code)
		}
	}
	return s.keymap, nil
}
