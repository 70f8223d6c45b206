// Package notify delivers user-facing success and error messages.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level distinguishes success messages from errors.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier is a fire-and-forget message sink. Implementations must not block
// or panic; callers never inspect the outcome.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Message is a delivered notification.
type Message struct {
	Level  Level     `json:"level"`
	Text   string    `json:"message"`
	SentAt time.Time `json:"sentAt"`
}

// LogNotifier logs every message and keeps the most recent ones for display.
type LogNotifier struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	recent   []Message
	capacity int
}

// NewLogNotifier creates a notifier remembering up to capacity messages.
func NewLogNotifier(capacity int, logger zerolog.Logger) *LogNotifier {
	if capacity < 1 {
		capacity = 1
	}
	return &LogNotifier{
		logger:   logger.With().Str("component", "notifier").Logger(),
		recent:   make([]Message, 0, capacity),
		capacity: capacity,
	}
}

// Success records a success message.
func (n *LogNotifier) Success(message string) {
	n.logger.Info().Str("level", string(LevelSuccess)).Msg(message)
	n.push(LevelSuccess, message)
}

// Error records an error message.
func (n *LogNotifier) Error(message string) {
	n.logger.Warn().Str("level", string(LevelError)).Msg(message)
	n.push(LevelError, message)
}

func (n *LogNotifier) push(level Level, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.recent) == n.capacity {
		copy(n.recent, n.recent[1:])
		n.recent = n.recent[:len(n.recent)-1]
	}
	n.recent = append(n.recent, Message{Level: level, Text: text, SentAt: time.Now()})
}

// Recent returns the remembered messages, oldest first.
func (n *LogNotifier) Recent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Message, len(n.recent))
	copy(out, n.recent)
	return out
}

type nop struct{}

func (nop) Success(string) {}
func (nop) Error(string)   {}

// Nop returns a Notifier that discards everything.
func Nop() Notifier {
	return nop{}
}
