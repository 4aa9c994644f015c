// Package notify is the sink for user-facing synchronization signals.
package notify

import (
	"github.com/rs/zerolog"

	"invoicesync/internal/logger"
)

// Notifier receives fire-and-forget notifications at run start and end.
type Notifier interface {
	Notify(title, message string)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier returns a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.WithComponent("notify")}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(title, message string) {
	n.log.Info().
		Str("title", title).
		Msg(message)
}
