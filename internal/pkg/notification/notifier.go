package notification

import (
	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/pkg/logger"
)

// EventKind names a session lifecycle event worth announcing.
type EventKind string

const (
	EventCreated        EventKind = "created"
	EventCancelled      EventKind = "cancelled"
	EventRescheduled    EventKind = "rescheduled"
	EventMaterialsAdded EventKind = "materials_added"
)

// Notifier is the outbound port for session events. Implementations are
// fire-and-forget: delivery failures are logged, never surfaced to the
// lifecycle operation that triggered them.
type Notifier interface {
	SessionEvent(session *models.ClassSession, kind EventKind)
}

// LogNotifier writes session events to the structured log. It always
// runs, even when no realtime transport is configured.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// SessionEvent logs the event.
func (n *LogNotifier) SessionEvent(session *models.ClassSession, kind EventKind) {
	logger.Info().
		Str("event", string(kind)).
		Int64("sessionID", session.ID).
		Str("subject", session.Subject).
		Str("cohort", session.CohortKey()).
		Str("date", session.SessionDate.Format("2006-01-02")).
		Str("startTime", session.StartTime).
		Msg("Session event")
}

// MultiNotifier fans an event out to several notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a MultiNotifier
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// SessionEvent forwards the event to every registered notifier.
func (n *MultiNotifier) SessionEvent(session *models.ClassSession, kind EventKind) {
	for _, notifier := range n.notifiers {
		notifier.SessionEvent(session, kind)
	}
}
