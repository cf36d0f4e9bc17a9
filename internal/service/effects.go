package service

import (
	"log/slog"

	"github.com/omarshaarawi/scrimbot/internal/telemetry"
)

// warnings collects the user-facing notes for side effects that failed
// after a change was already committed.
type warnings []string

func (w *warnings) add(effect, note string, err error, attrs ...any) {
	telemetry.SideEffectFailuresTotal.WithLabelValues(effect).Inc()
	slog.Warn("Side effect failed", append([]any{"effect", effect, "error", err}, attrs...)...)
	if note != "" {
		*w = append(*w, note)
	}
}

// logOnly records a failed side effect the user does not need to hear about.
func logOnly(effect string, err error, attrs ...any) {
	var w warnings
	w.add(effect, "", err, attrs...)
}
