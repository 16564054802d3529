package activity

import (
	"strings"
	"time"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/ident"
)

// Cap bounds the retained entries. The log is a ring of the most
// recent events, newest first; older entries fall off the end.
const Cap = 40

// Entry is one human-readable audit event. Entries are never updated
// after creation.
type Entry struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Actor     string `json:"actor"`
	Timestamp string `json:"timestamp"`
}

// Log is maintained newest-first by construction; readers never need
// to re-sort it.
type Log []Entry

// Record prepends a new entry and truncates the log to Cap.
func (l Log) Record(actor, event string, now time.Time) Log {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = "system"
	}
	entry := Entry{
		ID:        ident.NewUUID(),
		Event:     strings.TrimSpace(event),
		Actor:     actor,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	out := make(Log, 0, len(l)+1)
	out = append(out, entry)
	out = append(out, l...)
	if len(out) > Cap {
		out = out[:Cap]
	}
	return out
}

// Normalize drops entries with no event text, backfills missing ids
// and actors, and re-applies the cap. The dropped count is returned so
// the caller can log the repair.
func Normalize(raw Log) (Log, int) {
	dropped := 0
	out := make(Log, 0, len(raw))
	for _, entry := range raw {
		if strings.TrimSpace(entry.Event) == "" {
			dropped++
			continue
		}
		if strings.TrimSpace(entry.ID) == "" {
			entry.ID = ident.NewUUID()
		}
		if strings.TrimSpace(entry.Actor) == "" {
			entry.Actor = "system"
		}
		out = append(out, entry)
		if len(out) == Cap {
			break
		}
	}
	return out, dropped
}
