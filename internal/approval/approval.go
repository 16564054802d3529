package approval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// PendingCap and HistoryCap bound the two queues; the oldest
	// entries are silently dropped when a cap is exceeded.
	PendingCap = 100
	HistoryCap = 200

	// StatusPending is the status every freshly submitted request
	// carries until an admin decides on it.
	StatusPending = "Pending admin review"

	idPrefix = "APP-"
)

// ErrNotFound reports a resolve against an id that is not in the
// pending queue. It is a benign outcome, never a fabricated history
// entry.
var ErrNotFound = errors.New("approval request not found")

// Request is one proposed change awaiting (or past) an admin decision.
type Request struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Status        string         `json:"status"`
	SubmittedAt   string         `json:"submitted_at"`
	SubmittedBy   string         `json:"submitted_by"`
	Owner         string         `json:"owner"`
	Details       string         `json:"details"`
	EffectiveDate string         `json:"effective_date,omitempty"`
	LastUpdate    string         `json:"last_update"`
	ResolvedAt    string         `json:"resolved_at,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// State is the persisted workflow: the ticket counter plus the two
// newest-first queues. Counter never decreases and numbers are never
// reused; it must be persisted in the same save as the queue mutation
// it numbered.
type State struct {
	Counter int       `json:"counter"`
	Pending []Request `json:"pending"`
	History []Request `json:"history"`
}

// Submission carries the caller-supplied portion of a new request.
type Submission struct {
	Type          string
	Title         string
	SubmittedBy   string
	Owner         string
	Details       string
	EffectiveDate string
	Payload       map[string]any
}

// Submit assigns the next sequential ticket number and prepends the
// request to the pending queue.
func (s *State) Submit(sub Submission, now time.Time) Request {
	ts := now.UTC().Format(time.RFC3339)
	s.Counter++
	req := Request{
		ID:            fmt.Sprintf("%s%04d", idPrefix, s.Counter),
		Type:          strings.TrimSpace(sub.Type),
		Title:         strings.TrimSpace(sub.Title),
		Status:        StatusPending,
		SubmittedAt:   ts,
		SubmittedBy:   strings.TrimSpace(sub.SubmittedBy),
		Owner:         strings.TrimSpace(sub.Owner),
		Details:       sub.Details,
		EffectiveDate: strings.TrimSpace(sub.EffectiveDate),
		LastUpdate:    ts,
		Payload:       sub.Payload,
	}
	s.Pending = prepend(s.Pending, req, PendingCap)
	return req
}

// Resolve removes the identified request from pending, stamps the
// terminal status and resolution timestamp, and prepends it to
// history. Unknown ids return ErrNotFound.
func (s *State) Resolve(id, status string, now time.Time) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, ErrNotFound
	}
	for i, req := range s.Pending {
		if req.ID != id {
			continue
		}
		s.Pending = append(s.Pending[:i:i], s.Pending[i+1:]...)
		ts := now.UTC().Format(time.RFC3339)
		req.Status = strings.TrimSpace(status)
		req.LastUpdate = ts
		req.ResolvedAt = ts
		s.History = prepend(s.History, req, HistoryCap)
		return req, nil
	}
	return Request{}, ErrNotFound
}

// Normalize drops queue entries missing a non-empty id, re-applies the
// caps, and raises the counter to the highest issued ticket number if
// the stored counter fell behind it. The repair count is returned for
// the caller to log.
func Normalize(raw State) (State, int) {
	repairs := 0
	pending, droppedPending := filterRequests(raw.Pending, PendingCap)
	history, droppedHistory := filterRequests(raw.History, HistoryCap)
	repairs += droppedPending + droppedHistory

	counter := raw.Counter
	if counter < 0 {
		counter = 0
		repairs++
	}
	highest := highestTicket(pending)
	if h := highestTicket(history); h > highest {
		highest = h
	}
	if counter < highest {
		counter = highest
		repairs++
	}

	return State{Counter: counter, Pending: pending, History: history}, repairs
}

func filterRequests(list []Request, limit int) ([]Request, int) {
	dropped := 0
	out := make([]Request, 0, len(list))
	for _, req := range list {
		if strings.TrimSpace(req.ID) == "" {
			dropped++
			continue
		}
		out = append(out, req)
		if len(out) == limit {
			break
		}
	}
	return out, dropped
}

func highestTicket(list []Request) int {
	highest := 0
	for _, req := range list {
		n, ok := ticketNumber(req.ID)
		if ok && n > highest {
			highest = n
		}
	}
	return highest
}

func ticketNumber(id string) (int, bool) {
	if !strings.HasPrefix(id, idPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, idPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func prepend(list []Request, req Request, limit int) []Request {
	out := make([]Request, 0, len(list)+1)
	out = append(out, req)
	out = append(out, list...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
