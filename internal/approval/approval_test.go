package approval

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSubmitNumbersSequentially(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var s State
	for i := 1; i <= 3; i++ {
		req := s.Submit(Submission{Title: fmt.Sprintf("change %d", i), SubmittedBy: "asha"}, now)
		want := fmt.Sprintf("APP-%04d", i)
		if req.ID != want {
			t.Fatalf("expected %s, got %s", want, req.ID)
		}
		if req.Status != StatusPending {
			t.Fatalf("unexpected status %q", req.Status)
		}
	}
	if s.Pending[0].ID != "APP-0003" {
		t.Fatalf("pending not newest-first: %+v", s.Pending)
	}
}

func TestSubmitCapsPendingQueue(t *testing.T) {
	now := time.Now()
	var s State
	for i := 0; i < PendingCap+5; i++ {
		s.Submit(Submission{Title: "overflow"}, now)
	}
	if len(s.Pending) != PendingCap {
		t.Fatalf("expected %d pending, got %d", PendingCap, len(s.Pending))
	}
	if s.Counter != PendingCap+5 {
		t.Fatalf("counter must keep counting past the cap, got %d", s.Counter)
	}
	if s.Pending[0].ID != fmt.Sprintf("APP-%04d", PendingCap+5) {
		t.Fatalf("newest entry missing after cap: %+v", s.Pending[0])
	}
}

func TestResolveMovesRequestToHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var s State
	a := s.Submit(Submission{Title: "rate change", SubmittedBy: "asha"}, now)
	b := s.Submit(Submission{Title: "refund", SubmittedBy: "ravi"}, now)

	resolved, err := s.Resolve(a.ID, "approved", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != "approved" || resolved.ResolvedAt == "" {
		t.Fatalf("resolution not stamped: %+v", resolved)
	}
	if len(s.Pending) != 1 || s.Pending[0].ID != b.ID {
		t.Fatalf("pending should contain only %s: %+v", b.ID, s.Pending)
	}
	if len(s.History) != 1 || s.History[0].ID != a.ID {
		t.Fatalf("history should contain only %s: %+v", a.ID, s.History)
	}
}

func TestResolveUnknownIDIsNotFound(t *testing.T) {
	var s State
	s.Submit(Submission{Title: "x"}, time.Now())
	if _, err := s.Resolve("APP-9999", "approved", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(s.History) != 0 {
		t.Fatalf("not-found resolve must not fabricate history: %+v", s.History)
	}
}

func TestHistoryCapKeepsNewest(t *testing.T) {
	now := time.Now()
	var s State
	for i := 0; i < HistoryCap+30; i++ {
		req := s.Submit(Submission{Title: "churn"}, now)
		if _, err := s.Resolve(req.ID, "approved", now); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if len(s.History) != HistoryCap {
		t.Fatalf("expected %d history entries, got %d", HistoryCap, len(s.History))
	}
	want := fmt.Sprintf("APP-%04d", HistoryCap+30)
	if s.History[0].ID != want {
		t.Fatalf("expected newest %s first, got %s", want, s.History[0].ID)
	}
}

func TestNormalizeDropsIDlessEntriesAndRepairsCounter(t *testing.T) {
	raw := State{
		Counter: 2,
		Pending: []Request{
			{ID: "APP-0007", Status: StatusPending},
			{Status: StatusPending},
		},
		History: []Request{
			{ID: "APP-0005", Status: "approved"},
			{ID: "   ", Status: "rejected"},
		},
	}
	out, repairs := Normalize(raw)
	if repairs == 0 {
		t.Fatalf("expected repairs")
	}
	if len(out.Pending) != 1 || len(out.History) != 1 {
		t.Fatalf("id-less entries survived: %+v", out)
	}
	if out.Counter != 7 {
		t.Fatalf("counter must rise to the highest issued number, got %d", out.Counter)
	}
}

func TestNormalizeNeverLowersCounter(t *testing.T) {
	out, _ := Normalize(State{Counter: 50, Pending: []Request{{ID: "APP-0003"}}})
	if out.Counter != 50 {
		t.Fatalf("counter must never decrease, got %d", out.Counter)
	}
}
