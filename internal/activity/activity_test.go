package activity

import (
	"fmt"
	"testing"
	"time"
)

func TestRecordPrependsNewestFirst(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var log Log
	log = log.Record("asha", "created lead", now)
	log = log.Record("admin", "approved request", now.Add(time.Minute))

	if len(log) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(log))
	}
	if log[0].Event != "approved request" || log[1].Event != "created lead" {
		t.Fatalf("entries not newest-first: %+v", log)
	}
	if log[0].ID == "" || log[0].Timestamp == "" {
		t.Fatalf("entry missing id or timestamp: %+v", log[0])
	}
}

func TestRecordTruncatesAtCap(t *testing.T) {
	now := time.Now()
	var log Log
	for i := 0; i < Cap+10; i++ {
		log = log.Record("actor", fmt.Sprintf("event %d", i), now.Add(time.Duration(i)*time.Second))
	}
	if len(log) != Cap {
		t.Fatalf("expected %d entries, got %d", Cap, len(log))
	}
	if log[0].Event != fmt.Sprintf("event %d", Cap+9) {
		t.Fatalf("newest entry missing after truncation: %+v", log[0])
	}
}

func TestRecordDefaultsBlankActorToSystem(t *testing.T) {
	log := Log{}.Record("  ", "automated cleanup", time.Now())
	if log[0].Actor != "system" {
		t.Fatalf("expected system actor, got %q", log[0].Actor)
	}
}

func TestNormalizeDropsEventlessEntries(t *testing.T) {
	raw := Log{
		{ID: "a", Event: "kept", Actor: "asha", Timestamp: "2026-03-01T10:00:00Z"},
		{ID: "b", Event: "   ", Actor: "asha", Timestamp: "2026-03-01T10:01:00Z"},
		{Event: "needs id and actor"},
	}
	out, dropped := Normalize(raw)
	if dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", dropped)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 surviving entries, got %d", len(out))
	}
	if out[1].ID == "" || out[1].Actor != "system" {
		t.Fatalf("normalize did not backfill: %+v", out[1])
	}
}
