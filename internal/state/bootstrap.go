package state

import (
	"encoding/json"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/backup"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/integrity"
)

// IntegrityTable is the static shape table the bootstrap checker walks:
// every known document, its default, and the rules it must satisfy.
func IntegrityTable(stateDocument string) []integrity.DocumentRule {
	if stateDocument == "" {
		stateDocument = DocumentName
	}
	return []integrity.DocumentRule{
		{
			Name:    stateDocument,
			Default: rawDefault(),
			Rules:   []integrity.Rule{integrity.WantMapping{}},
		},
		{
			Name:    "users.json",
			Default: []any{},
			Rules:   []integrity.Rule{integrity.WantSequence{}},
		},
		{
			Name:    "leads.json",
			Default: []any{},
			Rules:   []integrity.Rule{integrity.WantSequence{}},
		},
		{
			Name:    "blog.json",
			Default: []any{},
			Rules:   []integrity.Rule{integrity.WantSequence{}},
		},
		{
			Name:    "tickets.json",
			Default: map[string]any{"counter": 0, "items": []any{}},
			Rules: []integrity.Rule{
				integrity.WantMapping{},
				integrity.IntKey{Key: "counter", Default: 0},
			},
		},
		{
			Name:    "billing.json",
			Default: map[string]any{"counter": 0, "records": []any{}},
			Rules: []integrity.Rule{
				integrity.WantMapping{},
				integrity.IntKey{Key: "counter", Default: 0},
			},
		},
		{
			Name:    "settings.json",
			Default: map[string]any{},
			Rules:   []integrity.Rule{integrity.WantMapping{}},
		},
	}
}

// Bootstrap runs the once-per-start sequence: daily backup snapshot
// first, then the integrity sweep, so a repair can never destroy the
// only copy of a document the snapshot would have kept.
func Bootstrap(snap *backup.Snapshotter, checker *integrity.Checker) integrity.Report {
	var backups string
	if snap != nil {
		if dir, err := snap.Snapshot(); err == nil {
			backups = dir
		}
	}
	report := checker.CheckAll()
	report.Backups = backups
	return report
}

// rawDefault is the default state document as generic JSON, the form
// the integrity rules operate on.
func rawDefault() any {
	raw, err := json.Marshal(Default())
	if err != nil {
		return map[string]any{}
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
