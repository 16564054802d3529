package registry

import (
	"strings"
	"time"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/ident"
)

// ColumnType is the rendering/validation hint for a column. The set is
// closed; anything unrecognized is coerced to text on normalize.
type ColumnType string

const (
	TypeText   ColumnType = "text"
	TypeDate   ColumnType = "date"
	TypePhone  ColumnType = "phone"
	TypeNumber ColumnType = "number"
	TypeEmail  ColumnType = "email"
)

func (t ColumnType) Valid() bool {
	switch t {
	case TypeText, TypeDate, TypePhone, TypeNumber, TypeEmail:
		return true
	}
	return false
}

// Column is one field definition within a segment. Key is normalized
// lowercase [a-z0-9_]+ and is the identity a stored entry's fields map
// refers to.
type Column struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Type  ColumnType `json:"type"`
}

// Entry is one free-form record conforming to its segment's columns.
type Entry struct {
	ID         string            `json:"id"`
	Fields     map[string]string `json:"fields"`
	Notes      string            `json:"notes"`
	ReminderOn string            `json:"reminder_on"`
	CreatedAt  string            `json:"created_at"`
	UpdatedAt  string            `json:"updated_at"`
}

// Segment is a named collection with its own column schema. Segment
// identity is the slug it is stored under; the slug never changes once
// created.
type Segment struct {
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Columns     []Column `json:"columns"`
	Entries     []Entry  `json:"entries"`
}

// DefaultSegments returns the canonical segment set. Unknown slugs
// found in storage are preserved alongside these; these are guaranteed
// to exist even when absent from storage.
func DefaultSegments() map[string]Segment {
	return map[string]Segment{
		"potential": {
			Label:       "Potential Customers",
			Description: "Leads that have not converted yet.",
			Columns: []Column{
				{Key: "name", Label: "Name", Type: TypeText},
				{Key: "phone", Label: "Phone", Type: TypePhone},
				{Key: "email", Label: "Email", Type: TypeEmail},
				{Key: "location", Label: "Location", Type: TypeText},
				{Key: "followup_on", Label: "Follow-up On", Type: TypeDate},
			},
			Entries: []Entry{},
		},
		"active": {
			Label:       "Active Customers",
			Description: "Customers with work in progress.",
			Columns: []Column{
				{Key: "name", Label: "Name", Type: TypeText},
				{Key: "phone", Label: "Phone", Type: TypePhone},
				{Key: "email", Label: "Email", Type: TypeEmail},
				{Key: "project_value", Label: "Project Value", Type: TypeNumber},
				{Key: "started_on", Label: "Started On", Type: TypeDate},
			},
			Entries: []Entry{},
		},
		"support": {
			Label:       "Support",
			Description: "Customers with open service tickets.",
			Columns: []Column{
				{Key: "name", Label: "Name", Type: TypeText},
				{Key: "phone", Label: "Phone", Type: TypePhone},
				{Key: "issue", Label: "Issue", Type: TypeText},
				{Key: "reported_on", Label: "Reported On", Type: TypeDate},
			},
			Entries: []Entry{},
		},
		"completed": {
			Label:       "Completed",
			Description: "Closed-out projects.",
			Columns: []Column{
				{Key: "name", Label: "Name", Type: TypeText},
				{Key: "phone", Label: "Phone", Type: TypePhone},
				{Key: "completed_on", Label: "Completed On", Type: TypeDate},
				{Key: "final_value", Label: "Final Value", Type: TypeNumber},
			},
			Entries: []Entry{},
		},
	}
}

// NormalizeKey lowercases the input, collapses every run of
// non-alphanumeric characters into a single underscore, and trims
// leading and trailing underscores. An empty result means the input
// cannot name a column.
func NormalizeKey(raw string) string {
	var b strings.Builder
	pendingUnderscore := false
	for _, r := range strings.ToLower(raw) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingUnderscore = b.Len() > 0
			continue
		}
		if pendingUnderscore {
			b.WriteByte('_')
			pendingUnderscore = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize reconciles stored segments against the defaults: every
// slug present in either side survives, merged column lists keep raw
// columns first with default columns filling the gaps, and every entry
// is projected onto exactly the merged column set. The repair count
// covers dropped columns, dropped field keys and synthesized values.
func Normalize(raw, defaults map[string]Segment, now time.Time) (map[string]Segment, int) {
	repairs := 0
	out := make(map[string]Segment, len(raw)+len(defaults))

	slugs := make([]string, 0, len(raw)+len(defaults))
	seen := map[string]bool{}
	for slug := range raw {
		slugs = append(slugs, slug)
		seen[slug] = true
	}
	for slug := range defaults {
		if !seen[slug] {
			slugs = append(slugs, slug)
		}
	}

	for _, slug := range slugs {
		rawSeg, hasRaw := raw[slug]
		defSeg, hasDef := defaults[slug]
		if !hasRaw {
			rawSeg = Segment{}
		}
		if !hasDef {
			defSeg = Segment{}
		}
		seg, n := normalizeSegment(rawSeg, defSeg, now)
		repairs += n
		out[slug] = seg
	}
	return out, repairs
}

func normalizeSegment(raw, def Segment, now time.Time) (Segment, int) {
	repairs := 0

	label := strings.TrimSpace(raw.Label)
	if label == "" {
		label = def.Label
	}
	description := strings.TrimSpace(raw.Description)
	if description == "" {
		description = def.Description
	}

	columns, dropped := mergeColumns(raw.Columns, def.Columns)
	repairs += dropped

	keys := make(map[string]bool, len(columns))
	for _, col := range columns {
		keys[col.Key] = true
	}

	entries := make([]Entry, 0, len(raw.Entries))
	for _, entry := range raw.Entries {
		normalized, n := normalizeEntry(entry, keys, now)
		repairs += n
		entries = append(entries, normalized)
	}

	return Segment{
		Label:       label,
		Description: description,
		Columns:     columns,
		Entries:     entries,
	}, repairs
}

// mergeColumns keeps the stored columns in order (they take precedence)
// and appends default columns whose key the stored list is missing, so
// a known column can never disappear from the UI.
func mergeColumns(raw, def []Column) ([]Column, int) {
	dropped := 0
	merged := make([]Column, 0, len(raw)+len(def))
	seen := map[string]bool{}

	for _, col := range raw {
		key := NormalizeKey(col.Key)
		if key == "" {
			key = NormalizeKey(col.Label)
		}
		if key == "" || seen[key] {
			dropped++
			continue
		}
		label := strings.TrimSpace(col.Label)
		if label == "" {
			label = key
		}
		colType := col.Type
		if !colType.Valid() {
			colType = TypeText
		}
		merged = append(merged, Column{Key: key, Label: label, Type: colType})
		seen[key] = true
	}

	for _, col := range def {
		if seen[col.Key] {
			continue
		}
		merged = append(merged, col)
		seen[col.Key] = true
	}
	return merged, dropped
}

func normalizeEntry(entry Entry, keys map[string]bool, now time.Time) (Entry, int) {
	repairs := 0
	if strings.TrimSpace(entry.ID) == "" {
		entry.ID = ident.New("rec-")
		repairs++
	}

	fields := make(map[string]string, len(keys))
	for key := range keys {
		value, ok := entry.Fields[key]
		if !ok {
			repairs++
		}
		fields[key] = value
	}
	for key := range entry.Fields {
		if !keys[key] {
			repairs++
		}
	}
	entry.Fields = fields

	if strings.TrimSpace(entry.CreatedAt) == "" {
		entry.CreatedAt = now.UTC().Format(time.RFC3339)
	}
	if strings.TrimSpace(entry.UpdatedAt) == "" {
		entry.UpdatedAt = entry.CreatedAt
	}
	return entry, repairs
}

// ProjectFields maps the given fields onto exactly the column set:
// unknown keys are dropped, declared keys missing from fields come back
// as empty strings.
func ProjectFields(columns []Column, fields map[string]string) map[string]string {
	out := make(map[string]string, len(columns))
	for _, col := range columns {
		out[col.Key] = fields[col.Key]
	}
	return out
}
