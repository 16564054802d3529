package state

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/activity"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/approval"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/registry"
)

// DocumentName is the default file the portal state lives in.
const DocumentName = "portal_state.json"

// User is one operator account record. Authentication happens in the
// session collaborator; this core only stores what it is handed.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// Document is the root persisted state. Every section is guaranteed
// present after load: a raw file that omits a section, or stores the
// wrong type in it, gets that section replaced with its default.
type Document struct {
	LastUpdated string                      `json:"last_updated"`
	Settings    map[string]any              `json:"settings"`
	Users       []User                      `json:"users"`
	Activity    activity.Log                `json:"activity_log"`
	Customers   map[string]registry.Segment `json:"customer_registry"`
	Approvals   approval.State              `json:"approvals"`

	// sectionRepairs counts sections that failed to decode and were
	// replaced during UnmarshalJSON. Consumed by Normalize.
	sectionRepairs int
}

// Default returns a fresh document with every section at its default.
func Default() *Document {
	return &Document{
		Settings:  map[string]any{},
		Users:     []User{},
		Activity:  activity.Log{},
		Customers: registry.DefaultSegments(),
		Approvals: approval.State{Pending: []approval.Request{}, History: []approval.Request{}},
	}
}

// UnmarshalJSON decodes section by section so one mistyped section
// cannot poison the rest of the document. Each section that fails to
// decode is replaced with its default and counted as a repair.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		LastUpdated json.RawMessage `json:"last_updated"`
		Settings    json.RawMessage `json:"settings"`
		Users       json.RawMessage `json:"users"`
		Activity    json.RawMessage `json:"activity_log"`
		Customers   json.RawMessage `json:"customer_registry"`
		Approvals   json.RawMessage `json:"approvals"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	def := Default()
	*d = *def

	if !decodeSection(raw.LastUpdated, &d.LastUpdated) {
		d.sectionRepairs += missingOrRepair(raw.LastUpdated)
	}
	if !decodeSection(raw.Settings, &d.Settings) || d.Settings == nil {
		d.Settings = map[string]any{}
		d.sectionRepairs += missingOrRepair(raw.Settings)
	}
	if !decodeSection(raw.Users, &d.Users) || d.Users == nil {
		d.Users = []User{}
		d.sectionRepairs += missingOrRepair(raw.Users)
	}
	if !decodeSection(raw.Activity, &d.Activity) || d.Activity == nil {
		d.Activity = activity.Log{}
		d.sectionRepairs += missingOrRepair(raw.Activity)
	}
	if !decodeSection(raw.Customers, &d.Customers) || d.Customers == nil {
		d.Customers = map[string]registry.Segment{}
		d.sectionRepairs += missingOrRepair(raw.Customers)
	}
	if !decodeSection(raw.Approvals, &d.Approvals) {
		d.Approvals = approval.State{}
		d.sectionRepairs += missingOrRepair(raw.Approvals)
	}
	return nil
}

// decodeSection reports whether raw decoded cleanly into v. An absent
// section is not an error, just a miss.
func decodeSection(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// missingOrRepair counts a replaced section as a repair only when the
// raw file actually had something there; a merely absent section is
// default-filled silently.
func missingOrRepair(raw json.RawMessage) int {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	return 1
}

// Normalize reconciles every section against its canonical shape and
// returns the total repair count for logging.
func (d *Document) Normalize(now time.Time) int {
	repairs := d.sectionRepairs
	d.sectionRepairs = 0

	if d.Settings == nil {
		d.Settings = map[string]any{}
	}

	users := make([]User, 0, len(d.Users))
	for _, u := range d.Users {
		if strings.TrimSpace(u.ID) == "" {
			repairs++
			continue
		}
		users = append(users, u)
	}
	d.Users = users

	var dropped int
	d.Activity, dropped = activity.Normalize(d.Activity)
	repairs += dropped

	d.Customers, dropped = registry.Normalize(d.Customers, registry.DefaultSegments(), now)
	repairs += dropped

	d.Approvals, dropped = approval.Normalize(d.Approvals)
	repairs += dropped

	if d.Approvals.Pending == nil {
		d.Approvals.Pending = []approval.Request{}
	}
	if d.Approvals.History == nil {
		d.Approvals.History = []approval.Request{}
	}
	return repairs
}
