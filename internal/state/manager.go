package state

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/approval"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/docstore"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/errlog"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/ident"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/metrics"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/registry"
)

// Options configures a Manager.
type Options struct {
	Store        *docstore.Store
	DocumentName string
	ErrorLog     *errlog.Log
	Metrics      *metrics.Set
	Clock        func() time.Time
}

// Manager owns every mutation of the state document. Each mutation is
// a full load-normalize-mutate-save cycle under a single-writer mutex,
// so two concurrent mutations in the same process cannot clobber each
// other; the last-write-wins gap only remains across processes.
type Manager struct {
	mu      sync.Mutex
	store   *docstore.Store
	name    string
	errlog  *errlog.Log
	metrics *metrics.Set
	now     func() time.Time
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, docstore.ErrInvalidInput
	}
	name := strings.TrimSpace(opts.DocumentName)
	if name == "" {
		name = DocumentName
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:   opts.Store,
		name:    name,
		errlog:  opts.ErrorLog,
		metrics: opts.Metrics,
		now:     now,
	}, nil
}

// Snapshot returns a deep copy of the normalized document for
// read-only consumers such as the rendering collaborator.
func (m *Manager) Snapshot() (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	return cloneDocument(doc)
}

// RecordActivity appends an audit event and persists the document.
func (m *Manager) RecordActivity(actor, event string) error {
	return m.mutate(actor, func(*Document) (string, error) {
		return event, nil
	})
}

// SubmitApproval accepts a change proposal from any actor, assigns the
// next ticket number, and persists counter and queue in one save.
func (m *Manager) SubmitApproval(actor string, sub approval.Submission) (approval.Request, error) {
	var req approval.Request
	err := m.mutate(actor, func(doc *Document) (string, error) {
		req = doc.Approvals.Submit(sub, m.now())
		return fmt.Sprintf("submitted approval request %s (%s)", req.ID, req.Title), nil
	})
	if err != nil {
		return approval.Request{}, err
	}
	m.metrics.ApprovalSubmitted()
	return req, nil
}

// ResolveApproval records the admin decision for a pending request.
// Unknown ids return approval.ErrNotFound and leave the document
// unsaved.
func (m *Manager) ResolveApproval(actor, id, status string) (approval.Request, error) {
	var req approval.Request
	err := m.mutate(actor, func(doc *Document) (string, error) {
		var resolveErr error
		req, resolveErr = doc.Approvals.Resolve(id, status, m.now())
		if resolveErr != nil {
			return "", resolveErr
		}
		return fmt.Sprintf("marked approval request %s as %s", req.ID, req.Status), nil
	})
	if err != nil {
		return approval.Request{}, err
	}
	m.metrics.ApprovalResolved()
	return req, nil
}

// PendingApprovals returns the pending queue, newest first.
func (m *Manager) PendingApprovals() ([]approval.Request, error) {
	doc, err := m.Snapshot()
	if err != nil {
		return nil, err
	}
	return doc.Approvals.Pending, nil
}

// ApprovalHistory returns resolved requests, newest first.
func (m *Manager) ApprovalHistory() ([]approval.Request, error) {
	doc, err := m.Snapshot()
	if err != nil {
		return nil, err
	}
	return doc.Approvals.History, nil
}

// PutSegmentEntry inserts or replaces a customer record in the named
// segment. Fields are projected onto the segment's columns before the
// save, so a stored entry can never reference an unknown column.
func (m *Manager) PutSegmentEntry(actor, slug string, entry registry.Entry) (registry.Entry, error) {
	var saved registry.Entry
	err := m.mutate(actor, func(doc *Document) (string, error) {
		seg, ok := doc.Customers[slug]
		if !ok {
			return "", fmt.Errorf("segment %q: %w", slug, docstore.ErrNotFound)
		}
		ts := m.now().UTC().Format(time.RFC3339)
		entry.Fields = registry.ProjectFields(seg.Columns, entry.Fields)
		entry.UpdatedAt = ts

		if strings.TrimSpace(entry.ID) == "" {
			entry.ID = ident.New("rec-")
			entry.CreatedAt = ts
			seg.Entries = append([]registry.Entry{entry}, seg.Entries...)
			doc.Customers[slug] = seg
			saved = entry
			return fmt.Sprintf("added customer record %s to %s", entry.ID, slug), nil
		}
		for i, existing := range seg.Entries {
			if existing.ID != entry.ID {
				continue
			}
			if strings.TrimSpace(entry.CreatedAt) == "" {
				entry.CreatedAt = existing.CreatedAt
			}
			seg.Entries[i] = entry
			doc.Customers[slug] = seg
			saved = entry
			return fmt.Sprintf("updated customer record %s in %s", entry.ID, slug), nil
		}
		return "", fmt.Errorf("record %q in segment %q: %w", entry.ID, slug, docstore.ErrNotFound)
	})
	if err != nil {
		return registry.Entry{}, err
	}
	return saved, nil
}

// DeleteSegmentEntry removes a customer record from the named segment.
func (m *Manager) DeleteSegmentEntry(actor, slug, id string) error {
	return m.mutate(actor, func(doc *Document) (string, error) {
		seg, ok := doc.Customers[slug]
		if !ok {
			return "", fmt.Errorf("segment %q: %w", slug, docstore.ErrNotFound)
		}
		for i, entry := range seg.Entries {
			if entry.ID != id {
				continue
			}
			seg.Entries = append(seg.Entries[:i:i], seg.Entries[i+1:]...)
			doc.Customers[slug] = seg
			return fmt.Sprintf("removed customer record %s from %s", id, slug), nil
		}
		return "", fmt.Errorf("record %q in segment %q: %w", id, slug, docstore.ErrNotFound)
	})
}

// load reads and normalizes the document. Normalization repairs are
// logged, not persisted on their own; the next save writes them back.
func (m *Manager) load() (*Document, error) {
	doc := &Document{}
	if err := m.store.LoadInto(m.name, doc, Default()); err != nil {
		return nil, err
	}
	if repairs := doc.Normalize(m.now()); repairs > 0 {
		m.errlog.Printf("state document %s: repaired %d corrupt values on load", m.name, repairs)
	}
	return doc, nil
}

// mutate runs one load-mutate-save cycle under the writer lock. fn
// returns the activity event text describing what it did.
func (m *Manager) mutate(actor string, fn func(*Document) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return err
	}
	event, err := fn(doc)
	if err != nil {
		return err
	}
	if strings.TrimSpace(event) != "" {
		doc.Activity = doc.Activity.Record(actor, event, m.now())
	}
	doc.LastUpdated = m.now().UTC().Format(time.RFC3339)
	return m.store.Save(m.name, doc)
}

func cloneDocument(doc *Document) (*Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	clone := &Document{}
	if err := json.Unmarshal(raw, clone); err != nil {
		return nil, err
	}
	clone.sectionRepairs = 0
	return clone, nil
}
