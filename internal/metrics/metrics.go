package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set holds the counters the document core reports. A nil Set is valid
// and drops every increment, so components can run uninstrumented in
// tests.
type Set struct {
	documentLoads      prometheus.Counter
	documentSaves      prometheus.Counter
	saveFailures       prometheus.Counter
	corruptRepairs     prometheus.Counter
	integrityRepairs   prometheus.Counter
	backupsTaken       prometheus.Counter
	approvalsSubmitted prometheus.Counter
	approvalsResolved  prometheus.Counter
}

func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		documentLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_document_loads_total",
			Help: "Documents read from the store.",
		}),
		documentSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_document_saves_total",
			Help: "Documents written through the store.",
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_document_save_failures_total",
			Help: "Saves that failed and left the previous document intact.",
		}),
		corruptRepairs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_corrupt_repairs_total",
			Help: "Documents replaced with their default after a failed parse or shape check.",
		}),
		integrityRepairs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_integrity_repairs_total",
			Help: "Documents rewritten by the bootstrap integrity checker.",
		}),
		backupsTaken: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_backups_total",
			Help: "Daily backup snapshots created.",
		}),
		approvalsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_approvals_submitted_total",
			Help: "Approval requests accepted into the pending queue.",
		}),
		approvalsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_approvals_resolved_total",
			Help: "Approval requests moved from pending into history.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			s.documentLoads,
			s.documentSaves,
			s.saveFailures,
			s.corruptRepairs,
			s.integrityRepairs,
			s.backupsTaken,
			s.approvalsSubmitted,
			s.approvalsResolved,
		)
	}
	return s
}

func (s *Set) DocumentLoad() {
	if s != nil {
		s.documentLoads.Inc()
	}
}

func (s *Set) DocumentSave() {
	if s != nil {
		s.documentSaves.Inc()
	}
}

func (s *Set) SaveFailure() {
	if s != nil {
		s.saveFailures.Inc()
	}
}

func (s *Set) CorruptRepair() {
	if s != nil {
		s.corruptRepairs.Inc()
	}
}

func (s *Set) IntegrityRepair() {
	if s != nil {
		s.integrityRepairs.Inc()
	}
}

func (s *Set) BackupTaken() {
	if s != nil {
		s.backupsTaken.Inc()
	}
}

func (s *Set) ApprovalSubmitted() {
	if s != nil {
		s.approvalsSubmitted.Inc()
	}
}

func (s *Set) ApprovalResolved() {
	if s != nil {
		s.approvalsResolved.Inc()
	}
}
