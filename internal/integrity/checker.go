package integrity

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/docstore"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/errlog"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/metrics"
)

//go:embed state_schema.json
var stateSchemaJSON string

// DocumentRule pairs a known document with its default value and the
// shape rules it must satisfy.
type DocumentRule struct {
	Name    string
	Default any
	Rules   []Rule
}

// Report is the ephemeral outcome of one bootstrap check. Backups is
// filled in by the caller when it also ran the snapshotter.
type Report struct {
	Backups  string   `json:"backups,omitempty"`
	Repaired []string `json:"repaired"`
	Missing  []string `json:"missing"`
}

type CheckerOptions struct {
	Store *docstore.Store
	Table []DocumentRule
	// StateDocument, when set, names the document additionally
	// validated against the embedded JSON Schema after repair.
	// Violations are logged, never auto-fixed beyond what the rules
	// already did.
	StateDocument string
	ErrorLog      *errlog.Log
	Metrics       *metrics.Set
}

// Checker walks the document table on every admin-surface bootstrap,
// creating missing documents and rewriting malformed ones. Running it
// twice without intervening writes repairs nothing on the second run.
type Checker struct {
	store         *docstore.Store
	table         []DocumentRule
	stateDocument string
	schema        *jsonschema.Schema
	errlog        *errlog.Log
	metrics       *metrics.Set
}

func NewChecker(opts CheckerOptions) (*Checker, error) {
	if opts.Store == nil {
		return nil, docstore.ErrInvalidInput
	}
	c := &Checker{
		store:         opts.Store,
		table:         opts.Table,
		stateDocument: strings.TrimSpace(opts.StateDocument),
		errlog:        opts.ErrorLog,
		metrics:       opts.Metrics,
	}
	if c.stateDocument != "" {
		schema, err := compileStateSchema()
		if err != nil {
			return nil, err
		}
		c.schema = schema
	}
	return c, nil
}

// CheckAll applies every table entry in order and reports which
// documents were created and which were rewritten.
func (c *Checker) CheckAll() Report {
	report := Report{Repaired: []string{}, Missing: []string{}}
	for _, entry := range c.table {
		raw, err := c.store.Bytes(entry.Name)
		if errors.Is(err, docstore.ErrNotFound) {
			if saveErr := c.store.Save(entry.Name, entry.Default); saveErr != nil {
				c.errlog.Printf("integrity: could not create %s: %v", entry.Name, saveErr)
				continue
			}
			report.Missing = append(report.Missing, entry.Name)
			continue
		}
		if err != nil {
			c.errlog.Printf("integrity: could not read %s: %v", entry.Name, err)
			continue
		}

		var doc any
		changed := false
		if unmarshalErr := json.Unmarshal(raw, &doc); unmarshalErr != nil {
			c.errlog.Printf("integrity: %s did not parse, replaced with default: %v", entry.Name, unmarshalErr)
			doc = clone(entry.Default)
			changed = true
		}
		for _, rule := range entry.Rules {
			var ruleChanged bool
			doc, ruleChanged = rule.Apply(doc, entry.Default)
			changed = changed || ruleChanged
		}
		if !changed {
			continue
		}
		if saveErr := c.store.Save(entry.Name, doc); saveErr != nil {
			c.errlog.Printf("integrity: could not rewrite %s: %v", entry.Name, saveErr)
			continue
		}
		report.Repaired = append(report.Repaired, entry.Name)
		c.metrics.IntegrityRepair()
	}
	c.validateStateDocument()
	return report
}

// validateStateDocument runs the schema check after repair. Failures
// land in the error log for later audit; the rules remain the repair
// authority.
func (c *Checker) validateStateDocument() {
	if c.schema == nil {
		return
	}
	raw, err := c.store.Bytes(c.stateDocument)
	if err != nil {
		return
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return
	}
	if err := c.schema.Validate(instance); err != nil {
		c.errlog.Printf("integrity: %s violates its schema: %v", c.stateDocument, err)
	}
}

func compileStateSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(stateSchemaJSON))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("state.schema.json", doc); err != nil {
		return nil, err
	}
	return compiler.Compile("state.schema.json")
}
