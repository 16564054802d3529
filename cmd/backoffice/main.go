package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/approval"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/backup"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/config"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/docstore"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/errlog"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/integrity"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/state"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	syslog := errlog.New(cfg.ErrorLog)
	backend, err := docstore.BuildBackendFromDSN(cfg.BackendDSN)
	if err != nil {
		log.Fatalf("failed to build document backend: %v", err)
	}
	store, err := docstore.New(docstore.Options{
		Backend:  backend,
		DataDir:  cfg.DataDir,
		ErrorLog: syslog,
	})
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}
	defer store.Close()

	manager, err := state.NewManager(state.Options{
		Store:        store,
		DocumentName: cfg.StateDocument,
		ErrorLog:     syslog,
	})
	if err != nil {
		log.Fatalf("failed to build state manager: %v", err)
	}

	switch args[0] {
	case "check":
		runCheck(cfg, store, syslog)
	case "backup":
		runBackup(cfg, store, syslog)
	case "pending":
		requests, listErr := manager.PendingApprovals()
		exitOn(listErr)
		printJSON(requests)
	case "history":
		requests, listErr := manager.ApprovalHistory()
		exitOn(listErr)
		printJSON(requests)
	case "activity":
		doc, snapErr := manager.Snapshot()
		exitOn(snapErr)
		printJSON(doc.Activity)
	case "submit":
		runSubmit(manager, args[1:])
	case "resolve":
		runResolve(manager, args[1:])
	default:
		usage()
		os.Exit(2)
	}
}

func runCheck(cfg config.Config, store *docstore.Store, syslog *errlog.Log) {
	checker, err := integrity.NewChecker(integrity.CheckerOptions{
		Store:         store,
		Table:         state.IntegrityTable(cfg.StateDocument),
		StateDocument: cfg.StateDocument,
		ErrorLog:      syslog,
	})
	exitOn(err)
	printJSON(checker.CheckAll())
}

func runBackup(cfg config.Config, store *docstore.Store, syslog *errlog.Log) {
	fileBackend, ok := store.Backend().(*docstore.FileBackend)
	if !ok {
		log.Fatalf("backup requires a file-backed store")
	}
	snap := backup.NewSnapshotter(backup.Options{
		DataDir:   fileBackend.Dir(),
		BackupDir: cfg.BackupDir,
		ErrorLog:  syslog,
	})
	dir, err := snap.Snapshot()
	exitOn(err)
	fmt.Println(dir)
}

func runSubmit(manager *state.Manager, args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	actor := fs.String("actor", "", "acting identity recorded in the audit log")
	reqType := fs.String("type", "", "request type")
	title := fs.String("title", "", "request title")
	owner := fs.String("owner", "", "record owner")
	details := fs.String("details", "", "free-form details")
	effective := fs.String("effective", "", "effective date")
	_ = fs.Parse(args)

	req, err := manager.SubmitApproval(*actor, approval.Submission{
		Type:          *reqType,
		Title:         *title,
		SubmittedBy:   *actor,
		Owner:         *owner,
		Details:       *details,
		EffectiveDate: *effective,
	})
	exitOn(err)
	printJSON(req)
}

func runResolve(manager *state.Manager, args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	actor := fs.String("actor", "", "acting identity recorded in the audit log")
	id := fs.String("id", "", "request id, e.g. APP-0001")
	status := fs.String("status", "approved", "terminal status")
	_ = fs.Parse(args)

	req, err := manager.ResolveApproval(*actor, *id, *status)
	exitOn(err)
	printJSON(req)
}

func printJSON(v any) {
	raw, err := json.MarshalIndent(v, "", "  ")
	exitOn(err)
	fmt.Println(string(raw))
}

func exitOn(err error) {
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: backoffice [-config file] <command> [flags]

commands:
  check                      run the integrity sweep and print the report
  backup                     take (or reuse) today's backup snapshot
  pending                    list pending approval requests
  history                    list resolved approval requests
  activity                   print the activity log
  submit  -actor -type -title [-owner -details -effective]
  resolve -actor -id [-status]
`)
}
