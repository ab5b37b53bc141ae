package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/getmockd/userdesk/pkg/cli/internal/output"
	"github.com/getmockd/userdesk/pkg/editsession"
	"github.com/getmockd/userdesk/pkg/record"
	"github.com/getmockd/userdesk/pkg/recordstore"
	"github.com/spf13/cobra"
)

const (
	actionAdd     = "add"
	actionEdit    = "edit"
	actionDelete  = "delete"
	actionRefresh = "refresh"
	actionQuit    = "quit"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Browse and edit users interactively",
	Long: `Open an interactive page: the user table followed by a menu to add, edit,
delete or refresh. A failed save keeps the form contents so the change can be
retried or discarded.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// shell holds the state of one interactive session.
type shell struct {
	store   *recordstore.Store
	session *editsession.Session
	out     io.Writer
	errOut  io.Writer
}

func runShell(cmd *cobra.Command, _ []string) error {
	if !interactive() {
		return ErrNoTTY
	}

	metrics := recordstore.NewMetricsObserver()
	store := newStore(recordstore.WithObserver(metrics))
	sh := &shell{
		store:   store,
		session: editsession.New(store, editsession.WithLogger(logger)),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}

	ctx := cmd.Context()
	sh.report(store.Load(ctx))

	for ctx.Err() == nil {
		_ = printRecords(sh.out, store.Records())
		fmt.Fprintln(sh.out)

		action, err := sh.chooseAction()
		if err != nil || action == actionQuit {
			break
		}
		switch action {
		case actionAdd:
			sh.session.OpenForCreate()
			sh.editLoop(ctx)
		case actionEdit:
			if rec, ok := sh.chooseRecord("Edit which user?"); ok {
				sh.session.OpenForEdit(rec)
				sh.editLoop(ctx)
			}
		case actionDelete:
			if rec, ok := sh.chooseRecord("Delete which user?"); ok {
				sh.delete(ctx, rec)
			}
		case actionRefresh:
			sh.report(store.Load(ctx))
		}
	}

	snap := metrics.Snapshot()
	logger.Info("shell closed",
		"operations", snap.TotalOperations(),
		"errors", snap.ErrorCount,
		"latency", snap.TotalLatency,
	)
	return nil
}

func (sh *shell) chooseAction() (string, error) {
	var action string
	options := []huh.Option[string]{huh.NewOption("Add user", actionAdd)}
	if sh.store.Len() > 0 {
		options = append(options,
			huh.NewOption("Edit user", actionEdit),
			huh.NewOption("Delete user", actionDelete),
		)
	}
	options = append(options,
		huh.NewOption("Refresh", actionRefresh),
		huh.NewOption("Quit", actionQuit),
	)
	err := huh.NewSelect[string]().
		Title("What next?").
		Options(options...).
		Value(&action).
		Run()
	return action, err
}

func (sh *shell) chooseRecord(title string) (record.Record, bool) {
	records := sh.store.Records()
	options := make([]huh.Option[string], 0, len(records))
	for _, r := range records {
		options = append(options, huh.NewOption(fmt.Sprintf("%s  %s", r.ID, describe(r)), r.ID.String()))
	}

	var chosen string
	err := huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(&chosen).
		Run()
	if err != nil {
		return record.Record{}, false
	}
	return sh.store.Get(record.StringID(chosen))
}

// editLoop runs the form for the open session until the draft is saved or
// discarded. A failed save keeps the draft for another attempt.
func (sh *shell) editLoop(ctx context.Context) {
	for {
		draft, open := sh.session.Draft()
		if !open {
			return
		}
		edited, err := runRecordForm(draft)
		if err != nil {
			sh.session.Cancel()
			return
		}
		if err := applyDraft(sh.session, edited); err != nil {
			sh.report(err)
			sh.session.Cancel()
			return
		}

		verb := "Updated"
		if sh.session.IsNew() {
			verb = "Created"
		}
		saved, err := sh.session.Commit(ctx)
		switch {
		case err == nil:
			_ = printRecord(sh.out, verb, saved)
			return
		case errors.Is(err, editsession.ErrSuperseded):
			output.Warn(sh.errOut, "user %s was saved after its form was closed", saved.ID)
			return
		}

		sh.report(err)
		if !sh.retry() {
			sh.session.Cancel()
			return
		}
	}
}

func (sh *shell) retry() bool {
	var again bool
	err := huh.NewConfirm().
		Title("Save failed. Edit and retry?").
		Affirmative("Retry").
		Negative("Discard").
		Value(&again).
		Run()
	return err == nil && again
}

func (sh *shell) delete(ctx context.Context, rec record.Record) {
	ok, err := confirm(fmt.Sprintf("Delete user %s?", rec.ID))
	if err != nil || !ok {
		return
	}
	if err := sh.store.Delete(ctx, rec.ID); err != nil {
		sh.report(err)
		return
	}
	fmt.Fprintf(sh.out, "Deleted user %s\n", rec.ID)
}

// report prints a failed operation and lets the page continue.
func (sh *shell) report(err error) {
	if err != nil {
		fmt.Fprintln(sh.errOut, formatError(err))
	}
}
