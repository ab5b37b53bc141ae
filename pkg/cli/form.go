package cli

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/getmockd/userdesk/pkg/editsession"
	"github.com/getmockd/userdesk/pkg/record"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// interactive reports whether forms can be shown.
var interactive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// runRecordForm shows the add/edit form pre-filled with draft and returns the
// values the operator entered.
func runRecordForm(draft record.Record) (record.Record, error) {
	name, email := draft.Name, draft.Email

	title := "Add User"
	if !draft.IsNew() {
		title = "Edit User " + draft.ID.String()
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&name).
				Validate(func(s string) error {
					return record.Record{Name: s}.Validate()
				}),
			huh.NewInput().
				Title("Email").
				Placeholder("user@example.com").
				Value(&email).
				Validate(func(s string) error {
					return record.Record{Name: "-", Email: s}.Validate()
				}),
		).Title(title),
	)
	if err := form.Run(); err != nil {
		return draft, err
	}

	draft.Name = name
	draft.Email = email
	return draft, nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

// fillDraft sets the session's draft fields from --name/--email, or from the
// form when neither flag was given.
func fillDraft(cmd *cobra.Command, sess *editsession.Session) error {
	flags := cmd.Flags()
	if flags.Changed("name") || flags.Changed("email") {
		for _, f := range record.Fields {
			if !flags.Changed(string(f)) {
				continue
			}
			v, err := flags.GetString(string(f))
			if err != nil {
				return err
			}
			if err := sess.SetField(f, v); err != nil {
				return err
			}
		}
		return nil
	}

	if !interactive() {
		return ErrNoInput
	}
	draft, _ := sess.Draft()
	edited, err := runRecordForm(draft)
	if err != nil {
		return err
	}
	return applyDraft(sess, edited)
}

// applyDraft copies the editable fields of rec into the session's draft.
func applyDraft(sess *editsession.Session, rec record.Record) error {
	for _, f := range record.Fields {
		v, err := rec.Value(f)
		if err != nil {
			return err
		}
		if err := sess.SetField(f, v); err != nil {
			return err
		}
	}
	return nil
}
