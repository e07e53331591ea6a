package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) list(ctx context.Context) error {
	list, err := a.vault.ListEntries(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No entries.\n")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tCATEGORY\tNAME\tUPDATED")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Kind, e.Category, e.Name, e.UpdatedAt.Local().Format(timeLayout))
	}
	return tw.Flush()
}

func (a *App) show(ctx context.Context, id string) error {
	e, err := a.vault.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	fields, err := a.vault.DecryptEntry(ctx, e)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	row := func(k, v string) { fmt.Fprintf(tw, "%s:\t%s\n", k, v) }
	opt := func(k string, v *string) {
		if v != nil {
			row(k, *v)
		}
	}
	row("Name", e.Name)
	row("Kind", string(e.Kind))
	row("Category", e.Category)
	opt("URL", e.URL)
	opt("Property", e.PropertyID)
	opt("Username", fields.Username)
	row("Secret", fields.SecretValue)
	opt("Notes", fields.Notes)
	row("Updated", fmt.Sprintf("%s by %s", e.UpdatedAt.Local().Format(timeLayout), e.UpdatedBy))
	if e.RotatedAt != nil {
		row("Rotated", e.RotatedAt.Local().Format(timeLayout))
	}
	return tw.Flush()
}

func (a *App) remove(ctx context.Context, id string) error {
	if err := a.vault.DeleteEntry(ctx, id); err != nil {
		return err
	}
	a.printf("Deleted %s.\n", id)
	return nil
}

func (a *App) accessLog(ctx context.Context, id string) error {
	rows, err := a.vault.GetAccessLog(ctx, id)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		a.printf("No access log records.\n")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tPRINCIPAL\tENTRY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s (%s)\n", r.CreatedAt.Local().Format(time.DateTime), r.Action, r.PrincipalID, r.EntryName, r.EntryID)
	}
	return tw.Flush()
}

// entryFlags are shared by add and edit.
type entryFlags struct {
	kind, category, name, url, property, username, notes string
}

func (f *entryFlags) register(cmd *cobra.Command, withKind bool) {
	fs := cmd.Flags()
	if withKind {
		fs.StringVar(&f.kind, "kind", string(models.EntryKindPropertyCode), "property_code, service_account or internal_system")
	}
	fs.StringVar(&f.name, "name", "", "display name")
	fs.StringVar(&f.category, "category", "", "free-form category")
	fs.StringVar(&f.url, "url", "", "related URL")
	fs.StringVar(&f.property, "property", "", "property id")
	fs.StringVar(&f.username, "username", "", "username stored encrypted with the secret")
	fs.StringVar(&f.notes, "notes", "", "notes stored encrypted with the secret")
}

// nonEmpty returns nil for an empty s.
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (a *App) add(ctx context.Context, f *entryFlags) error {
	kind, err := models.ParseEntryKind(f.kind)
	if err != nil {
		return err
	}
	name := f.name
	if name == "" {
		if name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
			return err
		}
	}

	secret, err := GetPassword("Secret value", a.out)
	if err != nil {
		return err
	}
	defer clear(secret)

	if err := a.unlock(ctx); err != nil {
		return err
	}

	e, err := a.vault.CreateEntry(ctx, models.EntryMetadata{
		Kind:       kind,
		Category:   f.category,
		Name:       name,
		URL:        nonEmpty(f.url),
		PropertyID: nonEmpty(f.property),
	}, models.PlainFields{
		SecretValue: string(secret),
		Username:    nonEmpty(f.username),
		Notes:       nonEmpty(f.notes),
	})
	if err != nil {
		return err
	}
	a.printf("Created %s.\n", e.ID)
	return nil
}

func (a *App) edit(ctx context.Context, cmd *cobra.Command, id string, f *entryFlags, newSecret bool) error {
	var u models.EntryUpdate
	changed := func(name, v string) *string {
		if cmd.Flags().Changed(name) {
			return models.StringPtr(v)
		}
		return nil
	}
	u.Name = changed("name", f.name)
	u.Category = changed("category", f.category)
	u.URL = changed("url", f.url)
	u.PropertyID = changed("property", f.property)
	u.Username = changed("username", f.username)
	u.Notes = changed("notes", f.notes)

	if newSecret {
		secret, err := GetPassword("New secret value", a.out)
		if err != nil {
			return err
		}
		defer clear(secret)
		u.SecretValue = models.StringPtr(string(secret))
	}
	if u.Empty() {
		a.printf("Nothing to change.\n")
		return nil
	}

	if err := a.unlock(ctx); err != nil {
		return err
	}
	if _, err := a.vault.UpdateEntry(ctx, id, u); err != nil {
		return err
	}
	a.printf("Updated %s.\n", id)
	return nil
}

func newListCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entries without decrypting them",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, a *App, _ *cobra.Command, _ []string) error {
			return a.list(ctx)
		}),
	}
}

func newShowCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Decrypt and print an entry",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, a *App, _ *cobra.Command, args []string) error {
			if err := a.unlock(ctx); err != nil {
				return err
			}
			return a.show(ctx, args[0])
		}),
	}
}

func newAddCommand(r *runner) *cobra.Command {
	f := &entryFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry; the secret value is prompted for",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, a *App, _ *cobra.Command, _ []string) error {
			return a.add(ctx, f)
		}),
	}
	f.register(cmd, true)
	return cmd
}

func newEditCommand(r *runner) *cobra.Command {
	f := &entryFlags{}
	var newSecret bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an entry; only the given flags are applied",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			return a.edit(ctx, cmd, args[0], f, newSecret)
		}),
	}
	f.register(cmd, false)
	cmd.Flags().BoolVar(&newSecret, "secret", false, "prompt for a new secret value")
	return cmd
}

func newRemoveCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, a *App, _ *cobra.Command, args []string) error {
			if err := a.unlock(ctx); err != nil {
				return err
			}
			return a.remove(ctx, args[0])
		}),
	}
}

func newLogCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "log [id]",
		Short: "Show the access log, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.run(func(ctx context.Context, a *App, _ *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return a.accessLog(ctx, id)
		}),
	}
}
