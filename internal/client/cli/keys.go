package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (a *App) setup(ctx context.Context) error {
	pw, err := GetNewPassword("New master password", a.out)
	if err != nil {
		return err
	}
	defer clear(pw)

	if _, err := a.vault.SetupMasterPassword(ctx, string(pw)); err != nil {
		return err
	}
	a.printf("Master password set up.\n")
	return nil
}

func (a *App) changePassword(ctx context.Context) error {
	current, err := GetPassword("Current master password", a.out)
	if err != nil {
		return err
	}
	defer clear(current)

	next, err := GetNewPassword("New master password", a.out)
	if err != nil {
		return err
	}
	defer clear(next)

	if _, err := a.vault.ChangeMasterPassword(ctx, string(current), string(next)); err != nil {
		return err
	}
	a.printf("Master password changed. All entries were re-encrypted.\n")
	return nil
}

func newSetupCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Set up the master password",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, a *App, _ *cobra.Command, _ []string) error {
			return a.setup(ctx)
		}),
	}
}

func newPasswdCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the master password and re-encrypt every entry",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, a *App, _ *cobra.Command, _ []string) error {
			return a.changePassword(ctx)
		}),
	}
}
