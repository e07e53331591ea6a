package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/credvault/internal/buildinfo"
	"github.com/dmitrijs2005/credvault/internal/client/config"
	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/spf13/cobra"
)

// errReported marks an error whose message was already printed.
var errReported = errors.New("reported")

// runner opens an App for each command from the persistent flags.
type runner struct {
	flags  *config.Flags
	lookup config.LookupFunc
	in     io.Reader
	out    io.Writer
}

type commandFunc func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error

func (r *runner) open(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load(cmd, r.flags, r.lookup)
	if err != nil {
		return nil, err
	}
	return NewApp(cmd.Context(), cfg, r.in, r.out)
}

func (r *runner) run(fn commandFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := r.open(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := fn(cmd.Context(), a, cmd, args); err != nil {
			cmd.PrintErrln(common.UserMessage(err))
			return errReported
		}
		return nil
	}
}

// NewRootCommand builds the vaultctl command tree. Environment variables are
// read through lookup.
func NewRootCommand(in io.Reader, out io.Writer, lookup config.LookupFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Encrypted credential vault",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	r := &runner{flags: config.RegisterFlags(root), lookup: lookup, in: in, out: out}
	root.AddCommand(
		newSetupCommand(r),
		newPasswdCommand(r),
		newListCommand(r),
		newShowCommand(r),
		newAddCommand(r),
		newEditCommand(r),
		newRemoveCommand(r),
		newLogCommand(r),
		newShellCommand(r),
	)
	return root
}

// Execute runs vaultctl with the process arguments and returns the exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand(os.Stdin, os.Stdout, os.LookupEnv)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			root.PrintErrln(err)
		}
		return 1
	}
	return 0
}
