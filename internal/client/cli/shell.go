package cli

import (
	"bufio"
	"context"
	"strings"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  unlock       unlock the vault for this session
  lock         wipe the vault key
  status       show whether the vault is unlocked
  list         list entries
  show <id>    decrypt and print an entry
  rm <id>      delete an entry
  log [id]     show the access log
  exit         lock and leave`

// runShell reads commands until EOF or exit. The vault key stays in memory
// between commands until lock, exit or the idle timeout.
func (a *App) runShell(ctx context.Context) {
	scanner := bufio.NewScanner(a.reader)
	a.printf("credvault shell (type 'help' for commands)\n")

	for {
		a.printf("vault (%s)> ", a.vault.State())
		if !scanner.Scan() {
			a.printf("\n")
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			a.printf("%s\n", shellHelp)
		case "unlock":
			if err = a.unlock(ctx); err == nil {
				a.printf("Unlocked.\n")
			}
		case "lock":
			a.vault.Lock()
			a.printf("Locked.\n")
		case "status":
			a.printf("%s\n", a.vault.State())
		case "list":
			err = a.list(ctx)
		case "show":
			if len(args) != 1 {
				a.printf("Usage: show <id>\n")
				continue
			}
			err = a.show(ctx, args[0])
		case "rm":
			if len(args) != 1 {
				a.printf("Usage: rm <id>\n")
				continue
			}
			err = a.remove(ctx, args[0])
		case "log":
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			err = a.accessLog(ctx, id)
		case "exit", "quit":
			a.printf("Bye!\n")
			return
		default:
			a.printf("Unknown command: %s\n", cmd)
		}
		if err != nil {
			a.printf("%s\n", common.UserMessage(err))
		}
	}
}

func newShellCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session that keeps the vault unlocked between commands",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, a *App, _ *cobra.Command, _ []string) error {
			a.runShell(ctx)
			return nil
		}),
	}
}
