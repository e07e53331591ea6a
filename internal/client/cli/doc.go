// Package cli implements vaultctl, the command-line consumer of the vault API.
//
// One-shot commands (setup, passwd, list, show, add, edit, rm, log) open the
// configured store, prompt for the master password when they need the vault
// key, and lock the vault before exiting. The shell command keeps one vault
// open and unlocked between commands until lock, exit or the idle timeout.
//
// Passwords and secret values are read from the terminal without echo.
// Errors are printed through common.UserMessage.
package cli
