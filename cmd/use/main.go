package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	uerrors "github.com/bymeisam/use/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬ ┬┌─┐┌─┐
  │ │└─┐├┤
  └─┘└─┘└─┘
`

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "use",
		Short: "Companion tooling for the use hooks library",
		Long: `use is the companion command line for the use hooks library.

It keeps a hooks project releasable:

  • commitlint — validate commit messages against Conventional Commits
  • publish    — pack the module and upload it to an S3-backed registry
  • versions   — list the versions already in the registry
  • init       — write a use.json with sensible defaults`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Add commands
	rootCmd.AddCommand(
		initCmd(),
		commitlintCmd(),
		publishCmd(),
		versionsCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		var ue *uerrors.UseError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, ue.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// newLogger builds the slog logger handed to library code. Debug level is
// gated behind --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
