// Command rlm is the CLI front end for the local code-intelligence
// broker: it maps flags and arguments onto internal/broker.Broker's flat
// surface and renders the plain Go structs it returns as text, mapping
// errors to the exit codes spec.md §6 recommends. Grounded on
// _examples/SloanGwaltney-synapse/cmd/root.go's persistent-flag-plus-
// subcommand shape (there, --db/--ollama/--model; here, --root).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sloangwaltney/rlm/internal/rlmerr"
)

var flagRoot string

var rootCmd = &cobra.Command{
	Use:   "rlm",
	Short: "Local code-intelligence broker: index, search, and surgically edit a codebase",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", ".", "project root (holds .rlm/index.db)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rlm:", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if kind, ok := rlmerr.KindOf(err); ok {
		return kind.ExitCode()
	}
	return 1
}
