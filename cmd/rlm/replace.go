package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sloangwaltney/rlm/internal/broker"
	"github.com/sloangwaltney/rlm/internal/surgery"
)

var (
	flagCodeFile  string
	flagPreview   bool
	flagStartLine int
	flagEndLine   int
)

var replaceCmd = &cobra.Command{
	Use:   "replace <path> [symbol]",
	Short: "Replace the chunk named symbol (or --start-line/--end-line) with new code read from --code-file or stdin",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		newCode, err := readCode()
		if err != nil {
			return err
		}

		sel := surgery.Selector{Kind: flagKind, StartLine: flagStartLine, EndLine: flagEndLine}
		if len(args) == 2 {
			sel.Ident = args[1]
		}

		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		res, err := b.Replace(args[0], sel, newCode, flagPreview)
		if err != nil {
			return err
		}
		if res.Preview {
			fmt.Println(res.Diff)
		} else {
			fmt.Println("wrote", res.Path)
		}
		return nil
	},
}

func readCode() (string, error) {
	if flagCodeFile != "" {
		b, err := os.ReadFile(flagCodeFile)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func init() {
	replaceCmd.Flags().StringVar(&flagKind, "kind", "", "restrict the symbol lookup to this chunk kind")
	replaceCmd.Flags().StringVar(&flagCodeFile, "code-file", "", "read replacement code from this file instead of stdin")
	replaceCmd.Flags().BoolVar(&flagPreview, "preview", false, "print a unified diff instead of writing")
	replaceCmd.Flags().IntVar(&flagStartLine, "start-line", 0, "explicit range selector: first line (1-based)")
	replaceCmd.Flags().IntVar(&flagEndLine, "end-line", 0, "explicit range selector: last line (1-based, inclusive)")
	rootCmd.AddCommand(replaceCmd)
}
