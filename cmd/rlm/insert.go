package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sloangwaltney/rlm/internal/broker"
	"github.com/sloangwaltney/rlm/internal/surgery"
)

var (
	flagContainer string
	flagPosition  string
	flagLine      int
)

var insertCmd = &cobra.Command{
	Use:   "insert <path>",
	Short: "Splice code from --code-file or stdin into path at --position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readCode()
		if err != nil {
			return err
		}

		var position surgery.Position
		switch flagPosition {
		case "body_start":
			position = surgery.Position{Kind: surgery.PositionBodyStart}
		case "body_end":
			position = surgery.Position{Kind: surgery.PositionBodyEnd}
		case "before_line":
			position = surgery.Position{Kind: surgery.PositionBeforeLine, Line: flagLine}
		case "after_line":
			position = surgery.Position{Kind: surgery.PositionAfterLine, Line: flagLine}
		default:
			return fmt.Errorf("unknown --position %q (want body_start, body_end, before_line, or after_line)", flagPosition)
		}

		container := surgery.Selector{Ident: flagContainer, Kind: flagKind}

		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		res, err := b.Insert(args[0], container, position, code, flagPreview)
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

func init() {
	insertCmd.Flags().StringVar(&flagPosition, "position", "", "body_start, body_end, before_line, or after_line")
	insertCmd.Flags().StringVar(&flagContainer, "container", "", "identifier of the enclosing class/impl/module/interface/struct (for body_start/body_end)")
	insertCmd.Flags().StringVar(&flagKind, "kind", "", "restrict --container lookup to this chunk kind")
	insertCmd.Flags().IntVar(&flagLine, "line", 0, "1-based line (for before_line/after_line)")
	insertCmd.Flags().BoolVar(&flagPreview, "preview", false, "print a unified diff instead of writing")
	insertCmd.Flags().StringVar(&flagCodeFile, "code-file", "", "read the code to insert from this file instead of stdin")
	rootCmd.AddCommand(insertCmd)
}
