package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sloangwaltney/rlm/internal/broker"
)

var (
	flagLimit  int
	flagOffset int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over indexed chunk content and identifiers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		hits, err := b.Search(args[0], flagLimit, flagOffset)
		if err != nil {
			return err
		}
		for _, h := range hits {
			fmt.Printf("%s:%d-%d  %s %s  (rank %.3f)\n", h.FilePath, h.StartLine, h.EndLine, h.Kind, h.Ident, h.Rank)
		}
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find every chunk with an exact identifier, optionally filtered by kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		var kinds []string
		if flagKind != "" {
			kinds = []string{flagKind}
		}
		hits, err := b.FindByIdentifier(args[0], flagCaseSensitive, kinds)
		if err != nil {
			return err
		}
		for _, h := range hits {
			fmt.Printf("%s:%d-%d  %s %s\n", h.FilePath, h.StartLine, h.EndLine, h.Kind, h.Ident)
		}
		return nil
	},
}

var (
	flagCaseSensitive bool
	flagKind          string
)

func init() {
	searchCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum results")
	searchCmd.Flags().IntVar(&flagOffset, "offset", 0, "result offset")
	rootCmd.AddCommand(searchCmd)

	findCmd.Flags().StringVar(&flagKind, "kind", "", "restrict to this chunk kind")
	findCmd.Flags().BoolVar(&flagCaseSensitive, "case-sensitive", true, "match identifier case-sensitively")
	rootCmd.AddCommand(findCmd)
}
