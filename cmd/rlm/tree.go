package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sloangwaltney/rlm/internal/broker"
)

var treeCmd = &cobra.Command{
	Use:   "tree [prefix]",
	Short: "List indexed paths under prefix, annotated with per-file chunk-kind counts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		nodes, err := b.Tree(prefix)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			kinds := make([]string, 0, len(n.KindCounts))
			for k := range n.KindCounts {
				kinds = append(kinds, fmt.Sprintf("%s:%d", k, n.KindCounts[k]))
			}
			sort.Strings(kinds)
			fmt.Printf("%s [%s] %s\n", n.Path, n.Language, strings.Join(kinds, " "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
