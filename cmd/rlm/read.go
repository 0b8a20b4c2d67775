package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sloangwaltney/rlm/internal/broker"
)

var readCmd = &cobra.Command{
	Use:   "read <path> <symbol>",
	Short: "Resolve path/symbol to its full chunk, content included",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		c, err := b.Read(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(c.Content)
		return nil
	},
}

var peekCmd = &cobra.Command{
	Use:   "peek <path> <symbol>",
	Short: "Preview path/symbol's signature, doc, and a short content excerpt",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		p, err := b.Peek(args[0], args[1])
		if err != nil {
			return err
		}
		if p.Signature != "" {
			fmt.Println(p.Signature)
		}
		if p.Doc != "" {
			fmt.Println(p.Doc)
		}
		fmt.Println(p.Preview)
		return nil
	},
}

var mapCmd = &cobra.Command{
	Use:   "map <path>",
	Short: "List every chunk in path without content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		m, err := b.Map(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s, %s)\n", m.Path, m.Language, m.Quality)
		for _, c := range m.Chunks {
			fmt.Printf("  %d-%d  %s %s\n", c.StartLine, c.EndLine, c.Kind, c.Ident)
		}
		return nil
	},
}

var refsCmd = &cobra.Command{
	Use:   "refs <name>",
	Short: "List every use site of name, excluding its own definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		hits, err := b.References(args[0])
		if err != nil {
			return err
		}
		for _, h := range hits {
			fmt.Printf("%s:%d\n", h.FilePath, h.Line)
		}
		return nil
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact <name>",
	Short: "Best-effort call-graph/impact view combining definitions and references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		view, err := b.Impact(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (best-effort)\n", view.Name)
		fmt.Println("definitions:")
		for _, d := range view.Definitions {
			fmt.Printf("  %s:%d  %s\n", d.FilePath, d.StartLine, d.Kind)
		}
		fmt.Println("references:")
		for _, r := range view.References {
			fmt.Printf("  %s:%d\n", r.FilePath, r.Line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd, peekCmd, mapCmd, refsCmd, impactCmd)
}
