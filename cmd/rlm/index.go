package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sloangwaltney/rlm/internal/broker"
	"github.com/sloangwaltney/rlm/internal/pipeline"
)

var (
	flagWorkers   int
	flagBatchSize int
	flagReindex   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Walk the project root and (re)build the chunk index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := broker.Open(flagRoot)
		if err != nil {
			return err
		}
		defer b.Close()

		fileCfg, err := loadFileConfig(flagRoot)
		if err != nil {
			return err
		}
		cfg := pipeline.Config{
			MaxWorkers:  override(flagWorkers, fileCfg.Workers),
			BatchSize:   override(flagBatchSize, fileCfg.BatchSize),
			WalkOptions: fileCfg.walkerOptions(),
			Logger:      fileCfg.logger(),
		}

		start := time.Now()
		var stats *pipeline.Stats
		if flagReindex {
			stats, err = b.Reindex(context.Background(), cfg)
		} else {
			stats, err = b.Index(context.Background(), cfg)
		}
		elapsed := time.Since(start)
		if err != nil {
			return err
		}

		fmt.Printf("indexed %s in %s\n", flagRoot, elapsed.Round(time.Millisecond))
		fmt.Printf("  files:   %d total, %d indexed, %d unchanged, %d failed, %d deleted\n",
			stats.FilesTotal, stats.FilesIndexed, stats.FilesUnchanged, stats.FilesFailed, stats.FilesDeleted)
		fmt.Printf("  chunks:  %d\n", stats.ChunksTotal)
		return nil
	},
}

func init() {
	indexCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel workers (default: number of CPUs)")
	indexCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "files committed per transaction (default 64)")
	indexCmd.Flags().BoolVar(&flagReindex, "reindex", false, "reuse the root recorded by the last index instead of requiring one")
	rootCmd.AddCommand(indexCmd)
}
