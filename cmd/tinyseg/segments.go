package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "List index segments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return fmt.Errorf("failed to open index: %w", err)
		}
		defer idx.Close()

		segs := idx.Segments()
		if len(segs) == 0 {
			fmt.Println("No segments")
			return nil
		}
		fmt.Printf("%d segments (tokenizer %s):\n", len(segs), idx.Tokenizer())
		for _, seg := range segs {
			stats, err := idx.SegmentStats(seg.ID)
			if err != nil {
				return err
			}
			fmt.Printf("  %s: %d docs, %d deleted, fields %v\n", seg.ID, stats.NumDocs, stats.NumDeleted, stats.Fields)
		}
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge all segments and drop deleted documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return fmt.Errorf("failed to open index: %w", err)
		}
		defer idx.Close()

		if err := idx.ForceMerge(); err != nil {
			return err
		}
		fmt.Printf("Merged. %d segments.\n", idx.NumSegments())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(segmentsCmd, mergeCmd)
}
