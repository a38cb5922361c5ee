package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"harshagw/tinyseg/internal/ingest"
)

var indexCmd = &cobra.Command{
	Use:   "index <pattern>...",
	Short: "Index .txt, .json and .jsonl files",
	Long: `Index every file matched by the given patterns. Patterns support ** for
recursive matching.

Examples:
  tinyseg index notes/*.txt
  tinyseg index 'corpus/**/*.jsonl'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	files, err := ingest.Expand(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported files in %v", args)
	}

	idx, err := openIndex()
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer idx.Close()

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	var indexed int
	var failures []string
	for _, path := range files {
		docs, err := ingest.ReadDocuments(path)
		if err != nil {
			failures = append(failures, err.Error())
			bar.Add(1)
			continue
		}
		for _, doc := range docs {
			if err := idx.Index(doc.ID, doc.Fields); err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", doc.ID, err))
				continue
			}
			indexed++
		}
		bar.Add(1)
	}

	if err := idx.Flush(); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Files:     %d\n", len(files))
	fmt.Printf("  Documents: %d\n", indexed)
	fmt.Printf("  Segments:  %d\n", idx.NumSegments())
	if len(failures) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, f := range failures {
			fmt.Printf("  - %s\n", f)
		}
	}
	fmt.Printf("\nIndex stored at: %s\n", cfg.Index.Dir)
	return nil
}
