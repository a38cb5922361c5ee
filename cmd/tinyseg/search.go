package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"harshagw/tinyseg/internal/search"
)

type queryMode int

const (
	modeAuto queryMode = iota
	modeAnd
	modeOr
	modePrefix
)

var (
	searchField   string
	searchAnd     bool
	searchOr      bool
	searchPrefix  bool
	searchLimit   int
	searchNoMarks bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search the index",
	Long: `Search the index. A single argument is a term query, several arguments
form a phrase analyzed with the index tokenizer.

Examples:
  tinyseg search 東京
  tinyseg search --field body 東京の夜
  tinyseg search --and 東京 朝
  tinyseg search --prefix 東`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchField, "field", "", "restrict search to a field")
	searchCmd.Flags().BoolVar(&searchAnd, "and", false, "match documents containing all terms")
	searchCmd.Flags().BoolVar(&searchOr, "or", false, "match documents containing any term")
	searchCmd.Flags().BoolVar(&searchPrefix, "prefix", false, "match terms starting with the query")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results (default is search.limit)")
	searchCmd.Flags().BoolVar(&searchNoMarks, "no-highlight", false, "do not print highlighted fields")
	searchCmd.MarkFlagsMutuallyExclusive("and", "or", "prefix")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	mode := modeAuto
	switch {
	case searchAnd:
		mode = modeAnd
	case searchOr:
		mode = modeOr
	case searchPrefix:
		mode = modePrefix
	}
	limit := searchLimit
	if limit == 0 {
		limit = cfg.Search.Limit
	}

	idx, err := openIndex()
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer idx.Close()

	snap, err := idx.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Close()

	searcher := search.New(snap)
	results, desc, err := runQuery(searcher, mode, searchField, args)
	if err != nil {
		return err
	}
	return printResults(searcher, results, desc, searchField, limit, !searchNoMarks)
}

// runQuery dispatches args to the searcher and returns the results with a
// printable description of the query.
func runQuery(s *search.Searcher, mode queryMode, field string, args []string) ([]search.Result, string, error) {
	var (
		results []search.Result
		desc    string
		err     error
	)

	switch {
	case mode == modeAnd:
		desc = "AND(" + strings.Join(args, ", ") + ")"
		results, err = s.AndSearch(args, field)
	case mode == modeOr:
		desc = "OR(" + strings.Join(args, ", ") + ")"
		results, err = s.OrSearch(args, field)
	case mode == modePrefix:
		if len(args) != 1 {
			return nil, "", fmt.Errorf("prefix search takes one prefix, got %d", len(args))
		}
		desc = args[0] + "*"
		results, err = s.PrefixSearch(args[0], field)
	case len(args) == 1:
		desc = args[0]
		results, err = s.Search(args[0], field)
	default:
		query := strings.Join(args, " ")
		desc = "\"" + query + "\""
		results, err = s.PhraseSearch(query, field)
	}

	if field != "" {
		desc += " in:" + field
	}
	return results, desc, err
}

func printResults(s *search.Searcher, results []search.Result, desc, field string, limit int, highlight bool) error {
	if len(results) == 0 {
		fmt.Printf("No results for %s\n", desc)
		return nil
	}

	fmt.Printf("Found %d results for %s:\n", len(results), desc)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	fields := s.Fields()
	if field != "" {
		fields = []string{field}
	}

	for _, res := range results {
		fmt.Printf("  %s (%.4f)\n", res.DocID, res.Score)
		if !highlight {
			continue
		}
		for _, f := range fields {
			frag, found, err := s.Highlight(res.DocID, f, res.MatchedTerms, cfg.Search.HighlightPre, cfg.Search.HighlightPost)
			if err != nil {
				return err
			}
			if found && len(frag.Spans) > 0 {
				fmt.Printf("    %s: %s\n", f, frag.Text)
			}
		}
	}
	return nil
}
