package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"

	"harshagw/tinyseg/internal/index"
	"harshagw/tinyseg/internal/query"
	"harshagw/tinyseg/internal/search"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell over the index",
	Args:  cobra.NoArgs,
	RunE:  runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

type REPL struct {
	idx  *index.Index
	done bool
}

var replCommands = []prompt.Suggest{
	{Text: "index", Description: "index <docID> <json>"},
	{Text: "delete", Description: "delete <docID>"},
	{Text: "flush", Description: "write buffered documents to a segment"},
	{Text: "merge", Description: "merge segments"},
	{Text: "search", Description: "search [--field=F] [--and|--or|--prefix] <query>"},
	{Text: "query", Description: "query <expression>"},
	{Text: "analyze", Description: "analyze <text>"},
	{Text: "get", Description: "get <docID>"},
	{Text: "segments", Description: "list segments"},
	{Text: "segment", Description: "segment <id> stats"},
	{Text: "doc", Description: "doc <segment> <docNum>"},
	{Text: "dump", Description: "dump postings <field> <term> | dump deletions <segment>"},
	{Text: "help", Description: "show help"},
	{Text: "quit", Description: "flush and exit"},
}

func runREPL(cmd *cobra.Command, args []string) error {
	idx, err := openIndex()
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}

	fmt.Println("tinyseg REPL")
	fmt.Println()
	printHelp()
	fmt.Println()
	fmt.Printf("Index loaded from %s (%d segments, tokenizer %s)\n\n", cfg.Index.Dir, idx.NumSegments(), idx.Tokenizer())

	r := &REPL{idx: idx}
	p := prompt.New(
		r.executor,
		completer,
		prompt.OptionPrefix("tinyseg >> "),
		prompt.OptionTitle("tinyseg"),
		prompt.OptionSetExitCheckerOnInput(func(string, bool) bool { return r.done }),
	)
	p.Run()

	if err := idx.Flush(); err != nil {
		idx.Close()
		return err
	}
	return idx.Close()
}

func completer(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	return prompt.FilterHasPrefix(replCommands, d.GetWordBeforeCursor(), true)
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  index <docID> <json>         - Add document to batch")
	fmt.Println("  delete <docID>               - Mark document as deleted")
	fmt.Println("  flush                        - Write batch to new segment")
	fmt.Println("  merge                        - Merge segments, remove deleted docs")
	fmt.Println("  search [--field=F] <query>   - Term/phrase search (optionally in field F)")
	fmt.Println("  search [--field=F] --and ... - AND search: docs containing ALL terms")
	fmt.Println("  search [--field=F] --or ...  - OR search: docs containing ANY term")
	fmt.Println("  search [--field=F] --prefix P - Prefix search over the term dictionary")
	fmt.Println("  query <expression>           - Boolean query (AND, OR, -, field:, 「」, *)")
	fmt.Println("  analyze <text>               - Show the token stream")
	fmt.Println("  get <docID>                  - Show the live stored document")
	fmt.Println("  segments                     - List all segments")
	fmt.Println("  segment <id> stats           - Show segment details")
	fmt.Println("  doc <segment> <docNum>       - Load stored document")
	fmt.Println("  dump postings <field> <term> - Show posting list")
	fmt.Println("  dump deletions <segment>     - Show deletion bitmap")
	fmt.Println("  help                         - Show this help")
	fmt.Println("  quit                         - Flush and exit")
}

func (r *REPL) executor(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "index":
		r.cmdIndex(input)
	case "delete":
		r.cmdDelete(parts[1:])
	case "flush":
		r.cmdFlush()
	case "merge":
		r.cmdMerge()
	case "search":
		r.cmdSearch(parts[1:])
	case "query":
		r.cmdQuery(input)
	case "analyze":
		r.cmdAnalyze(input)
	case "get":
		r.cmdGet(parts[1:])
	case "segments":
		r.cmdSegments()
	case "segment":
		r.cmdSegment(parts[1:])
	case "doc":
		r.cmdDoc(parts[1:])
	case "dump":
		r.cmdDump(parts[1:])
	case "help":
		printHelp()
	case "quit", "exit":
		fmt.Println("Goodbye!")
		r.done = true
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
	}
}

func (r *REPL) cmdIndex(input string) {
	parts := strings.SplitN(input, " ", 3)
	if len(parts) < 3 {
		fmt.Println("Usage: index <docID> <json>")
		return
	}

	docID := parts[1]
	var doc map[string]any
	if err := json.Unmarshal([]byte(parts[2]), &doc); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	if err := r.idx.Index(docID, doc); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Indexed '%s' (%d fields)\n", docID, len(doc))
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: delete <docID>")
		return
	}
	if err := r.idx.Delete(args[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Deleted '%s'\n", args[0])
}

func (r *REPL) cmdFlush() {
	if err := r.idx.Flush(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Flushed. %d segments.\n", r.idx.NumSegments())
}

func (r *REPL) cmdMerge() {
	if err := r.idx.ForceMerge(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Merged. %d segments.\n", r.idx.NumSegments())
}

func (r *REPL) cmdSearch(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: search [--field=<name>] <query>")
		fmt.Println("       search [--field=<name>] --and <term1> <term2> ...")
		fmt.Println("       search [--field=<name>] --or <term1> <term2> ...")
		fmt.Println("       search [--field=<name>] --prefix <prefix>")
		return
	}

	field := ""
	if f, ok := strings.CutPrefix(args[0], "--field="); ok {
		field = f
		args = args[1:]
	}

	mode := modeAuto
	if len(args) > 0 {
		switch args[0] {
		case "--and":
			mode, args = modeAnd, args[1:]
		case "--or":
			mode, args = modeOr, args[1:]
		case "--prefix":
			mode, args = modePrefix, args[1:]
		}
	}
	if len(args) < 1 {
		fmt.Println("Error: missing query")
		return
	}

	snap, err := r.idx.Snapshot()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer snap.Close()

	searcher := search.New(snap)
	results, desc, err := runQuery(searcher, mode, field, args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := printResults(searcher, results, desc, field, cfg.Search.Limit, true); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func (r *REPL) cmdQuery(input string) {
	expr, ok := strings.CutPrefix(input, "query ")
	if !ok {
		fmt.Println("Usage: query <expression>")
		return
	}

	snap, err := r.idx.Snapshot()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer snap.Close()

	searcher := search.New(snap)
	q, results, err := query.Run(expr, r.idx.Analyzer(), searcher)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := printResults(searcher, results, q.String(), "", cfg.Search.Limit, true); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func (r *REPL) cmdAnalyze(input string) {
	text, ok := strings.CutPrefix(input, "analyze ")
	if !ok {
		fmt.Println("Usage: analyze <text>")
		return
	}

	tokens, err := r.idx.Analyzer().Analyze(text)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, tok := range tokens {
		fmt.Printf("  %d [%d,%d) %q\n", tok.Position, tok.OffsetFrom, tok.OffsetTo, tok.Text)
	}
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: get <docID>")
		return
	}

	doc, found, err := r.idx.Get(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !found {
		fmt.Printf("No document '%s'\n", args[0])
		return
	}
	data, _ := json.MarshalIndent(doc, "", "  ")
	fmt.Println(string(data))
}

func (r *REPL) cmdSegments() {
	segs := r.idx.Segments()
	if len(segs) == 0 {
		fmt.Println("No segments")
		return
	}
	fmt.Printf("%d segments:\n", len(segs))
	for _, seg := range segs {
		fmt.Printf("  %s: %d docs\n", seg.ID, seg.NumDocs)
	}
}

func (r *REPL) cmdSegment(args []string) {
	if len(args) < 2 || args[1] != "stats" {
		fmt.Println("Usage: segment <id> stats")
		return
	}

	segID := args[0]
	info, err := r.idx.SegmentStats(segID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Segment %s:\n", segID)
	fmt.Printf("  Documents: %d\n", info.NumDocs)
	fmt.Printf("  Deleted: %d\n", info.NumDeleted)
	fmt.Printf("  Fields: %v\n", info.Fields)
	fmt.Printf("  Tokenizer: %s\n", info.Tokenizer)
}

func (r *REPL) cmdDoc(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: doc <segment> <docNum>")
		return
	}

	docNum, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fmt.Printf("Invalid docNum: %v\n", err)
		return
	}

	doc, err := r.idx.LoadDoc(args[0], docNum)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	data, _ := json.MarshalIndent(doc, "", "  ")
	fmt.Println(string(data))
}

func (r *REPL) cmdDump(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: dump postings <field> <term>")
		fmt.Println("       dump deletions <segment>")
		return
	}

	switch args[0] {
	case "postings":
		if len(args) < 3 {
			fmt.Println("Usage: dump postings <field> <term>")
			return
		}
		r.dumpPostings(args[1], args[2])
	case "deletions":
		r.dumpDeletions(args[1])
	default:
		fmt.Printf("Unknown dump type: %s\n", args[0])
	}
}

func (r *REPL) dumpPostings(field, term string) {
	postings, err := r.idx.DumpPostings(field, term)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(postings) == 0 {
		fmt.Printf("No postings for %s:%s\n", field, term)
		return
	}

	fmt.Printf("Postings for %s:%s (%d docs):\n", field, term, len(postings))
	for _, p := range postings {
		fmt.Printf("  seg=%s doc=%d freq=%d pos=%v offsets=%v\n", p.SegmentID, p.DocNum, p.Freq, p.Positions, p.Offsets)
	}
}

func (r *REPL) dumpDeletions(segID string) {
	deleted, err := r.idx.DumpDeletions(segID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(deleted) == 0 {
		fmt.Printf("No deletions in segment %s\n", segID)
		return
	}
	fmt.Printf("Deletions in %s: %v\n", segID, deleted)
}
