package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"dircap/internal/exitcodes"
	"dircap/internal/history"
)

func main() {
	dbPath := pflag.String("db", "", "path to the eviction history database (required)")
	recent := pflag.Int("recent", 0, "show the N most recent evictions")
	action := pflag.String("action", "", "filter by action (DELETE, DRY_RUN, PRUNE_DIR)")
	stats := pflag.Bool("stats", false, "show eviction statistics")
	jsonOutput := pflag.Bool("json", false, "output in JSON format")
	pflag.Parse()

	if *dbPath == "" {
		pflag.Usage()
		fmt.Fprintln(os.Stderr, "\nExamples:")
		fmt.Fprintln(os.Stderr, "  dircap-history --db evictions.db --recent 10")
		fmt.Fprintln(os.Stderr, "  dircap-history --db evictions.db --stats")
		fmt.Fprintln(os.Stderr, "  dircap-history --db evictions.db --action PRUNE_DIR --recent 10")
		os.Exit(exitcodes.InvalidArgs)
	}

	db, err := history.Open(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: failed to close database: %v", err)
		}
	}()

	switch {
	case *stats:
		showStats(db, *jsonOutput)
	case *action != "":
		n := *recent
		if n <= 0 {
			n = 20
		}
		records, err := db.ByAction(*action, n)
		if err != nil {
			log.Fatalf("ERROR: failed to query by action: %v", err)
		}
		showRecords(records, *jsonOutput)
	case *recent > 0:
		records, err := db.Recent(*recent)
		if err != nil {
			log.Fatalf("ERROR: failed to query recent evictions: %v", err)
		}
		showRecords(records, *jsonOutput)
	default:
		pflag.Usage()
		os.Exit(exitcodes.InvalidArgs)
	}
}

func showStats(db *history.DB, jsonOutput bool) {
	stats, err := db.GetStats()
	if err != nil {
		log.Fatalf("ERROR: failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println("Eviction Statistics")
	fmt.Printf("Files Deleted:    %d\n", stats.TotalDeleted)
	fmt.Printf("Dirs Pruned:      %d\n", stats.TotalPruned)
	fmt.Printf("Dry-Run Events:   %d\n", stats.TotalDryRun)
	fmt.Printf("Space Freed:      %s\n", humanize.IBytes(uint64(stats.BytesFreed)))
}

func showRecords(records []history.Record, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tACTION\tSIZE\tRUNNING\tPATH")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Action,
			humanize.IBytes(uint64(r.Size)),
			humanize.IBytes(uint64(r.RunningBytes)),
			r.Path,
		)
	}
	w.Flush()
}
