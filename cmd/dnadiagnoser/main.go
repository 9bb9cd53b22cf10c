// Command dnadiagnoser finds the nucleotide positions that tell groups of
// specimens apart.
//
// Usage:
//
//	dnadiagnoser [command] [options]
//
// Commands:
//
//	run         Compare groups and write the report files
//	diagnose    Compare groups and print the diagnostic table
//	align       Align one sequence to a reference
//	choices     List the grouping columns of a table and their values
//	stats       Calculate specimen statistics
//	references  List the available reference sequences
//	version     Show version information
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/aria-lang/dnadiagnoser-go/internal/alignment"
	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
	"github.com/aria-lang/dnadiagnoser-go/internal/report"
	"github.com/aria-lang/dnadiagnoser-go/internal/table"
	"github.com/aria-lang/dnadiagnoser-go/pkg/dnadiagnoser"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		runCmd(os.Args[2:])
	case "diagnose":
		diagnoseCmd(os.Args[2:])
	case "align":
		alignCmd(os.Args[2:])
	case "choices":
		choicesCmd(os.Args[2:])
	case "stats":
		statsCmd(os.Args[2:])
	case "references":
		referencesCmd(os.Args[2:])
	case "version":
		fmt.Println(dnadiagnoser.Info())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`DNAdiagnoser - Diagnostic Nucleotide Positions

Usage:
  dnadiagnoser <command> [options]

Commands:
  run         Compare groups and write the report files
  diagnose    Compare groups and print the diagnostic table
  align       Align one sequence to a reference
  choices     List the grouping columns of a table and their values
  stats       Calculate specimen statistics
  references  List the available reference sequences
  version     Show version information
  help        Show this help message

Use "dnadiagnoser <command> -h" for more information about a command.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// compare runs the comparison configured by the flags.
func compare(fs *flag.FlagSet, rf *runFlags) (*diagnosis.Result, string) {
	cfg, err := rf.config(fs)
	if err != nil {
		fail("%v", err)
	}
	log := rf.logger()

	refs, err := loadReferences(cfg.ReferencesFile)
	if err != nil {
		fail("%v", err)
	}

	specimens, err := rf.specimens(cfg.Column)
	if err != nil {
		fail("reading specimens: %v", err)
	}

	aligner, err := alignment.NewAligner(cfg.Scoring)
	if err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := diagnosis.NewProcessor(aligner, refs, log, cfg.Options()).Run(ctx, specimens, cfg.Reference)
	if err != nil {
		fail("%v", err)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "Skipped %v\n", f)
	}
	return res, cfg.Column
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	rf := addRunFlags(fs)
	output := fs.String("output", ".", "Directory for the report files")
	fasta := fs.String("write-fasta", "", "Also write the aligned specimens to this FASTA file")
	fs.Parse(args)

	res, column := compare(fs, rf)

	paths, err := report.New(res, column).WriteDir(*output)
	if err != nil {
		fail("%v", err)
	}
	if *fasta != "" {
		if err := dnadiagnoser.WriteFASTA(*fasta, res); err != nil {
			fail("%v", err)
		}
		paths = append(paths, *fasta)
	}

	fmt.Printf("Compared %d specimens in %d groups against %s\n", len(res.Specimens), res.Groups.Len(), res.Reference)
	for _, p := range paths {
		fmt.Printf("  wrote %s\n", p)
	}
}

func diagnoseCmd(args []string) {
	fs := flag.NewFlagSet("diagnose", flag.ExitOnError)
	rf := addRunFlags(fs)
	prose := fs.Bool("text", false, "Print the diagnostic descriptions instead of the table")
	fs.Parse(args)

	res, column := compare(fs, rf)
	r := report.New(res, column)

	var err error
	if *prose {
		err = r.WriteDiagnosticsDescription(os.Stdout)
	} else {
		if res.DiagnosticsErr != nil {
			fail("%v", res.DiagnosticsErr)
		}
		err = r.WriteDiagnosticTable(os.Stdout)
	}
	if err != nil {
		fail("%v", err)
	}
}

func alignCmd(args []string) {
	fs := flag.NewFlagSet("align", flag.ExitOnError)
	seq := fs.String("seq", "", "Sequence to align")
	referencesFile := fs.String("references", defaultReferencesFile, "Reference sequences file")
	name := fs.String("reference", dnadiagnoser.DefaultReference, "Reference sequence name")
	kmerSize := fs.Int("k", 11, "k-mer size for the reference distance")
	fs.Parse(args)

	if *seq == "" {
		fmt.Fprintln(os.Stderr, "Error: -seq is required")
		fs.Usage()
		os.Exit(1)
	}

	refs, err := loadReferences(*referencesFile)
	if err != nil {
		fail("%v", err)
	}
	ref, err := refs.Get(*name)
	if err != nil {
		fail("%v", err)
	}

	query, err := dnadiagnoser.NewSequence(*seq)
	if err != nil {
		fail("creating sequence: %v", err)
	}

	distance, err := dnadiagnoser.KMerDistance(query, ref, *kmerSize)
	if err != nil {
		fail("comparing k-mers: %v", err)
	}

	a, err := dnadiagnoser.Align(query, ref, *name)
	if err != nil {
		fail("aligning sequence: %v", err)
	}

	fmt.Println(a.Format())
	fmt.Println()
	fmt.Printf("Score: %d\n", a.Score)
	fmt.Printf("CIGAR: %s\n", a.ToCIGAR())
	fmt.Printf("Gap openings: %d\n", a.GapOpenings())
	fmt.Printf("Ambiguous positions: %d\n", query.CountAmbiguous())
	fmt.Printf("%d-mer distance to reference: %.3f\n", *kmerSize, distance)
	fmt.Printf("Window: %d-%d\n", query.Start, query.End)
	for _, k := range query.InsertionKeys() {
		fmt.Printf("Insertion at %d: %s\n", k, dnadiagnoser.CodesString(query.Insertions[k]))
	}
}

func choicesCmd(args []string) {
	fs := flag.NewFlagSet("choices", flag.ExitOnError)
	input := fs.String("input", "", "Tab-separated specimen table")
	fs.Parse(args)

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -input is required")
		fs.Usage()
		os.Exit(1)
	}

	tbl, err := table.ReadFile(*input, newLogger(false))
	if err != nil {
		fail("reading table: %v", err)
	}

	choices := tbl.Choices()
	for _, column := range tbl.GroupColumns() {
		fmt.Printf("%s: %s\n", column, strings.Join(choices[column], ", "))
	}
}

func statsCmd(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	input := fs.String("input", "", "Tab-separated specimen table")
	fasta := fs.String("fasta", "", "FASTA file of specimens")
	column := fs.String("column", "species", "Column to group specimens by")
	bins := fs.Int("histogram", 0, "Print GC and length histograms with this many bins")
	kmers := fs.Int("kmers", 0, "Print the most frequent k-mers, this many of them")
	k := fs.Int("k", 11, "k-mer size for -kmers")
	fs.Parse(args)

	var (
		specimens []dnadiagnoser.Specimen
		err       error
	)
	switch {
	case *input != "":
		specimens, err = dnadiagnoser.ReadSpecimens(*input, strings.ToLower(*column))
	case *fasta != "":
		specimens, err = dnadiagnoser.ReadFASTA(*fasta)
	default:
		fmt.Fprintln(os.Stderr, "Error: either -input or -fasta is required")
		fs.Usage()
		os.Exit(1)
	}
	if err != nil {
		fail("reading specimens: %v", err)
	}
	if len(specimens) == 0 {
		fail("no specimens found")
	}

	stats, err := dnadiagnoser.Stats(specimens)
	if err != nil {
		fail("calculating statistics: %v", err)
	}

	fmt.Println("Specimen Statistics")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Number of specimens: %d\n", stats.Count)
	fmt.Printf("Total bases: %d\n", stats.TotalBases)
	fmt.Printf("Length range: %d - %d bp\n", stats.MinLength, stats.MaxLength)
	fmt.Printf("Mean length: %.1f bp\n", stats.MeanLength)
	fmt.Printf("Median length: %d bp\n", stats.MedianLength)
	fmt.Printf("N50: %d bp\n", stats.N50)
	fmt.Printf("Mean GC content: %.2f%%\n", stats.MeanGCContent*100)
	fmt.Printf("Total ambiguous bases: %d\n", stats.TotalAmbiguous)

	labels := make([]string, 0, len(stats.Groups))
	for label := range stats.Groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	fmt.Printf("Groups: %d\n", len(labels))
	for _, label := range labels {
		fmt.Printf("  %s: %d\n", label, stats.Groups[label])
	}

	if *bins > 0 {
		gc, length, err := dnadiagnoser.Histograms(specimens, *bins)
		if err != nil {
			fail("building histograms: %v", err)
		}
		fmt.Println()
		fmt.Print(gc)
		low, high := gc.ModeBin()
		fmt.Printf("Most common GC range: %.0f%% - %.0f%%\n\n", low*100, high*100)
		fmt.Print(length)
	}

	if *kmers > 0 {
		profile, err := dnadiagnoser.KMerProfile(specimens, *k)
		if err != nil {
			fail("counting k-mers: %v", err)
		}
		fmt.Println()
		fmt.Printf("%d-mers: %d distinct of %d\n", profile.K, profile.UniqueCount(), profile.Total)
		for _, kc := range profile.MostFrequent(*kmers) {
			fmt.Printf("  %s: %d\n", kc.KMer, kc.Count)
		}
	}
}

func referencesCmd(args []string) {
	fs := flag.NewFlagSet("references", flag.ExitOnError)
	referencesFile := fs.String("references", defaultReferencesFile, "Reference sequences file")
	fs.Parse(args)

	refs, err := loadReferences(*referencesFile)
	if err != nil {
		fail("%v", err)
	}

	for _, name := range refs.Names() {
		ref, _ := refs.Get(name)
		fmt.Printf("%s\t%d bp\n", name, ref.Len())
	}
}
