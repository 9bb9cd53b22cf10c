package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aria-lang/dnadiagnoser-go/internal/config"
	"github.com/aria-lang/dnadiagnoser-go/internal/reference"
	"github.com/aria-lang/dnadiagnoser-go/pkg/dnadiagnoser"
)

// defaultReferencesFile is read when neither the config nor a flag names a
// references file.
const defaultReferencesFile = "data/reference_sequences.tab"

// runFlags are the flags shared by the commands that run a comparison.
type runFlags struct {
	configFile     *string
	input          *string
	fasta          *string
	referencesFile *string
	reference      *string
	column         *string
	selection      *string
	aligned        *bool
	insertions     *bool
	relative       *bool
	workers        *int
	verbose        *bool
}

func addRunFlags(fs *flag.FlagSet) *runFlags {
	return &runFlags{
		configFile:     fs.String("config", "", "YAML configuration file"),
		input:          fs.String("input", "", "Tab-separated specimen table"),
		fasta:          fs.String("fasta", "", "FASTA file of specimens, headers '>id label'"),
		referencesFile: fs.String("references", "", "Reference sequences file (name<TAB>sequence or FASTA)"),
		reference:      fs.String("reference", dnadiagnoser.DefaultReference, "Reference sequence name"),
		column:         fs.String("column", "species", "Column to group specimens by"),
		selection:      fs.String("select", "", "Comma-separated categories to compare (default all)"),
		aligned:        fs.Bool("aligned", false, "Input sequences are already aligned"),
		insertions:     fs.Bool("insertions", false, "Keep insertions in the comparison"),
		relative:       fs.Bool("relative", false, "Report positions relative to the first group"),
		workers:        fs.Int("workers", 0, "Parallel workers (default number of CPUs)"),
		verbose:        fs.Bool("v", false, "Verbose logging"),
	}
}

// config loads the configuration file and applies the flags that were set
// on the command line over it.
func (rf *runFlags) config(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(*rf.configFile)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "references":
			cfg.ReferencesFile = *rf.referencesFile
		case "reference":
			cfg.Reference = *rf.reference
		case "column":
			cfg.Column = strings.ToLower(*rf.column)
		case "select":
			cfg.Selection = splitSelection(*rf.selection)
		case "aligned":
			cfg.Aligned = *rf.aligned
		case "insertions":
			cfg.Insertions = *rf.insertions
		case "relative":
			cfg.RelativePositions = *rf.relative
		case "workers":
			cfg.Workers = *rf.workers
		}
	})

	if cfg.ReferencesFile == "" {
		cfg.ReferencesFile = defaultReferencesFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitSelection(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// specimens reads the specimens named by -input or -fasta.
func (rf *runFlags) specimens(column string) ([]dnadiagnoser.Specimen, error) {
	switch {
	case *rf.input != "":
		return dnadiagnoser.ReadSpecimens(*rf.input, column)
	case *rf.fasta != "":
		return dnadiagnoser.ReadFASTA(*rf.fasta)
	default:
		return nil, fmt.Errorf("either -input or -fasta is required")
	}
}

func (rf *runFlags) logger() *logrus.Logger {
	return newLogger(*rf.verbose)
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func loadReferences(filename string) (*reference.Registry, error) {
	refs, err := reference.LoadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("loading references: %w", err)
	}
	return refs, nil
}
