package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aria-lang/dnadiagnoser-go/internal/alignment"
	"github.com/aria-lang/dnadiagnoser-go/internal/kmer"
	"github.com/aria-lang/dnadiagnoser-go/internal/reference"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

// Specimen is one input row: an identifier, a group label and raw text.
type Specimen struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"sequence"`
}

// Failure records why a specimen or a group was left out of a run.
type Failure struct {
	ID    string
	Label string
	Err   error
}

func (f Failure) Error() string {
	if f.ID == "" {
		return fmt.Sprintf("group %s: %v", f.Label, f.Err)
	}
	return fmt.Sprintf("specimen %s (%s): %v", f.ID, f.Label, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Options select the optional behaviour of a run.
type Options struct {
	// Aligned input is taken as already in reference coordinates.
	Aligned bool
	// Insertions keeps insertions in the comparison.
	Insertions bool
	// RelativePositions labels positions through a PositionTranslator.
	RelativePositions bool
	// Selection restricts the reported groups. Selecting exactly one
	// group is an error.
	Selection []string
	// Workers bounds concurrency; zero means runtime.NumCPU().
	Workers int
}

// MinContainment is the share of a specimen's k-mers expected in the
// reference. Specimens below it are still aligned, with a warning.
const MinContainment = 0.2

// AlignedSpecimen is a specimen moved into reference coordinates.
type AlignedSpecimen struct {
	ID       string
	Label    string
	Sequence *sequence.Sequence
	Display  string
}

// Result holds everything computed by a run.
type Result struct {
	Reference string
	Specimens []AlignedSpecimen
	Groups    *GroupTable
	Matrix    *Matrix
	Pairs     []PairDiff
	Diagnoses []Diagnosis
	// DiagnosticsErr is set when no diagnosis was possible, which is not
	// the same as groups without diagnostic differences.
	DiagnosticsErr error
	Failures       []Failure

	translate func(int) string
}

// Translate labels position i for display.
func (r *Result) Translate(i int) string {
	if r.translate == nil {
		return strconv.Itoa(i)
	}
	return r.translate(i)
}

// Processor runs the whole comparison over a batch of specimens.
type Processor struct {
	aligner    *alignment.Aligner
	references *reference.Registry
	log        logrus.FieldLogger
	opts       Options
}

// NewProcessor returns a processor. A nil logger discards output.
func NewProcessor(aligner *alignment.Aligner, references *reference.Registry, log logrus.FieldLogger, opts Options) *Processor {
	if log == nil {
		l := logrus.New()
		l.Out = discard{}
		log = l
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Processor{aligner: aligner, references: references, log: log, opts: opts}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Run aligns every specimen to the named reference, pools them by label and
// compares the groups. A specimen that cannot be decoded or aligned is
// recorded in Result.Failures and the run continues without it.
func (p *Processor) Run(ctx context.Context, specimens []Specimen, referenceName string) (*Result, error) {
	if len(p.opts.Selection) == 1 {
		return nil, fmt.Errorf("please select at least two categories for comparison")
	}

	ref, err := p.references.Get(referenceName)
	if err != nil {
		return nil, err
	}

	res := &Result{Reference: referenceName}
	aligned, failures, err := p.alignAll(ctx, specimens, ref, referenceName)
	if err != nil {
		return nil, err
	}
	res.Failures = failures

	labeled := make([]Labeled, 0, len(aligned))
	for _, a := range aligned {
		if !p.opts.Insertions {
			a.Sequence.ResetInsertions()
		}
		labeled = append(labeled, Labeled{Label: a.Label, Sequence: a.Sequence})
	}

	groups, groupFailures := BuildGroupTable(labeled)
	res.Failures = append(res.Failures, groupFailures...)
	if groups.Len() == 0 {
		return nil, fmt.Errorf("no specimen could be processed (%d failures)", len(res.Failures))
	}

	if p.opts.RelativePositions {
		first, _ := groups.Get(groups.labels[0])
		tr, err := p.aligner.PositionTranslator(first, ref)
		if err != nil {
			return nil, fmt.Errorf("building position translator: %w", err)
		}
		res.translate = tr.Translate
	}

	groups = groups.Select(p.opts.Selection)
	res.Groups = groups
	for _, a := range aligned {
		if _, ok := groups.Get(a.Label); ok {
			res.Specimens = append(res.Specimens, a)
		}
	}

	if res.Matrix, err = DifferenceMatrix(groups); err != nil {
		return nil, err
	}
	if res.Pairs, err = PairwiseReport(groups); err != nil {
		return nil, err
	}

	res.Diagnoses, err = DiagnosticReport(ctx, groups, p.opts.Workers)
	var emptyErr *EmptyGroupError
	switch {
	case errors.As(err, &emptyErr):
		res.DiagnosticsErr = err
		p.log.WithField("groups", groups.Len()).Warn("diagnostic report unavailable")
	case err != nil:
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"reference": referenceName,
		"specimens": len(res.Specimens),
		"groups":    groups.Len(),
		"failures":  len(res.Failures),
	}).Info("comparison finished")

	return res, nil
}

// alignAll decodes and aligns the specimens concurrently, keeping input
// order. Per-specimen errors become failures; only cancellation aborts.
func (p *Processor) alignAll(ctx context.Context, specimens []Specimen, ref *sequence.Sequence, referenceName string) ([]AlignedSpecimen, []Failure, error) {
	refKmers, err := kmer.CountKMers(ref, kmer.DefaultK)
	if err != nil {
		return nil, nil, err
	}

	results := make([]*AlignedSpecimen, len(specimens))
	errs := make([]error, len(specimens))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, sp := range specimens {
		i, sp := i, sp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := p.alignOne(sp, ref, refKmers, referenceName)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		aligned  []AlignedSpecimen
		failures []Failure
	)
	for i, sp := range specimens {
		if errs[i] != nil {
			failures = append(failures, Failure{ID: sp.ID, Label: sp.Label, Err: errs[i]})
			p.log.WithFields(logrus.Fields{
				"specimen": sp.ID,
				"label":    sp.Label,
			}).WithError(errs[i]).Warn("skipping specimen")
			continue
		}
		aligned = append(aligned, *results[i])
	}
	return aligned, failures, nil
}

func (p *Processor) alignOne(sp Specimen, ref *sequence.Sequence, refKmers *kmer.Counter, referenceName string) (*AlignedSpecimen, error) {
	seq, err := sequence.FromText(sp.Text, !p.opts.Aligned)
	if err != nil {
		return nil, err
	}

	out := &AlignedSpecimen{ID: sp.ID, Label: sp.Label, Sequence: seq}
	if p.opts.Aligned {
		if err := seq.Fit(ref, referenceName); err != nil {
			return nil, err
		}
		out.Display = seq.String()
		return out, nil
	}

	p.checkContainment(sp, seq, refKmers)

	a, err := p.aligner.Align(seq, ref, referenceName)
	if err != nil {
		return nil, err
	}
	out.Display = a.Format()
	p.log.WithFields(logrus.Fields{
		"specimen": sp.ID,
		"score":    a.Score,
		"cigar":    a.ToCIGAR(),
	}).Debug("aligned specimen")
	return out, nil
}

// checkContainment warns about a specimen sharing few k-mers with the
// reference.
func (p *Processor) checkContainment(sp Specimen, seq *sequence.Sequence, refKmers *kmer.Counter) {
	own, err := kmer.CountKMers(seq, refKmers.K)
	if err != nil {
		return
	}
	ratio, ok := own.Containment(refKmers)
	if ok && ratio < MinContainment {
		p.log.WithFields(logrus.Fields{
			"specimen":    sp.ID,
			"label":       sp.Label,
			"containment": ratio,
		}).Warn("specimen shares few k-mers with the reference")
	}
}
