package handlers

import (
	"fmt"
	"net/http"

	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
	"github.com/aria-lang/dnadiagnoser-go/internal/report"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
	"github.com/aria-lang/dnadiagnoser-go/internal/stats"
)

// DiagnoseRequest asks for a comparison of labelled specimens.
type DiagnoseRequest struct {
	Reference         string               `json:"reference"`
	Column            string               `json:"column"`
	Specimens         []diagnosis.Specimen `json:"specimens"`
	Selection         []string             `json:"selection"`
	Aligned           bool                 `json:"aligned"`
	Insertions        bool                 `json:"insertions"`
	RelativePositions bool                 `json:"relative_positions"`
}

// MatrixResponse is the difference matrix.
type MatrixResponse struct {
	Labels []string `json:"labels"`
	Counts [][]int  `json:"counts"`
}

// ReplacementResponse is one incompatible position.
type ReplacementResponse struct {
	Position string `json:"position"`
	Left     string `json:"left"`
	Right    string `json:"right"`
}

// PairResponse is the comparison of an ordered pair of groups.
type PairResponse struct {
	Left         string                `json:"left"`
	Right        string                `json:"right"`
	Count        int                   `json:"count"`
	Replacements []ReplacementResponse `json:"replacements"`
	Description  string                `json:"description"`
}

// DiagnosisResponse is the comparison of one group against all others.
type DiagnosisResponse struct {
	Label        string                `json:"label"`
	Differences  string                `json:"differences"`
	Description  string                `json:"description"`
	Replacements []ReplacementResponse `json:"replacements"`
}

// FailureResponse names a specimen or group left out of the comparison.
type FailureResponse struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Error string `json:"error"`
}

// DiagnoseResponse is the full comparison.
type DiagnoseResponse struct {
	Reference        string              `json:"reference"`
	Groups           []string            `json:"groups"`
	Matrix           MatrixResponse      `json:"matrix"`
	Pairs            []PairResponse      `json:"pairs"`
	Diagnoses        []DiagnosisResponse `json:"diagnoses"`
	DiagnosticsError string              `json:"diagnostics_error,omitempty"`
	Failures         []FailureResponse   `json:"failures"`
}

// DiagnoseHandler aligns the specimens, pools them per label and reports
// the differences between groups.
func (h *Handler) DiagnoseHandler(w http.ResponseWriter, r *http.Request) {
	var req DiagnoseRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Specimens) == 0 {
		writeError(w, http.StatusBadRequest, "specimens cannot be empty")
		return
	}
	column := req.Column
	if column == "" {
		column = h.cfg.Column
	}

	name := h.referenceName(req.Reference)
	p := diagnosis.NewProcessor(h.aligner, h.refs, h.log, diagnosis.Options{
		Aligned:           req.Aligned,
		Insertions:        req.Insertions,
		RelativePositions: req.RelativePositions,
		Selection:         req.Selection,
		Workers:           h.cfg.Workers,
	})

	res, err := p.Run(r.Context(), req.Specimens, name)
	if err != nil {
		status := statusOf(err)
		if r.Context().Err() != nil {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newDiagnoseResponse(res, column))
}

func newDiagnoseResponse(res *diagnosis.Result, column string) DiagnoseResponse {
	tr := report.Translator(res.Translate)
	resp := DiagnoseResponse{
		Reference: res.Reference,
		Groups:    res.Groups.Labels(),
		Matrix:    MatrixResponse{Labels: res.Matrix.Labels, Counts: res.Matrix.Counts},
		Pairs:     make([]PairResponse, 0, len(res.Pairs)),
		Diagnoses: make([]DiagnosisResponse, 0, len(res.Diagnoses)),
		Failures:  make([]FailureResponse, 0, len(res.Failures)),
	}

	for _, p := range res.Pairs {
		resp.Pairs = append(resp.Pairs, PairResponse{
			Left:         p.Left,
			Right:        p.Right,
			Count:        p.Diff.Count(),
			Replacements: replacements(p.Diff, tr),
			Description:  report.TextualDifferences(p.Diff, tr),
		})
	}

	for _, d := range res.Diagnoses {
		resp.Diagnoses = append(resp.Diagnoses, DiagnosisResponse{
			Label:        d.Label,
			Differences:  report.ShowDiagDifferences(d.Diff, tr),
			Description:  report.DiagnosisDescription(d, column, res.Reference, tr),
			Replacements: replacements(d.Diff, tr),
		})
	}
	if res.DiagnosticsErr != nil {
		resp.DiagnosticsError = res.DiagnosticsErr.Error()
	}

	for _, f := range res.Failures {
		resp.Failures = append(resp.Failures, FailureResponse{ID: f.ID, Label: f.Label, Error: f.Err.Error()})
	}
	return resp
}

func replacements(d *diagnosis.Diff, tr report.Translator) []ReplacementResponse {
	out := make([]ReplacementResponse, 0, len(d.Replacements))
	for _, r := range d.Replacements {
		out = append(out, ReplacementResponse{
			Position: tr(r.Position),
			Left:     string(nucleotide.Encode(r.Left)),
			Right:    string(nucleotide.Encode(r.Right)),
		})
	}
	return out
}

// StatsRequest carries the specimens to summarise.
type StatsRequest struct {
	Specimens []diagnosis.Specimen `json:"specimens"`
}

// StatsHandler summarises specimen sequences and group sizes.
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	var req StatsRequest
	if !decode(w, r, &req) {
		return
	}

	items := make([]diagnosis.Labeled, 0, len(req.Specimens))
	for _, sp := range req.Specimens {
		seq, err := sequence.New(sp.Text)
		if err != nil {
			writeError(w, statusOf(err), fmt.Sprintf("specimen %s: %v", sp.ID, err))
			return
		}
		items = append(items, diagnosis.Labeled{Label: sp.Label, Sequence: seq})
	}

	s, err := stats.FromLabeled(items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}
