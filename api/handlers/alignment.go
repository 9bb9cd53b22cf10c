package handlers

import (
	"net/http"
	"strconv"

	"github.com/aria-lang/dnadiagnoser-go/internal/alignment"
	"github.com/aria-lang/dnadiagnoser-go/internal/kmer"
	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

// AlignRequest represents an alignment request.
type AlignRequest struct {
	Reference string          `json:"reference"`
	Sequence  string          `json:"sequence"`
	Aligned   bool            `json:"aligned"`
	Scoring   *ScoringRequest `json:"scoring,omitempty"`
}

// ScoringRequest overrides the server's scores for one alignment.
type ScoringRequest struct {
	Match        int `json:"match"`
	Mismatch     int `json:"mismatch"`
	GapOpen      int `json:"gap_open"`
	GapExtend    int `json:"gap_extend"`
	EndGapOpen   int `json:"end_gap_open"`
	EndGapExtend int `json:"end_gap_extend"`
}

func (s *ScoringRequest) aligner() (*alignment.Aligner, error) {
	scoring, err := alignment.NewScoringMatrix(s.Match, s.Mismatch, s.GapOpen, s.GapExtend, s.EndGapOpen, s.EndGapExtend)
	if err != nil {
		return nil, err
	}
	return alignment.NewAligner(scoring)
}

// AlignResponse is a sequence in reference coordinates. KMerDistance is
// the Jaccard distance between the k-mers of the submitted sequence and
// the reference.
type AlignResponse struct {
	Reference    string            `json:"reference"`
	Display      string            `json:"display"`
	Data         string            `json:"data"`
	Start        int               `json:"start"`
	End          int               `json:"end"`
	Insertions   map[string]string `json:"insertions"`
	Ambiguous    int               `json:"ambiguous"`
	Score        *int              `json:"score,omitempty"`
	CIGAR        string            `json:"cigar,omitempty"`
	Identity     float64           `json:"identity,omitempty"`
	GapOpenings  int               `json:"gap_openings,omitempty"`
	KMerDistance *float64          `json:"kmer_distance,omitempty"`
}

// AlignHandler moves one sequence into the coordinates of a reference.
// Aligned input is only decoded.
func (h *Handler) AlignHandler(w http.ResponseWriter, r *http.Request) {
	var req AlignRequest
	if !decode(w, r, &req) {
		return
	}

	name := h.referenceName(req.Reference)
	ref, err := h.refs.Get(name)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}

	seq, err := sequence.FromText(req.Sequence, !req.Aligned)
	if err != nil {
		writeError(w, statusOf(err), "sequence: "+err.Error())
		return
	}

	resp := AlignResponse{Reference: name}
	if req.Aligned {
		if err := seq.Fit(ref, name); err != nil {
			writeError(w, statusOf(err), err.Error())
			return
		}
		resp.Display = seq.String()
	} else {
		aligner := h.aligner
		if req.Scoring != nil {
			if aligner, err = req.Scoring.aligner(); err != nil {
				writeError(w, http.StatusBadRequest, "scoring: "+err.Error())
				return
			}
		}

		distance, err := kmerDistance(seq, ref)
		if err != nil {
			writeError(w, statusOf(err), err.Error())
			return
		}

		a, err := aligner.Align(seq, ref, name)
		if err != nil {
			writeError(w, statusOf(err), err.Error())
			return
		}
		score := a.Score
		resp.Display = a.Format()
		resp.Score = &score
		resp.CIGAR = a.ToCIGAR()
		resp.Identity = a.Identity
		resp.GapOpenings = a.GapOpenings()
		resp.KMerDistance = &distance
	}

	resp.Data = seq.String()
	resp.Start, resp.End = seq.Start, seq.End
	resp.Ambiguous = seq.CountAmbiguous()
	resp.Insertions = make(map[string]string, len(seq.Insertions))
	for k, run := range seq.Insertions {
		resp.Insertions[strconv.Itoa(k)] = nucleotide.String(run)
	}
	writeJSON(w, http.StatusOK, resp)
}

func kmerDistance(seq, ref *sequence.Sequence) (float64, error) {
	own, err := kmer.CountKMers(seq, kmer.DefaultK)
	if err != nil {
		return 0, err
	}
	refKmers, err := kmer.CountKMers(ref, kmer.DefaultK)
	if err != nil {
		return 0, err
	}
	return own.JaccardDistance(refKmers), nil
}
