package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/dnadiagnoser-go/internal/alignment"
	"github.com/aria-lang/dnadiagnoser-go/internal/config"
	"github.com/aria-lang/dnadiagnoser-go/internal/reference"
	"github.com/aria-lang/dnadiagnoser-go/internal/stats"
)

const testReference = "ACGTTGCAACGTTGCA"

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.Workers = 2
	return newRouterWith(t, cfg)
}

func newRouterWith(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	refs := reference.NewRegistry()
	require.NoError(t, refs.Add(reference.DefaultName, testReference))
	require.NoError(t, refs.Add("short", "ACGT"))
	aligner, err := alignment.NewAligner(nil)
	require.NoError(t, err)
	log, _ := test.NewNullLogger()

	r := chi.NewRouter()
	r.Mount("/api", New(refs, aligner, log, cfg).Routes())
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestReferencesHandler(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodGet, "/api/references", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []ReferenceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []ReferenceInfo{
		{Name: "Homo_sapiens_COI", Length: 16},
		{Name: "short", Length: 4},
	}, got)
}

func TestAlignHandler(t *testing.T) {
	h := newRouter(t)

	rec := do(t, h, http.MethodPost, "/api/align", AlignRequest{Sequence: "ACGTTGCAGGGACGTTGCA"})
	require.Equal(t, http.StatusOK, rec.Code)

	var got AlignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Homo_sapiens_COI", got.Reference)
	assert.Equal(t, testReference, got.Data)
	assert.Equal(t, 0, got.Start)
	assert.Equal(t, 16, got.End)
	assert.Equal(t, map[string]string{"8": "GGG"}, got.Insertions)
	assert.Equal(t, "8M3I8M", got.CIGAR)
	require.NotNil(t, got.Score)
	assert.Equal(t, 10, *got.Score)
	assert.Equal(t, 1, got.GapOpenings)
	assert.Zero(t, got.Ambiguous)
	require.NotNil(t, got.KMerDistance)
	assert.InDelta(t, 1.0, *got.KMerDistance, 1e-9)
}

func TestAlignHandlerScoring(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodPost, "/api/align", AlignRequest{
		Sequence: "ACGTTGCAGGGACGTTGCA",
		Scoring:  &ScoringRequest{Match: 2, Mismatch: -1, GapOpen: -4, GapExtend: -1, EndGapOpen: -1},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got AlignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "8M3I8M", got.CIGAR)
	require.NotNil(t, got.Score)
	assert.Equal(t, 26, *got.Score)
}

func TestAlignHandlerAligned(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodPost, "/api/align",
		AlignRequest{Reference: "short", Sequence: "-CG-", Aligned: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var got AlignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "-CG-", got.Display)
	assert.Equal(t, 1, got.Start)
	assert.Equal(t, 3, got.End)
	assert.Nil(t, got.Score)
}

func TestAlignHandlerErrors(t *testing.T) {
	h := newRouter(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"unknown reference", AlignRequest{Reference: "missing", Sequence: "ACGT"}, http.StatusNotFound},
		{"invalid symbol", AlignRequest{Sequence: "ACXT"}, http.StatusBadRequest},
		{"empty sequence", AlignRequest{Sequence: "NN--"}, http.StatusBadRequest},
		{"malformed body", "not an object", http.StatusBadRequest},
		{"aligned length mismatch", AlignRequest{Reference: "short", Sequence: "ACG", Aligned: true}, http.StatusBadRequest},
		{"invalid scoring", AlignRequest{Sequence: "ACGT", Scoring: &ScoringRequest{Mismatch: -1}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/align", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var got ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.NotEmpty(t, got.Error)
		})
	}
}

func diagnoseRequest() map[string]any {
	return map[string]any{
		"specimens": []map[string]string{
			{"id": "s1", "label": "a", "sequence": "ACGTTGCAACGTTGCA"},
			{"id": "s2", "label": "b", "sequence": "ACGTTGCTACGTTGCA"},
			{"id": "s3", "label": "b", "sequence": "ACQT"},
		},
	}
}

func TestDiagnoseHandler(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodPost, "/api/diagnose", diagnoseRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got DiagnoseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "Homo_sapiens_COI", got.Reference)
	assert.Equal(t, []string{"a", "b"}, got.Groups)
	assert.Equal(t, [][]int{{0, 1}, {1, 0}}, got.Matrix.Counts)

	require.Len(t, got.Pairs, 2)
	assert.Equal(t, "7 (A vs. T)", got.Pairs[0].Description)

	require.Len(t, got.Diagnoses, 2)
	assert.Equal(t, "7 (A)", got.Diagnoses[0].Differences)
	assert.Equal(t, []ReplacementResponse{{Position: "7", Left: "A", Right: "T"}}, got.Diagnoses[0].Replacements)
	assert.Contains(t, got.Diagnoses[1].Description, "b differs from all other species in the dataset by having a T at position 7")
	assert.Empty(t, got.DiagnosticsError)

	require.Len(t, got.Failures, 1)
	assert.Equal(t, "s3", got.Failures[0].ID)
}

func TestDiagnoseHandlerSingleGroup(t *testing.T) {
	req := map[string]any{
		"column": "genus",
		"specimens": []map[string]string{
			{"id": "s1", "label": "a", "sequence": "ACGTTGCAACGTTGCA"},
		},
	}
	rec := do(t, newRouter(t), http.MethodPost, "/api/diagnose", req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got DiagnoseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.DiagnosticsError)
	assert.Empty(t, got.Diagnoses)
}

func TestDiagnoseHandlerErrors(t *testing.T) {
	h := newRouter(t)

	rec := do(t, h, http.MethodPost, "/api/diagnose", map[string]any{"specimens": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := diagnoseRequest()
	req["reference"] = "missing"
	rec = do(t, h, http.MethodPost, "/api/diagnose", req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = diagnoseRequest()
	req["selection"] = []string{"a"}
	rec = do(t, h, http.MethodPost, "/api/diagnose", req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerConfigDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Reference = "short"
	cfg.Column = "genus"
	h := newRouterWith(t, cfg)

	rec := do(t, h, http.MethodPost, "/api/align", AlignRequest{Sequence: "ACGT"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var aligned AlignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &aligned))
	assert.Equal(t, "short", aligned.Reference)

	rec = do(t, h, http.MethodPost, "/api/diagnose", map[string]any{
		"specimens": []map[string]string{
			{"id": "s1", "label": "a", "sequence": "ACGT"},
			{"id": "s2", "label": "b", "sequence": "ACGA"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got DiagnoseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "short", got.Reference)
	require.Len(t, got.Diagnoses, 2)
	assert.Contains(t, got.Diagnoses[0].Description, "differs from all other genus")
}

func TestStatsHandler(t *testing.T) {
	h := newRouter(t)

	req := map[string]any{
		"specimens": []map[string]string{
			{"id": "s1", "label": "a", "sequence": "ACGT"},
			{"id": "s2", "label": "a", "sequence": "ACGTAC"},
		},
	}
	rec := do(t, h, http.MethodPost, "/api/stats", req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got stats.SequenceSetStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 10, got.TotalBases)
	assert.Equal(t, map[string]int{"a": 2}, got.Groups)

	rec = do(t, h, http.MethodPost, "/api/stats", map[string]any{"specimens": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/stats", map[string]any{
		"specimens": []map[string]string{{"id": "bad", "label": "a", "sequence": "AXGT"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
