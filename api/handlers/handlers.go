// Package handlers provides HTTP handlers for the DNAdiagnoser API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/aria-lang/dnadiagnoser-go/internal/alignment"
	"github.com/aria-lang/dnadiagnoser-go/internal/config"
	"github.com/aria-lang/dnadiagnoser-go/internal/reference"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

// Handler serves the API over a fixed set of references.
type Handler struct {
	refs    *reference.Registry
	aligner *alignment.Aligner
	log     logrus.FieldLogger
	cfg     *config.Config
}

// New returns a handler. cfg supplies the reference and grouping column
// used when a request names none, and the concurrency of one diagnose
// request. A nil cfg means config.Default().
func New(refs *reference.Registry, aligner *alignment.Aligner, log logrus.FieldLogger, cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{refs: refs, aligner: aligner, log: log, cfg: cfg}
}

// Routes returns the /api routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/references", h.ReferencesHandler)
	r.Post("/align", h.AlignHandler)
	r.Post("/diagnose", h.DiagnoseHandler)
	r.Post("/stats", h.StatsHandler)
	return r
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusOf maps domain errors to HTTP statuses.
func statusOf(err error) int {
	var refErr *reference.UnknownReferenceError
	var seqErr sequence.SequenceError
	switch {
	case errors.As(err, &refErr):
		return http.StatusNotFound
	case errors.As(err, &seqErr):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) referenceName(name string) string {
	if name == "" {
		return h.cfg.Reference
	}
	return name
}

// ReferenceInfo describes one reference sequence.
type ReferenceInfo struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
}

// ReferencesHandler lists the available references.
func (h *Handler) ReferencesHandler(w http.ResponseWriter, r *http.Request) {
	out := make([]ReferenceInfo, 0, h.refs.Len())
	for _, name := range h.refs.Names() {
		ref, _ := h.refs.Get(name)
		out = append(out, ReferenceInfo{Name: name, Length: ref.Len()})
	}
	writeJSON(w, http.StatusOK, out)
}
