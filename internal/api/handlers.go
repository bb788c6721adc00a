package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scalesmith/internal/scale"
	"github.com/starford/scalesmith/internal/scaleservice"
	"github.com/starford/scalesmith/internal/sse"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc    *scaleservice.Service
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil.
func NewHandler(svc *scaleservice.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

// familyName extracts the family name from the URL. Supports encoded
// characters from OpenAPI clients (e.g. Whole%20Tone).
func familyName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func chartRequest(r *http.Request) scaleservice.ChartRequest {
	q := r.URL.Query()
	return scaleservice.ChartRequest{
		Family:    familyName(r),
		Mode:      q.Get("mode"),
		Key:       q.Get("key"),
		Level:     q.Get("level"),
		Symbology: q.Get("symbology"),
	}
}

func (h *Handler) publish(kind, name string) {
	if h.broker != nil {
		h.broker.PublishScaleEvent(kind, name)
	}
}

// ListScales handles GET /api/scales.
//
//	@Summary		List scale families
//	@Tags			scales
//	@Produce		json
//	@Success		200	{object}	FamilyListResponse
//	@Security		BearerAuth
//	@Router			/scales [get]
func (h *Handler) ListScales(w http.ResponseWriter, r *http.Request) {
	fams, err := h.svc.ListFamilies(r.Context())
	if err != nil {
		writeError(w, "list scales", err)
		return
	}
	writeJSON(w, http.StatusOK, FamilyListResponse{Families: fams})
}

// GetScale handles GET /api/scales/{name}.
//
//	@Summary		Get a scale family by name
//	@Tags			scales
//	@Produce		json
//	@Param			name	path		string	true	"Family name"
//	@Success		200		{object}	FamilyDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scales/{name} [get]
func (h *Handler) GetScale(w http.ResponseWriter, r *http.Request) {
	name := familyName(r)
	fam, err := h.svc.GetFamily(r.Context(), name)
	if err != nil {
		writeError(w, "get scale", err, slog.String("name", name))
		return
	}
	writeJSON(w, http.StatusOK, fam)
}

// PutScale handles PUT /api/scales/{name}.
//
//	@Summary		Create or replace a custom scale family
//	@Tags			scales
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string				true	"Family name"
//	@Param			body	body		PutFamilyRequest	true	"Family definition"
//	@Success		200		{object}	FamilyDetail
//	@Success		201		{object}	FamilyDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scales/{name} [put]
func (h *Handler) PutScale(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req PutFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	name := familyName(r)
	fam, created, err := h.svc.PutFamily(r.Context(), scale.Family{Name: name, Intervals: req.Intervals, Modes: req.Modes})
	if err != nil {
		writeError(w, "put scale", err, slog.String("name", name))
		return
	}
	status, kind := http.StatusOK, "updated"
	if created {
		status, kind = http.StatusCreated, "created"
	}
	h.publish(kind, name)
	writeJSON(w, status, fam)
}

// DeleteScale handles DELETE /api/scales/{name}.
//
//	@Summary		Delete a scale family
//	@Tags			scales
//	@Param			name	path	string	true	"Family name"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scales/{name} [delete]
func (h *Handler) DeleteScale(w http.ResponseWriter, r *http.Request) {
	name := familyName(r)
	if err := h.svc.DeleteFamily(r.Context(), name); err != nil {
		writeError(w, "delete scale", err, slog.String("name", name))
		return
	}
	h.publish("deleted", name)
	w.WriteHeader(http.StatusNoContent)
}

// ResetScales handles POST /api/scales/reset.
//
//	@Summary		Restore the factory scale families
//	@Description	mode=restore re-adds missing defaults and keeps custom families; mode=reset also removes every custom family.
//	@Tags			scales
//	@Produce		json
//	@Param			mode	query		string	false	"Reset mode"	Enums(restore, reset)
//	@Success		200		{object}	ResetResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scales/reset [post]
func (h *Handler) ResetScales(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "restore"
	}
	if mode != "restore" && mode != "reset" {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("unknown reset mode %q", mode)))
		return
	}
	if err := h.svc.ResetDefaults(r.Context(), mode == "reset"); err != nil {
		writeError(w, "reset scales", err, slog.String("mode", mode))
		return
	}
	fams, err := h.svc.ListFamilies(r.Context())
	if err != nil {
		writeError(w, "list scales", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishReset(mode)
	}
	writeJSON(w, http.StatusOK, ResetResponse{Mode: mode, Families: len(fams)})
}

// Chart handles GET /api/scales/{name}/chart.
//
//	@Summary		Chord annotations for every degree of a scale
//	@Tags			chords
//	@Produce		json
//	@Param			name		path		string	true	"Family name"
//	@Param			mode		query		string	false	"Mode name or index"
//	@Param			key			query		string	false	"Key, e.g. C, F#, Bb; empty for roman numerals"
//	@Param			level		query		string	false	"Chord level"	Enums(off, basic, advanced, all)
//	@Param			symbology	query		string	false	"Chord symbology"	Enums(raw, common, jazz)
//	@Success		200			{object}	ChartResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scales/{name}/chart [get]
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	req := chartRequest(r)
	c, err := h.svc.Chart(r.Context(), req)
	if err != nil {
		writeError(w, "chart", err, slog.String("name", req.Family))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Degree handles GET /api/scales/{name}/degrees/{degree}.
//
//	@Summary		Chord annotations for one degree of a scale
//	@Tags			chords
//	@Produce		json
//	@Param			name		path		string	true	"Family name"
//	@Param			degree		path		int		true	"Zero-based degree"
//	@Param			mode		query		string	false	"Mode name or index"
//	@Param			key			query		string	false	"Key"
//	@Param			level		query		string	false	"Chord level"	Enums(off, basic, advanced, all)
//	@Param			symbology	query		string	false	"Chord symbology"	Enums(raw, common, jazz)
//	@Success		200			{object}	DegreeResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scales/{name}/degrees/{degree} [get]
func (h *Handler) Degree(w http.ResponseWriter, r *http.Request) {
	degree, err := strconv.Atoi(chi.URLParam(r, "degree"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("degree must be an integer"))
		return
	}
	req := chartRequest(r)
	d, err := h.svc.DegreeChords(r.Context(), req, degree)
	if err != nil {
		writeError(w, "degree chords", err, slog.String("name", req.Family))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// MIDI handles GET /api/scales/{name}/midi.
//
//	@Summary		Practice run of a keyed scale as a Standard MIDI File
//	@Tags			chords
//	@Produce		audio/midi
//	@Param			name		path		string	true	"Family name"
//	@Param			mode		query		string	false	"Mode name or index"
//	@Param			key			query		string	true	"Key"
//	@Param			octaves		query		int		false	"Octaves (1-3)"
//	@Param			patterns	query		string	false	"Comma separated patterns, e.g. linear-up,arpeggio-down"
//	@Param			tempo		query		number	false	"Beats per minute"
//	@Param			program		query		int		false	"General MIDI program (0-127)"
//	@Success		200			{file}		binary
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scales/{name}/midi [get]
func (h *Handler) MIDI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := scaleservice.MIDIRequest{
		Family:   familyName(r),
		Mode:     q.Get("mode"),
		Key:      q.Get("key"),
		Patterns: q.Get("patterns"),
	}
	var err error
	if v := q.Get("octaves"); v != "" {
		if req.Octaves, err = strconv.Atoi(v); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("octaves must be an integer"))
			return
		}
	}
	if v := q.Get("tempo"); v != "" {
		if req.Tempo, err = strconv.ParseFloat(v, 64); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("tempo must be a number"))
			return
		}
	}
	if v := q.Get("program"); v != "" {
		if req.Program, err = strconv.Atoi(v); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("program must be an integer"))
			return
		}
	}
	data, err := h.svc.MIDI(r.Context(), req)
	if err != nil {
		writeError(w, "midi", err, slog.String("name", req.Family))
		return
	}
	filename := strings.ReplaceAll(strings.ToLower(req.Family+"-"+req.Key), " ", "-") + ".mid"
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Catalog handles GET /api/chords.
//
//	@Summary		List the chord catalog at a level
//	@Tags			chords
//	@Produce		json
//	@Param			level		query		string	false	"Chord level"	Enums(basic, advanced, all)
//	@Param			symbology	query		string	false	"Chord symbology"	Enums(raw, common, jazz)
//	@Success		200			{object}	CatalogResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chords [get]
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lvl, sym, err := h.svc.Display(q.Get("level"), q.Get("symbology"))
	if err != nil {
		writeError(w, "catalog", err)
		return
	}
	entries, err := h.svc.Catalog(lvl.String(), sym.String())
	if err != nil {
		writeError(w, "catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, CatalogResponse{
		Level:     lvl,
		Symbology: sym,
		Legend:    sym.Legend(),
		Entries:   entries,
	})
}

// Search handles GET /api/search.
//
//	@Summary		Search families and mode names
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Identify handles POST /api/identify.
//
//	@Summary		Find the families and modes that spell a set of notes
//	@Tags			scales
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IdentifyRequest	true	"Notes, the first one is the key"
//	@Success		200		{object}	IdentifyResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/identify [post]
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req IdentifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.svc.Identify(r.Context(), req.Notes)
	if err != nil {
		writeError(w, "identify", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
