// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes scalesmith tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scalesmith/internal/scale"
	"github.com/starford/scalesmith/internal/scaleservice"
)

const notationURI = "scalesmith://chord-notation"

// Server wraps the MCP server with scalesmith tools.
type Server struct {
	mcp *server.MCPServer
	svc *scaleservice.Service
}

// New creates a new MCP server with all scalesmith tools registered.
func New(svc *scaleservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Scalesmith",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	display := []mcp.ToolOption{
		mcp.WithString("level", mcp.Description("Chord level: off, basic, advanced or all (default from config)")),
		mcp.WithString("symbology", mcp.Description("Chord symbology: raw, common or jazz (default from config)")),
	}
	scaleArgs := []mcp.ToolOption{
		mcp.WithString("family", mcp.Required(), mcp.Description("Scale family name, e.g. Diatonic")),
		mcp.WithString("mode", mcp.Description("Mode name or zero-based index (default: first mode)")),
		mcp.WithString("key", mcp.Description("Key such as C, F# or Bb; empty shows roman numerals")),
	}

	s.mcp.AddTool(mcp.NewTool("list_scales",
		mcp.WithDescription("List every stored scale family with its intervals and modes."),
	), s.listScales)

	s.mcp.AddTool(mcp.NewTool("search_scales",
		mcp.WithDescription("Search scale families by family or mode name."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Part of a family or mode name")),
	), s.searchScales)

	s.mcp.AddTool(mcp.NewTool("save_scale",
		mcp.WithDescription("Create or replace a custom scale family. "+
			"Intervals are semitone gaps summing to 12, one mode name per gap. "+
			"Read the notation guide via get_chord_notation or the scalesmith://chord-notation resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Family name")),
		mcp.WithString("intervals", mcp.Required(), mcp.Description("Semitone gaps, e.g. \"2,2,3,2,3\"")),
		mcp.WithString("modes", mcp.Required(), mcp.Description("Comma separated mode names, one per gap")),
	), s.saveScale)

	s.mcp.AddTool(mcp.NewTool("chord_chart",
		append(append([]mcp.ToolOption{
			mcp.WithDescription("Show every degree of a scale with the chords that can be built on it."),
		}, scaleArgs...), display...)...,
	), s.chordChart)

	s.mcp.AddTool(mcp.NewTool("degree_chords",
		append(append([]mcp.ToolOption{
			mcp.WithDescription("Show the chords that can be built on one degree of a scale."),
			mcp.WithNumber("degree", mcp.Required(), mcp.Description("Zero-based scale degree")),
		}, scaleArgs...), display...)...,
	), s.degreeChords)

	s.mcp.AddTool(mcp.NewTool("identify_scale",
		mcp.WithDescription("Find the scale families and modes that contain exactly the given notes. "+
			"The first note is taken as the key."),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Note names separated by commas or spaces, e.g. \"A B C D E F G\"")),
	), s.identifyScale)

	s.mcp.AddTool(mcp.NewTool("chord_catalog",
		append([]mcp.ToolOption{
			mcp.WithDescription("List the chord catalog active at a level."),
		}, display...)...,
	), s.chordCatalog)

	s.mcp.AddTool(mcp.NewTool("explain_chord",
		mcp.WithDescription("Explain a chord name: its intervals and accordion bass derivations."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Catalog chord name, e.g. maj7 or 13")),
		mcp.WithString("symbology", mcp.Description("Chord symbology: raw, common or jazz")),
	), s.explainChord)

	s.mcp.AddTool(mcp.NewTool("get_symbology_legend",
		mcp.WithDescription("Returns the legend of substituted tokens for a chord symbology."),
		mcp.WithString("symbology", mcp.Description("Chord symbology: raw, common or jazz (default from config)")),
	), s.getSymbologyLegend)

	s.mcp.AddTool(mcp.NewTool("get_chord_notation",
		mcp.WithDescription("Returns the scalesmith chord notation guide. "+
			"Call this before reading charts or catalog entries."),
	), s.getChordNotation)

	// Resource: chord notation guide.
	s.mcp.AddResource(
		mcp.NewResource(notationURI, "Chord Notation Guide",
			mcp.WithResourceDescription("How scales, chord labels, levels, symbologies and derivations are written."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNotationResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listScales(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all, err := s.svc.ListFamilies(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for _, d := range all {
		fmt.Fprintf(&b, "%s %v: %s\n", d.Name, d.Intervals, strings.Join(d.Modes, ", "))
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) searchScales(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(found) == 0 {
		return mcp.NewToolResultText("no scales found"), nil
	}
	names := make([]string, len(found))
	for i, d := range found {
		names[i] = d.Name
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) saveScale(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawIntervals, err := req.RequireString("intervals")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawModes, err := req.RequireString("modes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var gaps []int
	for _, f := range splitList(rawIntervals) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid interval %q", f)), nil
		}
		gaps = append(gaps, n)
	}
	var modes []string
	for _, m := range strings.Split(rawModes, ",") {
		if m = strings.TrimSpace(m); m != "" {
			modes = append(modes, m)
		}
	}

	d, created, err := s.svc.PutFamily(ctx, scale.Family{Name: name, Intervals: gaps, Modes: modes})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	verb := "updated"
	if created {
		verb = "created"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", verb, d.Name)), nil
}

func chartRequest(req mcp.CallToolRequest) (scaleservice.ChartRequest, error) {
	family, err := req.RequireString("family")
	if err != nil {
		return scaleservice.ChartRequest{}, err
	}
	return scaleservice.ChartRequest{
		Family:    family,
		Mode:      req.GetString("mode", ""),
		Key:       req.GetString("key", ""),
		Level:     req.GetString("level", ""),
		Symbology: req.GetString("symbology", ""),
	}, nil
}

func (s *Server) chordChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cr, err := chartRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Chart(ctx, cr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(c.Text()), nil
}

func (s *Server) degreeChords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cr, err := chartRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	degree, err := req.RequireInt("degree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.DegreeChords(ctx, cr, degree)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d), nil
}

func (s *Server) identifyScale(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("notes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Identify(ctx, splitList(raw))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) chordCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.Catalog(req.GetString("level", ""), req.GetString("symbology", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for _, e := range entries {
		labels := make([]string, len(e.Chords))
		for i, c := range e.Chords {
			labels[i] = c.Label
		}
		fmt.Fprintf(&b, "%v: %s\n", e.Intervals.Values(), strings.Join(labels, ", "))
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) explainChord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.Explain(name, req.GetString("symbology", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries), nil
}

func (s *Server) getSymbologyLegend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, sym, err := s.svc.Display("", req.GetString("symbology", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	legend := sym.Legend()
	if len(legend) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("%s: chord names are shown as written", sym)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s:\n%s", sym, strings.Join(legend, "\n"))), nil
}

func (s *Server) getChordNotation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ChordNotationGuide), nil
}

func (s *Server) readNotationResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      notationURI,
			MIMEType: "text/markdown",
			Text:     ChordNotationGuide,
		},
	}, nil
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
