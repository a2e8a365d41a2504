package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bedforge/internal/decode"
	"github.com/matzehuels/bedforge/pkg/alloc"
	"github.com/matzehuels/bedforge/pkg/buildinfo"
	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/ingest"
	"github.com/matzehuels/bedforge/pkg/pipeline"
	"github.com/matzehuels/bedforge/pkg/render"
	"github.com/matzehuels/bedforge/pkg/store"
	"github.com/matzehuels/bedforge/pkg/template"
)

// generateRequest names a template one of three ways and carries either
// pre-assigned slots (a single bed) or items to allocate.
//
//	{"template_id": "stake", "items": [{"values": {"line1": "Rex"}}], "options": {"seed": 7}}
type generateRequest struct {
	Template   json.RawMessage  `json:"template,omitempty"`
	TemplateID string           `json:"template_id,omitempty"`
	Preset     string           `json:"preset,omitempty"`
	Slots      json.RawMessage  `json:"slots,omitempty"`
	Items      json.RawMessage  `json:"items,omitempty"`
	Options    pipeline.Options `json:"options"`
}

type bedResponse struct {
	Index    int              `json:"index"`
	Capacity int              `json:"capacity"`
	Filled   int              `json:"filled"`
	CacheHit bool             `json:"cache_hit"`
	Warnings []errors.Warning `json:"warnings,omitempty"`
	SVG      string           `json:"svg,omitempty"`
	// Artifacts holds non-SVG exports, base64 encoded.
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
}

type generateResponse struct {
	JobID      string              `json:"job_id,omitempty"`
	TemplateID string              `json:"template_id,omitempty"`
	Beds       []bedResponse       `json:"beds"`
	Manifest   string              `json:"manifest,omitempty"`
	Plan       *alloc.Plan         `json:"plan,omitempty"`
	Stats      *pipeline.Stats     `json:"stats,omitempty"`
	Cache      *pipeline.CacheInfo `json:"cache,omitempty"`
}

type jobsRequest struct {
	Items           json.RawMessage     `json:"items,omitempty"`
	Orders          json.RawMessage     `json:"orders,omitempty"`
	Mapping         *ingest.JSONMapping `json:"mapping,omitempty"`
	DefaultTemplate string              `json:"default_template,omitempty"`
	Options         pipeline.Options    `json:"options"`
}

type jobsResponse struct {
	Jobs     []generateResponse `json:"jobs"`
	Warnings []errors.Warning   `json:"warnings,omitempty"`
}

type healthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Converter bool     `json:"converter"`
	Templates int      `json:"templates"`
	Presets   []string `json:"presets"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Version:   buildinfo.Info().Version,
		Converter: render.ConverterAvailable(),
		Presets:   template.PresetNames(),
	}
	if snap, err := s.registry.Snapshot(r.Context()); err != nil {
		s.logger.Warn("registry unavailable", "error", err)
		resp.Status = "degraded"
	} else {
		resp.Templates = len(snap.TemplateIDs())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.generate(r, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerateFile(w http.ResponseWriter, r *http.Request) {
	formats, err := render.ParseFormats(chi.URLParam(r, "format"))
	if err != nil || len(formats) != 1 {
		s.writeError(w, r, errors.Invalid(errors.ErrCodeInvalidEnum, "format", "unsupported format %q", chi.URLParam(r, "format")))
		return
	}
	format := formats[0]
	if format != render.FormatSVG && !render.ConverterAvailable() {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "%s export requires rsvg-convert", format))
		return
	}

	bed := 0
	if q := r.URL.Query().Get("bed"); q != "" {
		if bed, err = strconv.Atoi(q); err != nil || bed < 0 {
			s.writeError(w, r, errors.Invalid(errors.ErrCodeInvalidRange, "bed", "must be a non-negative integer, got %q", q))
			return
		}
	}

	resp, err := s.generate(r, []string{string(format)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if bed >= len(resp.Beds) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "bed %d not found, job has %d beds", bed, len(resp.Beds)))
		return
	}

	b := resp.Beds[bed]
	data := []byte(b.SVG)
	if format != render.FormatSVG {
		data = b.Artifacts[string(format)]
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="bed-%d%s"`, bed, format.Ext()))
	w.Header().Set("X-Bedforge-Beds", strconv.Itoa(len(resp.Beds)))
	w.Header().Set("X-Bedforge-Warnings", strconv.Itoa(len(b.Warnings)))
	if resp.JobID != "" {
		w.Header().Set("X-Bedforge-Job", resp.JobID)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// generate decodes a generate request and runs it. formats, when set,
// overrides the requested formats.
func (s *Server) generate(r *http.Request, formats []string) (*generateResponse, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var req generateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "invalid request body")
	}
	if formats != nil {
		req.Options.Formats = formats
	}
	opts := s.jobOptions(req.Options)

	tpl, err := s.resolveTemplate(r, &req)
	if err != nil {
		return nil, err
	}

	if len(req.Slots) > 0 && len(req.Items) == 0 {
		set, err := content.Parse(body, decode.FormatJSON)
		if err != nil {
			return nil, err
		}
		res, err := s.runner.RenderContent(r.Context(), tpl, set, opts)
		if err != nil {
			return nil, err
		}
		return &generateResponse{TemplateID: req.TemplateID, Beds: []bedResponse{toBedResponse(res)}}, nil
	}

	var items []content.Item
	if len(req.Items) > 0 {
		if items, err = content.ParseItems(body, decode.FormatJSON); err != nil {
			return nil, err
		}
	}
	res, err := s.runner.Generate(r.Context(), pipeline.Job{Template: tpl, Items: items, Options: opts})
	if err != nil {
		return nil, err
	}
	res.TemplateID = req.TemplateID
	return toGenerateResponse(res), nil
}

func (s *Server) resolveTemplate(r *http.Request, req *generateRequest) (*template.Template, error) {
	switch {
	case len(req.Template) > 0:
		return template.Parse(req.Template, template.FormatJSON)
	case req.TemplateID != "":
		snap, err := s.registry.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		tpl, ok := snap.Template(req.TemplateID)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "template %q not found", req.TemplateID)
		}
		return tpl, nil
	case req.Preset != "":
		tpl, err := template.Preset(req.Preset)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "unknown preset")
		}
		return tpl, nil
	}
	return nil, errors.Invalid(errors.ErrCodeInvalidSchema, "template", "one of template, template_id or preset is required")
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req jobsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidSchema, err, "invalid request body"))
		return
	}
	snap, err := s.registry.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items, warnings, err := jobItems(body, &req, snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results, err := s.runner.GenerateGrouped(r.Context(), snap, items, s.jobOptions(req.Options))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := jobsResponse{Jobs: make([]generateResponse, 0, len(results)), Warnings: warnings}
	for _, res := range results {
		resp.Jobs = append(resp.Jobs, *toGenerateResponse(res))
	}
	writeJSON(w, http.StatusOK, resp)
}

func jobItems(body []byte, req *jobsRequest, snap *store.Snapshot) ([]content.Item, []errors.Warning, error) {
	switch {
	case len(req.Orders) > 0:
		if req.Mapping == nil {
			return nil, nil, errors.Invalid(errors.ErrCodeInvalidSchema, "mapping", "required with orders")
		}
		return ingest.ParseJSONOrders(req.Orders, *req.Mapping, ingest.OrderOptions{
			SKUs:            snap,
			DefaultTemplate: req.DefaultTemplate,
		})
	case len(req.Items) > 0:
		items, err := content.ParseItems(body, decode.FormatJSON)
		if err != nil {
			return nil, nil, err
		}
		for i := range items {
			if items[i].TemplateID == "" {
				items[i].TemplateID = req.DefaultTemplate
			}
		}
		return items, nil, nil
	}
	return nil, nil, errors.Invalid(errors.ErrCodeInvalidSchema, "items", "one of items or orders is required")
}

// jobOptions applies server defaults to options decoded from a request.
func (s *Server) jobOptions(o pipeline.Options) pipeline.Options {
	d := s.opts.Defaults
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
	if o.PNGScale <= 0 {
		o.PNGScale = d.PNGScale
	}
	if o.Strategy == "" {
		o.Strategy = d.Strategy
	}
	if o.GutterMM == 0 {
		o.GutterMM = d.GutterMM
	}
	if len(o.Keepouts) == 0 {
		o.Keepouts = d.Keepouts
	}
	o.Logger = s.logger
	o.Assets = s.opts.Assets
	return o
}

func toBedResponse(b *pipeline.BedResult) bedResponse {
	resp := bedResponse{
		Index:    b.Index,
		Capacity: b.Capacity,
		Filled:   b.Filled,
		CacheHit: b.CacheHit,
		Warnings: b.Warnings,
	}
	for f, data := range b.Artifacts {
		if f == string(render.FormatSVG) {
			resp.SVG = string(data)
			continue
		}
		if resp.Artifacts == nil {
			resp.Artifacts = make(map[string][]byte)
		}
		resp.Artifacts[f] = data
	}
	return resp
}

func toGenerateResponse(res *pipeline.Result) *generateResponse {
	resp := &generateResponse{
		JobID:      res.JobID,
		TemplateID: res.TemplateID,
		Beds:       make([]bedResponse, len(res.Beds)),
		Manifest:   string(res.Manifest),
		Plan:       res.Plan,
		Stats:      &res.Stats,
		Cache:      &res.CacheInfo,
	}
	for i := range res.Beds {
		resp.Beds[i] = toBedResponse(&res.Beds[i])
	}
	return resp
}
