package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/ingest"
	"github.com/matzehuels/bedforge/pkg/observability"
	"github.com/matzehuels/bedforge/pkg/pipeline"
	"github.com/matzehuels/bedforge/pkg/store"
	"github.com/matzehuels/bedforge/pkg/template"
)

const templateJSON = `{
	"bed": {"width_mm": 300, "height_mm": 300, "origin_marker": false},
	"part": {"width_mm": 90, "height_mm": 90, "elements": [
		{"id": "name", "type": "text", "x_mm": 5, "y_mm": 5, "w_mm": 80, "h_mm": 20, "font_size_pt": 12}
	]},
	"tiling": {"rows": 3, "cols": 3}
}`

func testTemplate() *template.Template {
	return &template.Template{
		Bed: template.Bed{WidthMM: 300, HeightMM: 300},
		Part: template.Part{
			WidthMM:  90,
			HeightMM: 90,
			Elements: []template.Element{
				template.Text("name", geom.Box{X: 5, Y: 5, W: 80, H: 20}, 12),
			},
		},
		Tiling: template.Tiling{Rows: 3, Cols: 3},
	}
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	small := testTemplate()
	small.Tiling = template.Tiling{Rows: 1, Cols: 2}

	skus := ingest.SKUMap{}
	skus.Add(ingest.SKUMeta{SKU: "STAKE-01", TemplateID: "stake"})
	snap := store.NewSnapshot(map[string]*template.Template{
		"stake": testTemplate(),
		"small": small,
	}, skus)

	srv := New(pipeline.NewRunner(nil, nil, nil), Static(snap), opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func itemsJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = `{"order_ref": "o` + string(rune('a'+i)) + `", "values": {"name": "Item"}}`
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/api/layout/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	h := decodeBody[healthResponse](t, resp)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 2, h.Templates)
	assert.Equal(t, template.PresetNames(), h.Presets)
}

func TestGenerateItems(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/api/layout/generate",
		`{"template": `+templateJSON+`, "items": `+itemsJSON(11)+`, "options": {"seed": 7}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	g := decodeBody[generateResponse](t, resp)
	assert.NotEmpty(t, g.JobID)
	require.Len(t, g.Beds, 2)
	assert.Equal(t, 9, g.Beds[0].Filled)
	assert.Equal(t, 2, g.Beds[1].Filled)
	assert.Contains(t, g.Beds[1].SVG, `id="tile-r0-c1"`)
	assert.Empty(t, g.Beds[0].Artifacts)
	assert.Equal(t, uint64(7), g.Plan.Seed)
	assert.Equal(t, 12, strings.Count(g.Manifest, "\n"))
}

func TestGenerateSlots(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/api/layout/generate",
		`{"template_id": "stake", "slots": [{"slot_index": 4, "name": "Rex"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	g := decodeBody[generateResponse](t, resp)
	require.Len(t, g.Beds, 1)
	assert.Equal(t, 1, g.Beds[0].Filled)
	assert.Contains(t, g.Beds[0].SVG, `id="tile-r1-c1"`)
	assert.Contains(t, g.Beds[0].SVG, "Rex")
}

func TestGeneratePreset(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/api/layout/generate",
		`{"preset": "regular-stake-3x3", "items": [{"values": {"line1": "In memory"}}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	g := decodeBody[generateResponse](t, resp)
	require.Len(t, g.Beds, 1)
	// The border graphic has no source.
	require.NotEmpty(t, g.Beds[0].Warnings)
	assert.Equal(t, errors.ErrCodeContentGap, g.Beds[0].Warnings[0].Code)
}

func TestGenerateSVG(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/api/layout/generate/svg?bed=1",
		`{"template_id": "small", "items": `+itemsJSON(3)+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, "2", resp.Header.Get("X-Bedforge-Beds"))
	assert.NotEmpty(t, resp.Header.Get("X-Bedforge-Job"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "<svg"))
	assert.Equal(t, 1, strings.Count(string(body), `<g id="tile-`))
}

func TestGenerateErrors(t *testing.T) {
	ts := newTestServer(t, Options{})
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
		field  string
	}{
		{"malformed json", "/api/layout/generate", `{`, 400, errors.ErrCodeInvalidSchema, ""},
		{"no template", "/api/layout/generate", `{"items": []}`, 400, errors.ErrCodeInvalidSchema, "template"},
		{"unknown template", "/api/layout/generate", `{"template_id": "nope"}`, 404, errors.ErrCodeNotFound, ""},
		{"unknown preset", "/api/layout/generate", `{"preset": "nope"}`, 404, errors.ErrCodeNotFound, ""},
		{
			"invalid template", "/api/layout/generate",
			`{"template": {"bed": {"width_mm": 100, "height_mm": 100}, "part": {"width_mm": 10, "height_mm": 10, "elements": []}, "tiling": {"rows": 0, "cols": 1}}}`,
			400, "", "",
		},
		{"bad format", "/api/layout/generate/gif", `{"template_id": "stake"}`, 400, errors.ErrCodeInvalidEnum, "format"},
		{"bad bed", "/api/layout/generate/svg?bed=x", `{"template_id": "stake"}`, 400, errors.ErrCodeInvalidRange, "bed"},
		{"missing bed", "/api/layout/generate/svg?bed=3", `{"template_id": "stake", "items": ` + itemsJSON(1) + `}`, 404, errors.ErrCodeNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			e := decodeBody[errorResponse](t, resp)
			if tt.code != "" {
				assert.Equal(t, tt.code, e.Error.Code)
			}
			if tt.field != "" {
				assert.Equal(t, tt.field, e.Error.Field)
			}
			assert.NotEmpty(t, e.Error.Message)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, Options{MaxBodyBytes: 64})
	resp := post(t, ts.URL+"/api/layout/generate", `{"template": `+templateJSON+`}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestJobsItems(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/api/jobs", `{"items": [
		{"template_id": "small", "values": {"name": "a"}},
		{"template_id": "stake", "values": {"name": "b"}},
		{"values": {"name": "c"}}
	], "default_template": "small"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	j := decodeBody[jobsResponse](t, resp)
	require.Len(t, j.Jobs, 2)
	assert.Equal(t, "small", j.Jobs[0].TemplateID)
	assert.Equal(t, 2, j.Jobs[0].Beds[0].Filled)
	assert.Equal(t, "stake", j.Jobs[1].TemplateID)
	assert.Equal(t, 1, j.Jobs[1].Beds[0].Filled)
}

func TestJobsOrders(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/api/jobs", `{
		"orders": {"orders": [
			{"id": "A1", "sku": "stake-01", "qty": 2, "name": "Rex"},
			{"id": "A2", "sku": "MYSTERY", "qty": 1, "name": "Bo"}
		]},
		"mapping": {"items": "$.orders[*]", "order_ref": "$.id", "sku": "$.sku", "quantity": "$.qty", "fields": {"name": "$.name"}},
		"default_template": "small"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	j := decodeBody[jobsResponse](t, resp)
	require.Len(t, j.Jobs, 2)
	assert.Equal(t, "small", j.Jobs[0].TemplateID)
	assert.Equal(t, 1, j.Jobs[0].Beds[0].Filled)
	assert.Equal(t, "stake", j.Jobs[1].TemplateID)
	assert.Equal(t, 2, j.Jobs[1].Beds[0].Filled)
	require.Len(t, j.Warnings, 1)
	assert.Equal(t, errors.ErrCodeUnknownSKU, j.Warnings[0].Code)
}

func TestJobsErrors(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts.URL+"/api/jobs", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/api/jobs", `{"orders": {"orders": []}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/api/jobs", `{"items": [{"template_id": "nope", "values": {}}]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
	h.status = append(h.status, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/api/layout/generate/svg", `{"template_id": "stake", "items": `+itemsJSON(1)+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	assert.Equal(t, []string{"/api/layout/generate/{format}"}, hooks.routes)
	assert.Equal(t, []int{http.StatusOK}, hooks.status)
}
