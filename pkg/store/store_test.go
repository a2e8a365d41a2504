package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/ingest"
	"github.com/matzehuels/bedforge/pkg/template"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTemplateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	tpl := template.RegularStake(480, 330, 3, 3)
	require.NoError(t, s.PutTemplate(ctx, "stake", "Regular stake", tpl))

	got, err := s.GetTemplate(ctx, "stake")
	require.NoError(t, err)
	assert.Equal(t, tpl, got)

	_, err = s.GetTemplate(ctx, "missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestPutTemplateValidates(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	bad := template.RegularStake(480, 330, 3, 3)
	bad.Tiling.Rows = 0
	err := s.PutTemplate(ctx, "bad", "", bad)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCapacity))

	err = s.PutTemplate(ctx, "", "", template.RegularStake(480, 330, 3, 3))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSchema))
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.PutTemplate(ctx, "b", "", template.RegularStake(600, 330, 4, 3)))
	require.NoError(t, s.PutTemplate(ctx, "a", "first", template.RegularStake(480, 330, 3, 3)))
	require.NoError(t, s.PutTemplate(ctx, "a", "replaced", template.RegularStake(480, 330, 3, 3)))

	list, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "replaced", list[0].Name)
	assert.Equal(t, 4, list[1].Cols)
	assert.Equal(t, 600.0, list[1].BedWidth)
	assert.Equal(t, 4, list[1].Elements)

	require.NoError(t, s.DeleteTemplate(ctx, "a"))
	require.NoError(t, s.DeleteTemplate(ctx, "a"))
	list, err = s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSKUsAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.PutTemplate(ctx, "stake", "", template.RegularStake(480, 330, 3, 3)))
	require.NoError(t, s.PutSKUs(ctx, []ingest.SKUMeta{
		{SKU: "ST 140", TemplateID: "stake", RequiresPhoto: true, Attrs: map[string]string{"TYPE": "Regular Stake"}},
		{SKU: "OTHER"},
	}))

	skus, err := s.SKUs(ctx)
	require.NoError(t, err)
	meta, ok := skus.Lookup("st140")
	require.True(t, ok)
	assert.True(t, meta.RequiresPhoto)
	assert.Equal(t, "Regular Stake", meta.Attrs["TYPE"])

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"stake"}, snap.TemplateIDs())

	id, ok := snap.TemplateForSKU(" st 140 ")
	assert.True(t, ok)
	assert.Equal(t, "stake", id)
	_, ok = snap.Template(id)
	assert.True(t, ok)

	// Later writes do not leak into an existing snapshot.
	require.NoError(t, s.DeleteTemplate(ctx, "stake"))
	_, ok = snap.Template("stake")
	assert.True(t, ok)
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "registry.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.PutTemplate(ctx, "stake", "", template.RegularStake(480, 330, 3, 3)))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.GetTemplate(ctx, "stake")
	assert.NoError(t, err)
}

func TestNewSnapshot(t *testing.T) {
	snap := NewSnapshot(nil, nil)
	_, ok := snap.Template("x")
	assert.False(t, ok)
	_, ok = snap.TemplateForSKU("x")
	assert.False(t, ok)
}
