package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thumb-studio/internal/layer"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launch.thumbproj")

	doc := layer.NewDocument("title")
	doc.Background.ImageRef = filepath.Join(dir, "assets", "bg.png")
	product := layer.NewImageLayer("p", filepath.Join(dir, "assets", "product.png"))
	product.IsProduct = true
	product.OriginalSource = "data:image/png;base64,AAAA"
	doc = layer.AddLayer(doc, product)
	doc = layer.AddLayer(doc, layer.NewImageLayer("remote", "https://example.com/a.png"))

	require.NoError(t, New(doc).Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"assets/bg.png"`)
	assert.NotContains(t, string(raw), dir)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "launch", got.Name)
	assert.Equal(t, CurrentVersion, got.Version)
	assert.Equal(t, doc, got.Document)
}

func TestSaveDoesNotMutateDocument(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "x.png")
	doc := layer.AddLayer(layer.Document{}, layer.NewImageLayer("a", abs))

	f := New(doc)
	require.NoError(t, f.Save(filepath.Join(dir, "p.thumbproj")))

	l, _ := f.Document.Find("a")
	assert.Equal(t, abs, l.(layer.ImageLayer).Source)
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.thumbproj")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "document": {"background": {"mode": "image"}, "layers": []}}`), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrVersion)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.thumbproj")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.thumbproj"))
	assert.Error(t, err)
}

func TestWithExtension(t *testing.T) {
	assert.Equal(t, "a.thumbproj", WithExtension("a"))
	assert.Equal(t, "a.THUMBPROJ", WithExtension("a.THUMBPROJ"))
}
