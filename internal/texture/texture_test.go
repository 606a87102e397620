package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		switch i % 4 {
		case 0:
			img.Pix[i] = c.R
		case 1:
			img.Pix[i] = c.G
		case 2:
			img.Pix[i] = c.B
		case 3:
			img.Pix[i] = c.A
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.png")
	writePNG(t, path, 8, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Rect.Dx())
	assert.Equal(t, 4, img.Rect.Dy())
	assert.Equal(t, image.Point{}, img.Rect.Min)
	assert.Equal(t, uint8(20), img.Pix[1])
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = Load(garbage)
	assert.Error(t, err)
}

func TestToNRGBAZeroOrigin(t *testing.T) {
	shifted := image.NewNRGBA(image.Rect(3, 5, 7, 9))
	out := ToNRGBA(shifted)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Rect)

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.Pix[0] = 128
	n := ToNRGBA(gray)
	assert.Equal(t, uint8(128), n.Pix[0])
	assert.Equal(t, uint8(255), n.Pix[3])
}

func TestCacheReturnsSameImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	writePNG(t, path, 4, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	c := NewCache()
	a, err := c.Load(path)
	require.NoError(t, err)
	b, err := c.Load(filepath.Join(dir, ".", "tex.png"))
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.png")
	c := NewCache()

	_, err := c.Load(path)
	require.Error(t, err)

	writePNG(t, path, 2, 2, color.NRGBA{A: 255})
	img, err := c.Load(path)
	require.NoError(t, err)
	assert.NotNil(t, img)
}

func TestResolveExactThenSiblings(t *testing.T) {
	dir := t.TempDir()
	mesh := filepath.Join(dir, "model.gltf")
	writePNG(t, filepath.Join(dir, "skin.png"), 2, 2, color.NRGBA{A: 255})

	// The URI names a TGA that was converted to PNG.
	got, ok := Resolve(mesh, "skin.tga")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "skin.png"), got)

	// Exact hits win.
	got, ok = Resolve(mesh, "skin.png")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "skin.png"), got)

	_, ok = Resolve(mesh, "absent.png")
	assert.False(t, ok)

	_, ok = Resolve(mesh, "data:image/png;base64,AAAA")
	assert.False(t, ok)

	_, ok = Resolve(mesh, "")
	assert.False(t, ok)
}
