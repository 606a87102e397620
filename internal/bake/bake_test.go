package bake

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowpaint/internal/field"
)

func solidBase(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 200
		img.Pix[i+1] = 80
		img.Pix[i+2] = 40
		img.Pix[i+3] = 255
	}
	return img
}

func TestRunRequiresInputs(t *testing.T) {
	var buf bytes.Buffer

	err := Run(&buf, Config{Base: solidBase(2, 2)})
	assert.ErrorContains(t, err, "flow document")

	err = Run(&buf, Config{Flow: field.New(2, 2)})
	assert.ErrorContains(t, err, "base texture")
}

func TestRunEncodesAnimatedWebP(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Flow:       field.New(4, 4),
		Base:       solidBase(4, 4),
		Speed:      0.5,
		Distortion: 0.1,
		Frames:     4,
		Size:       8,
		Workers:    2,
	}
	require.NoError(t, Run(&buf, cfg))

	out := buf.Bytes()
	require.Greater(t, len(out), 12)
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, "WEBP", string(out[8:12]))
	assert.True(t, bytes.Contains(out, []byte("ANIM")), "missing animation chunk")
}

func TestRunSupersampledMatchesOutputSize(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Flow:        field.New(4, 4),
		Base:        solidBase(4, 4),
		Frames:      2,
		Size:        8,
		Supersample: 2,
		Workers:     1,
	}
	require.NoError(t, Run(&buf, cfg))
	assert.Equal(t, "RIFF", string(buf.Bytes()[0:4]))
}

func TestRunLeavesDocumentUntouched(t *testing.T) {
	doc := field.New(4, 4)
	before := doc.Snapshot()

	var buf bytes.Buffer
	require.NoError(t, Run(&buf, Config{
		Flow: doc, Base: solidBase(4, 4), Frames: 2, Size: 4, Workers: 1,
	}))
	assert.Equal(t, before, doc.Snapshot())
}
