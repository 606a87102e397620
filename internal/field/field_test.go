package field

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, d := range []float32{-1, -0.75, -0.5, -0.1, 0, 0.1, 0.5, 0.75, 1} {
		assert.InDelta(t, d, Decode(Encode(d)), 1e-6, "decode(encode(%v))", d)
	}
}

func TestEncodeDecodeQuantized(t *testing.T) {
	// Round-tripping through 8-bit storage stays within one quantization step.
	for _, d := range []float32{-1, -0.333, 0, 0.5, 0.999, 1} {
		q := float32(int(Encode(d)*255+0.5)) / 255
		assert.InDelta(t, d, Decode(q), 2.0/255, "through uint8: %v", d)
	}
}

func TestNewNeutral(t *testing.T) {
	f := New(4, 3)
	assert.Equal(t, 4, f.Width())
	assert.Equal(t, 3, f.Height())
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			fx, fy := f.At(x, y)
			assert.Equal(t, Neutral, fx)
			assert.Equal(t, Neutral, fy)
		}
	}
}

func TestNewClampsDimensions(t *testing.T) {
	f := New(0, -5)
	assert.Equal(t, 1, f.Width())
	assert.Equal(t, 1, f.Height())
}

func TestBlendAdditive(t *testing.T) {
	f := New(2, 2)
	r := image.Rect(0, 0, 2, 2)
	delta := []float32{
		0.1, 0, 0.1, 0,
		0.1, 0, 0.1, 0,
	}
	f.Blend(r, delta, 1)
	fx, fy := f.At(0, 0)
	assert.InDelta(t, 0.6, fx, 1e-6)
	assert.InDelta(t, 0.5, fy, 1e-6)

	f.Blend(r, delta, 1)
	fx, _ = f.At(1, 1)
	assert.InDelta(t, 0.7, fx, 1e-6)
}

func TestBlendAdditivityLaw(t *testing.T) {
	// Two applications at strength s equal one at 2s, below the clamp.
	delta := []float32{0.05, -0.02, 0.05, -0.02, 0.05, -0.02, 0.05, -0.02}
	r := image.Rect(0, 0, 2, 2)

	twice := New(2, 2)
	twice.Blend(r, delta, 1)
	twice.Blend(r, delta, 1)

	once := New(2, 2)
	once.Blend(r, delta, 2)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			ax, ay := twice.At(x, y)
			bx, by := once.At(x, y)
			assert.InDelta(t, bx, ax, 1e-6)
			assert.InDelta(t, by, ay, 1e-6)
		}
	}
}

func TestBlendClamps(t *testing.T) {
	f := New(1, 1)
	f.Blend(image.Rect(0, 0, 1, 1), []float32{10, -10}, 1)
	fx, fy := f.At(0, 0)
	assert.Equal(t, float32(1), fx)
	assert.Equal(t, float32(0), fy)
}

func TestBlendOutsideRegionSkipped(t *testing.T) {
	f := New(2, 2)
	// Region hangs off the right edge; in-bounds texels still update,
	// out-of-bounds ones are ignored without panic.
	r := image.Rect(1, 0, 3, 1)
	delta := []float32{0.2, 0, 0.2, 0}
	f.Blend(r, delta, 1)
	fx, _ := f.At(1, 0)
	assert.InDelta(t, 0.7, fx, 1e-6)
	fx, _ = f.At(0, 0)
	assert.Equal(t, Neutral, fx)
}

func TestReplaceDimensionMismatch(t *testing.T) {
	f := New(4, 4)
	f.Fill(0.25, 0.75)
	before := f.Snapshot()

	err := f.Replace(make([]float32, 3*3*Channels), 3, 3)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	// Prior buffer must be untouched, element for element.
	assert.Equal(t, before, f.Snapshot())
}

func TestReplaceBadLength(t *testing.T) {
	f := New(2, 2)
	err := f.Replace(make([]float32, 5), 2, 2)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestReplaceAdoptsCopy(t *testing.T) {
	f := New(2, 1)
	buf := []float32{0.1, 0.2, 0.3, 0.4}
	require.NoError(t, f.Replace(buf, 2, 1))

	// Mutating the caller's slice must not leak into the document.
	buf[0] = 0.9
	fx, fy := f.At(0, 0)
	assert.InDelta(t, 0.1, fx, 1e-6)
	assert.InDelta(t, 0.2, fy, 1e-6)
}

func TestReplaceClampsValues(t *testing.T) {
	f := New(1, 1)
	require.NoError(t, f.Replace([]float32{1.5, -0.5}, 1, 1))
	fx, fy := f.At(0, 0)
	assert.Equal(t, float32(1), fx)
	assert.Equal(t, float32(0), fy)
}

func TestSnapshotIsCopy(t *testing.T) {
	f := New(2, 2)
	snap := f.Snapshot()
	f.Fill(1, 1)
	assert.Equal(t, Neutral, snap[0])
}

func TestSampleWrap(t *testing.T) {
	f := New(4, 4)
	f.Blend(image.Rect(0, 0, 1, 1), []float32{0.5, 0}, 1) // texel (0,0) -> fx=1

	// Wrapped coordinates land on the same texels.
	ax, ay := f.SampleWrap(0, 0)
	bx, by := f.SampleWrap(1, 1)
	cx, cy := f.SampleWrap(-1, 2)
	assert.InDelta(t, ax, bx, 1e-6)
	assert.InDelta(t, ay, by, 1e-6)
	assert.InDelta(t, ax, cx, 1e-6)
	assert.InDelta(t, ay, cy, 1e-6)
	assert.InDelta(t, 1.0, ax, 1e-6)
}

func TestSampleClamp(t *testing.T) {
	f := New(4, 4)
	f.Blend(image.Rect(3, 3, 4, 4), []float32{0.5, 0.5}, 1)

	// Out-of-range coordinates pin to the edge texel.
	fx, fy := f.SampleClamp(5, 5)
	ex, ey := f.At(3, 3)
	assert.InDelta(t, ex, fx, 1e-6)
	assert.InDelta(t, ey, fy, 1e-6)
}

func TestSampleBilinearInterpolates(t *testing.T) {
	f := New(2, 1)
	// fx: texel 0 -> 0, texel 1 -> 1
	f.Blend(image.Rect(0, 0, 2, 1), []float32{-0.5, 0, 0.5, 0}, 1)
	fx, _ := f.SampleClamp(0.5, 0)
	assert.InDelta(t, 0.5, fx, 1e-6)
}

func TestFillClamps(t *testing.T) {
	f := New(2, 2)
	f.Fill(2, -1)
	fx, fy := f.At(1, 1)
	assert.Equal(t, float32(1), fx)
	assert.Equal(t, float32(0), fy)
}

func TestInvertChannel(t *testing.T) {
	f := New(2, 1)
	f.Fill(0.25, 0.8)
	f.InvertChannel(1)
	fx, fy := f.At(0, 0)
	assert.InDelta(t, 0.25, fx, 1e-6)
	assert.InDelta(t, 0.2, fy, 1e-6)

	// Unknown channel index is a no-op.
	f.InvertChannel(7)
	fx, _ = f.At(0, 0)
	assert.InDelta(t, 0.25, fx, 1e-6)
}

func TestQuantize(t *testing.T) {
	f := New(1, 1)
	f.Blend(image.Rect(0, 0, 1, 1), []float32{0.0001, 0.0001}, 1)
	f.Quantize(f.Bounds())
	fx, fy := f.At(0, 0)
	assert.Equal(t, float32(128.0/255.0), fx)
	assert.Equal(t, float32(128.0/255.0), fy)
}
