// Package bake renders the dual-phase preview offline: a fixed number of
// frames covering exactly one phase cycle, encoded as a looping animated
// WebP. Frames render concurrently from a private copy of the document, so
// the interactive session can keep painting while a bake runs.
package bake

import (
	"errors"
	"fmt"
	"image"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"flowpaint/internal/compositor"
	"flowpaint/internal/field"
	"flowpaint/internal/raster"
	"flowpaint/internal/transform"
)

const (
	DefaultFrames = 32
	DefaultSize   = 512
	DefaultSpeed  = 0.5
)

// Config holds all inputs for a bake run.
type Config struct {
	Flow *field.Field // document to animate; copied before rendering
	Base *image.NRGBA // texture the two phases displace; required

	Repeat  bool // tile the field and the texture toroidally
	DirectX bool // flip the decoded G channel when displacing

	Speed      float32 // cycles per second
	Distortion float32 // displacement at full deflection, canvas units

	Frames      int // animation length; DefaultFrames when zero
	Size        int // output edge in pixels; DefaultSize when zero
	Supersample int // render at Size*Supersample and downscale; 1 disables
	Workers     int // concurrent frame renderers; NumCPU when zero
}

// Run renders the animation and writes the encoded WebP to w.
func Run(w io.Writer, cfg Config) error {
	if cfg.Flow == nil {
		return errors.New("bake: flow document required")
	}
	if cfg.Base == nil {
		return errors.New("bake: base texture required")
	}

	frames := cfg.Frames
	if frames < 1 {
		frames = DefaultFrames
	}
	size := cfg.Size
	if size < 1 {
		size = DefaultSize
	}
	super := cfg.Supersample
	if super < 1 {
		super = 1
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	speed := cfg.Speed
	if speed <= 0 {
		speed = DefaultSpeed
	}

	// Workers only read the field, but the caller keeps painting into the
	// original, so render from a private copy.
	fw, fh := cfg.Flow.Width(), cfg.Flow.Height()
	snap := field.New(fw, fh)
	if err := snap.Replace(cfg.Flow.Snapshot(), fw, fh); err != nil {
		return fmt.Errorf("bake: snapshot document: %w", err)
	}

	sc := compositor.Scene{
		Flow:       snap,
		Base:       cfg.Base,
		Mode:       compositor.ModeFor(true, cfg.Repeat),
		View:       transform.IdentityView,
		Speed:      speed,
		Distortion: cfg.Distortion,
		DirectX:    cfg.DirectX,
	}

	imgs := make([]image.Image, frames)
	var rendered atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				n := rendered.Load()
				if n > 0 {
					elapsed := time.Since(start).Seconds()
					fmt.Printf("  [%d/%d] %.1f frames/sec\n", n, frames, float64(n)/elapsed)
				}
			}
		}
	}()

	// Worker pool
	renderSize := size * super
	frameChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range frameChan {
				frame := sc
				// t*speed sweeps 0..1 across the run, so frame 0 and a
				// hypothetical frame N land on the same phase: the loop
				// closes seamlessly.
				frame.Time = float32(idx) / (float32(frames) * speed)
				fb := raster.NewFrameBuffer(renderSize, renderSize)
				compositor.Render(fb, frame)
				imgs[idx] = finishFrame(fb, size)
				rendered.Add(1)
			}
		}()
	}

	for i := 0; i < frames; i++ {
		frameChan <- i
	}
	close(frameChan)

	wg.Wait()
	close(done)

	ms := uint(1000/(speed*float32(frames)) + 0.5)
	if ms == 0 {
		ms = 1
	}
	durations := make([]uint, frames)
	disposals := make([]uint, frames)
	for i := range durations {
		durations[i] = ms
	}

	ani := nativewebp.Animation{
		Images:    imgs,
		Durations: durations,
		Disposals: disposals,
		LoopCount: 0, // forever
	}
	if err := nativewebp.EncodeAll(w, &ani, nil); err != nil {
		return fmt.Errorf("bake: encode webp: %w", err)
	}
	return nil
}

// finishFrame downscales a supersampled frame to the output size. Frames are
// fully opaque, so no premultiply pass is needed around the scale.
func finishFrame(fb *raster.FrameBuffer, size int) *image.NRGBA {
	img := fb.Image()
	if fb.Width == size && fb.Height == size {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
