// Package brush turns pointer samples into additive stroke updates against
// the flow-field store, honoring seamless wrap topology and precision mode.
package brush

import (
	"log"

	"github.com/chewxy/math32"

	"flowpaint/internal/field"
	"flowpaint/internal/mathutil"
	"flowpaint/internal/transform"
)

// Mode selects what a stroke does to the field.
type Mode int

const (
	// ModeDraw stamps the travel direction into the field.
	ModeDraw Mode = iota
	// ModeErase pulls texels back toward the neutral encoding.
	ModeErase
	// ModeSmooth blends texels toward their local average.
	ModeSmooth
)

type state int

const (
	stateIdle state = iota
	stateDrawing
	stateErasing
	stateSmoothing
)

// Samples moving less than this many texels are skipped to keep jitter out
// of the direction estimate.
const minMoveTexels = 0.1

// Pointer speed saturates the strength modulation at this many texels per
// sample.
const speedNormTexels = 100.0

// Engine is the per-document stroke processor. It is not safe for concurrent
// use; all calls happen on the interaction goroutine.
type Engine struct {
	doc    *field.Field
	params Params

	st      state
	prev    mathutil.Vec2
	changed bool

	// Warnf receives dropped-sample warnings. Defaults to log.Printf.
	Warnf func(format string, args ...any)
}

// NewEngine creates an engine bound to one document.
func NewEngine(doc *field.Field) *Engine {
	return &Engine{
		doc:    doc,
		params: DefaultParams(),
		Warnf:  log.Printf,
	}
}

// SetDocument rebinds the engine after a document swap. Any active stroke is
// discarded.
func (e *Engine) SetDocument(doc *field.Field) {
	e.doc = doc
	e.st = stateIdle
}

func (e *Engine) Params() Params { return e.params }

// SetParams clamps and adopts new brush parameters.
func (e *Engine) SetParams(p Params) { e.params = p.clamped() }

// Active reports whether a stroke is in progress.
func (e *Engine) Active() bool { return e.st != stateIdle }

// Begin enters a stroke at the given canvas-space position. The first sample
// only anchors the stroke; stamping starts with the first Move, which is the
// earliest point with a direction.
func (e *Engine) Begin(mode Mode, pos mathutil.Vec2) {
	if e.st != stateIdle {
		e.End()
	}
	if !pos.IsFinite() {
		e.warn("brush: dropped non-finite stroke start (%v, %v)", pos[0], pos[1])
		return
	}
	switch mode {
	case ModeErase:
		e.st = stateErasing
	case ModeSmooth:
		e.st = stateSmoothing
	default:
		e.st = stateDrawing
	}
	e.prev = e.confine(pos)
	e.changed = false
}

// Move feeds the next stroke sample. pressure scales the stamp strength and
// is 1 for non-pressure devices.
func (e *Engine) Move(pos mathutil.Vec2, pressure float32) {
	if e.st == stateIdle {
		return
	}
	if !pos.IsFinite() || !mathutil.IsFinite(pressure) {
		e.warn("brush: dropped non-finite sample (%v, %v)", pos[0], pos[1])
		return
	}
	cur := e.confine(pos)
	prev := e.prev
	e.prev = cur

	w := float32(e.doc.Width())
	h := float32(e.doc.Height())

	delta := cur.Sub(prev)
	if e.params.Seamless {
		// A jump longer than half the tile means the position wrapped;
		// take the short way around.
		if math32.Abs(delta[0]) > 0.5 {
			delta[0] = -sign(delta[0]) * (1 - math32.Abs(delta[0]))
		}
		if math32.Abs(delta[1]) > 0.5 {
			delta[1] = -sign(delta[1]) * (1 - math32.Abs(delta[1]))
		}
	}
	flow := mathutil.Vec2{delta[0] * w, delta[1] * h}

	strength := e.params.Strength * mathutil.Clamp01(pressure)
	if e.st != stateSmoothing {
		lenSq := flow.LenSq()
		if lenSq < minMoveTexels*minMoveTexels {
			return
		}
		speed := math32.Min(1, math32.Sqrt(lenSq)/speedNormTexels)
		speed = speed*e.params.Sensitivity + (1-e.params.Sensitivity)*0.5
		strength *= speed
	}

	var op stampOp
	switch e.st {
	case stateErasing:
		op = eraseOp{}
	case stateSmoothing:
		op = smoothOp{window: e.smoothWindow()}
	default:
		op = drawOp{dir: flow.Normalize()}
	}
	e.stamp(cur, op, strength)
	e.changed = true
}

// End leaves the stroke and reports whether any stamp landed.
func (e *Engine) End() (changed bool) {
	changed = e.changed && e.st != stateIdle
	e.st = stateIdle
	e.changed = false
	return changed
}

// confine folds a canvas position into the document domain: wrap when
// seamless, clip to the boundary otherwise.
func (e *Engine) confine(pos mathutil.Vec2) mathutil.Vec2 {
	if e.params.Seamless {
		return transform.Wrap(pos)
	}
	return mathutil.Vec2{mathutil.Clamp01(pos[0]), mathutil.Clamp01(pos[1])}
}

func (e *Engine) smoothWindow() int {
	r := int(e.params.Radius * 0.2)
	if r < 1 {
		r = 1
	}
	return r
}

func (e *Engine) warn(format string, args ...any) {
	if e.Warnf != nil {
		e.Warnf(format, args...)
	}
}

func sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	if v > 0 {
		return 1
	}
	return 0
}
