package main

import (
	"bytes"
	"image"
	"image/png"
	"log"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"

	"flowpaint/internal/brush"
	"flowpaint/internal/camera"
	"flowpaint/internal/compositor"
	"flowpaint/internal/config"
	"flowpaint/internal/field"
	"flowpaint/internal/flowio"
	"flowpaint/internal/history"
	"flowpaint/internal/mathutil"
	"flowpaint/internal/overlay"
	"flowpaint/internal/preset"
	"flowpaint/internal/raster"
	"flowpaint/internal/uvmesh"
)

const (
	initialWinW = 1280
	initialWinH = 800

	// Reference overlay opacity for the mesh's own base color texture.
	meshTexOpacity = 0.5

	// Alt-drag sensitivity: pixels of travel per texel of radius and per
	// unit of strength.
	radiusDragScale   = 0.1
	strengthDragScale = 0.005

	cursorSegments = 48
)

// Cursor ring colors per gesture state.
var (
	cursorIdle   = [4]uint8{255, 255, 255, 200}
	cursorActive = [4]uint8{180, 180, 180, 200}
	cursorAdjust = [4]uint8{255, 255, 0, 200}
)

var digitKeys = [...]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

type editorConfig struct {
	Doc          *field.Field
	Base         *image.NRGBA
	MeshTex      *image.NRGBA
	Edges        []uvmesh.Edge
	Settings     config.Settings
	SettingsPath string
	OutPath      string
	Presets      map[string]preset.Preset
}

// editor is the interactive session: one document, one viewport, all input
// drained frame-synchronously in Update and one composite per Draw.
type editor struct {
	doc  *field.Field
	eng  *brush.Engine
	cam  *camera.Controller
	hist *history.Stack

	settings     config.Settings
	settingsPath string
	outPath      string

	presets     map[string]preset.Preset
	presetNames []string

	base    *image.NRGBA
	meshTex *image.NRGBA
	edges   []uvmesh.Edge

	fb         *raster.FrameBuffer
	frame      *ebiten.Image
	winW, winH int

	showBase    bool
	showOverlay bool
	showWire    bool
	showThumb   bool
	directX     bool

	speed      float32
	distortion float32

	start time.Time

	// Gesture state across frames.
	strokeBefore []float32
	panning      bool
	thumbDrag    bool
	lastX, lastY float32

	// Alt-drag brush adjustment: params at grab time, grab position.
	adjusting      bool
	adjustStart    mathutil.Vec2
	adjustRadius   float32
	adjustStrength float32

	clipboardOnce sync.Once
	clipboardOK   bool
}

func newEditor(cfg editorConfig) *editor {
	e := &editor{
		doc:          cfg.Doc,
		settings:     cfg.Settings,
		settingsPath: cfg.SettingsPath,
		outPath:      cfg.OutPath,
		presets:      cfg.Presets,
		presetNames:  preset.Names(cfg.Presets),
		base:         cfg.Base,
		meshTex:      cfg.MeshTex,
		edges:        cfg.Edges,
		winW:         initialWinW,
		winH:         initialWinH,
		showBase:     cfg.Base != nil,
		showOverlay:  cfg.MeshTex != nil,
		showWire:     len(cfg.Edges) > 0,
		showThumb:    true,
		speed:        0.5,
		distortion:   0.3,
		start:        time.Now(),
	}

	e.eng = brush.NewEngine(e.doc)
	params := brush.DefaultParams()
	params.Seamless = e.settings.SeamlessMode
	e.eng.SetParams(params)

	e.cam = camera.New(e.doc.Width(), e.doc.Height(), e.winW, e.winH)
	e.cam.ThumbRepeat = e.settings.PreviewRepeat

	e.hist = history.NewStack(history.DefaultLimit)

	e.fb = raster.NewFrameBuffer(e.winW, e.winH)
	e.frame = ebiten.NewImage(e.winW, e.winH)
	return e
}

func (e *editor) now() float64 {
	return time.Since(e.start).Seconds()
}

func (e *editor) Update() error {
	if ebiten.IsWindowBeingClosed() {
		e.endStroke()
		if err := e.settings.Save(e.settingsPath); err != nil {
			log.Printf("settings: %v", err)
		}
		return ebiten.Termination
	}

	now := e.now()
	e.cam.Animate(now)
	e.handleKeys(now)
	e.handleMouse(now)
	return nil
}

func (e *editor) handleKeys(now float64) {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)

	if ctrl {
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyC):
			e.copyToClipboard()
		case inpututil.IsKeyJustPressed(ebiten.KeyV):
			e.pasteFromClipboard()
		case inpututil.IsKeyJustPressed(ebiten.KeyN):
			e.newDocument()
		case inpututil.IsKeyJustPressed(ebiten.KeyS):
			e.save()
		}
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		e.settings.PreviewRepeat = !e.settings.PreviewRepeat
		e.cam.ThumbRepeat = e.settings.PreviewRepeat
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		e.settings.SeamlessMode = !e.settings.SeamlessMode
		p := e.eng.Params()
		p.Seamless = e.settings.SeamlessMode
		e.eng.SetParams(p)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		p := e.eng.Params()
		p.HighPrecision = !p.HighPrecision
		e.eng.SetParams(p)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		e.directX = !e.directX
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) && e.base != nil {
		e.showBase = !e.showBase
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) && e.meshTex != nil {
		e.showOverlay = !e.showOverlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyW) && len(e.edges) > 0 {
		e.showWire = !e.showWire
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		e.showThumb = !e.showThumb
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		e.cam.Reset(now)
	}

	// History swaps the whole buffer; never mid-stroke.
	if !e.eng.Active() {
		if inpututil.IsKeyJustPressed(ebiten.KeyZ) {
			if err := e.hist.Undo(e.doc); err != nil {
				log.Printf("undo: %v", err)
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyY) {
			if err := e.hist.Redo(e.doc); err != nil {
				log.Printf("redo: %v", err)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		e.save()
	}

	for i, key := range digitKeys {
		if inpututil.IsKeyJustPressed(key) {
			e.applyPreset(i)
		}
	}
}

func (e *editor) handleMouse(now float64) {
	cx, cy := ebiten.CursorPosition()
	fx, fy := float32(cx), float32(cy)
	dx, dy := fx-e.lastX, fy-e.lastY
	e.lastX, e.lastY = fx, fy

	if _, wy := ebiten.Wheel(); wy != 0 {
		e.cam.ZoomSteps(float32(wy), now)
	}

	// Alt-drag adjusts the brush instead of moving anything.
	if ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		e.adjustBrush(fx, fy)
		return
	}
	e.adjusting = false

	space := ebiten.IsKeyPressed(ebiten.KeySpace)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	overThumb := e.showThumb && e.cam.InThumb(fx, fy)

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle),
		space && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		e.endStroke()
		e.panning = true
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && overThumb:
		e.thumbDrag = true
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		mode := brush.ModeDraw
		if shift {
			mode = brush.ModeSmooth
		}
		e.beginStroke(mode, fx, fy)
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && !overThumb:
		e.beginStroke(brush.ModeErase, fx, fy)
	}

	switch {
	case e.panning:
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) || (space && left) {
			e.cam.Pan(dx, dy)
		} else {
			e.panning = false
		}
	case e.thumbDrag:
		if left {
			e.cam.DragThumb(dx, dy)
		} else {
			e.thumbDrag = false
		}
	case e.eng.Active():
		if left || right {
			e.eng.Move(e.cam.ScreenToCanvas(fx, fy), 1)
		} else {
			e.endStroke()
		}
	}
}

// adjustBrush tracks the Alt-drag gesture: horizontal travel from the grab
// point resizes the kernel, vertical travel rescales the strength. The
// dominant axis wins; the other parameter holds its grab-time value.
func (e *editor) adjustBrush(fx, fy float32) {
	if !e.adjusting {
		e.endStroke()
		e.adjusting = true
		e.adjustStart = mathutil.Vec2{fx, fy}
		p := e.eng.Params()
		e.adjustRadius = p.Radius
		e.adjustStrength = p.Strength
	}
	dx := fx - e.adjustStart[0]
	dy := fy - e.adjustStart[1]

	p := e.eng.Params()
	if math32.Abs(dx) > math32.Abs(dy) {
		p.Radius = e.adjustRadius + dx*radiusDragScale
		p.Strength = e.adjustStrength
	} else {
		p.Radius = e.adjustRadius
		// Up strengthens, matching the screen's y-down axis.
		p.Strength = e.adjustStrength - dy*strengthDragScale
	}
	e.eng.SetParams(p)
}

func (e *editor) beginStroke(mode brush.Mode, fx, fy float32) {
	e.strokeBefore = e.doc.Snapshot()
	e.eng.Begin(mode, e.cam.ScreenToCanvas(fx, fy))
}

func (e *editor) endStroke() {
	if e.eng.End() && e.strokeBefore != nil {
		e.hist.Push(history.NewStroke(
			e.strokeBefore, e.doc.Snapshot(), e.doc.Width(), e.doc.Height()))
	}
	e.strokeBefore = nil
}

func (e *editor) applyPreset(i int) {
	if i >= len(e.presetNames) {
		return
	}
	name := e.presetNames[i]
	p := e.presets[name].Clamped()

	params := e.eng.Params()
	params.Radius = p.Radius
	params.Strength = p.Strength
	params.Sensitivity = p.Sensitivity
	e.eng.SetParams(params)

	e.speed = p.FlowSpeed
	e.distortion = p.FlowDistortion
	log.Printf("preset %q", name)
}

func (e *editor) save() {
	err := flowio.Export(e.doc, e.outPath, flowio.ExportOptions{DirectX: e.directX})
	if err != nil {
		log.Printf("save: %v", err)
		return
	}
	log.Printf("saved %s", e.outPath)
}

func (e *editor) copyToClipboard() {
	e.clipboardOnce.Do(func() {
		e.clipboardOK = clipboard.Init() == nil
	})
	if !e.clipboardOK {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, flowio.ToImage(e.doc)); err != nil {
		log.Printf("clipboard: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
}

// pasteFromClipboard replaces the document with the clipboard image, which
// must match the document dimensions. One undo step.
func (e *editor) pasteFromClipboard() {
	e.clipboardOnce.Do(func() {
		e.clipboardOK = clipboard.Init() == nil
	})
	if !e.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("paste: %v", err)
		return
	}
	e.endStroke()
	buf, w, h := flowio.FromImage(img)
	before := e.doc.Snapshot()
	if err := e.doc.Replace(buf, w, h); err != nil {
		log.Printf("paste: %v", err)
		return
	}
	e.hist.Push(history.NewStroke(before, e.doc.Snapshot(), w, h))
}

// newDocument swaps in a fresh neutral canvas at the settings size. Held
// history snapshots no longer match, so both stacks are dropped.
func (e *editor) newDocument() {
	e.endStroke()
	edge := e.settings.DocumentSize(0)
	e.doc = field.New(edge, edge)
	e.eng.SetDocument(e.doc)
	e.cam.SetDocumentSize(edge, edge)
	e.hist.Clear()
	log.Printf("new %dx%d document", edge, edge)
}

func (e *editor) Draw(screen *ebiten.Image) {
	sc := compositor.Scene{
		Flow:       e.doc,
		Base:       e.base,
		Mode:       compositor.ModeFor(e.showBase && e.base != nil, e.settings.PreviewRepeat),
		View:       e.cam.View(),
		Time:       float32(e.now()),
		Speed:      e.speed,
		Distortion: e.distortion,
		DirectX:    e.directX,
	}
	compositor.Render(e.fb, sc)

	if e.showOverlay && e.meshTex != nil {
		overlay.RenderLayer(e.fb, overlay.Layer{
			Tex:     e.meshTex,
			Opacity: meshTexOpacity,
			Repeat:  e.settings.PreviewRepeat,
			View:    e.cam.View(),
			Fit:     e.cam.Fit(),
		})
	}
	if e.showWire && len(e.edges) > 0 {
		overlay.RenderWireframe(e.fb, overlay.Wireframe{
			Edges: e.edges,
			View:  e.cam.View(),
			Fit:   e.cam.Fit(),
		})
	}
	if e.showThumb {
		compositor.RenderThumbnail(e.fb, compositor.ThumbScene{
			Flow:   e.doc,
			Rect:   e.cam.ThumbRect(),
			Offset: e.cam.ThumbOffset,
			Repeat: e.cam.ThumbRepeat,
		})
	}
	e.drawBrushCursor()

	e.frame.WritePixels(e.fb.Color)
	screen.DrawImage(e.frame, nil)
}

// drawBrushCursor rings the kernel footprint at the pointer. While adjusting
// it stays pinned at the grab point so the size change reads against a fixed
// center.
func (e *editor) drawBrushCursor() {
	cx, cy := ebiten.CursorPosition()
	fx, fy := float32(cx), float32(cy)
	if e.adjusting {
		fx, fy = e.adjustStart[0], e.adjustStart[1]
	}
	if fx < 0 || fy < 0 || fx >= float32(e.winW) || fy >= float32(e.winH) {
		return
	}

	// The radius lives in texels; route it through the canvas and the zoom
	// to get pixels per axis.
	scale := e.cam.View().Scale
	r := e.eng.Params().Radius
	rx := r / float32(e.doc.Width()) * scale * float32(e.winW)
	ry := r / float32(e.doc.Height()) * scale * float32(e.winH)

	col := cursorIdle
	switch {
	case e.adjusting:
		col = cursorAdjust
	case e.eng.Active():
		col = cursorActive
	}

	px, py := fx+rx, fy
	for i := 1; i <= cursorSegments; i++ {
		a := float32(i) / cursorSegments * 2 * math32.Pi
		nx := fx + rx*math32.Cos(a)
		ny := fy + ry*math32.Sin(a)
		e.fb.DrawLine(px, py, nx, ny, col[0], col[1], col[2], col[3])
		px, py = nx, ny
	}
	e.fb.Set(int(fx+0.5), int(fy+0.5), 255, 255, 255, 255)
}

func (e *editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := outsideWidth, outsideHeight
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w != e.winW || h != e.winH {
		e.winW, e.winH = w, h
		e.cam.SetViewport(w, h)
		e.fb = raster.NewFrameBuffer(w, h)
		e.frame = ebiten.NewImage(w, h)
	}
	return e.winW, e.winH
}
