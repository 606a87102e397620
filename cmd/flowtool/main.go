package main

import (
	"fmt"
	"image/png"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"flowpaint/internal/bake"
	"flowpaint/internal/compositor"
	"flowpaint/internal/field"
	"flowpaint/internal/flowio"
	"flowpaint/internal/overlay"
	"flowpaint/internal/raster"
	"flowpaint/internal/texture"
	"flowpaint/internal/transform"
	"flowpaint/internal/uvmesh"
)

var (
	size     int
	outPath  string
	width    int
	height   int
	bilinear bool
	invertR  bool
	invertG  bool
	directX  bool

	dirX float64
	dirY float64

	basePath   string
	frames     int
	bakeSize   int
	super      int
	workers    int
	speed      float64
	distortion float64
	repeat     bool

	flowmapPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowtool",
		Short: "flowmap batch toolbox",
	}

	newCmd := &cobra.Command{
		Use:   "new [output]",
		Short: "create a neutral flowmap",
		Args:  cobra.ExactArgs(1),
		RunE:  runNew,
	}
	newCmd.Flags().IntVar(&size, "size", 1024, "document edge in texels")

	infoCmd := &cobra.Command{
		Use:   "info [flowmap]",
		Short: "print flowmap dimensions and deflection stats",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	convertCmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "convert format, resize, or invert channels",
		Args:  cobra.ExactArgs(2),
		RunE:  runConvert,
	}
	convertCmd.Flags().IntVar(&width, "width", 0, "output width (default: input width)")
	convertCmd.Flags().IntVar(&height, "height", 0, "output height (default: input height)")
	convertCmd.Flags().BoolVar(&bilinear, "bilinear", false, "bilinear resize instead of nearest")
	convertCmd.Flags().BoolVar(&invertR, "invert-r", false, "invert the R channel")
	convertCmd.Flags().BoolVar(&invertG, "invert-g", false, "invert the G channel")

	importCmd := &cobra.Command{
		Use:   "import [flowmap] [image]",
		Short: "replace a flowmap's contents from a same-size image",
		Args:  cobra.ExactArgs(2),
		RunE:  runImport,
	}

	fillCmd := &cobra.Command{
		Use:   "fill [flowmap]",
		Short: "set every texel to one direction",
		Args:  cobra.ExactArgs(1),
		RunE:  runFill,
	}
	fillCmd.Flags().Float64Var(&dirX, "dx", 0, "direction x in [-1,1]")
	fillCmd.Flags().Float64Var(&dirY, "dy", 0, "direction y in [-1,1]")
	fillCmd.Flags().StringVar(&outPath, "out", "", "write here instead of in place")

	bakeCmd := &cobra.Command{
		Use:   "bake [flowmap] [output.webp]",
		Short: "bake the animated preview to a looping WebP",
		Args:  cobra.ExactArgs(2),
		RunE:  runBake,
	}
	bakeCmd.Flags().StringVar(&basePath, "base", "", "base color texture (required)")
	bakeCmd.Flags().IntVar(&frames, "frames", bake.DefaultFrames, "frames per cycle")
	bakeCmd.Flags().IntVar(&bakeSize, "size", bake.DefaultSize, "output edge in pixels")
	bakeCmd.Flags().IntVar(&super, "supersample", 1, "render scale before downsampling")
	bakeCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (default: NumCPU)")
	bakeCmd.Flags().Float64Var(&speed, "speed", 0.5, "cycles per second")
	bakeCmd.Flags().Float64Var(&distortion, "distortion", 0.3, "displacement at full deflection")
	bakeCmd.Flags().BoolVar(&repeat, "repeat", false, "tile the field and the texture")
	bakeCmd.Flags().BoolVar(&directX, "directx", false, "flip the G channel when displacing")

	wireCmd := &cobra.Command{
		Use:   "wire [mesh] [output.png]",
		Short: "render a mesh's UV wireframe, optionally over a flowmap",
		Args:  cobra.ExactArgs(2),
		RunE:  runWire,
	}
	wireCmd.Flags().StringVar(&flowmapPath, "flowmap", "", "draw over this flowmap instead of a blank canvas")
	wireCmd.Flags().IntVar(&size, "size", 1024, "canvas edge when no flowmap is given")

	rootCmd.AddCommand(newCmd, infoCmd, convertCmd, importCmd, fillCmd, bakeCmd, wireCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runNew(cmd *cobra.Command, args []string) error {
	doc := field.New(size, size)
	return flowio.Export(doc, args[0], flowio.ExportOptions{})
}

func runInfo(cmd *cobra.Command, args []string) error {
	doc, err := flowio.Read(args[0])
	if err != nil {
		return err
	}

	buf := doc.Snapshot()
	texels := doc.Width() * doc.Height()
	var sumMag, maxMag float64
	neutral := 0
	for i := 0; i < len(buf); i += field.Channels {
		if buf[i] == field.Neutral && buf[i+1] == field.Neutral {
			neutral++
		}
		mag := math.Hypot(
			float64(field.Decode(buf[i])),
			float64(field.Decode(buf[i+1])))
		sumMag += mag
		if mag > maxMag {
			maxMag = mag
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "size\t%dx%d\n", doc.Width(), doc.Height())
	fmt.Fprintf(w, "texels\t%d\n", texels)
	fmt.Fprintf(w, "mean |dir|\t%.4f\n", sumMag/float64(texels))
	fmt.Fprintf(w, "max |dir|\t%.4f\n", maxMag)
	fmt.Fprintf(w, "neutral\t%.1f%%\n", 100*float64(neutral)/float64(texels))
	return w.Flush()
}

func runConvert(cmd *cobra.Command, args []string) error {
	doc, err := flowio.Read(args[0])
	if err != nil {
		return err
	}
	if invertR {
		doc.InvertChannel(0)
	}
	if invertG {
		doc.InvertChannel(1)
	}
	return flowio.Export(doc, args[1], flowio.ExportOptions{
		Width:    width,
		Height:   height,
		Bilinear: bilinear,
	})
}

// runImport rewrites an existing flowmap from an image, keeping the file's
// size and format. Mismatched dimensions fail before anything is written.
func runImport(cmd *cobra.Command, args []string) error {
	doc, err := flowio.Read(args[0])
	if err != nil {
		return err
	}
	if err := flowio.Import(doc, args[1]); err != nil {
		return err
	}
	return flowio.Export(doc, args[0], flowio.ExportOptions{})
}

func runFill(cmd *cobra.Command, args []string) error {
	doc, err := flowio.Read(args[0])
	if err != nil {
		return err
	}
	doc.Fill(field.Encode(float32(dirX)), field.Encode(float32(dirY)))

	dst := outPath
	if dst == "" {
		dst = args[0]
	}
	return flowio.Export(doc, dst, flowio.ExportOptions{})
}

func runBake(cmd *cobra.Command, args []string) error {
	if basePath == "" {
		return fmt.Errorf("bake: --base texture is required")
	}
	doc, err := flowio.Read(args[0])
	if err != nil {
		return err
	}
	base, err := texture.Load(basePath)
	if err != nil {
		return err
	}

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	return bake.Run(f, bake.Config{
		Flow:        doc,
		Base:        base,
		Repeat:      repeat,
		DirectX:     directX,
		Speed:       float32(speed),
		Distortion:  float32(distortion),
		Frames:      frames,
		Size:        bakeSize,
		Supersample: super,
		Workers:     workers,
	})
}

func runWire(cmd *cobra.Command, args []string) error {
	mesh, err := uvmesh.Load(args[0])
	if err != nil {
		return err
	}
	edges := mesh.UVEdges()
	if len(edges) == 0 {
		return fmt.Errorf("wire: %s has no UV edges", args[0])
	}

	var fb *raster.FrameBuffer
	if flowmapPath != "" {
		doc, err := flowio.Read(flowmapPath)
		if err != nil {
			return err
		}
		fb = raster.NewFrameBuffer(doc.Width(), doc.Height())
		compositor.Render(fb, compositor.Scene{
			Flow: doc,
			Mode: compositor.FlowOnly,
			View: transform.IdentityView,
		})
	} else {
		fb = raster.NewFrameBuffer(size, size)
		bg := compositor.Background
		fb.Clear(bg[0], bg[1], bg[2], bg[3])
	}

	overlay.RenderWireframe(fb, overlay.Wireframe{
		Edges: edges,
		View:  transform.IdentityView,
		Fit:   transform.IdentityFit,
	})

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, fb.Image()); err != nil {
		return fmt.Errorf("wire: encode %s: %w", args[1], err)
	}
	return nil
}
