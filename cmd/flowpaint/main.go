package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"flowpaint/internal/config"
	"flowpaint/internal/field"
	"flowpaint/internal/flowio"
	"flowpaint/internal/preset"
	"flowpaint/internal/texture"
	"flowpaint/internal/uvmesh"
)

func main() {
	// CLI flags
	size := flag.Int("size", 0, "Document edge in texels (default: from settings)")
	basePath := flag.String("base", "", "Base color texture distorted by the preview")
	meshPath := flag.String("mesh", "", "OBJ or glTF model whose UV wireframe overlays the canvas")
	settingsPath := flag.String("settings", config.DefaultPath, "Settings JSON file")
	presetsPath := flag.String("presets", "flowpaint_presets.yaml", "User preset YAML file")
	output := flag.String("o", "", "Flowmap written on save (default: the opened file, else flowmap.tga)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [flowmap]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Opens the flowmap editor, on an existing flowmap when one is given.")
		fmt.Fprintln(os.Stderr, "Flags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	settings, err := config.Load(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, continuing with defaults\n", err)
	}

	// Document: either the opened file or a fresh neutral canvas.
	var doc *field.Field
	outPath := *output
	if flag.NArg() > 0 {
		doc, err = flowio.Read(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening flowmap: %v\n", err)
			os.Exit(1)
		}
		// Data painted under the other G/R convention is re-encoded on
		// the way in, per the persisted inversion preferences.
		if settings.InvertR {
			doc.InvertChannel(0)
		}
		if settings.InvertG {
			doc.InvertChannel(1)
		}
		if outPath == "" {
			outPath = flag.Arg(0)
		}
	} else {
		edge := settings.DocumentSize(*size)
		doc = field.New(edge, edge)
	}
	if outPath == "" {
		outPath = "flowmap.tga"
	}

	// One cache for both texture slots: a mesh usually names the same base
	// color map the -base flag points at.
	tex := texture.NewCache()

	var base *image.NRGBA
	if *basePath != "" {
		base, err = tex.Load(*basePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading base texture: %v\n", err)
			os.Exit(1)
		}
	}

	// Mesh import: UV wireframe plus the model's own base color texture
	// as a reference overlay.
	var edges []uvmesh.Edge
	var meshTex *image.NRGBA
	if *meshPath != "" {
		mesh, err := uvmesh.Load(*meshPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading mesh: %v\n", err)
			os.Exit(1)
		}
		edges = mesh.UVEdges()
		if p, ok := texture.Resolve(*meshPath, mesh.BaseColorURI); ok {
			if img, err := tex.Load(p); err == nil {
				meshTex = img
			} else {
				fmt.Fprintf(os.Stderr, "Warning: mesh texture %s: %v\n", p, err)
			}
		}
	}

	presets, err := preset.Load(*presetsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, continuing with builtins\n", err)
	}

	ed := newEditor(editorConfig{
		Doc:          doc,
		Base:         base,
		MeshTex:      meshTex,
		Edges:        edges,
		Settings:     settings,
		SettingsPath: *settingsPath,
		OutPath:      outPath,
		Presets:      presets,
	})

	ebiten.SetWindowSize(initialWinW, initialWinH)
	ebiten.SetWindowTitle("flowpaint")
	ebiten.SetWindowResizable(true)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(ed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
