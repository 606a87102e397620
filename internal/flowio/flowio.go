// Package flowio persists flow documents as ordinary images: R and G carry
// the encoded channels, B is zero, alpha is opaque. Texel row 0 is the canvas
// bottom while image row 0 is the top, so every conversion flips rows.
package flowio

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"

	"flowpaint/internal/field"
	"flowpaint/internal/texture"
)

// Export dimension bounds. Oversized requests are clamped, not rejected.
const (
	MinExportSize = 1
	MaxExportSize = 8192
)

const jpegQuality = 90

// ToImage renders the document into a fresh 8-bit image.
func ToImage(f *field.Field) *image.NRGBA {
	w := f.Width()
	h := f.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for ty := 0; ty < h; ty++ {
		di := (h - 1 - ty) * img.Stride
		for x := 0; x < w; x++ {
			fx, fy := f.At(x, ty)
			img.Pix[di] = uint8(fx*255 + 0.5)
			img.Pix[di+1] = uint8(fy*255 + 0.5)
			img.Pix[di+2] = 0
			img.Pix[di+3] = 255
			di += 4
		}
	}
	return img
}

// FromImage converts an image into an encoded channel buffer plus its
// dimensions. B and alpha are dropped.
func FromImage(img image.Image) ([]float32, int, int) {
	n := texture.ToNRGBA(img)
	w := n.Rect.Dx()
	h := n.Rect.Dy()
	buf := make([]float32, w*h*field.Channels)
	for ty := 0; ty < h; ty++ {
		si := (h - 1 - ty) * n.Stride
		bi := ty * w * field.Channels
		for x := 0; x < w; x++ {
			buf[bi] = float32(n.Pix[si]) / 255
			buf[bi+1] = float32(n.Pix[si+1]) / 255
			si += 4
			bi += field.Channels
		}
	}
	return buf, w, h
}

// Read decodes a flowmap image file into a new document.
func Read(path string) (*field.Field, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	buf, w, h := FromImage(img)
	doc := field.New(w, h)
	if err := doc.Replace(buf, w, h); err != nil {
		return nil, fmt.Errorf("flowio: adopt %s: %w", path, err)
	}
	return doc, nil
}

// Import replaces doc's contents with the file's. The file must match the
// document dimensions; on mismatch the document is untouched and the error
// unwraps to field.ErrDimensionMismatch.
func Import(doc *field.Field, path string) error {
	img, err := decodeFile(path)
	if err != nil {
		return err
	}
	buf, w, h := FromImage(img)
	if err := doc.Replace(buf, w, h); err != nil {
		return fmt.Errorf("flowio: import %s: %w", path, err)
	}
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flowio: open %s: %w", path, err)
	}
	defer f.Close()

	// TGA has no magic bytes, so dispatch on the extension instead of
	// relying on format sniffing.
	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = tga.Decode(f)
	} else {
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("flowio: decode %s: %w", path, err)
	}
	return img, nil
}

// ExportOptions shape the written file. The zero value writes the document
// as-is in the OpenGL convention.
type ExportOptions struct {
	Width    int  // target width; <= 0 keeps the document width
	Height   int  // target height; <= 0 keeps the document height
	Bilinear bool // resize filter: bilinear when set, nearest otherwise
	DirectX  bool // flip G on the way out for the DirectX convention
}

// Export writes the document to path. The extension picks the format: .tga,
// .png, .bmp, or .jpg/.jpeg; anything else gets ".tga" appended. The document
// itself is never modified.
func Export(f *field.Field, path string, opts ExportOptions) error {
	img := ToImage(f)
	if opts.DirectX {
		for i := 1; i < len(img.Pix); i += 4 {
			img.Pix[i] = 255 - img.Pix[i]
		}
	}

	w := opts.Width
	if w <= 0 {
		w = f.Width()
	}
	h := opts.Height
	if h <= 0 {
		h = f.Height()
	}
	w = clampInt(w, MinExportSize, MaxExportSize)
	h = clampInt(h, MinExportSize, MaxExportSize)

	var out image.Image = img
	if w != f.Width() || h != f.Height() {
		filter := transform.NearestNeighbor
		if opts.Bilinear {
			filter = transform.Linear
		}
		out = transform.Resize(img, w, h, filter)
	}

	path, encode := encoderFor(path)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("flowio: create %s: %w", path, err)
	}
	defer file.Close()
	if err := encode(file, out); err != nil {
		return fmt.Errorf("flowio: encode %s: %w", path, err)
	}
	return nil
}

func encoderFor(path string) (string, func(io.Writer, image.Image) error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return path, png.Encode
	case ".bmp":
		return path, bmp.Encode
	case ".jpg", ".jpeg":
		return path, func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: jpegQuality})
		}
	case ".tga":
		return path, tga.Encode
	default:
		return path + ".tga", tga.Encode
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
