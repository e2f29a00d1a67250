// Package capture saves failure screenshots with the offending element
// outlined.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/nfnt/resize"

	"github.com/v0xg/shopcheck/internal/browser"
	"github.com/v0xg/shopcheck/internal/executor"
)

// Options configures the saved image.
type Options struct {
	MaxWidth  uint
	Border    int
	Highlight color.RGBA
}

// DefaultOptions outlines in red and keeps full-HD captures readable.
func DefaultOptions() Options {
	return Options{
		MaxWidth:  1280,
		Border:    4,
		Highlight: color.RGBA{220, 38, 38, 255},
	}
}

// locateTimeout bounds the lookup of the failing element; it usually failed
// because it was missing.
const locateTimeout = time.Second

// Failure screenshots the session and writes it to path, outlining target
// when it can still be found on the page.
func Failure(ctx context.Context, sess *browser.Session, target *executor.Locator, path string, opts Options) error {
	shot, err := sess.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	img, err := Annotate(shot, locate(sess.Page(), target), opts)
	if err != nil {
		return err
	}
	return Save(path, img)
}

func locate(page *rod.Page, loc *executor.Locator) *image.Rectangle {
	if page == nil || loc == nil || loc.Validate() != nil {
		return nil
	}
	css, xpath := loc.Query()
	p := page.Timeout(locateTimeout)
	var (
		el  *rod.Element
		err error
	)
	if xpath != "" {
		el, err = p.ElementX(xpath)
	} else {
		el, err = p.Element(css)
	}
	if err != nil {
		return nil
	}
	shape, err := el.Shape()
	if err != nil {
		return nil
	}
	box := shape.Box()
	if box == nil {
		return nil
	}
	r := image.Rect(int(box.X), int(box.Y), int(math.Ceil(box.X+box.Width)), int(math.Ceil(box.Y+box.Height)))
	return &r
}

// Annotate decodes a PNG screenshot, outlines box (if any) and scales the
// result down to opts.MaxWidth.
func Annotate(shot []byte, box *image.Rectangle, opts Options) (image.Image, error) {
	src, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot: %w", err)
	}
	bounds := src.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, src, bounds.Min, draw.Src)

	if box != nil {
		outline(out, *box, opts.Border, opts.Highlight)
	}

	if opts.MaxWidth == 0 || uint(bounds.Dx()) <= opts.MaxWidth {
		return out, nil
	}
	// Height 0 keeps the aspect ratio.
	return resize.Resize(opts.MaxWidth, 0, out, resize.Lanczos3), nil
}

// outline strokes r with a border of the given thickness, clipped to img.
func outline(img *image.RGBA, r image.Rectangle, thickness int, c color.RGBA) {
	if thickness <= 0 {
		thickness = 1
	}
	r = r.Canon()
	for t := 0; t < thickness; t++ {
		x0, y0 := r.Min.X-t, r.Min.Y-t
		x1, y1 := r.Max.X+t, r.Max.Y+t
		for x := x0; x <= x1; x++ {
			setPixelSafe(img, x, y0, c)
			setPixelSafe(img, x, y1, c)
		}
		for y := y0; y <= y1; y++ {
			setPixelSafe(img, x0, y, c)
			setPixelSafe(img, x1, y, c)
		}
	}
}

func setPixelSafe(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{x, y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// Save writes img as a PNG, creating parent directories.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
