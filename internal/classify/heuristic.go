package classify

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	_ "golang.org/x/image/webp"

	"photosweep/pkg/models"
)

// Label vocabulary emitted by the heuristic classifier.
const (
	LabelScreenshot = "screenshot"
	LabelPanorama   = "panorama"
	LabelMonochrome = "monochrome"
	LabelLowLight   = "low-light"
	LabelPhoto      = "photo"
)

const (
	panoramaAspect  = 2.4
	monochromeChrom = 0.02 // mean normalized chroma below which an image reads as grayscale
	lowLightLuma    = 0.18
	sampleGrid      = 32 // pixels sampled per axis
)

// Heuristic labels an image from cheap decoded-pixel statistics. It stands
// in for a real inference engine behind the same Classifier interface.
type Heuristic struct {
	Log *slog.Logger
}

func (h *Heuristic) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

func (h *Heuristic) Classify(ctx context.Context, asset models.Asset) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	f, err := os.Open(asset.Path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return Result{}, fmt.Errorf("%w: decode %s: %v", ErrClassificationFailed, asset.Path, err)
	}

	res := labelImage(img, format)
	h.logger().Debug("classify: heuristic verdict",
		"asset", asset.ID, "label", res.Label, "confidence", res.Confidence)
	return res, nil
}

func labelImage(img image.Image, format string) Result {
	b := img.Bounds()
	w, ht := b.Dx(), b.Dy()
	if w == 0 || ht == 0 {
		return Result{Label: LabelPhoto, Confidence: 0.1}
	}

	aspect := float64(w) / float64(ht)
	if aspect < 1 {
		aspect = 1 / aspect
	}
	if aspect >= panoramaAspect {
		conf := 0.6 + 0.1*(aspect-panoramaAspect)
		return Result{Label: LabelPanorama, Confidence: clamp01(conf)}
	}

	luma, chroma := sampleStats(img)
	switch {
	case chroma <= monochromeChrom:
		if format == "png" {
			// Grayscale PNGs are overwhelmingly captured screens and scans.
			return Result{Label: LabelScreenshot, Confidence: 0.65}
		}
		return Result{Label: LabelMonochrome, Confidence: 0.8}
	case luma <= lowLightLuma:
		return Result{Label: LabelLowLight, Confidence: clamp01(1 - luma/lowLightLuma)}
	case format == "png":
		return Result{Label: LabelScreenshot, Confidence: 0.55}
	default:
		return Result{Label: LabelPhoto, Confidence: 0.7}
	}
}

// sampleStats returns mean luminance and mean chroma over a coarse grid,
// both normalized to [0,1]. Sampling keeps classification O(1) in image size.
func sampleStats(img image.Image) (luma, chroma float64) {
	b := img.Bounds()
	stepX := b.Dx() / sampleGrid
	if stepX < 1 {
		stepX = 1
	}
	stepY := b.Dy() / sampleGrid
	if stepY < 1 {
		stepY = 1
	}

	var n float64
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			r, g, bl, _ := img.At(x, y).RGBA()
			rf := float64(r) / 0xffff
			gf := float64(g) / 0xffff
			bf := float64(bl) / 0xffff
			luma += 0.299*rf + 0.587*gf + 0.114*bf
			chroma += max(rf, gf, bf) - min(rf, gf, bf)
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return luma / n, chroma / n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
