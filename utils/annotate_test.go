package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/Ahmad-FikriA/ai-food-detection/models"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestAnnotateDrawsOnCopy(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	src := solid(200, 150, white)
	dets := []models.Detection{
		{ClassName: "Sate", Confidence: 0.876, Box: &models.BoundingBox{X1: 40, Y1: 60, X2: 160, Y2: 140}},
		{ClassName: "No Box", Confidence: 0.5},
	}

	out := Annotate(src, dets)

	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", out.Bounds(), src.Bounds())
	}
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			if src.RGBAAt(x, y) != white {
				t.Fatalf("source image modified at (%d,%d)", x, y)
			}
		}
	}

	// box edges
	for _, p := range []image.Point{{40, 100}, {159, 100}, {100, 139}, {42, 100}} {
		if got := out.RGBAAt(p.X, p.Y); got != BoxColor {
			t.Errorf("pixel %v = %v, want box colour", p, got)
		}
	}
	// inside the box is untouched
	if got := out.RGBAAt(100, 100); got != white {
		t.Errorf("box interior changed: %v", got)
	}
	// label background sits above the box
	if got := out.RGBAAt(41, 45); got == white {
		t.Errorf("expected label background above the box")
	}
}

func TestAnnotateLabelFallsInsideAtTopEdge(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	src := solid(120, 120, white)
	out := Annotate(src, []models.Detection{
		{ClassName: "Apple", Confidence: 0.9, Box: &models.BoundingBox{X1: 10, Y1: 0, X2: 110, Y2: 110}},
	})

	if got := out.RGBAAt(14, 20); got == white {
		t.Errorf("expected label drawn inside the box when there is no room above")
	}
}
