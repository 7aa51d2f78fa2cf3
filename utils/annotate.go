package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/Ahmad-FikriA/ai-food-detection/models"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	BoxColor   = color.RGBA{R: 0, G: 255, B: 255, A: 255} // cyan
	LabelColor = color.RGBA{A: 255}
)

const (
	boxThickness = 3
	labelPadding = 5
)

// Annotate draws a box and a "<name> <confidence>" label for every detection
// on a copy of src. src itself is never modified.
func Annotate(src image.Image, detections []models.Detection) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)

	face := basicfont.Face7x13
	for _, d := range detections {
		if d.Box == nil {
			continue
		}
		r := d.Box.Rect().Canon()
		drawRect(dst, r, BoxColor, boxThickness)

		label := fmt.Sprintf("%s %.2f", d.ClassName, d.Confidence)
		textW := font.MeasureString(face, label).Ceil()
		textH := face.Metrics().Height.Ceil()

		// label sits above the box, or just inside it when there is no room
		bgTop := r.Min.Y - textH - 2*labelPadding
		if bgTop < b.Min.Y {
			bgTop = r.Min.Y
		}
		bg := image.Rect(r.Min.X, bgTop, r.Min.X+textW+2*labelPadding, bgTop+textH+2*labelPadding)
		draw.Draw(dst, bg.Intersect(b), image.NewUniform(BoxColor), image.Point{}, draw.Src)

		dr := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(LabelColor),
			Face: face,
			Dot:  fixed.P(bg.Min.X+labelPadding, bg.Max.Y-labelPadding-face.Metrics().Descent.Ceil()),
		}
		dr.DrawString(label)
	}
	return dst
}

func drawRect(dst draw.Image, r image.Rectangle, c color.Color, thickness int) {
	u := image.NewUniform(c)
	bounds := dst.Bounds()
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(bounds), u, image.Point{}, draw.Src)
	}
}
