package models

import (
	"fmt"
	"image"
)

// BoundingBox is a detector box in pixel coordinates, corners (x1,y1) and (x2,y2).
type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// DetectedBox is one raw box as returned by a detector.
type DetectedBox struct {
	ClassID    int         `json:"class_id"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}

// DetectionResult is one detector output: a class-id to name map and the
// boxes found with it.
type DetectionResult struct {
	Names map[int]string `json:"names"`
	Boxes []DetectedBox  `json:"boxes"`
}

// Detection is a detected object resolved to its class name.
type Detection struct {
	ClassName  string       `json:"class_name"`
	Confidence float64      `json:"confidence"`
	Box        *BoundingBox `json:"box,omitempty"`
}

// DetectionItem is a detection together with its scaled nutrition.
// Nutrition is nil when the food has no entry in the reference table.
type DetectionItem struct {
	Food       string           `json:"food"`
	Confidence float64          `json:"confidence"`
	Box        *BoundingBox     `json:"box,omitempty"`
	Nutrition  *NutritionRecord `json:"nutrition"`
}

// ConfidencePercent is the confidence as a percentage with 2 decimals.
func (d DetectionItem) ConfidencePercent() float64 {
	return Round2(d.Confidence * 100)
}

// FlattenResults resolves every box of every result to a Detection,
// keeping detector order. Class ids missing from the name map become
// "class_<id>".
func FlattenResults(results []DetectionResult) []Detection {
	var out []Detection
	for _, r := range results {
		for _, b := range r.Boxes {
			name, ok := r.Names[b.ClassID]
			if !ok {
				name = fmt.Sprintf("class_%d", b.ClassID)
			}
			box := b.Box
			out = append(out, Detection{
				ClassName:  name,
				Confidence: b.Confidence,
				Box:        &box,
			})
		}
	}
	return out
}
