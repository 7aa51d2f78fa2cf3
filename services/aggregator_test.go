package services

import (
	"math"
	"testing"

	"github.com/Ahmad-FikriA/ai-food-detection/models"
)

func TestProcessDetectionsEmpty(t *testing.T) {
	table := loadSample(t, nil)

	items, totals := ProcessDetections(nil, table, 100)
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
	if totals != (models.AggregateTotals{}) {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestProcessDetectionsTotalsAndMisses(t *testing.T) {
	table := loadSample(t, nil)
	box := &models.BoundingBox{X1: 1, Y1: 2, X2: 30, Y2: 40}
	dets := []models.Detection{
		{ClassName: "Nasi Goreng", Confidence: 0.91, Box: box},
		{ClassName: "Rendang Sapi", Confidence: 0.77},
		{ClassName: "bakso", Confidence: 0.55},
	}

	items, totals := ProcessDetections(dets, table, 150)

	if len(items) != len(dets) {
		t.Fatalf("got %d items, want %d", len(items), len(dets))
	}
	for i, it := range items {
		if it.Food != dets[i].ClassName || it.Confidence != dets[i].Confidence {
			t.Fatalf("item %d = %+v, order or fields changed", i, it)
		}
	}
	if items[1].Nutrition != nil {
		t.Fatalf("expected unknown food to have no nutrition, got %+v", items[1].Nutrition)
	}
	if items[0].Box == nil || *items[0].Box != *box {
		t.Fatalf("box not carried through: %+v", items[0].Box)
	}
	if items[0].Box == box {
		t.Fatalf("item box aliases the input box")
	}

	var sum models.AggregateTotals
	for _, it := range items {
		if it.Nutrition != nil {
			sum.Calories += it.Nutrition.Calories
			sum.Protein += it.Nutrition.Protein
			sum.Fat += it.Nutrition.Fat
			sum.Carbohydrate += it.Nutrition.Carbohydrate
		}
	}
	for name, pair := range map[string][2]float64{
		"kalori":      {totals.Calories, sum.Calories},
		"protein":     {totals.Protein, sum.Protein},
		"lemak":       {totals.Fat, sum.Fat},
		"karbohidrat": {totals.Carbohydrate, sum.Carbohydrate},
	} {
		if math.Abs(pair[0]-pair[1]) > 1e-9 {
			t.Errorf("%s total = %v, want %v", name, pair[0], pair[1])
		}
	}
	// 375 (nasi goreng) + 285 (bakso)
	if totals.Calories != 660 {
		t.Fatalf("kalori total = %v, want 660", totals.Calories)
	}
}

func TestProcessDetectionsAllUnknown(t *testing.T) {
	table := loadSample(t, nil)
	items, totals := ProcessDetections([]models.Detection{{ClassName: "Kiwi", Confidence: 0.9}}, table, 100)

	if len(items) != 1 || items[0].Nutrition != nil {
		t.Fatalf("expected one item without nutrition, got %+v", items)
	}
	if totals != (models.AggregateTotals{}) {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestFlattenResults(t *testing.T) {
	results := []models.DetectionResult{
		{
			Names: map[int]string{0: "Apple", 1: "Sate"},
			Boxes: []models.DetectedBox{
				{ClassID: 1, Confidence: 0.8, Box: models.BoundingBox{X1: 1, Y1: 1, X2: 5, Y2: 5}},
				{ClassID: 7, Confidence: 0.6},
			},
		},
		{
			Names: map[int]string{0: "Apple"},
			Boxes: []models.DetectedBox{{ClassID: 0, Confidence: 0.7}},
		},
	}

	dets := models.FlattenResults(results)
	want := []string{"Sate", "class_7", "Apple"}
	if len(dets) != len(want) {
		t.Fatalf("got %d detections, want %d", len(dets), len(want))
	}
	for i, name := range want {
		if dets[i].ClassName != name {
			t.Errorf("detection %d = %q, want %q", i, dets[i].ClassName, name)
		}
		if dets[i].Box == nil {
			t.Errorf("detection %d has no box", i)
		}
	}
}
