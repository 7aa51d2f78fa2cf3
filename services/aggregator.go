package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/Ahmad-FikriA/ai-food-detection/models"
)

// ProcessDetections looks up every detection in the table, in input order.
// Items without nutrition data are kept with a nil Nutrition and add
// nothing to the totals.
func ProcessDetections(detections []models.Detection, table *NutritionTable, portionGrams float64) ([]models.DetectionItem, models.AggregateTotals) {
	items := make([]models.DetectionItem, 0, len(detections))
	var totals models.AggregateTotals

	for _, d := range detections {
		item := models.DetectionItem{
			Food:       d.ClassName,
			Confidence: d.Confidence,
		}
		if d.Box != nil {
			box := *d.Box
			item.Box = &box
		}
		if table != nil {
			if rec, ok := table.Lookup(d.ClassName, portionGrams); ok {
				item.Nutrition = &rec
				totals.Add(rec)
			}
		}
		items = append(items, item)
	}
	return items, totals
}

// ParsePortion reads a portion in grams from user input. An empty string
// means DefaultPortionGrams.
func ParsePortion(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPortionGrams, nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, ErrInvalidPortion
	}
	return p, nil
}
