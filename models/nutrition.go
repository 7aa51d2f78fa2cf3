package models

import "math"

// Nutrient amounts for one food. Table entries hold values per 100 g;
// lookup results hold values scaled to a portion.
type NutritionRecord struct {
	Calories     float64 `json:"kalori"`
	Protein      float64 `json:"protein"`
	Fat          float64 `json:"lemak"`
	Carbohydrate float64 `json:"karbohidrat"`
}

// Scale returns the record scaled to portionGrams, rounded to 2 decimals.
func (r NutritionRecord) Scale(portionGrams float64) NutritionRecord {
	return NutritionRecord{
		Calories:     Round2(r.Calories * portionGrams / 100),
		Protein:      Round2(r.Protein * portionGrams / 100),
		Fat:          Round2(r.Fat * portionGrams / 100),
		Carbohydrate: Round2(r.Carbohydrate * portionGrams / 100),
	}
}

// AggregateTotals sums the nutrition of every matched item in one image.
type AggregateTotals struct {
	Calories     float64 `json:"kalori"`
	Protein      float64 `json:"protein"`
	Fat          float64 `json:"lemak"`
	Carbohydrate float64 `json:"karbohidrat"`
}

func (t *AggregateTotals) Add(r NutritionRecord) {
	t.Calories = Round2(t.Calories + r.Calories)
	t.Protein = Round2(t.Protein + r.Protein)
	t.Fat = Round2(t.Fat + r.Fat)
	t.Carbohydrate = Round2(t.Carbohydrate + r.Carbohydrate)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
