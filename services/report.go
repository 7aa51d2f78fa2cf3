package services

import (
	"fmt"
	"io"

	"github.com/Ahmad-FikriA/ai-food-detection/models"
)

// WriteReport prints per-item and overall nutrition for a scan in the
// console layout used by the interactive scanner.
func WriteReport(w io.Writer, res *ScanResult) {
	if len(res.Items) == 0 {
		msg := res.Notice
		if msg == "" {
			msg = NoticeNoFood
		}
		fmt.Fprintf(w, "%s\n", msg)
		return
	}

	fmt.Fprintln(w, "--- Nutrition for each detected food ---")
	for _, it := range res.Items {
		fmt.Fprintf(w, "\n--- Detected: %s (confidence: %.2f) ---\n", it.Food, it.Confidence)
		if it.Nutrition == nil {
			fmt.Fprintf(w, "  Nutrition for %q (looked up as %q) not found.\n", it.Food, NormalizeName(it.Food))
			continue
		}
		fmt.Fprintf(w, "  Nutrition per %g gram:\n", res.PortionGrams)
		writeNutrients(w, *it.Nutrition)
	}

	t := res.Totals
	fmt.Fprintln(w, "\n--- Total nutrition ---")
	writeNutrients(w, models.NutritionRecord{
		Calories:     t.Calories,
		Protein:      t.Protein,
		Fat:          t.Fat,
		Carbohydrate: t.Carbohydrate,
	})
}

func writeNutrients(w io.Writer, r models.NutritionRecord) {
	fmt.Fprintf(w, "  Calories: %.2f kcal\n", r.Calories)
	fmt.Fprintf(w, "  Protein: %.2f g\n", r.Protein)
	fmt.Fprintf(w, "  Fat: %.2f g\n", r.Fat)
	fmt.Fprintf(w, "  Carbohydrate: %.2f g\n", r.Carbohydrate)
}
