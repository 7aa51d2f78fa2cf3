package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Ahmad-FikriA/ai-food-detection/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const DefaultPortionGrams = 100

// NutritionTable maps normalized food names to per-100 g nutrition.
// It is read-only after construction and safe for concurrent use.
type NutritionTable struct {
	records map[string]models.NutritionRecord
}

type nutritionRow struct {
	name   string
	record models.NutritionRecord
}

// accepted header spellings per nutrient column
var columnAliases = map[string][]string{
	"calories":     {"calories", "kalori", "energy"},
	"protein":      {"proteins", "protein"},
	"fat":          {"fat", "lemak"},
	"carbohydrate": {"carbohydrate", "carbohydrates", "karbohidrat"},
}

// NormalizeName trims the name, collapses inner whitespace and title-cases
// every word: " nasi   goreng " -> "Nasi Goreng".
func NormalizeName(name string) string {
	joined := strings.Join(strings.Fields(name), " ")
	// cases.Caser is stateful, never share it between goroutines
	return cases.Title(language.Und).String(joined)
}

// LoadNutritionTable builds the table from a CSV file with a header row.
// When allow is non-empty only rows whose normalized name is allow-listed
// are kept.
func LoadNutritionTable(path string, allow []string) (*NutritionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Reason: "cannot open file", Err: err}
	}
	defer f.Close()

	rows, err := readNutritionCSV(path, f)
	if err != nil {
		return nil, err
	}
	return newNutritionTable(rows, allow), nil
}

// LoadNutritionTableFromDB builds the table from the nutrition_facts table.
func LoadNutritionTableFromDB(ctx context.Context, db *gorm.DB, allow []string) (*NutritionTable, error) {
	var facts []models.NutritionFact
	if err := db.WithContext(ctx).Find(&facts).Error; err != nil {
		return nil, &DataLoadError{Path: models.NutritionFact{}.TableName(), Reason: "query failed", Err: err}
	}

	rows := make([]nutritionRow, 0, len(facts))
	for _, f := range facts {
		rec := models.NutritionRecord{
			Calories:     f.Calories,
			Protein:      f.Proteins,
			Fat:          f.Fat,
			Carbohydrate: f.Carbohydrate,
		}
		if !validRecord(rec) {
			return nil, &DataLoadError{
				Path:   models.NutritionFact{}.TableName(),
				Reason: fmt.Sprintf("negative or non-finite nutrient value for %q (id %d)", f.Name, f.ID),
			}
		}
		rows = append(rows, nutritionRow{name: f.Name, record: rec})
	}
	return newNutritionTable(rows, allow), nil
}

func readNutritionCSV(path string, r io.Reader) ([]nutritionRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataLoadError{Path: path, Reason: "file is empty"}
		}
		return nil, &DataLoadError{Path: path, Reason: "cannot read header", Err: err}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	nameCol, ok := index["name"]
	if !ok {
		return nil, &DataLoadError{Path: path, Reason: `missing "name" column`}
	}
	cols := make(map[string]int, len(columnAliases))
	for nutrient, aliases := range columnAliases {
		found := false
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				cols[nutrient] = i
				found = true
				break
			}
		}
		if !found {
			return nil, &DataLoadError{Path: path, Reason: fmt.Sprintf("missing %q column", nutrient)}
		}
	}

	var rows []nutritionRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DataLoadError{Path: path, Reason: fmt.Sprintf("cannot read line %d", line), Err: err}
		}

		var values [4]float64
		for i, nutrient := range []string{"calories", "protein", "fat", "carbohydrate"} {
			raw := strings.TrimSpace(rec[cols[nutrient]])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &DataLoadError{
					Path:   path,
					Reason: fmt.Sprintf("line %d: %s is not a number", line, nutrient),
					Err:    err,
				}
			}
			values[i] = v
		}
		nr := models.NutritionRecord{
			Calories:     values[0],
			Protein:      values[1],
			Fat:          values[2],
			Carbohydrate: values[3],
		}
		if !validRecord(nr) {
			return nil, &DataLoadError{Path: path, Reason: fmt.Sprintf("line %d: negative or non-finite nutrient value", line)}
		}
		rows = append(rows, nutritionRow{name: rec[nameCol], record: nr})
	}
	return rows, nil
}

// validRecord reports whether every nutrient is a finite, non-negative number.
func validRecord(r models.NutritionRecord) bool {
	for _, v := range []float64{r.Calories, r.Protein, r.Fat, r.Carbohydrate} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

func newNutritionTable(rows []nutritionRow, allow []string) *NutritionTable {
	var allowed map[string]bool
	if len(allow) > 0 {
		allowed = make(map[string]bool, len(allow))
		for _, a := range allow {
			allowed[NormalizeName(a)] = true
		}
	}

	records := make(map[string]models.NutritionRecord, len(rows))
	for _, row := range rows {
		key := NormalizeName(row.name)
		if key == "" {
			continue
		}
		if allowed != nil && !allowed[key] {
			continue
		}
		if _, exists := records[key]; exists {
			log.Printf("nutrition table: duplicate entry %q ignored, keeping the first one", key)
			continue
		}
		records[key] = row.record
	}

	for name := range allowed {
		if _, ok := records[name]; !ok {
			log.Printf("nutrition table: allow-listed food %q has no nutrition data", name)
		}
	}

	return &NutritionTable{records: records}
}

// Lookup returns the nutrition of foodName scaled to portionGrams.
// ok is false when the food is not in the table.
func (t *NutritionTable) Lookup(foodName string, portionGrams float64) (models.NutritionRecord, bool) {
	rec, ok := t.records[NormalizeName(foodName)]
	if !ok {
		return models.NutritionRecord{}, false
	}
	return rec.Scale(portionGrams), true
}

// Len returns the number of foods in the table.
func (t *NutritionTable) Len() int {
	return len(t.records)
}

// Has reports whether foodName has an entry.
func (t *NutritionTable) Has(foodName string) bool {
	_, ok := t.records[NormalizeName(foodName)]
	return ok
}

// Search returns the foods whose normalized name contains query, sorted
// by name. An empty query lists every food.
func (t *NutritionTable) Search(query string) []string {
	q := strings.ToLower(NormalizeName(query))
	names := make([]string, 0, len(t.records))
	for name := range t.records {
		if q == "" || strings.Contains(strings.ToLower(name), q) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
