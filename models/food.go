package models

// A reference row in the nutrition_facts table, same shape as the CSV.
type NutritionFact struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"not null"`
	Calories     float64 // per 100 g
	Proteins     float64
	Fat          float64
	Carbohydrate float64
	Image        string // housekeeping, never read
}

func (NutritionFact) TableName() string {
	return "nutrition_facts"
}
