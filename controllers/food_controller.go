package controllers

import (
	"net/http"

	"github.com/Ahmad-FikriA/ai-food-detection/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	Table *services.NutritionTable
}

func NewFoodController(table *services.NutritionTable) *FoodController {
	return &FoodController{Table: table}
}

// GET /api/foods?q=goreng
func (fc *FoodController) SearchFoods(c *gin.Context) {
	names := fc.Table.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"count": len(names),
		"foods": names,
	})
}
