package dto

import (
	"time"

	dom "github.com/josenava/meal-calendar/internal/domain"
)

// ListMealsQuery is the query string of GET /meals.
type ListMealsQuery struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
}

// SearchMealsQuery is the query string of GET /meals/search.
type SearchMealsQuery struct {
	Ingredient string `form:"ingredient"`
}

type CreateMealRequest struct {
	Date        string   `json:"date" binding:"required"`
	MealType    string   `json:"meal_type" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Ingredients []string `json:"ingredients"`
}

func (r CreateMealRequest) Input() dom.MealInput {
	return dom.MealInput{Date: r.Date, MealType: r.MealType, Name: r.Name, Ingredients: r.Ingredients}
}

// UpdateMealRequest replaces name and ingredients; date and meal_type are
// changed only when present.
type UpdateMealRequest struct {
	Name        string   `json:"name" binding:"required"`
	Ingredients []string `json:"ingredients"`
	Date        *string  `json:"date"`
	MealType    *string  `json:"meal_type"`
}

func (r UpdateMealRequest) Input() dom.MealUpdate {
	return dom.MealUpdate{Name: r.Name, Ingredients: r.Ingredients, Date: r.Date, MealType: r.MealType}
}

// TargetSlotRequest is the body of copy and move.
type TargetSlotRequest struct {
	TargetDate     string `json:"target_date" binding:"required"`
	TargetMealType string `json:"target_meal_type" binding:"required"`
}

func (r TargetSlotRequest) Input() dom.SlotInput {
	return dom.SlotInput{Date: r.TargetDate, MealType: r.TargetMealType}
}

type SwapMealsRequest struct {
	MealID1 string `json:"meal_id_1" binding:"required"`
	MealID2 string `json:"meal_id_2" binding:"required"`
}

type MealResponse struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	MealType    string    `json:"meal_type"`
	Name        string    `json:"name"`
	Ingredients []string  `json:"ingredients"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
