package domain

import (
	"time"

	"github.com/google/uuid"
)

// SharedOwner owns every meal when authentication is disabled.
const SharedOwner int64 = 0

// MaxIngredients caps the cleaned ingredient list of a meal.
const MaxIngredients = 10

// MealType is the slot of the day a meal belongs to.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists the meal types in canonical (daily) order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// Order returns the position of t within a day, -1 for unknown types.
func (t MealType) Order() int {
	for i, mt := range MealTypes {
		if mt == t {
			return i
		}
	}
	return -1
}

func (t MealType) String() string { return string(t) }

// Slot is a (date, meal type) pair. At most one meal per owner occupies a slot.
type Slot struct {
	Date time.Time
	Type MealType
}

func (s Slot) String() string {
	return s.Date.Format(DateLayout) + " - " + string(s.Type)
}

// Meal is the domain entity for one planned meal.
type Meal struct {
	ID          uuid.UUID
	OwnerID     int64
	Date        time.Time
	Type        MealType
	Name        string
	Ingredients []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slot returns the slot the meal occupies.
func (m Meal) Slot() Slot {
	return Slot{Date: m.Date, Type: m.Type}
}

// Less orders meals by date, then canonical meal type, then id.
func Less(a, b Meal) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Type != b.Type {
		return a.Type.Order() < b.Type.Order()
	}
	return a.ID.String() < b.ID.String()
}
