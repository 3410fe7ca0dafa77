package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// NormalizeName trims name and rejects empty values.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Invalid("name", "name cannot be empty")
	}
	return name, nil
}

// CleanIngredients trims every entry and drops the empty ones.
// Nil input yields an empty, non-nil list.
func CleanIngredients(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	if len(out) > MaxIngredients {
		return nil, Invalid("ingredients", fmt.Sprintf("maximum %d ingredients allowed", MaxIngredients))
	}
	return out, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, Invalid(field, "date is required")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Invalid(field, "date must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// DateOf drops the time of day from t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseMealType accepts exactly one of the known meal types.
func ParseMealType(field, s string) (MealType, error) {
	mt := MealType(s)
	if mt.Order() < 0 {
		return "", Invalid(field, "must be one of breakfast, lunch, dinner")
	}
	return mt, nil
}

// SlotInput is an unvalidated target slot.
type SlotInput struct {
	Date     string
	MealType string
}

// Validate parses the slot. prefix is prepended to field names
// (e.g. "target_" for copy and move payloads).
func (in SlotInput) Validate(prefix string) (Slot, error) {
	d, err := ParseDate(prefix+"date", in.Date)
	if err != nil {
		return Slot{}, err
	}
	mt, err := ParseMealType(prefix+"meal_type", in.MealType)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Date: d, Type: mt}, nil
}

// MealInput is an unvalidated create payload.
type MealInput struct {
	Date        string
	MealType    string
	Name        string
	Ingredients []string
}

// Validate returns the normalized meal without identity or timestamps.
func (in MealInput) Validate() (Meal, error) {
	slot, err := SlotInput{Date: in.Date, MealType: in.MealType}.Validate("")
	if err != nil {
		return Meal{}, err
	}
	name, err := NormalizeName(in.Name)
	if err != nil {
		return Meal{}, err
	}
	ingredients, err := CleanIngredients(in.Ingredients)
	if err != nil {
		return Meal{}, err
	}
	return Meal{Date: slot.Date, Type: slot.Type, Name: name, Ingredients: ingredients}, nil
}

// MealUpdate is an unvalidated replace payload. Name and ingredients are
// always replaced; date and meal type only when present.
type MealUpdate struct {
	Name        string
	Ingredients []string
	Date        *string
	MealType    *string
}

// ValidUpdate is a normalized MealUpdate.
type ValidUpdate struct {
	Name        string
	Ingredients []string
	Date        *time.Time
	Type        *MealType
}

// Validate normalizes the update.
func (in MealUpdate) Validate() (ValidUpdate, error) {
	var out ValidUpdate
	var err error
	if out.Name, err = NormalizeName(in.Name); err != nil {
		return ValidUpdate{}, err
	}
	if out.Ingredients, err = CleanIngredients(in.Ingredients); err != nil {
		return ValidUpdate{}, err
	}
	if in.Date != nil {
		d, err := ParseDate("date", *in.Date)
		if err != nil {
			return ValidUpdate{}, err
		}
		out.Date = &d
	}
	if in.MealType != nil {
		mt, err := ParseMealType("meal_type", *in.MealType)
		if err != nil {
			return ValidUpdate{}, err
		}
		out.Type = &mt
	}
	return out, nil
}

// Apply writes the update onto m.
func (u ValidUpdate) Apply(m Meal) Meal {
	m.Name = u.Name
	m.Ingredients = u.Ingredients
	if u.Date != nil {
		m.Date = *u.Date
	}
	if u.Type != nil {
		m.Type = *u.Type
	}
	return m
}
