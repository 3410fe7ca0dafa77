package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	got, err := NormalizeName("  Pancakes  ")
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got)

	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := NormalizeName(in)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", in)
	}
}

func TestCleanIngredients(t *testing.T) {
	got, err := CleanIngredients([]string{"  a ", "", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = CleanIngredients(nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	ten := make([]string, 0, 12)
	for i := 0; i < 10; i++ {
		ten = append(ten, fmt.Sprintf("item %d", i))
	}
	// blanks do not count towards the limit
	got, err = CleanIngredients(append(ten, " ", ""))
	require.NoError(t, err)
	assert.Len(t, got, 10)

	_, err = CleanIngredients(append(ten, "eleventh"))
	require.ErrorIs(t, err, ErrInvalidInput)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "ingredients", ve.Field)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("date", "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)

	for _, in := range []string{"", "invalid", "2024-13-01", "15/01/2024", "2024-01-15T10:00:00Z"} {
		_, err := ParseDate("date", in)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", in)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	got := DateOf(time.Date(2024, 1, 15, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestParseMealType(t *testing.T) {
	for _, mt := range MealTypes {
		got, err := ParseMealType("meal_type", string(mt))
		require.NoError(t, err)
		assert.Equal(t, mt, got)
	}
	for _, in := range []string{"", "brunch", "Breakfast", "LUNCH", " dinner"} {
		_, err := ParseMealType("meal_type", in)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", in)
	}
}

func TestMealInputValidate(t *testing.T) {
	m, err := MealInput{
		Date:        "2024-01-15",
		MealType:    "breakfast",
		Name:        "  Pancakes ",
		Ingredients: []string{" flour", "eggs ", ""},
	}.Validate()
	require.NoError(t, err)
	assert.Equal(t, Breakfast, m.Type)
	assert.Equal(t, "Pancakes", m.Name)
	assert.Equal(t, []string{"flour", "eggs"}, m.Ingredients)

	_, err = MealInput{Date: "2024-01-15", MealType: "brunch", Name: "x"}.Validate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "meal_type", ve.Field)
}

func TestMealUpdateKeepsSlotWhenAbsent(t *testing.T) {
	orig := Meal{Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Type: Lunch, Name: "Salad"}

	u, err := MealUpdate{Name: " Soup "}.Validate()
	require.NoError(t, err)
	got := u.Apply(orig)
	assert.Equal(t, "Soup", got.Name)
	assert.Equal(t, orig.Date, got.Date)
	assert.Equal(t, Lunch, got.Type)
	assert.Empty(t, got.Ingredients)

	date, mt := "2024-01-16", "dinner"
	u, err = MealUpdate{Name: "Soup", Date: &date, MealType: &mt}.Validate()
	require.NoError(t, err)
	got = u.Apply(orig)
	assert.Equal(t, Slot{Date: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), Type: Dinner}, got.Slot())
}

func TestSlotInputPrefixesField(t *testing.T) {
	_, err := SlotInput{Date: "nope", MealType: "lunch"}.Validate("target_")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "target_date", ve.Field)
}

func TestLessOrdersByDateThenMealType(t *testing.T) {
	d1 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	assert.True(t, Less(Meal{Date: d1, Type: Dinner}, Meal{Date: d2, Type: Breakfast}))
	assert.True(t, Less(Meal{Date: d1, Type: Breakfast}, Meal{Date: d1, Type: Lunch}))
	assert.False(t, Less(Meal{Date: d1, Type: Dinner}, Meal{Date: d1, Type: Lunch}))
}

func TestSlotOccupiedMessage(t *testing.T) {
	err := SlotOccupied(Slot{Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Type: Lunch})
	assert.ErrorIs(t, err, ErrSlotOccupied)
	assert.Equal(t, "a meal already exists for 2024-01-15 - lunch", err.Error())
}
