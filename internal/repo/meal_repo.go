package repo

import (
	"context"
	"fmt"
	"time"

	dom "github.com/josenava/meal-calendar/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MealRepo persists meals. Every method is scoped to an owner; a meal of
// another owner is reported as dom.ErrNotFound.
type MealRepo interface {
	// Create assigns the id and timestamps. dom.ErrSlotOccupied if the slot is taken.
	Create(ctx context.Context, m dom.Meal) (dom.Meal, error)
	GetByID(ctx context.Context, ownerID int64, id uuid.UUID) (dom.Meal, error)
	// FindBySlot returns the meal occupying slot, dom.ErrNotFound if it is free.
	FindBySlot(ctx context.Context, ownerID int64, slot dom.Slot) (dom.Meal, error)
	// ListRange returns meals with start <= date <= end ordered by date and meal type.
	ListRange(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Meal, error)
	// Update overwrites date, meal type, name and ingredients of m.ID.
	Update(ctx context.Context, m dom.Meal) (dom.Meal, error)
	Delete(ctx context.Context, ownerID int64, id uuid.UUID) error
	// Swap exchanges name and ingredients of two meals in one transaction.
	Swap(ctx context.Context, ownerID int64, id1, id2 uuid.UUID) (dom.Meal, dom.Meal, error)
	// SearchByIngredient matches ingredients case-insensitively, newest date first.
	SearchByIngredient(ctx context.Context, ownerID int64, ingredient string, limit int) ([]dom.Meal, error)
}

const (
	mealColumns = `id, owner_id, date, meal_type, name, ingredients, created_at, updated_at`
	// slotOrder sorts meal types breakfast, lunch, dinner.
	slotOrder = `CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END`
)

type PGMealRepo struct {
	db *pgxpool.Pool
}

func NewPGMealRepo(db *pgxpool.Pool) *PGMealRepo {
	return &PGMealRepo{db: db}
}

func scanPGMeal(row rowScanner) (dom.Meal, error) {
	var m dom.Meal
	var mealType string
	err := row.Scan(&m.ID, &m.OwnerID, &m.Date, &mealType, &m.Name, &m.Ingredients, &m.CreatedAt, &m.UpdatedAt)
	m.Type = dom.MealType(mealType)
	if m.Ingredients == nil {
		m.Ingredients = []string{}
	}
	return m, err
}

func collectPGMeals(rows pgx.Rows) ([]dom.Meal, error) {
	defer rows.Close()
	list := []dom.Meal{}
	for rows.Next() {
		m, err := scanPGMeal(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *PGMealRepo) Create(ctx context.Context, m dom.Meal) (dom.Meal, error) {
	query := `
		INSERT INTO meals (id, owner_id, date, meal_type, name, ingredients)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + mealColumns
	out, err := scanPGMeal(r.db.QueryRow(ctx, query,
		uuid.New(), m.OwnerID, m.Date, string(m.Type), m.Name, nonNil(m.Ingredients),
	))
	if err != nil {
		return dom.Meal{}, translateMealErr(err, m.Slot())
	}
	return out, nil
}

func (r *PGMealRepo) GetByID(ctx context.Context, ownerID int64, id uuid.UUID) (dom.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = $1 AND owner_id = $2`
	m, err := scanPGMeal(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		return dom.Meal{}, translateMealErr(err, dom.Slot{})
	}
	return m, nil
}

func (r *PGMealRepo) FindBySlot(ctx context.Context, ownerID int64, slot dom.Slot) (dom.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE owner_id = $1 AND date = $2 AND meal_type = $3`
	m, err := scanPGMeal(r.db.QueryRow(ctx, query, ownerID, slot.Date, string(slot.Type)))
	if err != nil {
		return dom.Meal{}, translateMealErr(err, slot)
	}
	return m, nil
}

func (r *PGMealRepo) ListRange(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals WHERE owner_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, ` + slotOrder + `, id`
	rows, err := r.db.Query(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	return collectPGMeals(rows)
}

func (r *PGMealRepo) Update(ctx context.Context, m dom.Meal) (dom.Meal, error) {
	query := `
		UPDATE meals SET date = $3, meal_type = $4, name = $5, ingredients = $6, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + mealColumns
	out, err := scanPGMeal(r.db.QueryRow(ctx, query,
		m.ID, m.OwnerID, m.Date, string(m.Type), m.Name, nonNil(m.Ingredients),
	))
	if err != nil {
		return dom.Meal{}, translateMealErr(err, m.Slot())
	}
	return out, nil
}

func (r *PGMealRepo) Delete(ctx context.Context, ownerID int64, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM meals WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrNotFound
	}
	return nil
}

func (r *PGMealRepo) Swap(ctx context.Context, ownerID int64, id1, id2 uuid.UUID) (dom.Meal, dom.Meal, error) {
	var a, b dom.Meal
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// Lock both rows in id order so concurrent swaps of the same pair cannot deadlock.
		rows, err := tx.Query(ctx, `
			SELECT `+mealColumns+` FROM meals
			WHERE owner_id = $1 AND (id = $2 OR id = $3)
			ORDER BY id FOR UPDATE`, ownerID, id1, id2)
		if err != nil {
			return err
		}
		locked, err := collectPGMeals(rows)
		if err != nil {
			return err
		}
		if a, err = pickMeal(locked, id1); err != nil {
			return err
		}
		if b, err = pickMeal(locked, id2); err != nil {
			return err
		}

		a.Name, b.Name = b.Name, a.Name
		a.Ingredients, b.Ingredients = b.Ingredients, a.Ingredients

		const update = `
			UPDATE meals SET name = $2, ingredients = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING ` + mealColumns
		if a, err = scanPGMeal(tx.QueryRow(ctx, update, a.ID, a.Name, nonNil(a.Ingredients))); err != nil {
			return err
		}
		b, err = scanPGMeal(tx.QueryRow(ctx, update, b.ID, b.Name, nonNil(b.Ingredients)))
		return err
	})
	if err != nil {
		return dom.Meal{}, dom.Meal{}, err
	}
	return a, b, nil
}

// pickMeal finds id in list, reporting which id is missing.
func pickMeal(list []dom.Meal, id uuid.UUID) (dom.Meal, error) {
	for _, m := range list {
		if m.ID == id {
			return m, nil
		}
	}
	return dom.Meal{}, fmt.Errorf("meal with id %s %w", id, dom.ErrNotFound)
}

func (r *PGMealRepo) SearchByIngredient(ctx context.Context, ownerID int64, ingredient string, limit int) ([]dom.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE owner_id = $1
		  AND EXISTS (SELECT 1 FROM unnest(ingredients) AS i WHERE lower(i) = lower($2))
		ORDER BY date DESC, ` + slotOrder + `, id
		LIMIT $3`
	rows, err := r.db.Query(ctx, query, ownerID, ingredient, limit)
	if err != nil {
		return nil, err
	}
	return collectPGMeals(rows)
}
