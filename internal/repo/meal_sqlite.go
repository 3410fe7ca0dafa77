package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	dom "github.com/josenava/meal-calendar/internal/domain"

	"github.com/google/uuid"
)

const sqliteTimeLayout = time.RFC3339Nano

// sqlQuerier is satisfied by *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteMealRepo implements MealRepo on SQLite. Dates are stored as
// YYYY-MM-DD text so they sort lexically, ingredients as a JSON array.
type SQLiteMealRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteMealRepo(db *sql.DB) *SQLiteMealRepo {
	return &SQLiteMealRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func scanSQLiteMeal(row rowScanner) (dom.Meal, error) {
	var (
		m                    dom.Meal
		id, date, mealType   string
		ingredients          string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &m.OwnerID, &date, &mealType, &m.Name, &ingredients, &createdAt, &updatedAt); err != nil {
		return dom.Meal{}, err
	}
	var err error
	if m.ID, err = uuid.Parse(id); err != nil {
		return dom.Meal{}, fmt.Errorf("meal id %q: %w", id, err)
	}
	if m.Date, err = time.Parse(dom.DateLayout, date); err != nil {
		return dom.Meal{}, fmt.Errorf("meal date %q: %w", date, err)
	}
	m.Type = dom.MealType(mealType)
	if err := json.Unmarshal([]byte(ingredients), &m.Ingredients); err != nil {
		return dom.Meal{}, fmt.Errorf("meal ingredients: %w", err)
	}
	m.Ingredients = nonNil(m.Ingredients)
	if m.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return dom.Meal{}, fmt.Errorf("meal created_at: %w", err)
	}
	if m.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return dom.Meal{}, fmt.Errorf("meal updated_at: %w", err)
	}
	return m, nil
}

func collectSQLiteMeals(rows *sql.Rows) ([]dom.Meal, error) {
	defer rows.Close()
	list := []dom.Meal{}
	for rows.Next() {
		m, err := scanSQLiteMeal(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func encodeIngredients(in []string) (string, error) {
	b, err := json.Marshal(nonNil(in))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *SQLiteMealRepo) Create(ctx context.Context, m dom.Meal) (dom.Meal, error) {
	ingredients, err := encodeIngredients(m.Ingredients)
	if err != nil {
		return dom.Meal{}, err
	}
	m.ID = uuid.New()
	m.Ingredients = nonNil(m.Ingredients)
	m.CreatedAt = r.now()
	m.UpdatedAt = m.CreatedAt
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meals (`+mealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.OwnerID, m.Date.Format(dom.DateLayout), string(m.Type), m.Name, ingredients,
		m.CreatedAt.Format(sqliteTimeLayout), m.UpdatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return dom.Meal{}, translateMealErr(err, m.Slot())
	}
	return m, nil
}

func getSQLiteMeal(ctx context.Context, q sqlQuerier, ownerID int64, id uuid.UUID) (dom.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = ? AND owner_id = ?`
	m, err := scanSQLiteMeal(q.QueryRowContext(ctx, query, id.String(), ownerID))
	if err != nil {
		return dom.Meal{}, translateMealErr(err, dom.Slot{})
	}
	return m, nil
}

func (r *SQLiteMealRepo) GetByID(ctx context.Context, ownerID int64, id uuid.UUID) (dom.Meal, error) {
	return getSQLiteMeal(ctx, r.db, ownerID, id)
}

func (r *SQLiteMealRepo) FindBySlot(ctx context.Context, ownerID int64, slot dom.Slot) (dom.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE owner_id = ? AND date = ? AND meal_type = ?`
	m, err := scanSQLiteMeal(r.db.QueryRowContext(ctx, query, ownerID, slot.Date.Format(dom.DateLayout), string(slot.Type)))
	if err != nil {
		return dom.Meal{}, translateMealErr(err, slot)
	}
	return m, nil
}

func (r *SQLiteMealRepo) ListRange(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals WHERE owner_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, ` + slotOrder + `, id`
	rows, err := r.db.QueryContext(ctx, query, ownerID, start.Format(dom.DateLayout), end.Format(dom.DateLayout))
	if err != nil {
		return nil, err
	}
	return collectSQLiteMeals(rows)
}

func (r *SQLiteMealRepo) Update(ctx context.Context, m dom.Meal) (dom.Meal, error) {
	ingredients, err := encodeIngredients(m.Ingredients)
	if err != nil {
		return dom.Meal{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE meals SET date = ?, meal_type = ?, name = ?, ingredients = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		m.Date.Format(dom.DateLayout), string(m.Type), m.Name, ingredients, r.now().Format(sqliteTimeLayout),
		m.ID.String(), m.OwnerID,
	)
	if err != nil {
		return dom.Meal{}, translateMealErr(err, m.Slot())
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dom.Meal{}, err
	}
	if n == 0 {
		return dom.Meal{}, dom.ErrNotFound
	}
	return getSQLiteMeal(ctx, r.db, m.OwnerID, m.ID)
}

func (r *SQLiteMealRepo) Delete(ctx context.Context, ownerID int64, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ? AND owner_id = ?`, id.String(), ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return dom.ErrNotFound
	}
	return nil
}

func (r *SQLiteMealRepo) Swap(ctx context.Context, ownerID int64, id1, id2 uuid.UUID) (_ dom.Meal, _ dom.Meal, retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dom.Meal{}, dom.Meal{}, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	a, err := getSQLiteMeal(ctx, tx, ownerID, id1)
	if err != nil {
		return dom.Meal{}, dom.Meal{}, missingOr(err, id1)
	}
	b, err := getSQLiteMeal(ctx, tx, ownerID, id2)
	if err != nil {
		return dom.Meal{}, dom.Meal{}, missingOr(err, id2)
	}

	a.Name, b.Name = b.Name, a.Name
	a.Ingredients, b.Ingredients = b.Ingredients, a.Ingredients
	now := r.now()
	for _, m := range []*dom.Meal{&a, &b} {
		ingredients, err := encodeIngredients(m.Ingredients)
		if err != nil {
			return dom.Meal{}, dom.Meal{}, err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE meals SET name = ?, ingredients = ?, updated_at = ? WHERE id = ?`,
			m.Name, ingredients, now.Format(sqliteTimeLayout), m.ID.String(),
		); err != nil {
			return dom.Meal{}, dom.Meal{}, err
		}
		m.UpdatedAt = now
	}
	if err := tx.Commit(); err != nil {
		return dom.Meal{}, dom.Meal{}, err
	}
	return a, b, nil
}

func missingOr(err error, id uuid.UUID) error {
	if errors.Is(err, dom.ErrNotFound) {
		return fmt.Errorf("meal with id %s %w", id, dom.ErrNotFound)
	}
	return err
}

func (r *SQLiteMealRepo) SearchByIngredient(ctx context.Context, ownerID int64, ingredient string, limit int) ([]dom.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE owner_id = ?
		  AND EXISTS (SELECT 1 FROM json_each(meals.ingredients) AS j WHERE ` + unicodeLowerFunc + `(j.value) = ` + unicodeLowerFunc + `(?))
		ORDER BY date DESC, ` + slotOrder + `, id
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, ownerID, ingredient, limit)
	if err != nil {
		return nil, err
	}
	return collectSQLiteMeals(rows)
}
