package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	dom "github.com/josenava/meal-calendar/internal/domain"
	"github.com/josenava/meal-calendar/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SearchLimit caps ingredient search results.
const SearchLimit = 10

var ErrSwapWithItself = fmt.Errorf("%w: cannot swap a meal with itself", dom.ErrInvalidInput)

// MealCache is the read-through cache used for ranges and searches.
// *cache.MealCache implements it.
type MealCache interface {
	GetRange(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Meal, error)
	SetRange(ctx context.Context, ownerID int64, start, end time.Time, list []dom.Meal) error
	GetSearch(ctx context.Context, ownerID int64, ingredient string) ([]dom.Meal, error)
	SetSearch(ctx context.Context, ownerID int64, ingredient string, list []dom.Meal) error
	InvalidateOwner(ctx context.Context, ownerID int64) error
}

type MealService struct {
	repo  repo.MealRepo
	cache MealCache
	sf    singleflight.Group
	log   *zap.Logger
}

// NewMealService creates a MealService. If c is nil, caching is disabled.
func NewMealService(r repo.MealRepo, c MealCache, log *zap.Logger) *MealService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MealService{repo: r, cache: c, log: log}
}

// List returns the owner's meals with start <= date <= end.
func (s *MealService) List(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Meal, error) {
	start, end = dom.DateOf(start), dom.DateOf(end)
	if start.After(end) {
		return nil, dom.Invalid("start_date", "start_date must not be after end_date")
	}
	if s.cache == nil {
		return s.repo.ListRange(ctx, ownerID, start, end)
	}
	key := "range:" + strconv.FormatInt(ownerID, 10) + ":" + start.Format(dom.DateLayout) + ":" + end.Format(dom.DateLayout)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetRange(ctx, ownerID, start, end); err == nil && list != nil {
			return list, nil
		} else if err != nil {
			s.log.Warn("meal cache read failed", zap.Error(err))
		}
		list, err := s.repo.ListRange(ctx, ownerID, start, end)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetRange(ctx, ownerID, start, end, list); err != nil {
			s.log.Warn("meal cache write failed", zap.Error(err))
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Meal), nil
}

func (s *MealService) Get(ctx context.Context, ownerID int64, id uuid.UUID) (dom.Meal, error) {
	m, err := s.repo.GetByID(ctx, ownerID, id)
	if errors.Is(err, dom.ErrNotFound) {
		return dom.Meal{}, fmt.Errorf("meal %w", dom.ErrNotFound)
	}
	return m, err
}

func (s *MealService) Create(ctx context.Context, ownerID int64, in dom.MealInput) (dom.Meal, error) {
	m, err := in.Validate()
	if err != nil {
		return dom.Meal{}, err
	}
	m.OwnerID = ownerID
	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return dom.Meal{}, err
	}
	s.invalidateCache(ctx, ownerID)
	return created, nil
}

// Update replaces name and ingredients, and date and meal type when given.
func (s *MealService) Update(ctx context.Context, ownerID int64, id uuid.UUID, in dom.MealUpdate) (dom.Meal, error) {
	upd, err := in.Validate()
	if err != nil {
		return dom.Meal{}, err
	}
	existing, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return dom.Meal{}, err
	}
	m, err := s.repo.Update(ctx, upd.Apply(existing))
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return dom.Meal{}, fmt.Errorf("meal %w", dom.ErrNotFound)
		}
		return dom.Meal{}, err
	}
	s.invalidateCache(ctx, ownerID)
	return m, nil
}

func (s *MealService) Delete(ctx context.Context, ownerID int64, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return fmt.Errorf("meal %w", dom.ErrNotFound)
		}
		return err
	}
	s.invalidateCache(ctx, ownerID)
	return nil
}

// Copy creates a new meal at target with the source's name and ingredients.
func (s *MealService) Copy(ctx context.Context, ownerID int64, id uuid.UUID, target dom.SlotInput) (dom.Meal, error) {
	slot, err := target.Validate("target_")
	if err != nil {
		return dom.Meal{}, err
	}
	src, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return dom.Meal{}, fmt.Errorf("source meal %w", dom.ErrNotFound)
		}
		return dom.Meal{}, err
	}
	created, err := s.repo.Create(ctx, dom.Meal{
		OwnerID:     ownerID,
		Date:        slot.Date,
		Type:        slot.Type,
		Name:        src.Name,
		Ingredients: append([]string{}, src.Ingredients...),
	})
	if err != nil {
		return dom.Meal{}, err
	}
	s.invalidateCache(ctx, ownerID)
	return created, nil
}

// Swap exchanges name and ingredients of two meals, keeping their slots.
func (s *MealService) Swap(ctx context.Context, ownerID int64, id1, id2 uuid.UUID) (dom.Meal, dom.Meal, error) {
	if id1 == id2 {
		return dom.Meal{}, dom.Meal{}, ErrSwapWithItself
	}
	a, b, err := s.repo.Swap(ctx, ownerID, id1, id2)
	if err != nil {
		return dom.Meal{}, dom.Meal{}, err
	}
	s.invalidateCache(ctx, ownerID)
	return a, b, nil
}

// Move relocates a meal to target. The slot check here is advisory; the
// unique index decides when two moves race for the same slot.
func (s *MealService) Move(ctx context.Context, ownerID int64, id uuid.UUID, target dom.SlotInput) (dom.Meal, error) {
	slot, err := target.Validate("target_")
	if err != nil {
		return dom.Meal{}, err
	}
	m, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return dom.Meal{}, err
	}
	if m.Date.Equal(slot.Date) && m.Type == slot.Type {
		return m, nil
	}
	occupant, err := s.repo.FindBySlot(ctx, ownerID, slot)
	switch {
	case err == nil && occupant.ID != m.ID:
		return dom.Meal{}, dom.SlotOccupied(slot)
	case err != nil && !errors.Is(err, dom.ErrNotFound):
		return dom.Meal{}, err
	}
	m.Date, m.Type = slot.Date, slot.Type
	moved, err := s.repo.Update(ctx, m)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return dom.Meal{}, fmt.Errorf("meal %w", dom.ErrNotFound)
		}
		return dom.Meal{}, err
	}
	s.invalidateCache(ctx, ownerID)
	return moved, nil
}

// SearchByIngredient returns up to SearchLimit meals holding an ingredient
// equal to term, ignoring case, newest first.
func (s *MealService) SearchByIngredient(ctx context.Context, ownerID int64, term string) ([]dom.Meal, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, dom.Invalid("ingredient", "ingredient cannot be empty")
	}
	if s.cache == nil {
		return s.repo.SearchByIngredient(ctx, ownerID, term, SearchLimit)
	}
	key := "search:" + strconv.FormatInt(ownerID, 10) + ":" + strings.ToLower(term)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetSearch(ctx, ownerID, term); err == nil && list != nil {
			return list, nil
		} else if err != nil {
			s.log.Warn("meal cache read failed", zap.Error(err))
		}
		list, err := s.repo.SearchByIngredient(ctx, ownerID, term, SearchLimit)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetSearch(ctx, ownerID, term, list); err != nil {
			s.log.Warn("meal cache write failed", zap.Error(err))
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Meal), nil
}

// invalidateCache runs after the write commits. A read that overlaps the write
// can still re-cache pre-write data, which then lives until the TTL expires.
func (s *MealService) invalidateCache(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOwner(ctx, ownerID); err != nil {
		s.log.Warn("meal cache invalidation failed", zap.Int64("owner_id", ownerID), zap.Error(err))
	}
}
