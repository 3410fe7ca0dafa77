package handlers

import (
	"net/http"

	"github.com/josenava/meal-calendar/internal/auth"
	dom "github.com/josenava/meal-calendar/internal/domain"
	"github.com/josenava/meal-calendar/internal/dto"
	"github.com/josenava/meal-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MealHandler struct {
	svc *service.MealService
	log *zap.Logger
}

func NewMealHandler(svc *service.MealService, log *zap.Logger) *MealHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MealHandler{svc: svc, log: log}
}

// List godoc
// @Summary      List meals in a date range
// @Tags         meals
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  true  "First day (YYYY-MM-DD)"
// @Param        end_date    query     string  true  "Last day (YYYY-MM-DD)"
// @Success      200         {array}   dto.MealResponse
// @Failure      422         {object}  map[string]string
// @Failure      500         {object}  map[string]string
// @Router       /meals [get]
func (h *MealHandler) List(c *gin.Context) {
	var q dto.ListMealsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	start, err := dom.ParseDate("start_date", q.StartDate)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	end, err := dom.ParseDate("end_date", q.EndDate)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c), start, end)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mealsToResponses(list))
}

// Search godoc
// @Summary      Search meals by ingredient
// @Description  Exact, case-insensitive ingredient match. Newest first, at most 10.
// @Tags         meals
// @Produce      json
// @Security     BearerAuth
// @Param        ingredient  query     string  true  "Ingredient"
// @Success      200         {array}   dto.MealResponse
// @Failure      422         {object}  map[string]string
// @Failure      500         {object}  map[string]string
// @Router       /meals/search [get]
func (h *MealHandler) Search(c *gin.Context) {
	var q dto.SearchMealsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.svc.SearchByIngredient(c.Request.Context(), auth.UserIDFromContext(c), q.Ingredient)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mealsToResponses(list))
}

// GetByID godoc
// @Summary      Get a meal by ID
// @Tags         meals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meal ID"
// @Success      200  {object}  dto.MealResponse
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /meals/{id} [get]
func (h *MealHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.Get(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mealToResponse(m))
}

// Create godoc
// @Summary      Create a meal
// @Tags         meals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateMealRequest  true  "Meal body"
// @Success      201   {object}  dto.MealResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /meals [post]
func (h *MealHandler) Create(c *gin.Context) {
	var req dto.CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, mealToResponse(m))
}

// Update godoc
// @Summary      Replace a meal
// @Description  Name and ingredients are replaced; date and meal_type only when given.
// @Tags         meals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Meal ID"
// @Param        body  body      dto.UpdateMealRequest  true  "Meal body"
// @Success      200   {object}  dto.MealResponse
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /meals/{id} [put]
func (h *MealHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id, req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mealToResponse(m))
}

// Delete godoc
// @Summary      Delete a meal
// @Tags         meals
// @Security     BearerAuth
// @Param        id   path  string  true  "Meal ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /meals/{id} [delete]
func (h *MealHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Copy godoc
// @Summary      Copy a meal to another slot
// @Tags         meals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Source meal ID"
// @Param        body  body      dto.TargetSlotRequest  true  "Target slot"
// @Success      201   {object}  dto.MealResponse
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /meals/{id}/copy [post]
func (h *MealHandler) Copy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TargetSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.svc.Copy(c.Request.Context(), auth.UserIDFromContext(c), id, req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, mealToResponse(m))
}

// Swap godoc
// @Summary      Swap the content of two meals
// @Description  Exchanges name and ingredients; both meals keep their slots.
// @Tags         meals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.SwapMealsRequest  true  "Meal IDs"
// @Success      200   {array}   dto.MealResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /meals/swap [post]
func (h *MealHandler) Swap(c *gin.Context) {
	var req dto.SwapMealsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	id1, err := uuid.Parse(req.MealID1)
	if err != nil {
		writeError(c, h.log, dom.Invalid("meal_id_1", "invalid id"))
		return
	}
	id2, err := uuid.Parse(req.MealID2)
	if err != nil {
		writeError(c, h.log, dom.Invalid("meal_id_2", "invalid id"))
		return
	}
	a, b, err := h.svc.Swap(c.Request.Context(), auth.UserIDFromContext(c), id1, id2)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, []dto.MealResponse{mealToResponse(a), mealToResponse(b)})
}

// Move godoc
// @Summary      Move a meal to another slot
// @Tags         meals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Meal ID"
// @Param        body  body      dto.TargetSlotRequest  true  "Target slot"
// @Success      200   {object}  dto.MealResponse
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /meals/{id}/move [patch]
func (h *MealHandler) Move(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TargetSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.svc.Move(c.Request.Context(), auth.UserIDFromContext(c), id, req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mealToResponse(m))
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid id", "field": name})
		return uuid.Nil, false
	}
	return id, true
}

func mealToResponse(m dom.Meal) dto.MealResponse {
	ingredients := m.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return dto.MealResponse{
		ID:          m.ID.String(),
		Date:        m.Date.Format(dom.DateLayout),
		MealType:    string(m.Type),
		Name:        m.Name,
		Ingredients: ingredients,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func mealsToResponses(list []dom.Meal) []dto.MealResponse {
	out := make([]dto.MealResponse, len(list))
	for i := range list {
		out[i] = mealToResponse(list[i])
	}
	return out
}
