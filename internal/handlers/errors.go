package handlers

import (
	"errors"
	"net/http"

	dom "github.com/josenava/meal-calendar/internal/domain"
	"github.com/josenava/meal-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps domain errors to status codes. Anything unknown is logged
// and answered with 500.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var ve *dom.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, service.ErrSwapWithItself):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot swap a meal with itself"})
	case errors.Is(err, dom.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, dom.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, dom.ErrSlotOccupied), errors.Is(err, dom.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindError answers a malformed body or query with 422.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}
