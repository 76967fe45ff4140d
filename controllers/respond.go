package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/DuaShare/models"
)

// respondError maps the error taxonomy onto status codes. Persistence
// failures are logged with fields and hidden from the client.
func respondError(c *gin.Context, err error, fields log.Fields) {
	var validationErr *models.ValidationError
	var persistenceErr *models.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "errors": validationErr.Fields})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer not found"})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.As(err, &persistenceErr):
		log.WithError(err).WithFields(fields).WithField("op", persistenceErr.Op).Error("store operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reach the prayer store"})
	default:
		log.WithError(err).WithFields(fields).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindingError turns a gin binding failure into a field-level validation
// error.
func bindingError(err error) *models.ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewValidationError("Invalid request body", models.FieldError{
			Field:   "body",
			Message: err.Error(),
		})
	}

	fields := make([]models.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, models.FieldError{
			Field:   jsonFieldName(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return models.NewValidationError("Validation failed", fields...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func jsonFieldName(field string) string {
	return strings.ToLower(field)
}

// prayerID reads the :id path parameter and writes a 400 when it is not a
// positive integer.
func prayerID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID"})
		return 0, false
	}
	return id, true
}

// queryInt returns 0 for a missing or non-numeric value, which the feed
// normalises to its default.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
