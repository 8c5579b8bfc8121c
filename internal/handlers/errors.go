package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
)

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch models.KindOf(err) {
	case models.ErrorKindNotFound:
		status = http.StatusNotFound
	case models.ErrorKindConflict:
		status = http.StatusConflict
	case models.ErrorKindValidation:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
