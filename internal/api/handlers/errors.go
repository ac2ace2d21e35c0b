package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"settlement-pipeline/internal/api/models"
	"settlement-pipeline/internal/model"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// respondPipelineError maps pipeline failures onto HTTP statuses.
func respondPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrMalformedInput):
		respondError(c, http.StatusUnprocessableEntity, "MALFORMED_INPUT", err.Error())
	case errors.Is(err, model.ErrDuplicateKey):
		respondError(c, http.StatusUnprocessableEntity, "DUPLICATE_KEY", err.Error())
	case errors.Is(err, fs.ErrNotExist):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "PIPELINE_ERROR", err.Error())
	}
}
