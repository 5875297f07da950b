package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cloudbite/internal/service"
	"cloudbite/internal/storage"
)

// writeError maps typed failures from the storage and service layers onto
// status codes. notFoundMsg replaces the generic message for 404s so the
// client sees which entity was missing.
func writeError(c *gin.Context, err error, notFoundMsg string) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"message": validation.Message})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMsg})
	case errors.Is(err, storage.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Duplicate record"})
	case errors.Is(err, storage.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// bindPatch decodes a patch body rejecting unknown fields, so a client cannot
// overwrite identifiers or computed columns by accident.
func bindPatch(c *gin.Context, patch interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(patch)
}
