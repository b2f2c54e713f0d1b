package handler

import (
	"errors"
	"net/http"

	"pressing-api/internal/address"
	"pressing-api/internal/backend"

	"github.com/gin-gonic/gin"
)

// respondError maps a normalized backend error (or a domain error) onto an
// HTTP status and a JSON error body.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, address.ErrOutsideServiceArea) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "position hors de la zone desservie"})
		return
	}

	var be *backend.Error
	if errors.As(err, &be) {
		status := http.StatusBadGateway
		switch be.Category {
		case backend.CategoryAuthExpired:
			status = http.StatusUnauthorized
		case backend.CategoryForbidden:
			status = http.StatusForbidden
		case backend.CategoryNotFound:
			status = http.StatusNotFound
		case backend.CategoryValidation:
			status = http.StatusBadRequest
		case backend.CategoryTimeout:
			status = http.StatusGatewayTimeout
		}
		body := gin.H{"error": be.Message}
		if len(be.Fields) > 0 {
			body["fields"] = be.Fields
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
