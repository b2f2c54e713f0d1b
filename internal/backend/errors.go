package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Category classifies an upstream failure by what the user should be told,
// not by Go error type.
type Category string

const (
	CategoryNetwork     Category = "network"
	CategoryTimeout     Category = "timeout"
	CategoryServer      Category = "server"
	CategoryAuthExpired Category = "auth-expired"
	CategoryForbidden   Category = "forbidden"
	CategoryValidation  Category = "validation"
	CategoryNotFound    Category = "not-found"
	CategoryUpload      Category = "upload"
)

// FieldError is a backend validation failure on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the normalized form of every failure the client surfaces.
type Error struct {
	Category   Category
	Message    string
	Fields     []FieldError
	StatusCode int
	Code       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s: %s", e.Category, e.Message)
}

// CategoryOf extracts the category from err, defaulting to CategoryNetwork
// for anything that never reached the backend.
func CategoryOf(err error) Category {
	var be *Error
	if errors.As(err, &be) {
		return be.Category
	}
	return CategoryNetwork
}

// normalizeTransport maps transport-level failures (no HTTP response) onto
// the taxonomy.
func normalizeTransport(err error) *Error {
	msg := "le serveur est injoignable"
	category := CategoryNetwork

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		category = CategoryTimeout
		msg = "la requête a expiré"
	}

	return &Error{Category: category, Message: msg}
}

// normalizeStatus maps an HTTP status plus the backend's error envelope onto
// the taxonomy.
func normalizeStatus(status int, message, code string, fields []FieldError) *Error {
	category := CategoryServer
	switch {
	case status == http.StatusUnauthorized:
		category = CategoryAuthExpired
	case status == http.StatusForbidden:
		category = CategoryForbidden
	case status == http.StatusNotFound:
		category = CategoryNotFound
	case status == http.StatusRequestTimeout:
		category = CategoryTimeout
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		category = CategoryValidation
	case status == http.StatusRequestEntityTooLarge:
		category = CategoryUpload
	}

	if message == "" {
		message = http.StatusText(status)
	}

	return &Error{
		Category:   category,
		Message:    message,
		Fields:     fields,
		StatusCode: status,
		Code:       code,
	}
}
