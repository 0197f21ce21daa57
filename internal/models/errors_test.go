package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"Validation", NewValidationError("bad input"), fiber.StatusBadRequest},
		{"Unauthorized", NewUnauthorizedError("invalid credentials"), fiber.StatusUnauthorized},
		{"Forbidden", NewForbiddenError("not yours"), fiber.StatusForbidden},
		{"Not found", NewNotFoundError("User", 9), fiber.StatusNotFound},
		{"Conflict", NewConflictError("taken"), fiber.StatusConflict},
		{"Internal", NewInternalError(errors.New("connection refused")), fiber.StatusInternalServerError},
		{"Wrapped", fmt.Errorf("lookup: %w", NewNotFoundError("Post", 3)), fiber.StatusNotFound},
		{"Plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusForError(tt.err))
		})
	}
}
