package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentErrorsUnwrapToKinds(t *testing.T) {
	wrapped := fmt.Errorf("create student: %w", ErrStudentIDAlreadyExists)

	assert.True(t, errors.Is(wrapped, ErrStudentIDAlreadyExists))
	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, ErrResourceNotFound))

	assert.True(t, errors.Is(ErrStudentNotFound, ErrResourceNotFound))
	assert.True(t, errors.Is(ErrInvalidStudentRecordID, ErrBadRequest))
	assert.True(t, Is(ErrBadgeNumberAlreadyExists, ErrStudentNotFound, ErrConflict))
	assert.Equal(t, "badge number already exists", ErrBadgeNumberAlreadyExists.Error())
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.False(t, verr.HasViolations())

	verr.Add("studentId", "ST-1", "must be alphanumeric")
	verr.Add("course", "", "is required")

	var err error = verr
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.Equal(t, "validation failed: studentId: must be alphanumeric; course: is required", err.Error())

	var target *ValidationError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &target))
	assert.Len(t, target.Violations, 2)
}
