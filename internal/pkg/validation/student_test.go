package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

func validCreateRequest() *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		StudentID:   "ST001",
		FirstName:   "Ana",
		LastName:    "Lee",
		Course:      "CS",
		Address:     "1 Main St",
		BadgeNumber: "BCH01",
	}
}

func violationFields(t *testing.T, err error) []string {
	t.Helper()
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)

	fields := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func TestValidateCreateAcceptsValidRequest(t *testing.T) {
	req := validCreateRequest()
	req.FirstName = "  Ana  "
	req.Address = "1 Main St / Apt <2>"

	require.NoError(t, NewStudentValidator(false).ValidateCreate(req))

	assert.Equal(t, "Ana", req.FirstName)
	assert.Equal(t, "1 Main St &#x2F; Apt &lt;2&gt;", req.Address)
	assert.Equal(t, "ST001", req.StudentID)
}

func TestValidateCreateReportsEveryInvalidField(t *testing.T) {
	req := &dto.CreateStudentRequest{
		StudentID: "ST-001",
		FirstName: "   ",
		LastName:  "Lee",
		Address:   "1 Main St",
	}

	err := NewStudentValidator(false).ValidateCreate(req)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, []string{"studentId", "firstName", "course", "badgeNumber"}, violationFields(t, err))

	// Nothing is escaped when the request is rejected
	assert.Equal(t, "ST-001", req.StudentID)
}

func TestValidateCreateEmptyStudentID(t *testing.T) {
	req := validCreateRequest()
	req.StudentID = ""

	err := NewStudentValidator(false).ValidateCreate(req)
	assert.Equal(t, []string{"studentId"}, violationFields(t, err))

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "studentId is required", verr.Violations[0].Message)
}

func TestValidateCreateLenientModeAllowsAnyAlphanumericFormat(t *testing.T) {
	req := validCreateRequest()
	req.StudentID = "abc123"
	req.BadgeNumber = "B-7"
	req.FirstName = "Ana2"

	assert.NoError(t, NewStudentValidator(false).ValidateCreate(req))
}

func TestValidateCreateStrictModeEnforcesFormFormats(t *testing.T) {
	req := validCreateRequest()
	req.StudentID = "ST0001"
	req.BadgeNumber = "BCH1"
	req.LastName = "Lee3"

	err := NewStudentValidator(true).ValidateCreate(req)
	assert.Equal(t, []string{"studentId", "lastName", "badgeNumber"}, violationFields(t, err))

	assert.NoError(t, NewStudentValidator(true).ValidateCreate(validCreateRequest()))
}

func TestValidateCreateStrictModeDoesNotDoubleReport(t *testing.T) {
	req := validCreateRequest()
	req.StudentID = ""

	err := NewStudentValidator(true).ValidateCreate(req)
	assert.Equal(t, []string{"studentId"}, violationFields(t, err))
}

func TestValidateUpdateOnlyTouchesSuppliedFields(t *testing.T) {
	course := "  Math & Physics "
	req := &dto.UpdateStudentRequest{Course: &course}

	changes, err := NewStudentValidator(false).ValidateUpdate(req)
	require.NoError(t, err)

	require.NotNil(t, changes.Course)
	assert.Equal(t, "Math &amp; Physics", *changes.Course)
	assert.Nil(t, changes.StudentID)
	assert.Nil(t, changes.FirstName)
	assert.Nil(t, changes.ImagePic)
}

func TestValidateUpdateRejectsEmptyAndMalformedValues(t *testing.T) {
	empty, bad := " ", "ST 001"
	req := &dto.UpdateStudentRequest{StudentID: &bad, Address: &empty}

	_, err := NewStudentValidator(false).ValidateUpdate(req)
	assert.Equal(t, []string{"studentId", "address"}, violationFields(t, err))
}

func TestValidateUpdateStrictMode(t *testing.T) {
	badge := "BCH100"
	_, err := NewStudentValidator(true).ValidateUpdate(&dto.UpdateStudentRequest{BadgeNumber: &badge})
	assert.Equal(t, []string{"badgeNumber"}, violationFields(t, err))
}
