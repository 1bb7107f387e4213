package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// StudentValidator checks and normalises student input before it reaches the store
type StudentValidator struct {
	validate *validator.Validate
	strict   bool
}

// NewStudentValidator creates a validator. With strict set, the form formats
// (ST + 3 digits, BCH + 2 digits, letters-only names) are enforced as well.
func NewStudentValidator(strict bool) *StudentValidator {
	v := validator.New()
	// Report fields under their form names, e.g. "studentId" instead of "StudentID"
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &StudentValidator{validate: v, strict: strict}
}

// ValidateCreate trims, checks and escapes req in place.
// It returns a *apperrors.ValidationError listing every rejected field.
func (sv *StudentValidator) ValidateCreate(req *dto.CreateStudentRequest) error {
	fields := []*string{&req.StudentID, &req.FirstName, &req.LastName, &req.Course, &req.Address, &req.BadgeNumber}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}

	verr := &apperrors.ValidationError{}
	failed := make(map[string]bool)

	if err := sv.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate student: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fmt.Sprint(fe.Value()), formatFieldError(fe))
			failed[fe.Field()] = true
		}
	}

	if sv.strict {
		for _, check := range []struct {
			field string
			value string
		}{
			{"studentId", req.StudentID},
			{"firstName", req.FirstName},
			{"lastName", req.LastName},
			{"badgeNumber", req.BadgeNumber},
		} {
			if failed[check.field] {
				continue
			}
			sv.checkFormat(verr, check.field, check.value)
		}
	}

	if verr.HasViolations() {
		return verr
	}

	for _, f := range fields {
		*f = Escape(*f)
	}
	return nil
}

// ValidateUpdate applies the create rules to every supplied field and returns
// the sanitized changes. Absent fields stay nil.
func (sv *StudentValidator) ValidateUpdate(req *dto.UpdateStudentRequest) (models.StudentChanges, error) {
	verr := &apperrors.ValidationError{}
	changes := models.StudentChanges{}

	for _, f := range []struct {
		name string
		src  *string
		dst  **string
	}{
		{"studentId", req.StudentID, &changes.StudentID},
		{"firstName", req.FirstName, &changes.FirstName},
		{"lastName", req.LastName, &changes.LastName},
		{"course", req.Course, &changes.Course},
		{"address", req.Address, &changes.Address},
		{"badgeNumber", req.BadgeNumber, &changes.BadgeNumber},
	} {
		if f.src == nil {
			continue
		}

		value := strings.TrimSpace(*f.src)
		if !NewStringValidation(value).Validate() {
			verr.Add(f.name, value, f.name+" is required")
			continue
		}
		if f.name == "studentId" && !NewStringValidation(value).WithPattern(CompiledPatterns.Alphanumeric).Validate() {
			verr.Add(f.name, value, f.name+" must contain only letters and digits")
			continue
		}
		if sv.strict && !sv.checkFormat(verr, f.name, value) {
			continue
		}

		escaped := Escape(value)
		*f.dst = &escaped
	}

	if verr.HasViolations() {
		return models.StudentChanges{}, verr
	}
	return changes, nil
}

// checkFormat enforces the strict form format for field, recording a violation
// and returning false on mismatch. Fields without a format always pass.
func (sv *StudentValidator) checkFormat(verr *apperrors.ValidationError, field, value string) bool {
	var (
		pattern *regexp.Regexp
		message string
	)
	switch field {
	case "studentId":
		pattern, message = CompiledPatterns.StudentID, `studentId must start with "ST" followed by 3 digits`
	case "badgeNumber":
		pattern, message = CompiledPatterns.BadgeNumber, `badgeNumber must start with "BCH" followed by 2 digits`
	case "firstName", "lastName":
		pattern, message = CompiledPatterns.PersonName, field+" can only contain letters and spaces"
	default:
		return true
	}

	if !NewStringValidation(value).WithPattern(pattern).Validate() {
		verr.Add(field, value, message)
		return false
	}
	return true
}

// formatFieldError creates a human-readable validation error message
func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "alphanum":
		return e.Field() + " must contain only letters and digits"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
