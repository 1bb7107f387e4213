package validation

import (
	"regexp"
)

// Validation rule patterns
var (
	// Server-side identifier rule, always enforced
	AlphanumericPattern = `^[a-zA-Z0-9]+$`

	// Form formats, enforced server side only in strict mode
	StudentIDPattern   = `^ST\d{3}$`
	BadgeNumberPattern = `^BCH\d{2}$`
	PersonNamePattern  = `^[a-zA-Z\s]*$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Alphanumeric *regexp.Regexp
	StudentID    *regexp.Regexp
	BadgeNumber  *regexp.Regexp
	PersonName   *regexp.Regexp
}{
	Alphanumeric: regexp.MustCompile(AlphanumericPattern),
	StudentID:    regexp.MustCompile(StudentIDPattern),
	BadgeNumber:  regexp.MustCompile(BadgeNumberPattern),
	PersonName:   regexp.MustCompile(PersonNamePattern),
}

// StringValidation is a small builder for single-value checks. A value passes
// when it is non-empty and matches the pattern, if one is set.
type StringValidation struct {
	Value   string
	Pattern *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{Value: value}
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}
