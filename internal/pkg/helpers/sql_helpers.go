package helpers

import "database/sql"

// GetNullString converts a string pointer to sql.NullString.
// A nil pointer becomes NULL.
func GetNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// GetContentNullString converts a string to sql.NullString, storing the empty
// string as NULL so optional unique columns do not collide on it.
func GetContentNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
