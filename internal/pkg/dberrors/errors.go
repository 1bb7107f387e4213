package dberrors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	// 23505 is unique_violation
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
}

// IsDuplicateIndexError checks if the error is a MongoDB E11000 duplicate key error
// raised by the named index.
func IsDuplicateIndexError(err error, indexName string) bool {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return false
	}
	// The server reports the index as "... index: <name> dup key: ..."
	return strings.Contains(err.Error(), "index: "+indexName+" ")
}
