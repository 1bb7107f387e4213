package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/db"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/dberrors"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

const studentsTable = "students"

var studentColumns = []string{
	"id", "student_id", "first_name", "last_name", "course", "address",
	"badge_number", "image_pic", "created_at", "updated_at",
}

// PostgresStudentRepository stores students in a PostgreSQL table
type PostgresStudentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewPostgresStudentRepository creates a new PostgresStudentRepository
func NewPostgresStudentRepository(database *db.PostgresDB) *PostgresStudentRepository {
	return &PostgresStudentRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new student
func (r *PostgresStudentRepository) Create(ctx context.Context, student *models.Student) error {
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	query, args, err := r.sb.Insert(studentsTable).
		Columns(studentColumns...).
		Values(id.String(), student.StudentID, student.FirstName, student.LastName, student.Course, student.Address,
			helpers.GetContentNullString(student.BadgeNumber), helpers.GetContentNullString(student.ImagePic), now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, query, args...); err != nil {
		if mapped := mapPostgresDuplicate(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("studentId", student.StudentID).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	student.ID = id.String()
	student.CreatedAt = now
	student.UpdatedAt = now
	return nil
}

// Find returns every student matching the filter, oldest first
func (r *PostgresStudentRepository) Find(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	query, args, err := r.findQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}

	return students, nil
}

// FindByID returns the student with the given id
func (r *PostgresStudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrInvalidStudentRecordID
	}

	query, args, err := r.sb.Select(studentColumns...).
		From(studentsTable).
		Where(squirrel.Eq{"id": uid.String()}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// Update applies the changes. The row is locked and read before the write in
// the same transaction, so the previous record is the one the update replaced.
func (r *PostgresStudentRepository) Update(ctx context.Context, id string, changes models.StudentChanges) (*models.Student, *models.Student, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, nil, apperrors.ErrInvalidStudentRecordID
	}

	lockQuery, lockArgs, err := r.lockQuery(uid).ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build lock student query: %w", err)
	}
	query, args, err := r.updateQuery(uid, changes, time.Now().UTC().Truncate(time.Microsecond)).ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build update student query: %w", err)
	}

	var updated, previous *models.Student
	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var txErr error
		if previous, txErr = scanStudent(tx.QueryRow(ctx, lockQuery, lockArgs...)); txErr != nil {
			return txErr
		}
		updated, txErr = scanStudent(tx.QueryRow(ctx, query, args...))
		return txErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.ErrStudentNotFound
		}
		if mapped := mapPostgresDuplicate(err); mapped != nil {
			return nil, nil, mapped
		}
		logger.Error().Err(err).Str("id", id).Msg("Error executing update student query")
		return nil, nil, err
	}
	return updated, previous, nil
}

// Delete removes the student and returns it as it was
func (r *PostgresStudentRepository) Delete(ctx context.Context, id string) (*models.Student, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrInvalidStudentRecordID
	}

	query, args, err := r.sb.Delete(studentsTable).
		Where(squirrel.Eq{"id": uid.String()}).
		Suffix(returningStudent()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete student query: %w", err)
	}

	var deleted *models.Student
	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var scanErr error
		deleted, scanErr = scanStudent(tx.QueryRow(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, err
	}
	return deleted, nil
}

func (r *PostgresStudentRepository) findQuery(filter models.StudentFilter) squirrel.SelectBuilder {
	builder := r.sb.Select(studentColumns...).From(studentsTable)
	if filter.StudentID != "" {
		builder = builder.Where(squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.BadgeNumber != "" {
		builder = builder.Where(squirrel.Eq{"badge_number": filter.BadgeNumber})
	}
	return builder.OrderBy("created_at ASC", "id ASC")
}

func (r *PostgresStudentRepository) lockQuery(id uuid.UUID) squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).
		From(studentsTable).
		Where(squirrel.Eq{"id": id.String()}).
		Suffix("FOR UPDATE")
}

func (r *PostgresStudentRepository) updateQuery(id uuid.UUID, changes models.StudentChanges, now time.Time) squirrel.UpdateBuilder {
	set := map[string]interface{}{"updated_at": now}
	for column, value := range map[string]*string{
		"student_id":   changes.StudentID,
		"first_name":   changes.FirstName,
		"last_name":    changes.LastName,
		"course":       changes.Course,
		"address":      changes.Address,
		"badge_number": changes.BadgeNumber,
		"image_pic":    changes.ImagePic,
	} {
		if value != nil {
			set[column] = helpers.GetNullString(value)
		}
	}

	return r.sb.Update(studentsTable).
		SetMap(set).
		Where(squirrel.Eq{"id": id.String()}).
		Suffix(returningStudent())
}

func returningStudent() string {
	return "RETURNING id, student_id, first_name, last_name, course, address, badge_number, image_pic, created_at, updated_at"
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var (
		student     models.Student
		id          uuid.UUID
		badgeNumber sql.NullString
		imagePic    sql.NullString
	)
	err := row.Scan(&id, &student.StudentID, &student.FirstName, &student.LastName, &student.Course,
		&student.Address, &badgeNumber, &imagePic, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning student: %w", err)
	}
	student.ID = id.String()
	student.BadgeNumber = badgeNumber.String
	student.ImagePic = imagePic.String
	return &student, nil
}

func mapPostgresDuplicate(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, StudentIDPostgresConstraint):
		return apperrors.ErrStudentIDAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, BadgeNumberPostgresConstraint):
		return apperrors.ErrBadgeNumberAlreadyExists
	}
	return nil
}
