package repositories

import (
	"context"

	"github.com/yigit/studentrecords/internal/app/models"
)

// Unique key names shared by both stores. The Mongo names are the ones the
// server derives from the index keys, so collections indexed by earlier
// deployments are reused as they are.
const (
	StudentIDMongoIndex           = "studentId_1"
	BadgeNumberMongoIndex         = "badgeNumber_1"
	StudentIDPostgresConstraint   = "students_student_id_key"
	BadgeNumberPostgresConstraint = "students_badge_number_key"
)

// StudentRepository persists student records.
//
// Create assigns ID, CreatedAt and UpdatedAt on the passed record. Update
// returns the record after the write together with the record it replaced,
// both taken from the same atomic write. Delete returns the removed record.
// Lookups of a missing record return apperrors.ErrStudentNotFound and
// malformed ids return apperrors.ErrInvalidStudentRecordID.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	Find(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Update(ctx context.Context, id string, changes models.StudentChanges) (updated, previous *models.Student, err error)
	Delete(ctx context.Context, id string) (*models.Student, error)
}
