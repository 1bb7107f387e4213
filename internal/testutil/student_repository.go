package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// MemoryStudentRepository is an in-memory student store enforcing the same
// uniqueness rules as the database indexes
type MemoryStudentRepository struct {
	mu       sync.Mutex
	students map[string]*models.Student
	now      func() time.Time

	// FailUpdate, when set, is returned by the next Update call
	FailUpdate error
	// BeforeUpdate, when set, runs once at the start of the next Update call
	BeforeUpdate func()
}

// NewMemoryStudentRepository creates an empty repository
func NewMemoryStudentRepository() *MemoryStudentRepository {
	return &MemoryStudentRepository{
		students: make(map[string]*models.Student),
		now:      time.Now,
	}
}

// Create inserts a copy of student
func (r *MemoryStudentRepository) Create(_ context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique("", student.StudentID, student.BadgeNumber); err != nil {
		return err
	}

	// Distinct timestamps keep the insertion order stable
	now := r.now().UTC().Add(time.Duration(len(r.students)) * time.Microsecond)
	student.ID = uuid.NewString()
	student.CreatedAt = now
	student.UpdatedAt = now

	stored := *student
	r.students[stored.ID] = &stored
	return nil
}

// Find returns copies of the matching students, oldest first
func (r *MemoryStudentRepository) Find(_ context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.Student, 0)
	for _, s := range r.students {
		if filter.Matches(s) {
			cp := *s
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// FindByID returns a copy of the student
func (r *MemoryStudentRepository) FindByID(_ context.Context, id string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	cp := *s
	return &cp, nil
}

// Update applies the changes unless they would break uniqueness and returns
// the record after and before the write
func (r *MemoryStudentRepository) Update(_ context.Context, id string, changes models.StudentChanges) (*models.Student, *models.Student, error) {
	r.mu.Lock()
	hook := r.BeforeUpdate
	r.BeforeUpdate = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailUpdate != nil {
		err := r.FailUpdate
		r.FailUpdate = nil
		return nil, nil, err
	}

	s, err := r.lookup(id)
	if err != nil {
		return nil, nil, err
	}

	next := *s
	changes.Apply(&next)
	if err := r.checkUnique(id, next.StudentID, next.BadgeNumber); err != nil {
		return nil, nil, err
	}
	next.UpdatedAt = r.now().UTC()
	r.students[id] = &next

	updated, previous := next, *s
	return &updated, &previous, nil
}

// Delete removes the student and returns it
func (r *MemoryStudentRepository) Delete(_ context.Context, id string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	delete(r.students, id)
	return s, nil
}

// Len returns the number of stored students
func (r *MemoryStudentRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.students)
}

func (r *MemoryStudentRepository) lookup(id string) (*models.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrInvalidStudentRecordID
	}
	s, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return s, nil
}

func (r *MemoryStudentRepository) checkUnique(selfID, studentID, badgeNumber string) error {
	for id, s := range r.students {
		if id == selfID {
			continue
		}
		if s.StudentID == studentID {
			return apperrors.ErrStudentIDAlreadyExists
		}
		if badgeNumber != "" && s.BadgeNumber == badgeNumber {
			return apperrors.ErrBadgeNumberAlreadyExists
		}
	}
	return nil
}
