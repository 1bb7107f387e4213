package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/filestorage"
	"github.com/yigit/studentrecords/internal/pkg/validation"
)

// StudentService defines the student record lifecycle
type StudentService interface {
	CreateStudent(ctx context.Context, req *dto.CreateStudentRequest, image *multipart.FileHeader) (*models.Student, error)
	ListStudents(ctx context.Context, req *dto.StudentFilterRequest) ([]*models.Student, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	UpdateStudent(ctx context.Context, id string, req *dto.UpdateStudentRequest, image *multipart.FileHeader) (*models.Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	studentRepo repositories.StudentRepository
	images      filestorage.ImageStorage
	validator   *validation.StudentValidator
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo repositories.StudentRepository,
	images filestorage.ImageStorage,
	validator *validation.StudentValidator,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		images:      images,
		validator:   validator,
		logger:      logger,
	}
}

// CreateStudent validates the fields and the image, stores the image and inserts the record.
// The stored image is removed again if the insert fails.
func (s *studentServiceImpl) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest, image *multipart.FileHeader) (*models.Student, error) {
	if image == nil {
		return nil, apperrors.ErrImageRequired
	}
	if err := s.images.CheckImage(image); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, err
	}

	imagePath, err := s.images.SaveImage(image)
	if err != nil {
		return nil, fmt.Errorf("error storing image: %w", err)
	}

	student := &models.Student{
		StudentID:   req.StudentID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Course:      req.Course,
		Address:     req.Address,
		BadgeNumber: req.BadgeNumber,
		ImagePic:    imagePath,
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		s.discardImage(imagePath)
		return nil, err
	}

	s.logger.Info().Str("id", student.ID).Str("studentId", student.StudentID).Msg("Student created")
	return student, nil
}

// ListStudents returns all records, or those matching every supplied filter field exactly
func (s *studentServiceImpl) ListStudents(ctx context.Context, req *dto.StudentFilterRequest) ([]*models.Student, error) {
	filter := models.StudentFilter{}
	if req != nil {
		// Stored values are escaped, so the filter has to be as well
		filter.StudentID = validation.Sanitize(req.StudentID)
		filter.BadgeNumber = validation.Sanitize(req.BadgeNumber)
	}

	students, err := s.studentRepo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return students, nil
}

// GetStudent returns a single record
func (s *studentServiceImpl) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	return s.studentRepo.FindByID(ctx, id)
}

// UpdateStudent changes the supplied fields and optionally replaces the image.
// A replacement image is written before the record and the file the write
// replaced is deleted only after the record points at the new one.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id string, req *dto.UpdateStudentRequest, image *multipart.FileHeader) (*models.Student, error) {
	existing, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if image != nil {
		if err := s.images.CheckImage(image); err != nil {
			return nil, err
		}
	}

	changes, err := s.validator.ValidateUpdate(req)
	if err != nil {
		return nil, err
	}

	if image == nil {
		if changes.IsEmpty() {
			return existing, nil
		}
		updated, _, err := s.studentRepo.Update(ctx, id, changes)
		return updated, err
	}

	newPath, err := s.images.SaveImage(image)
	if err != nil {
		return nil, fmt.Errorf("error storing image: %w", err)
	}
	changes.ImagePic = &newPath

	updated, previous, err := s.studentRepo.Update(ctx, id, changes)
	if err != nil {
		s.discardImage(newPath)
		return nil, err
	}

	if previous.ImagePic != "" && previous.ImagePic != newPath {
		if err := s.images.DeleteFile(previous.ImagePic); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Str("path", previous.ImagePic).Msg("Failed to delete replaced image")
		}
	}

	s.logger.Info().Str("id", id).Str("imagePic", newPath).Msg("Student image replaced")
	return updated, nil
}

// DeleteStudent removes the record; removing its image is best effort
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id string) error {
	deleted, err := s.studentRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if deleted.ImagePic != "" {
		if err := s.images.DeleteFile(deleted.ImagePic); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Str("path", deleted.ImagePic).Msg("Failed to delete image of removed student")
		}
	}

	s.logger.Info().Str("id", id).Str("studentId", deleted.StudentID).Msg("Student deleted")
	return nil
}

func (s *studentServiceImpl) discardImage(path string) {
	if err := s.images.DeleteFile(path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove image of unsaved student")
	}
}
