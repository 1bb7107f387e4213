package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
	"github.com/yigit/studentrecords/internal/pkg/filestorage"
)

// StudentController handles student record endpoints
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// CreateStudent handles student creation
// @Summary Create a student
// @Description Creates a student record from a multipart form. The profile image is sent in the "file" field.
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Param studentId formData string true "Student ID"
// @Param firstName formData string true "First name"
// @Param lastName formData string true "Last name"
// @Param course formData string true "Course"
// @Param address formData string true "Address"
// @Param badgeNumber formData string true "Badge number"
// @Param file formData file true "Profile image (.png, .jpg, .jpeg)"
// @Success 200 {object} models.Student "Created student"
// @Failure 400 {object} dto.ValidationErrors "Invalid fields or missing image"
// @Failure 409 {object} dto.ErrorResponse "Student ID or badge number already exists"
// @Failure 413 {object} dto.ErrorResponse "Image too large"
// @Failure 415 {object} dto.ErrorResponse "Unsupported image type"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		badRequest(ctx, "Invalid student data", err)
		return
	}

	image, err := optionalFormFile(ctx)
	if err != nil {
		badRequest(ctx, "Invalid file upload", err)
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, student)
}

// ListStudents returns every student, optionally filtered
// @Summary List students
// @Description Returns all students, or only those whose studentId and/or badgeNumber match exactly
// @Tags students
// @Produce json
// @Param studentId query string false "Exact student ID"
// @Param badgeNumber query string false "Exact badge number"
// @Success 200 {array} models.Student "Matching students"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	var filter dto.StudentFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		badRequest(ctx, "Invalid query parameters", err)
		return
	}

	students, err := c.studentService.ListStudents(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, students)
}

// GetStudent retrieves a student by record id
// @Summary Get a student
// @Tags students
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} models.Student "Student"
// @Failure 400 {object} dto.ErrorResponse "Malformed record ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.GetStudent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, student)
}

// UpdateStudent changes the supplied fields and optionally replaces the image
// @Summary Update a student
// @Description Updates only the supplied fields. A new image in the "file" field replaces the old one, which is then deleted.
// @Tags students
// @Accept multipart/form-data,json
// @Produce json
// @Param id path string true "Record ID"
// @Param studentId formData string false "Student ID"
// @Param firstName formData string false "First name"
// @Param lastName formData string false "Last name"
// @Param course formData string false "Course"
// @Param address formData string false "Address"
// @Param badgeNumber formData string false "Badge number"
// @Param file formData file false "New profile image (.png, .jpg, .jpeg)"
// @Success 200 {object} models.Student "Updated student"
// @Failure 400 {object} dto.ValidationErrors "Invalid fields or record ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student ID or badge number already exists"
// @Failure 413 {object} dto.ErrorResponse "Image too large"
// @Failure 415 {object} dto.ErrorResponse "Unsupported image type"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		badRequest(ctx, "Invalid student data", err)
		return
	}

	image, err := optionalFormFile(ctx)
	if err != nil {
		badRequest(ctx, "Invalid file upload", err)
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), ctx.Param("id"), &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, student)
}

// DeleteStudent removes a student
// @Summary Delete a student
// @Tags students
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {string} string "Student has been deleted..."
// @Failure 400 {object} dto.ErrorResponse "Malformed record ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	if err := c.studentService.DeleteStudent(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.DeleteConfirmation)
}

// optionalFormFile returns the uploaded image, or nil when the request carries none
func optionalFormFile(ctx *gin.Context) (*multipart.FileHeader, error) {
	file, err := ctx.FormFile(filestorage.FileField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func badRequest(ctx *gin.Context, message string, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, message).WithDetails(err.Error())
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}
