package dto

// CreateStudentRequest is the multipart form submitted to create a record.
// The image travels separately under the "file" form field.
type CreateStudentRequest struct {
	StudentID   string `form:"studentId" json:"studentId" validate:"required,alphanum"`
	FirstName   string `form:"firstName" json:"firstName" validate:"required"`
	LastName    string `form:"lastName" json:"lastName" validate:"required"`
	Course      string `form:"course" json:"course" validate:"required"`
	Address     string `form:"address" json:"address" validate:"required"`
	BadgeNumber string `form:"badgeNumber" json:"badgeNumber" validate:"required"`
}

// UpdateStudentRequest carries only the fields the client supplied
type UpdateStudentRequest struct {
	StudentID   *string `form:"studentId" json:"studentId"`
	FirstName   *string `form:"firstName" json:"firstName"`
	LastName    *string `form:"lastName" json:"lastName"`
	Course      *string `form:"course" json:"course"`
	Address     *string `form:"address" json:"address"`
	BadgeNumber *string `form:"badgeNumber" json:"badgeNumber"`
}

// StudentFilterRequest holds the optional list query parameters
type StudentFilterRequest struct {
	StudentID   string `form:"studentId"`
	BadgeNumber string `form:"badgeNumber"`
}
