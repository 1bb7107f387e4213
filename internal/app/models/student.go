package models

import "time"

// Student is a single persisted student record
type Student struct {
	ID          string    `json:"_id" example:"665f1c2e9b1d4a3f8c7e6d5a"`       // Internal identifier assigned by the store
	StudentID   string    `json:"studentId" example:"ST001"`                    // Unique student identifier
	FirstName   string    `json:"firstName" example:"Ana"`                      // Given name
	LastName    string    `json:"lastName" example:"Lee"`                       // Family name
	Course      string    `json:"course" example:"CS"`                          // Enrolled course
	Address     string    `json:"address" example:"1 Main St"`                  // Postal address
	BadgeNumber string    `json:"badgeNumber,omitempty" example:"BCH01"`        // Optional badge number, unique when present
	ImagePic    string    `json:"imagePic,omitempty" example:"images/3f2a.png"` // Stored profile image path
	CreatedAt   time.Time `json:"createdAt" example:"2024-01-15T10:00:00Z"`     // Set on insert
	UpdatedAt   time.Time `json:"updatedAt" example:"2024-01-15T10:00:00Z"`     // Set on every write
}

// StudentFilter selects records by exact match on every non-empty field
type StudentFilter struct {
	StudentID   string
	BadgeNumber string
}

// IsEmpty reports whether the filter matches every record
func (f StudentFilter) IsEmpty() bool {
	return f.StudentID == "" && f.BadgeNumber == ""
}

// Matches reports whether s satisfies every non-empty field of the filter
func (f StudentFilter) Matches(s *Student) bool {
	if f.StudentID != "" && s.StudentID != f.StudentID {
		return false
	}
	if f.BadgeNumber != "" && s.BadgeNumber != f.BadgeNumber {
		return false
	}
	return true
}

// StudentChanges holds the fields of an update; nil means "leave unchanged"
type StudentChanges struct {
	StudentID   *string
	FirstName   *string
	LastName    *string
	Course      *string
	Address     *string
	BadgeNumber *string
	ImagePic    *string
}

// IsEmpty reports whether no field would change
func (c StudentChanges) IsEmpty() bool {
	return c.StudentID == nil && c.FirstName == nil && c.LastName == nil && c.Course == nil &&
		c.Address == nil && c.BadgeNumber == nil && c.ImagePic == nil
}

// Apply merges the changes into s
func (c StudentChanges) Apply(s *Student) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.StudentID, c.StudentID)
	set(&s.FirstName, c.FirstName)
	set(&s.LastName, c.LastName)
	set(&s.Course, c.Course)
	set(&s.Address, c.Address)
	set(&s.BadgeNumber, c.BadgeNumber)
	set(&s.ImagePic, c.ImagePic)
}
