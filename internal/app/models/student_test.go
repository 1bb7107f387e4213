package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentFilterMatchesExactly(t *testing.T) {
	s := &Student{StudentID: "ST001", BadgeNumber: "BCH01"}

	assert.True(t, StudentFilter{}.Matches(s))
	assert.True(t, StudentFilter{StudentID: "ST001"}.Matches(s))
	assert.True(t, StudentFilter{StudentID: "ST001", BadgeNumber: "BCH01"}.Matches(s))
	assert.False(t, StudentFilter{StudentID: "ST00"}.Matches(s))
	assert.False(t, StudentFilter{StudentID: "ST001", BadgeNumber: "BCH02"}.Matches(s))
	assert.True(t, StudentFilter{}.IsEmpty())
	assert.False(t, StudentFilter{BadgeNumber: "BCH01"}.IsEmpty())
}

func TestStudentChangesApply(t *testing.T) {
	s := &Student{StudentID: "ST001", FirstName: "Ana", Course: "CS", ImagePic: "images/old.png"}
	course, pic := "Math", "images/new.png"

	changes := StudentChanges{Course: &course, ImagePic: &pic}
	assert.False(t, changes.IsEmpty())
	changes.Apply(s)

	assert.Equal(t, "ST001", s.StudentID)
	assert.Equal(t, "Ana", s.FirstName)
	assert.Equal(t, "Math", s.Course)
	assert.Equal(t, "images/new.png", s.ImagePic)
	assert.True(t, StudentChanges{}.IsEmpty())
}
