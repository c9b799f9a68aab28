package domain

import (
	"time"

	"github.com/google/uuid"
)

// Applicant is the person behind an application. Rows are created lazily
// by the field mapping engine the first time a mapping targets one.
type Applicant struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"column:application_id;type:uuid;not null;uniqueIndex" json:"applicationId"`
	FullName      string    `gorm:"column:full_name" json:"fullName"`
	FirstName     string    `gorm:"column:first_name" json:"firstName"`
	MiddleName    string    `gorm:"column:middle_name" json:"middleName"`
	LastName      string    `gorm:"column:last_name" json:"lastName"`
	Mobile        string    `gorm:"column:mobile" json:"mobile"`
	Email         string    `gorm:"column:email" json:"email"`
	Dob           *time.Time `gorm:"column:dob" json:"dob,omitempty"`
	Gender        string    `gorm:"column:gender" json:"gender"`
	PanNumber     string    `gorm:"column:pan_number" json:"panNumber"`
	AadhaarNumber string    `gorm:"column:aadhaar_number" json:"aadhaarNumber"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"not null" json:"updatedAt"`
}

func (Applicant) TableName() string { return "applicants" }
