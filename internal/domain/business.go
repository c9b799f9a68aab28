package domain

import (
	"time"

	"github.com/google/uuid"
)

// Business holds the enterprise details captured for business loan
// products. Created lazily by the field mapping engine, like Applicant.
type Business struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID         uuid.UUID `gorm:"column:application_id;type:uuid;not null;uniqueIndex" json:"applicationId"`
	BusinessName          string    `gorm:"column:business_name" json:"businessName"`
	BusinessType          string    `gorm:"column:business_type" json:"businessType"`
	BusinessAddress       string    `gorm:"column:business_address" json:"businessAddress"`
	Gstin                 string    `gorm:"column:gstin" json:"gstin"`
	BusinessVintageMonths *int      `gorm:"column:business_vintage_months" json:"businessVintageMonths,omitempty"`
	AnnualTurnover        *float64  `gorm:"column:annual_turnover" json:"annualTurnover,omitempty"`
	CreatedAt             time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt             time.Time `gorm:"not null" json:"updatedAt"`
}

func (Business) TableName() string { return "businesses" }
