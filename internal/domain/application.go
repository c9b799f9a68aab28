package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus tracks an application's progress through its flow.
type ApplicationStatus string

const (
	AppInitiated  ApplicationStatus = "INITIATED"
	AppInProgress ApplicationStatus = "IN_PROGRESS"
	AppCompleted  ApplicationStatus = "COMPLETED"
)

// Application is one end-user journey through a flow. Version is an
// optimistic lock counter bumped on every update.
type Application struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ProductCode     string            `gorm:"column:product_code;not null;index:idx_application_scope" json:"productCode"`
	PartnerCode     *string           `gorm:"column:partner_code;index:idx_application_scope" json:"partnerCode,omitempty"`
	BranchCode      *string           `gorm:"column:branch_code;index:idx_application_scope" json:"branchCode,omitempty"`
	Status          ApplicationStatus `gorm:"column:status;not null;default:'INITIATED'" json:"status"`
	CurrentScreenID *string           `gorm:"column:current_screen_id" json:"currentScreenId,omitempty"`
	FlowSnapshotID  *uuid.UUID        `gorm:"column:flow_snapshot_id;type:uuid" json:"flowSnapshotId,omitempty"`
	CreatedBy       string            `gorm:"column:created_by" json:"createdBy"`
	CreatedAt       time.Time         `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updatedAt"`
	Version         int               `gorm:"column:version;not null;default:0" json:"-"`
}

func (Application) TableName() string { return "applications" }

func (a *Application) Scope() Scope {
	return Scope{ProductCode: a.ProductCode, PartnerCode: a.PartnerCode, BranchCode: a.BranchCode}
}
