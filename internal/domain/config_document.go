package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConfigKind discriminates the four configuration families stored in the
// config_documents table.
type ConfigKind string

const (
	KindScreen       ConfigKind = "SCREEN"
	KindFlow         ConfigKind = "FLOW"
	KindValidation   ConfigKind = "VALIDATION"
	KindFieldMapping ConfigKind = "FIELD_MAPPING"
)

func (k ConfigKind) Valid() bool {
	switch k {
	case KindScreen, KindFlow, KindValidation, KindFieldMapping:
		return true
	}
	return false
}

// ConfigStatus is the lifecycle state of a config document.
//
// DRAFT is editable and never served at runtime. ACTIVE is the single
// runtime-usable state. DEPRECATED is set automatically when a newer
// version is activated in the same exact scope. INACTIVE is a manual
// kill switch and is terminal for activation purposes.
type ConfigStatus string

const (
	StatusDraft      ConfigStatus = "DRAFT"
	StatusActive     ConfigStatus = "ACTIVE"
	StatusDeprecated ConfigStatus = "DEPRECATED"
	StatusInactive   ConfigStatus = "INACTIVE"
)

// RuntimeUsable reports whether a document in this status may be served
// to running applications.
func (s ConfigStatus) RuntimeUsable() bool { return s == StatusActive }

// ConfigDocument is one versioned, scoped configuration document. The
// logical key is the screen id for SCREEN/VALIDATION/FIELD_MAPPING kinds
// and the flow id for FLOW kind. Nil scope columns mean "any".
type ConfigDocument struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind        ConfigKind     `gorm:"column:kind;not null;index;uniqueIndex:ux_config_scope_version" json:"kind"`
	LogicalKey  string         `gorm:"column:logical_key;not null;index;uniqueIndex:ux_config_scope_version" json:"logicalKey"`
	ProductCode *string        `gorm:"column:product_code;uniqueIndex:ux_config_scope_version" json:"productCode,omitempty"`
	PartnerCode *string        `gorm:"column:partner_code;uniqueIndex:ux_config_scope_version" json:"partnerCode,omitempty"`
	BranchCode  *string        `gorm:"column:branch_code;uniqueIndex:ux_config_scope_version" json:"branchCode,omitempty"`
	Version     int            `gorm:"column:version;not null;default:1;uniqueIndex:ux_config_scope_version" json:"version"`
	Status      ConfigStatus   `gorm:"column:status;not null;default:'DRAFT';index" json:"status"`
	Body        datatypes.JSON `gorm:"column:body;type:jsonb" json:"body"`
	CreatedBy   string         `gorm:"column:created_by" json:"createdBy"`
	UpdatedBy   string         `gorm:"column:updated_by" json:"updatedBy"`
	CreatedAt   time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updatedAt"`
	LockVersion int            `gorm:"column:lock_version;not null;default:0" json:"-"`
}

func (ConfigDocument) TableName() string { return "config_documents" }

// Scope returns the document's scope tuple.
func (d *ConfigDocument) Scope() Scope {
	product := ""
	if d.ProductCode != nil {
		product = *d.ProductCode
	}
	return Scope{ProductCode: product, PartnerCode: d.PartnerCode, BranchCode: d.BranchCode}
}
