package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FlowSnapshot freezes the full configuration surface of a flow at the
// moment an application starts. Rows are write-once: there are no update
// paths anywhere in the codebase, so running applications are immune to
// later config changes.
//
// Data layout:
//
//	{
//	  "flowId": "...",
//	  "flowVersion": 3,
//	  "flowDefinition": { ... },
//	  "screenConfigs": {
//	    "<screenId>": {
//	      "screenConfig": { ... },
//	      "validationConfig": { ... },   // omitted when none resolves
//	      "mappingConfig": { ... }       // omitted when none resolves
//	    }
//	  }
//	}
type FlowSnapshot struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID      `gorm:"column:application_id;type:uuid;not null;index" json:"applicationId"`
	FlowConfigID  uuid.UUID      `gorm:"column:flow_config_id;type:uuid;not null" json:"flowConfigId"`
	Data          datatypes.JSON `gorm:"column:data;type:jsonb;not null" json:"data"`
	CreatedAt     time.Time      `gorm:"not null" json:"createdAt"`
}

func (FlowSnapshot) TableName() string { return "flow_snapshots" }
