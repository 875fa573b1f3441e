package models

import "time"

// AuditLogModel is an append-only record of a mutating action. Rows are
// written best-effort and never block the action they describe.
type AuditLogModel struct {
	Base
	UserID     string    `json:"user_id"     gorm:"index;not null"`
	UserName   string    `json:"user_name"`
	Action     string    `json:"action"      gorm:"index;not null"`
	EntityType string    `json:"entity_type" gorm:"index"`
	EntityID   string    `json:"entity_id"   gorm:"index"`
	EntityName string    `json:"entity_name"`
	Details    string    `json:"details"     gorm:"type:text"`
	Timestamp  time.Time `json:"timestamp"   gorm:"index"`
}

func (AuditLogModel) TableName() string { return "audit_logs" }
