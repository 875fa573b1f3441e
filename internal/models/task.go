package models

import "time"

// TaskModel is a dashboard to-do item. Completion is tracked per user
// in CompletedBy, keyed by user id.
type TaskModel struct {
	Base
	Text        string               `json:"text"         gorm:"type:text;not null"`
	CompletedBy map[string]time.Time `json:"completed_by" gorm:"type:longtext;serializer:json"`
	AssignedTo  []string             `json:"assigned_to"  gorm:"type:longtext;serializer:json"`
}

func (TaskModel) TableName() string { return "tasks" }
