package models

// RoleModel groups a flat set of capability identifiers. There is no
// permission hierarchy or inheritance.
type RoleModel struct {
	Base
	Name        string   `json:"name"        gorm:"uniqueIndex;not null"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions" gorm:"type:longtext;serializer:json"`
}

func (RoleModel) TableName() string { return "roles" }
