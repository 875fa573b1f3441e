package models

// BlockModel is a standalone reusable named snippet of plain content,
// independent of the page schema system.
type BlockModel struct {
	Base
	Name    string `json:"name"    gorm:"not null;index"`
	Type    string `json:"type"`
	Status  string `json:"status"  gorm:"default:draft"`
	Content string `json:"content" gorm:"type:longtext"`
}

func (BlockModel) TableName() string { return "content_blocks" }
