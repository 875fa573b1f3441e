package models

// PageStatus is the editorial state of a page.
type PageStatus string

const (
	PageDraft     PageStatus = "draft"
	PagePublished PageStatus = "published"
	PageReview    PageStatus = "review"
)

// KnownPageStatus reports whether s is a valid page status.
func KnownPageStatus(s PageStatus) bool {
	switch s {
	case PageDraft, PagePublished, PageReview:
		return true
	}
	return false
}

// PageModel is a site page. Content's shape is determined by PageType;
// it is stored as a JSON document and validated by the matching
// archetype validator before any write.
type PageModel struct {
	Base
	Title    string                 `json:"title"     gorm:"not null"`
	Slug     string                 `json:"slug"      gorm:"uniqueIndex;not null"`
	Status   PageStatus             `json:"status"    gorm:"default:draft;index"`
	Author   string                 `json:"author"`
	PageType string                 `json:"page_type" gorm:"index;not null"`
	Content  map[string]interface{} `json:"content"   gorm:"type:longtext;serializer:json"`
}

func (PageModel) TableName() string { return "pages" }
