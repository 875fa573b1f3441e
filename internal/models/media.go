package models

// MediaModel records an uploaded media object stored under the static
// directory.
type MediaModel struct {
	Base
	Name       string `json:"name"        gorm:"not null;index"`
	Path       string `json:"path"        gorm:"not null"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	UploadedBy string `json:"uploaded_by" gorm:"index"`
}

func (MediaModel) TableName() string { return "media" }
