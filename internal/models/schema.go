package models

// FieldType enumerates the value kinds a schema field can hold.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldDate     FieldType = "date"
	FieldImageURL FieldType = "image_url"
	FieldRichText FieldType = "rich_text"
	FieldRepeater FieldType = "repeater"
)

// KnownFieldType reports whether t is one of the supported field types.
func KnownFieldType(t FieldType) bool {
	switch t {
	case FieldText, FieldTextarea, FieldNumber, FieldBoolean,
		FieldDate, FieldImageURL, FieldRichText, FieldRepeater:
		return true
	}
	return false
}

// SchemaField describes one field of a content schema. A repeater field
// owns an ordered list of child fields; Fields is non-empty only for
// repeaters.
type SchemaField struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Label    string        `json:"label"`
	Type     FieldType     `json:"type"`
	Required bool          `json:"required"`
	Fields   []SchemaField `json:"fields,omitempty"`
}

// ContentSchemaModel is an operator-authored description of a reusable
// content shape. Slug is URL-safe and derived from Name.
type ContentSchemaModel struct {
	Base
	Name        string        `json:"name"        gorm:"not null"`
	Slug        string        `json:"slug"        gorm:"uniqueIndex;not null"`
	Description string        `json:"description"`
	Fields      []SchemaField `json:"fields"      gorm:"type:longtext;serializer:json"`
}

func (ContentSchemaModel) TableName() string { return "content_schemas" }
