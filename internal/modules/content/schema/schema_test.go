package schema

import (
	"testing"

	"github.com/gwd-cms/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(name string, t models.FieldType, children ...models.SchemaField) models.SchemaField {
	return models.SchemaField{Name: name, Label: name, Type: t, Fields: children}
}

func errPaths(fields []models.SchemaField) []string {
	errs := ValidateFields(fields)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Path)
	}
	return out
}

func TestValidateFieldsAcceptsWellFormedTree(t *testing.T) {
	fields := []models.SchemaField{
		field("title", models.FieldText),
		field("published", models.FieldBoolean),
		field("slides", models.FieldRepeater,
			field("image", models.FieldImageURL),
			field("caption", models.FieldText),
		),
	}
	assert.Empty(t, ValidateFields(fields))
}

func TestValidateFieldsRejectsUnknownType(t *testing.T) {
	got := errPaths([]models.SchemaField{field("x", models.FieldType("geo_point"))})
	assert.Contains(t, got, "fields[0].type")
}

func TestValidateFieldsRejectsBadNames(t *testing.T) {
	got := errPaths([]models.SchemaField{field("hero section", models.FieldText)})
	assert.Contains(t, got, "fields[0].name")

	got = errPaths([]models.SchemaField{field("hero-section", models.FieldText)})
	assert.Contains(t, got, "fields[0].name")

	assert.Empty(t, ValidateFields([]models.SchemaField{field("hero_section", models.FieldText)}))
}

func TestValidateFieldsRejectsDuplicateSiblings(t *testing.T) {
	got := errPaths([]models.SchemaField{
		field("title", models.FieldText),
		field("title", models.FieldTextarea),
	})
	assert.Contains(t, got, "fields[1].name")

	// Same name at different levels is fine.
	fields := []models.SchemaField{
		field("title", models.FieldText),
		field("items", models.FieldRepeater, field("title", models.FieldText)),
	}
	assert.Empty(t, ValidateFields(fields))
}

func TestValidateFieldsRejectsEmptyRepeater(t *testing.T) {
	got := errPaths([]models.SchemaField{field("items", models.FieldRepeater)})
	assert.Contains(t, got, "fields[0].fields")
}

func TestValidateFieldsRejectsChildrenOnScalar(t *testing.T) {
	got := errPaths([]models.SchemaField{
		field("title", models.FieldText, field("nested", models.FieldText)),
	})
	assert.Contains(t, got, "fields[0].fields")
}

func TestValidateFieldsEnforcesDepthLimit(t *testing.T) {
	leaf := field("leaf", models.FieldText)
	tree := leaf
	for range MaxDepth {
		tree = field("level", models.FieldRepeater, tree)
	}
	errs := ValidateFields([]models.SchemaField{tree})
	require.NotEmpty(t, errs)

	shallow := leaf
	for range MaxDepth - 1 {
		shallow = field("level", models.FieldRepeater, shallow)
	}
	assert.Empty(t, ValidateFields([]models.SchemaField{shallow}))
}

func TestCheckSlugUpdateRejectsChanges(t *testing.T) {
	changed := "new-slug"
	assert.ErrorIs(t, checkSlugUpdate("old-slug", &changed), ErrSlugImmutable)

	same := "old-slug"
	assert.NoError(t, checkSlugUpdate("old-slug", &same))
	assert.NoError(t, checkSlugUpdate("old-slug", nil))
}

func TestNormalizeFieldsAssignsIDs(t *testing.T) {
	fields := NormalizeFields([]models.SchemaField{
		field("items", models.FieldRepeater, field("title", models.FieldText)),
	})
	require.Len(t, fields, 1)
	assert.NotEmpty(t, fields[0].ID)
	require.Len(t, fields[0].Fields, 1)
	assert.NotEmpty(t, fields[0].Fields[0].ID)
}
