package preview

import (
	"testing"

	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/content/pagetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackFilterRestrictsAnonymousToPublished(t *testing.T) {
	f := fallbackFilter(pagetype.Home, false)
	assert.Equal(t, string(pagetype.Home), f.PageType)
	assert.Equal(t, string(models.PagePublished), f.Status)
}

func TestFallbackFilterKeepsDraftsForEditors(t *testing.T) {
	f := fallbackFilter(pagetype.Home, true)
	assert.Equal(t, string(pagetype.Home), f.PageType)
	assert.Empty(t, f.Status)
}

func TestRenderRichTextRendersBodyFields(t *testing.T) {
	content := map[string]interface{}{
		"heading": "Plain heading",
		"body":    "# Welcome\n\nSome **bold** text.",
		"sections": []interface{}{
			map[string]interface{}{"title": "One", "body": "- a\n- b"},
		},
	}

	rendered := RenderRichText(content)

	require.Contains(t, rendered, "body")
	assert.Contains(t, rendered["body"], "<h1>")
	assert.Contains(t, rendered["body"], "<strong>bold</strong>")

	require.Contains(t, rendered, "sections[0].body")
	assert.Contains(t, rendered["sections[0].body"], "<li>")

	// Headings and titles are not rich text.
	assert.NotContains(t, rendered, "heading")
	assert.NotContains(t, rendered, "sections[0].title")
}

func TestRenderRichTextSkipsEmptyValues(t *testing.T) {
	rendered := RenderRichText(map[string]interface{}{"body": "   "})
	assert.Empty(t, rendered)
}
