package pagetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForCoversEveryType(t *testing.T) {
	for _, pt := range All() {
		spec, ok := For(pt)
		require.True(t, ok, "missing spec for %q", pt)
		assert.Equal(t, pt, spec.Type)
		require.NotNil(t, spec.New)
		require.NotNil(t, spec.Validate)
	}

	_, ok := For(PageType("newsletter"))
	assert.False(t, ok)
	assert.Nil(t, Defaults(PageType("newsletter")))
}

func TestDefaultsAlwaysValidate(t *testing.T) {
	for _, pt := range All() {
		spec, _ := For(pt)
		content := spec.New()
		require.NotNil(t, content, "defaults for %q", pt)
		assert.Empty(t, spec.Validate(content), "defaults for %q must be valid", pt)
	}
}

func TestDefaultListsArePresentAndEmpty(t *testing.T) {
	content := Defaults(Home)
	hero, ok := content["heroSection"].(map[string]interface{})
	require.True(t, ok)
	slides, ok := hero["slides"].([]interface{})
	require.True(t, ok, "slides must be present, not nil")
	assert.Len(t, slides, 0)
}

func TestValidateReportsNestedPaths(t *testing.T) {
	spec, _ := For(Home)
	content := spec.New()
	require.NoError(t, spec.Apply(content, Op{Action: OpAdd, Path: "heroSection.slides"}))

	errs := spec.Validate(content)
	require.NotEmpty(t, errs)
	paths := make([]string, 0, len(errs))
	for _, e := range errs {
		paths = append(paths, e.Path)
	}
	assert.Contains(t, paths, "heroSection.slides[0].title")
}

func TestValidateRejectsWrongShape(t *testing.T) {
	spec, _ := For(Contact)
	errs := spec.Validate(map[string]interface{}{"officeHours": "nine to five"})
	require.Len(t, errs, 1)
	assert.Equal(t, "", errs[0].Path)
}

func TestApplyAddAndRemovePreserveOrder(t *testing.T) {
	spec, _ := For(AboutUs)
	content := map[string]interface{}{
		"intro":      map[string]interface{}{"heading": "", "body": ""},
		"mission":    "",
		"vision":     "",
		"team":       []interface{}{},
		"milestones": []interface{}{},
	}

	for range 3 {
		require.NoError(t, spec.Apply(content, Op{Action: OpAdd, Path: "team"}))
	}
	team := content["team"].([]interface{})
	require.Len(t, team, 3)
	team[0].(map[string]interface{})["name"] = "a"
	team[1].(map[string]interface{})["name"] = "b"
	team[2].(map[string]interface{})["name"] = "c"

	idx := 1
	require.NoError(t, spec.Apply(content, Op{Action: OpRemove, Path: "team", Index: &idx}))

	team = content["team"].([]interface{})
	require.Len(t, team, 2)
	assert.Equal(t, "a", team[0].(map[string]interface{})["name"])
	assert.Equal(t, "c", team[1].(map[string]interface{})["name"])
}

func TestApplyInsertAtIndex(t *testing.T) {
	spec, _ := For(Generic)
	content := spec.New()
	require.NoError(t, spec.Apply(content, Op{Action: OpAdd, Path: "sections"}))
	require.NoError(t, spec.Apply(content, Op{Action: OpAdd, Path: "sections"}))
	sections := content["sections"].([]interface{})
	sections[0].(map[string]interface{})["title"] = "first"
	sections[1].(map[string]interface{})["title"] = "last"

	idx := 1
	require.NoError(t, spec.Apply(content, Op{Action: OpAdd, Path: "sections", Index: &idx}))

	sections = content["sections"].([]interface{})
	require.Len(t, sections, 3)
	assert.Equal(t, "first", sections[0].(map[string]interface{})["title"])
	assert.Equal(t, "", sections[1].(map[string]interface{})["title"])
	assert.Equal(t, "last", sections[2].(map[string]interface{})["title"])
}

func TestApplyEnforcesButtonBounds(t *testing.T) {
	spec, _ := For(Home)
	content := spec.New()
	require.NoError(t, spec.Apply(content, Op{Action: OpAdd, Path: "heroSection.slides"}))

	// A fresh slide ships with one button; grow to the cap of three.
	require.NoError(t, spec.Apply(content, Op{Action: OpAdd, Path: "heroSection.slides[0].buttons"}))
	require.NoError(t, spec.Apply(content, Op{Action: OpAdd, Path: "heroSection.slides[0].buttons"}))
	err := spec.Apply(content, Op{Action: OpAdd, Path: "heroSection.slides[0].buttons"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum")

	idx := 0
	require.NoError(t, spec.Apply(content, Op{Action: OpRemove, Path: "heroSection.slides[0].buttons", Index: &idx}))
	require.NoError(t, spec.Apply(content, Op{Action: OpRemove, Path: "heroSection.slides[0].buttons", Index: &idx}))
	err = spec.Apply(content, Op{Action: OpRemove, Path: "heroSection.slides[0].buttons", Index: &idx})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
}

func TestApplyRejectsUnknownPathAndAction(t *testing.T) {
	spec, _ := For(Home)
	content := spec.New()

	err := spec.Apply(content, Op{Action: OpAdd, Path: "heroSection.banners"})
	require.Error(t, err)

	err = spec.Apply(content, Op{Action: "shuffle", Path: "heroSection.slides"})
	require.Error(t, err)

	idx := 0
	err = spec.Apply(content, Op{Action: OpRemove, Path: "heroSection.slides", Index: &idx})
	require.Error(t, err)

	err = spec.Apply(content, Op{Action: OpAdd, Path: "heroSection.slides[2].buttons"})
	require.Error(t, err)
}
