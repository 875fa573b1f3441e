package page

import (
	"errors"
	"testing"

	"github.com/gwd-cms/core/internal/modules/content/pagetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrType(t pagetype.PageType) *pagetype.PageType { return &t }

func TestResolveContentUpdateResetsOnTypeChange(t *testing.T) {
	effective, content, err := resolveContentUpdate(pagetype.Home, ptrType(pagetype.Generic), nil)
	require.NoError(t, err)
	assert.Equal(t, pagetype.Generic, effective)
	assert.Equal(t, pagetype.Defaults(pagetype.Generic), content)
}

func TestResolveContentUpdateDoesNotResurrectOldContent(t *testing.T) {
	// Switch home -> generic, then generic -> home: the second switch
	// yields home defaults, never the original home document.
	effective, content, err := resolveContentUpdate(pagetype.Generic, ptrType(pagetype.Home), nil)
	require.NoError(t, err)
	assert.Equal(t, pagetype.Home, effective)
	assert.Equal(t, pagetype.Defaults(pagetype.Home), content)
}

func TestResolveContentUpdateKeepsContentWhenTypeUnchanged(t *testing.T) {
	effective, content, err := resolveContentUpdate(pagetype.Home, ptrType(pagetype.Home), nil)
	require.NoError(t, err)
	assert.Equal(t, pagetype.Home, effective)
	assert.Nil(t, content)

	effective, content, err = resolveContentUpdate(pagetype.Home, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, pagetype.Home, effective)
	assert.Nil(t, content)
}

func TestResolveContentUpdateExplicitContentWinsOverReset(t *testing.T) {
	explicit := pagetype.Defaults(pagetype.Generic)
	_, content, err := resolveContentUpdate(pagetype.Home, ptrType(pagetype.Generic), explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, content)
}

func TestResolveContentUpdateValidatesAgainstEffectiveType(t *testing.T) {
	bad := map[string]interface{}{
		"sections": []interface{}{map[string]interface{}{"title": ""}},
	}
	_, _, err := resolveContentUpdate(pagetype.Home, ptrType(pagetype.Generic), bad)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Fields)
}

func TestResolveContentUpdateRejectsUnknownType(t *testing.T) {
	_, _, err := resolveContentUpdate(pagetype.Home, ptrType(pagetype.PageType("landing")), nil)
	assert.True(t, errors.Is(err, ErrBadPageType))
}
