package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOriginHost(t *testing.T) {
	assert.Equal(t, "cms.example.com", extractOriginHost("https://cms.example.com"))
	assert.Equal(t, "cms.example.com:8443", extractOriginHost("https://cms.example.com:8443"))
	assert.Equal(t, "not a url", extractOriginHost("not a url"))
}

func TestMatchOriginPattern(t *testing.T) {
	assert.True(t, matchOriginPattern("cms.example.com", "cms.example.com"))
	assert.True(t, matchOriginPattern("cms.example.com", "CMS.Example.com"))
	assert.True(t, matchOriginPattern("*.example.com", "admin.example.com"))
	assert.True(t, matchOriginPattern("example.com:*", "example.com:3000"))
	assert.True(t, matchOriginPattern("*", "anything.at.all"))

	assert.False(t, matchOriginPattern("*.example.com", "example.org"))
	assert.False(t, matchOriginPattern("cms.example.com", "evil.example.com"))
}

func TestOriginAllowedIncludesLocalDev(t *testing.T) {
	assert.True(t, originAllowed(nil, "localhost:5173"))
	assert.True(t, originAllowed(nil, "127.0.0.1:3000"))
	assert.True(t, originAllowed([]string{"*.example.com"}, "admin.example.com"))
	assert.False(t, originAllowed([]string{"*.example.com"}, "example.org"))
}
