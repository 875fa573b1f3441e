package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalModelJSONAcceptsPlainJSON(t *testing.T) {
	var note Note
	require.NoError(t, unmarshalModelJSON(`{"title":"T","summary":"S"}`, &note))
	assert.Equal(t, "T", note.Title)
	assert.Equal(t, "S", note.Summary)
}

func TestUnmarshalModelJSONStripsFences(t *testing.T) {
	raw := "```json\n{\"title\":\"T\",\"summary\":\"S\"}\n```"
	var note Note
	require.NoError(t, unmarshalModelJSON(raw, &note))
	assert.Equal(t, "T", note.Title)
}

func TestUnmarshalModelJSONExtractsEmbeddedObject(t *testing.T) {
	raw := `Here is the result: {"title":"T","summary":"S"} hope it helps`
	var note Note
	require.NoError(t, unmarshalModelJSON(raw, &note))
	assert.Equal(t, "S", note.Summary)
}

func TestUnmarshalModelJSONRejectsGarbage(t *testing.T) {
	var note Note
	assert.Error(t, unmarshalModelJSON("I could not produce JSON", &note))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 100))
	got := truncateText("abcdefgh", 4)
	assert.Equal(t, "abcd...", got)
}
