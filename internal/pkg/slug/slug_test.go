package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	cases := map[string]string{
		"Hello World":            "hello-world",
		"  Admissions  2026  ":   "admissions-2026",
		"Why Choose Us?":         "why-choose-us",
		"Crème Brûlée!":          "crme-brle",
		"already-a-slug":         "already-a-slug",
		"Multiple --- Hyphens":   "multiple-hyphens",
		"--leading and trailing": "leading-and-trailing",
		"":                       "",
		"!!!":                    "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Generate(input), "input %q", input)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	inputs := []string{"Hello World", "Our Centres & Programs", "A  B  C"}
	for _, in := range inputs {
		once := Generate(in)
		assert.Equal(t, once, Generate(once))
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("hello-world"))
	assert.True(t, Valid("a1"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("Hello"))
	assert.False(t, Valid("has space"))
}
