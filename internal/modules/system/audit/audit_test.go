package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogSkipsEmptyActor(t *testing.T) {
	// A nil db would panic on Create; an empty actor must return first.
	svc := NewService(nil, nil)
	assert.NotPanics(t, func() {
		svc.Log(Actor{}, Entry{Action: "page.create", EntityType: "page"})
	})
}
