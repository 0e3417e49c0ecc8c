package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEphemeral_HoverAddRemoveIdempotent(t *testing.T) {
	e := NewEphemeral()

	assert.Equal(t, 1, e.AddHover("a"))
	assert.Equal(t, 1, e.AddHover("a"))
	assert.Equal(t, 2, e.AddHover("b"))

	count, changed := e.RemoveHover("a")
	assert.Equal(t, 1, count)
	assert.True(t, changed)

	count, changed = e.RemoveHover("a")
	assert.Equal(t, 1, count)
	assert.False(t, changed)
}

func TestEphemeral_ClearHover(t *testing.T) {
	e := NewEphemeral()
	e.AddHover("a")
	e.AddHover("b")

	e.ClearHover()
	assert.Equal(t, 0, e.HoverCount())
}

func TestReactionAllowed(t *testing.T) {
	tests := []struct {
		name     string
		emoji    string
		hasCrown bool
		isAdmin  bool
		want     bool
	}{
		{"plain emoji for anyone", "😀", false, false, true},
		{"special emoji without privilege", SpecialEmoji, false, false, false},
		{"special emoji with crown", SpecialEmoji, true, false, true},
		{"special emoji as admin", SpecialEmoji, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReactionAllowed(tt.emoji, tt.hasCrown, tt.isAdmin))
		})
	}
}
