package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		color     bool
		round     bool
		mic       bool
		res       Resolution
		actionBar int
	}{
		{"aplite", false, false, false, Resolution{144, 168}, 30},
		{"basalt", true, false, true, Resolution{144, 168}, 30},
		{"chalk", true, true, true, Resolution{180, 180}, 40},
		{"diorite", false, false, true, Resolution{144, 168}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.color, c.Color)
			assert.Equal(t, !tt.color, c.BlackAndWhite())
			assert.Equal(t, tt.round, c.Round)
			assert.Equal(t, !tt.round, c.Rectangle())
			assert.Equal(t, tt.mic, c.Microphone)
			assert.Equal(t, tt.res, c.Resolution)
			assert.Equal(t, tt.actionBar, c.ActionBarWidth())
			assert.Equal(t, 16, c.StatusBarHeight())
		})
	}

	_, err := Lookup("emery")
	require.ErrorIs(t, err, ErrUnknownPlatform)
	assert.Equal(t, []string{"aplite", "basalt", "chalk", "diorite"}, Names())
}

func TestSelect(t *testing.T) {
	fonts := map[string]string{"chalk": "gothic-18", Unknown: "gothic-14"}

	v, ok := Select(fonts, "chalk")
	assert.True(t, ok)
	assert.Equal(t, "gothic-18", v)

	v, ok = Select(fonts, "basalt")
	assert.True(t, ok)
	assert.Equal(t, "gothic-14", v)

	delete(fonts, Unknown)
	v, ok = Select(fonts, "basalt")
	assert.False(t, ok)
	assert.Empty(t, v)
}
