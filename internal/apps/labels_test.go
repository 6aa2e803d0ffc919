package apps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFriendlyName(t *testing.T) {
	tests := []struct {
		name        string
		packageName string
		want        string
	}{
		{"known app", "com.spotify.music", "Listening to Spotify 🎵"},
		{"unknown app uses last segment", "com.foo.bar", "Using bar 📱"},
		{"no dots", "calculator", "Using calculator 📱"},
		{"empty is idle", "", "Idle 😴"},
		{"whitespace is idle", "  ", "Idle 😴"},
		{"tiktok global", "com.zhiliaoapp.musically", "Watching TikTok 🎵"},
		{"tiktok alias", "com.tiktok", "Watching TikTok 🎵"},
		{"trailing dot", "com.example.", "Using  📱"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FriendlyName(tt.packageName))
		})
	}
}
