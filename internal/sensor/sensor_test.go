package sensor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludeSelf(t *testing.T) {
	ctx := context.Background()
	stub := NewStub(true, "")
	s := ExcludeSelf(stub, "com.anonymous.peep")

	tests := []struct {
		app    string
		wantOK bool
	}{
		{"com.spotify.music", true},
		{"com.anonymous.peep", false},
		{"com.google.android.apps.nexuslauncher", false},
		{"com.android.systemui", false},
		{"", false},
	}
	for _, tt := range tests {
		stub.SetApp(tt.app)
		app, ok, err := s.ForegroundApp(ctx)
		require.NoError(t, err)
		assert.Equal(t, tt.wantOK, ok, tt.app)
		if tt.wantOK {
			assert.Equal(t, tt.app, app)
		}
	}

	granted, err := s.HasPermission(ctx)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestExcludeSelf_PassesErrors(t *testing.T) {
	stub := NewStub(true, "com.whatsapp")
	stub.SetError(errors.New("usage stats unavailable"))

	_, ok, err := ExcludeSelf(stub, "com.anonymous.peep").ForegroundApp(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestFileSensor(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFile(filepath.Join(dir, "foreground"), filepath.Join(dir, "granted"))

	granted, err := s.HasPermission(ctx)
	require.NoError(t, err)
	assert.False(t, granted)

	require.NoError(t, s.RequestPermission(ctx))
	_, err = os.Stat(filepath.Join(dir, "granted.requested"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "granted"), nil, 0o644))
	granted, err = s.HasPermission(ctx)
	require.NoError(t, err)
	assert.True(t, granted)

	_, ok, err := s.ForegroundApp(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "missing file means nothing to report")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "foreground"), []byte("com.netflix.mediaclient\n"), 0o644))
	app, ok, err := s.ForegroundApp(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "com.netflix.mediaclient", app)
}
