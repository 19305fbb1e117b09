package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultModelDirForLinux(t *testing.T) {
	t.Parallel()

	dir, err := DefaultModelDirFor("linux", "/home/ana", "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/ana", ".local", "share", "scribe", "models"), dir)
}

func TestDefaultModelDirForLinuxHonorsXDG(t *testing.T) {
	t.Parallel()

	dir, err := DefaultModelDirFor("linux", "/home/ana", "/data/xdg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/data/xdg", "scribe", "models"), dir)
}

func TestDefaultTranscriptDirForDarwin(t *testing.T) {
	t.Parallel()

	dir, err := DefaultTranscriptDirFor("darwin", "/Users/ana", "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/Users/ana", "Library", "Application Support", "scribe", "transcripts"), dir)
}

func TestDefaultDirsRejectUnsupportedOS(t *testing.T) {
	t.Parallel()

	_, err := DefaultModelDirFor("plan9", "/home/ana", "")
	require.Error(t, err)

	_, err = DefaultModelDirFor("linux", "", "")
	require.Error(t, err)
}

func TestResolveModelDirOverride(t *testing.T) {
	t.Parallel()

	dir, err := ResolveModelDir("/models/./whisper")
	require.NoError(t, err)
	require.Equal(t, filepath.Clean("/models/whisper"), dir)
}
