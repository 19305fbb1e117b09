package whisper

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

const fakeEngineScript = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
	if [ "$1" = "-of" ]; then
		out="$2"
	fi
	shift
done
printf ' hello from the fake engine \n' > "$out.txt"
printf 'whisper_full_with_state: auto-detected language: ro (p = 0.941)\n' >&2
`

func writeFakeEngine(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake engine script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "whisper-cli")
	require.NoError(t, os.WriteFile(path, []byte(fakeEngineScript), 0o755))
	return path
}

func TestExecEngineTranscribeWithFakeBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "sample.wav")
	modelPath := filepath.Join(dir, "ggml-tiny.bin")
	require.NoError(t, os.WriteFile(audioPath, []byte("wav"), 0o644))
	require.NoError(t, os.WriteFile(modelPath, []byte("model"), 0o644))

	engine := &ExecEngine{Executable: writeFakeEngine(t)}
	result, err := engine.Transcribe(context.Background(), TranscriptionRequest{
		AudioPath: audioPath,
		ModelPath: modelPath,
		Language:  "auto",
	})
	require.NoError(t, err)
	require.Equal(t, "hello from the fake engine", result.Text)
	require.Equal(t, "ro", result.DetectedLanguage)
}

func TestExecEngineRequiresAudioAndModelPaths(t *testing.T) {
	t.Parallel()

	engine := &ExecEngine{Executable: "/usr/bin/true"}

	_, err := engine.Transcribe(context.Background(), TranscriptionRequest{ModelPath: "m.bin"})
	require.Error(t, err)

	_, err = engine.Transcribe(context.Background(), TranscriptionRequest{AudioPath: "a.wav"})
	require.Error(t, err)
}

func TestExecEngineMissingExecutable(t *testing.T) {
	t.Parallel()

	engine := &ExecEngine{Executable: filepath.Join(t.TempDir(), "whisper-cli")}
	_, err := engine.Transcribe(context.Background(), TranscriptionRequest{
		AudioPath: "a.wav",
		ModelPath: "m.bin",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "whisper engine missing")
}

func TestNewExecEngineHonorsPathOverride(t *testing.T) {
	fake := writeFakeEngine(t)
	t.Setenv("SCRIBE_WHISPER_PATH", fake)

	engine, err := NewExecEngine(nil)
	require.NoError(t, err)
	require.Equal(t, fake, engine.Executable)
}

func TestNewExecEngineRejectsNonexistentOverride(t *testing.T) {
	t.Setenv("SCRIBE_WHISPER_PATH", filepath.Join(t.TempDir(), "missing"))

	_, err := NewExecEngine(nil)
	require.Error(t, err)
}

func TestIsMissingSharedLibraryError(t *testing.T) {
	t.Parallel()

	require.True(t, isMissingSharedLibraryError("error while loading shared libraries: libggml.so"))
	require.True(t, isMissingSharedLibraryError("dyld: Library not loaded"))
	require.False(t, isMissingSharedLibraryError(""))
	require.False(t, isMissingSharedLibraryError("some other failure"))
}
