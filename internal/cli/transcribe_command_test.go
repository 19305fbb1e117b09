package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscribeCommandSkipsCopyForBlankTranscript(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	copyCalls := 0

	app := &appState{
		transcribeFn: func(_ context.Context, _ string) (string, error) {
			return "[BLANK_AUDIO]", nil
		},
		copyFn: func(_ context.Context, _ string) error {
			copyCalls++
			return nil
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--copy", "/tmp/audio.wav"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Equal(t, 0, copyCalls)
	require.Equal(t, "[BLANK_AUDIO]\n", out.String())
}

func TestTranscribeCommandCopiesBlankWhenCopyEmptyEnabled(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	copyCalls := 0

	app := &appState{
		copyEmpty: true,
		transcribeFn: func(_ context.Context, _ string) (string, error) {
			return "[BLANK_AUDIO]", nil
		},
		copyFn: func(_ context.Context, _ string) error {
			copyCalls++
			return nil
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--copy", "/tmp/audio.wav"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Equal(t, 1, copyCalls)
	require.Equal(t, "[BLANK_AUDIO]\n", out.String())
}

func TestTranscribeCommandSavesTranscriptWithHeader(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	dest := filepath.Join(t.TempDir(), "transcription.txt")

	app := &appState{
		transcribeFn: func(_ context.Context, _ string) (string, error) {
			return "Hello from the interview", nil
		},
		copyFn: func(_ context.Context, _ string) error { return nil },
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--output", dest, "/audio/interview.mp3"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Equal(t, "Hello from the interview\n", out.String())

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Contains(t, string(content), "Transcription of: /audio/interview.mp3")
	require.Contains(t, string(content), "Hello from the interview")
}

func TestTranscribeCommandPrintsTranscriptWithoutCopy(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	copyCalls := 0

	app := &appState{
		transcribeFn: func(_ context.Context, audioPath string) (string, error) {
			require.Equal(t, "/tmp/talk.mp3", audioPath)
			return "words were said", nil
		},
		copyFn: func(_ context.Context, _ string) error {
			copyCalls++
			return nil
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"/tmp/talk.mp3"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Equal(t, 0, copyCalls)
	require.Equal(t, "words were said\n", out.String())
}
