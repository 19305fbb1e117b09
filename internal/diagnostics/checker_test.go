package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestChecker(lookPath func(string) (string, error), getenv func(string) string) *Checker {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return NewCheckerForTests(lookPath, os.Stat, os.ReadDir, os.MkdirAll, os.CreateTemp, os.Remove, getenv)
}

func TestRunAllPass(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	modelDir := filepath.Join(root, "models")
	require.NoError(t, os.MkdirAll(modelDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-base.bin"), []byte("stub"), 0o644))

	manifestPath := filepath.Join(root, "requirements.txt")
	require.NoError(t, os.WriteFile(manifestPath, []byte("openai-whisper>=20231117\ntorch>=1.10.0\n"), 0o644))

	checker := newTestChecker(func(name string) (string, error) { return "/usr/local/bin/" + name, nil }, nil)
	report := checker.Run(Settings{
		ModelDir:     modelDir,
		OutputDir:    filepath.Join(root, "output"),
		ManifestPath: manifestPath,
	})

	require.Falsef(t, report.HasFailures, "expected no failures, got %+v", report.Items)
	requireStatusByID(t, report, "tool_ffmpeg", StatusPass)
	requireStatusByID(t, report, "whisper_engine", StatusPass)
	requireStatusByID(t, report, "model_dir", StatusPass)
	requireStatusByID(t, report, "output_dir", StatusPass)
	requireStatusByID(t, report, "manifest", StatusPass)
}

func TestRunMissingTools(t *testing.T) {
	t.Parallel()

	checker := newTestChecker(func(string) (string, error) { return "", errors.New("not found") }, nil)
	report := checker.Run(Settings{
		ModelDir:  "",
		OutputDir: "",
	})

	require.True(t, report.HasFailures)
	requireStatusByID(t, report, "tool_ffmpeg", StatusFail)
	requireStatusByID(t, report, "whisper_engine", StatusFail)
	requireStatusByID(t, report, "model_dir", StatusFail)
	requireStatusByID(t, report, "output_dir", StatusFail)
	requireStatusByID(t, report, "manifest", StatusSkip)
}

func TestRunEngineOverrideFromEnvironment(t *testing.T) {
	t.Parallel()

	override := filepath.Join(t.TempDir(), "whisper-cli")
	require.NoError(t, os.WriteFile(override, []byte("#!/bin/sh\n"), 0o755))

	checker := newTestChecker(
		func(string) (string, error) { return "", errors.New("not found") },
		func(key string) string {
			if key == "SCRIBE_WHISPER_PATH" {
				return override
			}
			return ""
		},
	)

	report := checker.Run(Settings{ModelDir: t.TempDir(), OutputDir: t.TempDir()})
	requireStatusByID(t, report, "whisper_engine", StatusPass)
}

func TestRunEmptyModelDirStillPasses(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	modelDir := filepath.Join(root, "models")
	require.NoError(t, os.MkdirAll(modelDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "README.txt"), []byte("no models"), 0o644))

	checker := newTestChecker(func(name string) (string, error) { return "/usr/bin/" + name, nil }, nil)
	report := checker.Run(Settings{ModelDir: modelDir, OutputDir: filepath.Join(root, "out")})

	item := requireStatusByID(t, report, "model_dir", StatusPass)
	require.Contains(t, item.Hint, "scribe setup")
}

func TestRunManifestFailures(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	broken := filepath.Join(root, "broken.txt")
	require.NoError(t, os.WriteFile(broken, []byte("torch>=\n"), 0o644))

	duplicated := filepath.Join(root, "dup.txt")
	require.NoError(t, os.WriteFile(duplicated, []byte("torch>=1.0\ntorch==2.0\n"), 0o644))

	checker := newTestChecker(func(name string) (string, error) { return "/usr/bin/" + name, nil }, nil)

	report := checker.Run(Settings{ModelDir: root, OutputDir: root, ManifestPath: broken})
	requireStatusByID(t, report, "manifest", StatusFail)
	require.True(t, report.HasFailures)

	report = checker.Run(Settings{ModelDir: root, OutputDir: root, ManifestPath: duplicated})
	item := requireStatusByID(t, report, "manifest", StatusFail)
	require.Contains(t, item.Message, "duplicate")
}

func requireStatusByID(t *testing.T, report Report, id string, want Status) Item {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			require.Equalf(t, want, item.Status, "item %s: %s", id, item.Message)
			return item
		}
	}
	t.Fatalf("diagnostic item not found: %s", id)
	return Item{}
}
