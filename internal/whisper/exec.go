package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExecEngine runs a whisper.cpp command-line binary (whisper-cli) found on
// PATH or via the SCRIBE_WHISPER_PATH override.
type ExecEngine struct {
	Executable string
	Logger     *zap.Logger
}

func NewExecEngine(logger *zap.Logger) (*ExecEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv("SCRIBE_WHISPER_PATH")); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("SCRIBE_WHISPER_PATH is not executable: %w", err)
		}
		return &ExecEngine{Executable: override, Logger: logger}, nil
	}

	exe, err := ResolveEnginePath()
	if err != nil {
		return nil, err
	}

	return &ExecEngine{Executable: exe, Logger: logger}, nil
}

// ResolveEnginePath locates whisper-cli on PATH, falling back to locations
// next to the scribe executable for bundled installs.
func ResolveEnginePath() (string, error) {
	name := engineBinaryName()
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	scribeExe, err := os.Executable()
	if err == nil {
		for _, candidate := range enginePathCandidates(scribeExe) {
			if err := ensureExecutable(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("whisper engine %s not found on PATH; install whisper.cpp or set SCRIBE_WHISPER_PATH", name)
}

func enginePathCandidates(scribeExecutable string) []string {
	binDir := filepath.Dir(scribeExecutable)
	engineName := engineBinaryName()

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, engineName),
	}
}

func (e *ExecEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (TranscriptionResult, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return TranscriptionResult{}, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return TranscriptionResult{}, errors.New("model path is required")
	}

	if err := ensureExecutable(e.Executable); err != nil {
		return TranscriptionResult{}, fmt.Errorf("whisper engine missing or not executable: %w", err)
	}

	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("scribe-%d", time.Now().UnixNano()))
	txtOut := outBase + ".txt"

	args := []string{"-m", req.ModelPath, "-f", req.AudioPath, "-nt", "-otxt", "-of", outBase}
	lang := strings.TrimSpace(req.Language)
	if lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.log().Debug("running whisper engine", zap.String("engine", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return TranscriptionResult{}, fmt.Errorf("whisper engine at %s is missing required shared libraries (%s); rebuild whisper-cli with BUILD_SHARED_LIBS=OFF or install its libraries", e.Executable, errText)
		}
		if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
			return TranscriptionResult{}, fmt.Errorf("whisper engine crashed with an illegal CPU instruction; " +
				"your CPU may lack required instruction set extensions; " +
				"set SCRIBE_WHISPER_PATH to a whisper-cli binary built for your CPU")
		}
		return TranscriptionResult{}, fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
	}

	defer os.Remove(txtOut)
	content, err := os.ReadFile(txtOut)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("read whisper output: %w", err)
	}

	return TranscriptionResult{
		Text:             strings.TrimSpace(string(content)),
		DetectedLanguage: detectLanguageFromStderr(stderr.String()),
	}, nil
}

func (e *ExecEngine) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

// detectLanguageFromStderr picks the auto-detected language out of the
// whisper-cli progress output, e.g. "auto-detected language: en (p = 0.97)".
func detectLanguageFromStderr(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		lowered := strings.ToLower(line)
		idx := strings.Index(lowered, "auto-detected language:")
		if idx < 0 {
			continue
		}

		rest := strings.TrimSpace(line[idx+len("auto-detected language:"):])
		fields := strings.Fields(rest)
		if len(fields) > 0 {
			return strings.TrimSpace(fields[0])
		}
	}
	return ""
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
