package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// BlankAudioToken is what whisper.cpp emits for audio without speech.
	BlankAudioToken = "[BLANK_AUDIO]"

	DefaultFileName = "transcription.txt"

	headerSeparator = "=================================================="
)

// IsBlank reports whether a transcript carries no usable speech.
func IsBlank(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}

	return strings.EqualFold(trimmed, BlankAudioToken)
}

// Save writes a transcript to dest with a provenance header naming the
// source audio file. Parent directories are created as needed.
func Save(dest, sourcePath, text string) error {
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("transcript destination is empty")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create transcript directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transcription of: %s\n", sourcePath)
	b.WriteString(headerSeparator)
	b.WriteString("\n\n")
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}

	if err := os.WriteFile(dest, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	return nil
}

// DefaultPath places the default transcript file inside outputDir.
func DefaultPath(outputDir string) string {
	return filepath.Join(outputDir, DefaultFileName)
}
