package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

var supportedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".flac": {},
	".ogg":  {},
	".aac":  {},
}

type FileInfo struct {
	Path      string
	SizeBytes int64
}

func (f FileInfo) SizeMB() float64 {
	return float64(f.SizeBytes) / (1024 * 1024)
}

func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ValidateFile checks that path names an existing regular file with a
// supported audio extension and returns its absolute path and size.
func ValidateFile(path string) (FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return FileInfo{}, errors.New("no audio file path provided")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileInfo{}, fmt.Errorf("audio file does not exist: %s", path)
		}
		return FileInfo{}, fmt.Errorf("stat audio file: %w", err)
	}
	if info.IsDir() {
		return FileInfo{}, fmt.Errorf("path is not a file: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return FileInfo{}, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions(), ", "))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("resolve audio path: %w", err)
	}

	return FileInfo{Path: abs, SizeBytes: info.Size()}, nil
}
