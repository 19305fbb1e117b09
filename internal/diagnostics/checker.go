package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rvoicu/scribe/internal/manifest"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

type Item struct {
	ID      string
	Name    string
	Status  Status
	Message string
	Hint    string
}

type Report struct {
	GeneratedAt time.Time
	HasFailures bool
	Items       []Item
}

type Settings struct {
	ModelDir     string
	OutputDir    string
	ManifestPath string
}

// Checker validates external tools and required filesystem paths before a
// transcription run.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	readDir    func(string) ([]os.DirEntry, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
	getenv     func(string) string
}

func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		readDir:    os.ReadDir,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
		getenv:     os.Getenv,
	}
}

// Run executes all checks and returns the combined report. Check failures
// are reported, never returned as errors.
func (c *Checker) Run(settings Settings) Report {
	items := []Item{
		c.checkTool("ffmpeg"),
		c.checkWhisperEngine(),
		c.checkModelDir(settings.ModelDir),
		c.checkOutputDir(settings.OutputDir),
		c.checkManifest(settings.ManifestPath),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == StatusFail {
			hasFailures = true
			break
		}
	}

	return Report{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

func (c *Checker) checkTool(name string) Item {
	path, err := c.lookPath(name)
	if err != nil {
		return Item{
			ID:      "tool_" + name,
			Name:    name,
			Status:  StatusFail,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    "Install it and ensure the binary is available on PATH.",
		}
	}

	return Item{
		ID:      "tool_" + name,
		Name:    name,
		Status:  StatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

func (c *Checker) checkWhisperEngine() Item {
	item := Item{ID: "whisper_engine", Name: "Whisper engine"}

	if override := strings.TrimSpace(c.getenv("SCRIBE_WHISPER_PATH")); override != "" {
		info, err := c.stat(override)
		if err != nil || info.IsDir() {
			item.Status = StatusFail
			item.Message = fmt.Sprintf("SCRIBE_WHISPER_PATH does not point at an executable: %s", override)
			item.Hint = "Point SCRIBE_WHISPER_PATH at a whisper-cli binary or unset it."
			return item
		}

		item.Status = StatusPass
		item.Message = fmt.Sprintf("Using engine override %s", override)
		return item
	}

	path, err := c.lookPath("whisper-cli")
	if err != nil {
		item.Status = StatusFail
		item.Message = "whisper-cli not found in PATH"
		item.Hint = "Install whisper.cpp, or set SCRIBE_WHISPER_PATH, or use --engine openai with an API key."
		return item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

func (c *Checker) checkModelDir(modelDir string) Item {
	item := Item{ID: "model_dir", Name: "Model directory"}

	if strings.TrimSpace(modelDir) == "" {
		item.Status = StatusFail
		item.Message = "Model directory is empty."
		item.Hint = "Set --model-dir or SCRIBE_MODEL_DIR."
		return item
	}

	info, err := c.stat(modelDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			item.Status = StatusPass
			item.Message = fmt.Sprintf("Model directory will be created on first download: %s", modelDir)
			return item
		}

		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot access model directory: %s", modelDir)
		item.Hint = "Check permissions for the model directory."
		return item
	}

	if !info.IsDir() {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Model path is not a directory: %s", modelDir)
		item.Hint = "Point --model-dir at a directory, not a file."
		return item
	}

	entries, err := c.readDir(modelDir)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot read model directory: %s", modelDir)
		item.Hint = "Check permissions for the model directory."
		return item
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".bin" || ext == ".gguf" {
			item.Status = StatusPass
			item.Message = fmt.Sprintf("Model files present in %s", modelDir)
			return item
		}
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("No models downloaded yet in %s", modelDir)
	item.Hint = "Run `scribe setup --model base` to fetch one ahead of time."
	return item
}

func (c *Checker) checkOutputDir(outputDir string) Item {
	item := Item{ID: "output_dir", Name: "Output directory"}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = StatusFail
		item.Message = "Output directory is empty."
		item.Hint = "Set an output directory where transcript files can be written."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for transcript export."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

func (c *Checker) checkManifest(path string) Item {
	item := Item{ID: "manifest", Name: "Requirements manifest"}

	if strings.TrimSpace(path) == "" {
		item.Status = StatusSkip
		item.Message = "No requirements manifest configured."
		return item
	}

	m, err := manifest.ParseFile(path)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Manifest does not parse: %v", err)
		item.Hint = "Fix the offending line; each entry must be <package><version specifier>."
		return item
	}

	if err := m.Validate(); err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Manifest is invalid: %v", err)
		item.Hint = "Remove the duplicate package declaration."
		return item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("%d requirements parsed from %s", len(m.Requirements), path)
	return item
}

// NewCheckerForTests creates a checker with injectable OS dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	readDir func(string) ([]os.DirEntry, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
	getenv func(string) string,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		readDir:    readDir,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
		getenv:     getenv,
	}
}
