package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rvoicu/scribe/internal/audio"
	"github.com/rvoicu/scribe/internal/clipboard"
	"github.com/rvoicu/scribe/internal/config"
	"github.com/rvoicu/scribe/internal/logging"
	"github.com/rvoicu/scribe/internal/platform"
	"github.com/rvoicu/scribe/internal/version"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// knownLanguages mirrors the language menu of the interactive tool this CLI
// replaced. "auto" lets the model detect the language itself.
var knownLanguages = map[string]struct{}{
	"auto": {}, "en": {}, "ro": {}, "es": {}, "fr": {}, "de": {},
	"it": {}, "pt": {}, "ru": {}, "ja": {}, "ko": {}, "zh": {},
}

type appState struct {
	verbose      bool
	jsonLogs     bool
	noProgress   bool
	model        string
	modelDir     string
	language     string
	autoDownload bool
	engine       string
	save         bool
	outputPath   string
	copyEmpty    bool
	silenceGate  bool
	silenceDBFS  float64

	cfg    config.Config
	logger *zap.Logger

	transcribeFn func(ctx context.Context, audioPath string) (string, error)
	copyFn       func(ctx context.Context, value string) error
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		language:     "auto",
		autoDownload: true,
		engine:       "auto",
		silenceGate:  true,
		silenceDBFS:  -65,
	}
	app.transcribeFn = app.transcribeAudio
	app.copyFn = clipboard.CopyText

	cmd := &cobra.Command{
		Use:           "scribe",
		Short:         "Transcribe audio files with a Whisper speech-recognition model",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			app.cfg = cfg
			if app.engine == "auto" && cfg.DefaultEngine != "" {
				app.engine = strings.ToLower(cfg.DefaultEngine)
			}

			app.language = sanitizeLanguage(app.language)
			if _, ok := knownLanguages[app.language]; !ok {
				return fmt.Errorf("unsupported language %q (supported: %s)", app.language, strings.Join(languageCodes(), ", "))
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndEngineFlags(cmd, app)
	bindOutputFlags(cmd, app)

	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newModelsCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newManifestCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model name or model file path (empty auto-selects by language)")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindLanguageAndEngineFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code (auto|en|ro|es|fr|de|it|pt|ru|ja|ko|zh)")
	cmd.Flags().StringVar(&app.engine, "engine", app.engine, "Transcription engine: auto|local|openai")
}

func bindOutputFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.save, "save", app.save, "Save the transcript to a file with a provenance header")
	cmd.Flags().StringVarP(&app.outputPath, "output", "o", app.outputPath, "Transcript file path (implies --save)")
	cmd.Flags().BoolVar(&app.copyEmpty, "copy-empty", app.copyEmpty, "Copy blank transcripts to clipboard")
	cmd.Flags().BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Detect near-silent WAV audio and skip transcription")
	cmd.Flags().Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")
}

func (a *appState) modelStorageDir() (string, error) {
	override := a.modelDir
	if override == "" {
		override = a.cfg.ModelDir
	}

	dir, err := platform.ResolveModelDir(override)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) transcriptOutputDir() (string, error) {
	dir, err := platform.ResolveTranscriptDir(a.cfg.OutputDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) silenceGateTranscript(audioPath string) (string, bool) {
	if !a.silenceGate {
		return "", false
	}

	if !strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		return "", false
	}

	silent, metrics, err := audio.IsSilentWAV(audioPath, a.silenceDBFS)
	if err != nil {
		a.log().Warn("silence gate analysis failed; continuing transcription", zap.Error(err), zap.String("audio", audioPath))
		return "", false
	}

	if !silent {
		return "", false
	}

	a.log().Info(
		"audio considered silent; skipping transcription",
		zap.String("audio", audioPath),
		zap.Float64("rms_dbfs", metrics.RMSdBFS),
		zap.Float64("peak_dbfs", metrics.PeakdBFS),
		zap.Float64("threshold_dbfs", a.silenceDBFS),
	)

	return blankAudioToken, true
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return "auto"
	}
	return trimmed
}

func languageCodes() []string {
	codes := make([]string, 0, len(knownLanguages))
	for code := range knownLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
