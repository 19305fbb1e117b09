package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rvoicu/scribe/internal/audio"
	"github.com/rvoicu/scribe/internal/clipboard"
	"github.com/rvoicu/scribe/internal/download"
	"github.com/rvoicu/scribe/internal/transcript"
	"github.com/rvoicu/scribe/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const blankAudioToken = transcript.BlankAudioToken

func newTranscribeCmd(app *appState) *cobra.Command {
	var copyToClipboard bool

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTranscription(cmd, args[0], copyToClipboard)
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndEngineFlags(cmd, app)
	bindOutputFlags(cmd, app)
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy transcript to clipboard")
	return cmd
}

func (a *appState) runTranscription(cmd *cobra.Command, audioPath string, copyToClipboard bool) error {
	transcribeFn := a.transcribeFn
	if transcribeFn == nil {
		transcribeFn = a.transcribeAudio
	}

	copyFn := a.copyFn
	if copyFn == nil {
		copyFn = clipboard.CopyText
	}

	text, err := transcribeFn(cmd.Context(), audioPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	if transcript.IsBlank(text) {
		a.log().Warn(noSpeechHint())
	}

	if a.save || a.outputPath != "" {
		dest := a.outputPath
		if dest == "" {
			dir, err := a.transcriptOutputDir()
			if err != nil {
				return err
			}
			dest = transcript.DefaultPath(dir)
		}

		if err := transcript.Save(dest, audioPath, text); err != nil {
			return err
		}
		a.log().Info("transcript saved", zap.String("path", dest))
	}

	if copyToClipboard {
		if transcript.IsBlank(text) && !a.copyEmpty {
			return nil
		}

		if err := copyFn(cmd.Context(), text); err != nil {
			if errors.Is(err, clipboard.ErrUnavailable) {
				a.log().Warn("clipboard tool unavailable; transcript left on stdout")
				return nil
			}
			return err
		}
		a.log().Info("transcript copied to clipboard")
	}

	return nil
}

func (a *appState) transcribeAudio(ctx context.Context, audioPath string) (string, error) {
	info, err := audio.ValidateFile(audioPath)
	if err != nil {
		return "", err
	}
	a.log().Debug("audio file validated", zap.String("audio", info.Path), zap.Float64("size_mb", info.SizeMB()))

	if text, skipped := a.silenceGateTranscript(info.Path); skipped {
		return text, nil
	}

	engine, needsModel, err := a.buildEngine()
	if err != nil {
		return "", err
	}

	modelPath := ""
	modelName := "openai/whisper-1"
	if needsModel {
		resolved, err := a.ensureModelAvailable(ctx)
		if err != nil {
			return "", err
		}
		modelPath = resolved.Path
		modelName = resolved.Name
		if resolved.IsCustomPath {
			modelName = resolved.Path
		}
	}

	a.log().Info("transcribing...", zap.String("audio", info.Path), zap.String("model", modelName), zap.String("language", a.language))
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()

	result, err := engine.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath: info.Path,
		ModelPath: modelPath,
		Language:  a.language,
	})
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return "", err
	}

	a.log().Info("transcription finished", zap.Duration("elapsed", time.Since(started)))
	if a.language == "auto" && result.DetectedLanguage != "" {
		a.log().Info("detected language", zap.String("language", result.DetectedLanguage))
	}

	return result.Text, nil
}

// buildEngine picks the transcription engine. The second return value tells
// the caller whether a local model file must be resolved first.
func (a *appState) buildEngine() (whisper.Engine, bool, error) {
	switch strings.ToLower(strings.TrimSpace(a.engine)) {
	case "local":
		engine, err := whisper.NewExecEngine(a.log())
		return engine, true, err
	case "openai":
		engine, err := whisper.NewRemoteEngine(a.cfg.OpenAIAPIKey, a.log())
		if err != nil {
			if errors.Is(err, whisper.ErrMissingAPIKey) {
				return nil, false, fmt.Errorf("engine openai requires OPENAI_API_KEY (environment or .env file)")
			}
			return nil, false, err
		}
		return engine, false, nil
	case "auto", "":
		if engine, err := whisper.NewExecEngine(a.log()); err == nil {
			return engine, true, nil
		}
		if a.cfg.HasAPIKey() {
			a.log().Info("local whisper engine not found; falling back to OpenAI API")
			engine, err := whisper.NewRemoteEngine(a.cfg.OpenAIAPIKey, a.log())
			return engine, false, err
		}
		return nil, false, errors.New("no transcription engine available: install whisper.cpp (whisper-cli) or set OPENAI_API_KEY")
	default:
		return nil, false, fmt.Errorf("unknown engine %q (supported: auto, local, openai)", a.engine)
	}
}

func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	modelRef := a.model
	if strings.TrimSpace(modelRef) == "" {
		modelRef = whisper.DefaultModelFor(a.language)
		a.log().Info("auto-selected model for language", zap.String("model", modelRef), zap.String("language", a.language))
	}

	resolved, err := whisper.ResolveModel(modelRef, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.autoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `scribe setup --model %s` or use --auto-download=true", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.DownloadFile(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		ChecksumURL:    resolved.SHA256URL,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}

func noSpeechHint() string {
	return "No speech detected. Check the audio file and language selection, then try again."
}
