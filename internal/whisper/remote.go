package whisper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var ErrMissingAPIKey = errors.New("OpenAI API key is not configured")

// RemoteEngine transcribes via the OpenAI hosted whisper-1 endpoint. It needs
// no local model file; ModelPath in requests is ignored.
type RemoteEngine struct {
	client remoteClient
	logger *zap.Logger
}

type remoteClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

func NewRemoteEngine(apiKey string, logger *zap.Logger) (*RemoteEngine, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RemoteEngine{
		client: openai.NewClient(apiKey),
		logger: logger,
	}, nil
}

func (e *RemoteEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (TranscriptionResult, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return TranscriptionResult{}, errors.New("audio path is required")
	}

	audioReq := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: req.AudioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	lang := strings.TrimSpace(req.Language)
	if lang != "" && lang != "auto" {
		audioReq.Language = lang
	}

	e.log().Debug("requesting hosted transcription", zap.String("audio", req.AudioPath), zap.String("language", lang))
	resp, err := e.client.CreateTranscription(ctx, audioReq)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("hosted transcription failed: %w", err)
	}

	return TranscriptionResult{
		Text:             strings.TrimSpace(resp.Text),
		DetectedLanguage: resp.Language,
	}, nil
}

func (e *RemoteEngine) log() *zap.Logger {
	if e.logger == nil {
		return zap.NewNop()
	}
	return e.logger
}
