package speech

import (
	"context"
	"time"
)

// STTClient turns a recorded audio file into text.
type STTClient interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

// TTSClient speaks text into an audio file written at outPath.
type TTSClient interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Service is the single entry point for both directions. It is built once at
// startup and shared by all requests.
type Service struct {
	stt     STTClient
	tts     TTSClient
	timeout time.Duration
}

// NewService wires the engines. A zero timeout leaves engine calls bounded
// only by the caller's context.
func NewService(stt STTClient, tts TTSClient, timeout time.Duration) *Service {
	return &Service{
		stt:     stt,
		tts:     tts,
		timeout: timeout,
	}
}

func (s *Service) Transcribe(ctx context.Context, filePath string) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.stt.Transcribe(ctx, filePath)
}

func (s *Service) Synthesize(ctx context.Context, text, outPath string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.tts.Synthesize(ctx, text, outPath)
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
