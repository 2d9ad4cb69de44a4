package speech

import (
	"fmt"
	"time"

	"github.com/AnnaJiju/WeatherSpeak/internal/config"
)

// NewFromConfig builds the engines selected in cfg. Missing credentials for
// the selected engines are startup errors.
func NewFromConfig(cfg config.Config) (*Service, error) {
	stt, err := newSTT(cfg.STT)
	if err != nil {
		return nil, fmt.Errorf("stt engine: %w", err)
	}
	tts, err := newTTS(cfg.TTS)
	if err != nil {
		return nil, fmt.Errorf("tts engine: %w", err)
	}
	return NewService(stt, tts, time.Duration(cfg.EngineTimeoutSeconds)*time.Second), nil
}

func newSTT(cfg config.STTConfig) (STTClient, error) {
	switch cfg.Mode {
	case "openai":
		c, err := NewOpenAIClient(cfg.OpenAIKey, OpenAIOptions{STTModel: cfg.Model, Language: cfg.Language})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "deepgram":
		c, err := NewDeepgramClient(cfg.DeepgramKey, cfg.Model, cfg.Language)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "exec":
		return NewExecRecognizer(cfg.Command, cfg.Model, cfg.Language)
	case "mock":
		return NewMockRecognizer(""), nil
	}
	return nil, fmt.Errorf("unknown stt mode %q", cfg.Mode)
}

func newTTS(cfg config.TTSConfig) (TTSClient, error) {
	switch cfg.Mode {
	case "openai":
		c, err := NewOpenAIClient(cfg.OpenAIKey, OpenAIOptions{Voice: cfg.Voice, Format: cfg.Format})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "elevenlabs":
		c, err := NewElevenLabsClient(cfg.ElevenLabsKey, cfg.Voice)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "exec":
		return NewExecSynth(cfg.Command, cfg.Voice)
	case "mock":
		return NewMockSynth(), nil
	}
	return nil, fmt.Errorf("unknown tts mode %q", cfg.Mode)
}
