package speech

import (
	"bytes"
	"context"
)

// DefaultMockTranscript is what the mock recognizer hears in every recording.
const DefaultMockTranscript = "What is the weather in London"

type mockRecognizer struct {
	text string
}

func NewMockRecognizer(text string) STTClient {
	if text == "" {
		text = DefaultMockTranscript
	}
	return &mockRecognizer{text: text}
}

func (m *mockRecognizer) Transcribe(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.text, nil
}

type mockSynth struct{}

func NewMockSynth() TTSClient {
	return &mockSynth{}
}

// Synthesize writes the text itself as the "audio" payload.
func (m *mockSynth) Synthesize(ctx context.Context, text, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAudio(outPath, bytes.NewReader([]byte(text)))
}
