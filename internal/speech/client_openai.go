package speech

import (
	"context"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient covers both directions: Whisper for transcription and the
// speech endpoint for synthesis.
type OpenAIClient struct {
	client   *openai.Client
	sttModel string
	language string
	voice    string
	format   string
}

type OpenAIOptions struct {
	STTModel string
	Language string
	Voice    string
	Format   string
}

func NewOpenAIClient(apiKey string, opts OpenAIOptions) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	return NewOpenAIClientWithConfig(openai.DefaultConfig(apiKey), opts), nil
}

// NewOpenAIClientWithConfig is used by tests to point at a fake server.
func NewOpenAIClientWithConfig(cfg openai.ClientConfig, opts OpenAIOptions) *OpenAIClient {
	if opts.STTModel == "" {
		opts.STTModel = openai.Whisper1
	}
	if opts.Voice == "" {
		opts.Voice = string(openai.VoiceAlloy)
	}
	if opts.Format == "" {
		opts.Format = string(openai.SpeechResponseFormatMp3)
	}
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(cfg),
		sttModel: opts.STTModel,
		language: opts.Language,
		voice:    opts.Voice,
		format:   opts.Format,
	}
}

func (c *OpenAIClient) Transcribe(ctx context.Context, filePath string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.sttModel,
		FilePath: filePath,
		Language: c.language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return resp.Text, nil
}

func (c *OpenAIClient) Synthesize(ctx context.Context, text, outPath string) error {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(c.voice),
		ResponseFormat: openai.SpeechResponseFormat(c.format),
	})
	if err != nil {
		return fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	return writeAudio(outPath, resp)
}

// writeAudio streams an engine response into a freshly created file.
func writeAudio(outPath string, r io.Reader) error {
	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write audio file: %w", err)
	}
	return out.Close()
}
