package speech_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/AnnaJiju/WeatherSpeak/internal/config"
	"github.com/AnnaJiju/WeatherSpeak/internal/speech"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowSTT struct{}

func (slowSTT) Transcribe(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestServiceTimeoutBoundsEngines(t *testing.T) {
	svc := speech.NewService(slowSTT{}, speech.NewMockSynth(), 20*time.Millisecond)

	_, err := svc.Transcribe(context.Background(), "ignored.wav")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestServiceWithoutTimeoutUsesCallerContext(t *testing.T) {
	svc := speech.NewService(slowSTT{}, speech.NewMockSynth(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Transcribe(ctx, "ignored.wav")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMockEngines(t *testing.T) {
	svc := speech.NewService(speech.NewMockRecognizer(""), speech.NewMockSynth(), 0)

	text, err := svc.Transcribe(context.Background(), "x.wav")
	require.NoError(t, err)
	assert.Equal(t, speech.DefaultMockTranscript, text)

	out := filepath.Join(t.TempDir(), "reply.mp3")
	require.NoError(t, svc.Synthesize(context.Background(), "hello", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestMockSynthNeverOverwrites(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reply.mp3")
	require.NoError(t, os.WriteFile(out, []byte("first"), 0o600))

	err := speech.NewMockSynth().Synthesize(context.Background(), "second", out)
	require.Error(t, err)

	data, _ := os.ReadFile(out)
	assert.Equal(t, "first", string(data))
}

func TestOpenAIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/audio/transcriptions":
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "whisper-1", r.FormValue("model"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"text":"What is the weather in Tokyo"}`))
		case "/v1/audio/speech":
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte("ID3-fake-mp3"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	client := speech.NewOpenAIClientWithConfig(cfg, speech.OpenAIOptions{})

	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	require.NoError(t, os.WriteFile(in, []byte("RIFF"), 0o600))

	text, err := client.Transcribe(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "What is the weather in Tokyo", text)

	out := filepath.Join(dir, "out.mp3")
	require.NoError(t, client.Synthesize(context.Background(), "hi", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "ID3-fake-mp3", string(data))
}

func TestElevenLabsClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"sunny"}`, string(body))
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	client, err := speech.NewElevenLabsClient("el-key", "voice-1")
	require.NoError(t, err)
	client.WithBaseURL(srv.URL)

	out := filepath.Join(t.TempDir(), "out.mp3")
	require.NoError(t, client.Synthesize(context.Background(), "sunny", out))
	data, _ := os.ReadFile(out)
	assert.Equal(t, "mp3-bytes", string(data))
}

func TestElevenLabsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad key"}`))
	}))
	defer srv.Close()

	client, err := speech.NewElevenLabsClient("el-key", "")
	require.NoError(t, err)
	client.WithBaseURL(srv.URL)

	out := filepath.Join(t.TempDir(), "out.mp3")
	err = client.Synthesize(context.Background(), "sunny", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.NoFileExists(t, out)
}

func TestDeepgramClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))
		assert.Equal(t, "Token dg-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"weather for Paris"}]}]}}`))
	}))
	defer srv.Close()

	client, err := speech.NewDeepgramClient("dg-key", "", "")
	require.NoError(t, err)
	client.WithBaseURL(srv.URL)

	in := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(in, []byte("RIFF"), 0o600))

	text, err := client.Transcribe(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "weather for Paris", text)
}

func TestDeepgramEmptyTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"channels":[]}}`))
	}))
	defer srv.Close()

	client, err := speech.NewDeepgramClient("dg-key", "", "")
	require.NoError(t, err)
	client.WithBaseURL(srv.URL)

	in := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(in, []byte("RIFF"), 0o600))

	_, err = client.Transcribe(context.Background(), in)
	assert.ErrorContains(t, err, "empty transcript")
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExecRecognizer(t *testing.T) {
	script := writeScript(t, `echo '{"text":"weather at Rome"}'`+"\n")

	stt, err := speech.NewExecRecognizer(script, "base", "en")
	require.NoError(t, err)

	text, err := stt.Transcribe(context.Background(), "in.wav")
	require.NoError(t, err)
	assert.Equal(t, "weather at Rome", text)
}

func TestExecRecognizerFailure(t *testing.T) {
	script := writeScript(t, "echo boom >&2\nexit 3\n")

	stt, err := speech.NewExecRecognizer(script, "", "")
	require.NoError(t, err)

	_, err = stt.Transcribe(context.Background(), "in.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecSynth(t *testing.T) {
	// writes the value following --out
	script := writeScript(t, `while [ $# -gt 0 ]; do
  if [ "$1" = "--out" ]; then printf 'audio' > "$2"; fi
  shift
done
`)

	tts, err := speech.NewExecSynth(script, "")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, tts.Synthesize(context.Background(), "it is warm", out))
	data, _ := os.ReadFile(out)
	assert.Equal(t, "audio", string(data))
}

func TestExecCommandParsing(t *testing.T) {
	_, err := speech.NewExecRecognizer("", "", "")
	assert.Error(t, err)

	_, err = speech.NewExecSynth(`"unterminated`, "")
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.STT.Mode = "mock"
	cfg.TTS.Mode = "mock"

	svc, err := speech.NewFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, svc)

	cfg.STT.Mode = "openai"
	cfg.STT.OpenAIKey = ""
	_, err = speech.NewFromConfig(cfg)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	cfg.STT.Mode = "mock"
	cfg.TTS.Mode = "elevenlabs"
	_, err = speech.NewFromConfig(cfg)
	assert.ErrorContains(t, err, "ELEVENLABS_API_KEY")
}
