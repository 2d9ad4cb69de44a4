package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-shellwords"
)

// Local engines are driven as child processes. Calls are serialized because a
// locally loaded model is not assumed to be reentrant.

type execRecognizer struct {
	cmd      []string
	model    string
	language string
	mu       sync.Mutex
}

type execTranscript struct {
	Text string `json:"text"`
}

func parseCommand(kind, command string) ([]string, error) {
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse %s command: %w", kind, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s command is empty", kind)
	}
	return args, nil
}

// NewExecRecognizer runs `<command> --audio <file> [--model m] [--language l]`
// and reads {"text": "..."} from stdout.
func NewExecRecognizer(command, model, language string) (STTClient, error) {
	args, err := parseCommand("stt", command)
	if err != nil {
		return nil, err
	}
	return &execRecognizer{cmd: args, model: model, language: language}, nil
}

func (r *execRecognizer) Transcribe(ctx context.Context, filePath string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmdArgs := append([]string{}, r.cmd[1:]...)
	cmdArgs = append(cmdArgs, "--audio", filePath)
	if r.model != "" {
		cmdArgs = append(cmdArgs, "--model", r.model)
	}
	if r.language != "" {
		cmdArgs = append(cmdArgs, "--language", r.language)
	}

	command := exec.CommandContext(ctx, r.cmd[0], cmdArgs...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("stt command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var resp execTranscript
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return "", fmt.Errorf("decode stt response: %w", err)
	}
	return resp.Text, nil
}

type execSynth struct {
	cmd   []string
	voice string
	mu    sync.Mutex
}

// NewExecSynth runs `<command> --text <text> --out <file> [--voice v]`; the
// command must write the audio file itself.
func NewExecSynth(command, voice string) (TTSClient, error) {
	args, err := parseCommand("tts", command)
	if err != nil {
		return nil, err
	}
	return &execSynth{cmd: args, voice: voice}, nil
}

func (e *execSynth) Synthesize(ctx context.Context, text, outPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmdArgs := append([]string{}, e.cmd[1:]...)
	cmdArgs = append(cmdArgs, "--text", text, "--out", outPath)
	if e.voice != "" {
		cmdArgs = append(cmdArgs, "--voice", e.voice)
	}

	command := exec.CommandContext(ctx, e.cmd[0], cmdArgs...)
	var stderr bytes.Buffer
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("tts command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("tts command produced no audio: %w", err)
	}
	return nil
}
