package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/AnnaJiju/WeatherSpeak/internal/audio"
	json "github.com/goccy/go-json"
)

const deepgramBaseURL = "https://api.deepgram.com"

type DeepgramClient struct {
	apiKey   string
	model    string
	language string
	baseURL  string
	client   *http.Client
}

func NewDeepgramClient(apiKey, model, language string) (*DeepgramClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPGRAM_API_KEY not set")
	}
	if model == "" {
		model = "nova-2"
	}
	return &DeepgramClient{
		apiKey:   apiKey,
		model:    model,
		language: language,
		baseURL:  deepgramBaseURL,
		client:   &http.Client{},
	}, nil
}

func (c *DeepgramClient) WithBaseURL(u string) *DeepgramClient {
	c.baseURL = u
	return c
}

func (c *DeepgramClient) Transcribe(ctx context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	q := url.Values{}
	q.Set("model", c.model)
	q.Set("smart_format", "true")
	if c.language != "" {
		q.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/listen?"+q.Encode(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	ct := audio.ContentType(filePath)
	if ct == "application/octet-stream" {
		ct = "audio/wav"
	}
	req.Header.Set("Content-Type", ct)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepgram error: status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode deepgram: %w", err)
	}

	if len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("empty transcript")
	}
	return parsed.Results.Channels[0].Alternatives[0].Transcript, nil
}
