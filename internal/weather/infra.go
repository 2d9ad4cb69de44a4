package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AnnaJiju/WeatherSpeak/internal/apperr"
	"github.com/AnnaJiju/WeatherSpeak/internal/metrics"
	json "github.com/goccy/go-json"
)

const (
	errMissingKey = "OPENWEATHER_API_KEY (or WEATHER_API_KEY) not set in environment"
	errEmptyCity  = "Empty city name provided"
	errNetwork    = "Network error when calling OpenWeather"
)

// StatusError is returned as-is when the provider answers with an error
// status whose body cannot be decoded.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather provider returned %s", e.Status)
}

type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	metrics *metrics.Recorder
}

// NewOpenWeatherClient builds the client once at startup. An empty apiKey is
// accepted; every lookup then fails with a config error.
func NewOpenWeatherClient(apiKey, baseURL string, timeout time.Duration, rec *metrics.Recorder) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		metrics: rec,
	}
}

type owmResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description *string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
}

type owmError struct {
	Cod     any `json:"cod"`
	Message any `json:"message"`
}

func (c *OpenWeatherClient) Lookup(ctx context.Context, city string) (Record, error) {
	rec, err := c.lookup(ctx, city)
	c.metrics.Lookup(err)
	return rec, err
}

func (c *OpenWeatherClient) lookup(ctx context.Context, city string) (Record, error) {
	if c.apiKey == "" {
		return Record{}, apperr.Config(errMissingKey)
	}

	cityInput := strings.TrimSpace(city)
	if cityInput == "" {
		return Record{}, apperr.InvalidInput(errEmptyCity)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Record{}, fmt.Errorf("parse weather url: %w", err)
	}
	q := u.Query()
	q.Set("q", cityInput)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Record{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Record{}, apperr.Network(errNetwork, stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Record{}, apperr.Network(errNetwork, err)
	}

	if resp.StatusCode >= 400 {
		// only a JSON object is a provider error payload; `null` decodes
		// without error and leaves pe nil
		var pe *owmError
		if err := json.Unmarshal(body, &pe); err != nil || pe == nil {
			return Record{}, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		}
		return Record{}, apperr.NotFoundOrProvider("OpenWeather error: %s %s", scalar(pe.Cod), scalar(pe.Message))
	}

	var data owmResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Record{}, fmt.Errorf("decode weather response: %w", err)
	}

	out := Record{
		City:      cityInput,
		TempC:     data.Main.Temp,
		FeelsLike: data.Main.FeelsLike,
		Humidity:  data.Main.Humidity,
		Raw:       json.RawMessage(body),
	}
	if data.Name != "" {
		out.City = data.Name
	}
	if len(data.Weather) > 0 {
		out.Description = data.Weather[0].Description
	}
	return out, nil
}

// stripURL drops the request URL from transport errors; it carries the key.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
