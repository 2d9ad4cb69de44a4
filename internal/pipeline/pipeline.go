// Package pipeline turns an uploaded voice recording into a spoken weather
// report: transcription, location extraction, weather lookup, speech synthesis.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AnnaJiju/WeatherSpeak/internal/apperr"
	"github.com/AnnaJiju/WeatherSpeak/internal/audio"
	"github.com/AnnaJiju/WeatherSpeak/internal/location"
	"github.com/AnnaJiju/WeatherSpeak/internal/metrics"
	"github.com/AnnaJiju/WeatherSpeak/internal/storage"
	"github.com/AnnaJiju/WeatherSpeak/internal/weather"
	"go.uber.org/zap"
)

const (
	noLocationMsg    = "No location found in transcribed text. Please mention a city name."
	emptyLocationMsg = "Location is empty after cleanup. Please mention a city name."
	defaultInputExt  = ".wav"
)

// Speech is the pair of engines the pipeline drives. *speech.Service satisfies it.
type Speech interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
	Synthesize(ctx context.Context, text, outPath string) error
}

type Upload struct {
	Filename string
	Data     []byte
}

type Result struct {
	Success         bool   `json:"success"`
	AudioPath       string `json:"audio_path"`
	TranscribedText string `json:"transcribed_text"`
	Location        string `json:"location"`
	WeatherText     string `json:"weather_text"`
	AudioURL        string `json:"audio_url,omitempty"`
}

type Pipeline struct {
	speech  Speech
	weather weather.Lookup
	store   *storage.Store
	tempDir string
	format  string
	rec     *metrics.Recorder
	log     *zap.Logger
}

type Options struct {
	TempDir string
	// Format is the extension of synthesized files, "mp3" when empty.
	Format string
}

func New(sp Speech, wl weather.Lookup, store *storage.Store, opts Options, rec *metrics.Recorder, log *zap.Logger) *Pipeline {
	if opts.TempDir == "" {
		opts.TempDir = "."
	}
	if opts.Format == "" {
		opts.Format = "mp3"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		speech:  sp,
		weather: wl,
		store:   store,
		tempDir: opts.TempDir,
		format:  opts.Format,
		rec:     rec,
		log:     log,
	}
}

// ProcessAudio runs every step in order and stops at the first failure.
// The temporary input file is removed on every path.
func (p *Pipeline) ProcessAudio(ctx context.Context, up Upload) (Result, error) {
	tempPath, err := p.writeTemp(up)
	if err != nil {
		return Result{}, apperr.Processing(err)
	}
	defer p.removeTemp(tempPath)

	started := time.Now()
	text, err := p.speech.Transcribe(ctx, tempPath)
	p.rec.Step("transcribe", started)
	if err != nil {
		return Result{}, apperr.Processing(fmt.Errorf("transcribe: %w", err))
	}
	p.log.Info("transcribed", zap.String("text", text))

	loc, ok := location.Extract(text)
	if !ok {
		return Result{}, apperr.InvalidInput(noLocationMsg)
	}
	loc = location.Sanitize(loc)
	if loc == "" {
		return Result{}, apperr.InvalidInput(emptyLocationMsg)
	}

	started = time.Now()
	wr, err := p.weather.Lookup(ctx, loc)
	p.rec.Step("weather", started)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInvalidInput {
			return Result{}, err
		}
		return Result{}, apperr.Processing(err)
	}

	sentence := Sentence(wr)

	name, outPath := p.store.NewOutput(p.format)
	started = time.Now()
	err = p.speech.Synthesize(ctx, sentence, outPath)
	p.rec.Step("synthesize", started)
	if err != nil {
		if rmErr := p.store.Remove(outPath); rmErr != nil {
			p.log.Warn("partial response not removed", zap.String("path", outPath), zap.Error(rmErr))
		}
		return Result{}, apperr.Processing(fmt.Errorf("synthesize: %w", err))
	}

	res := Result{
		Success:         true,
		AudioPath:       p.store.PublicPath(name),
		TranscribedText: text,
		Location:        loc,
		WeatherText:     sentence,
	}

	if p.store.MirrorEnabled() {
		started = time.Now()
		url, err := p.store.Mirror(ctx, outPath)
		p.rec.Step("mirror", started)
		if err != nil {
			p.log.Warn("response mirror failed", zap.String("file", name), zap.Error(err))
		} else {
			res.AudioURL = url
		}
	}

	return res, nil
}

func (p *Pipeline) writeTemp(up Upload) (string, error) {
	ext, ok := audio.Ext(up.Filename)
	if !ok {
		ext = defaultInputExt
	}
	tempPath := filepath.Join(p.tempDir, storage.UniqueName("temp", ext))

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp audio: %w", err)
	}
	if _, err := f.Write(up.Data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("write temp audio: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("close temp audio: %w", err)
	}
	return tempPath, nil
}

func (p *Pipeline) removeTemp(tempPath string) {
	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		p.log.Warn("temp audio not removed", zap.String("path", tempPath), zap.Error(err))
	}
}

// Sentence renders the spoken report. Missing fields print as Go prints a nil value.
func Sentence(r weather.Record) string {
	return fmt.Sprintf(
		"The weather in %s is %v with a temperature of %v°C, feels like %v°C, and humidity of %v%%.",
		r.City,
		value(r.Description),
		value(r.TempC),
		value(r.FeelsLike),
		value(r.Humidity),
	)
}

func value[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
