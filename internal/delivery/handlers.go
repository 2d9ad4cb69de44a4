package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/AnnaJiju/WeatherSpeak/internal/apperr"
	"github.com/AnnaJiju/WeatherSpeak/internal/error_notificator"
	"github.com/AnnaJiju/WeatherSpeak/internal/pipeline"
	"github.com/AnnaJiju/WeatherSpeak/internal/weather"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	serviceName   = "weatherspeak"
	audioField    = "audio"
	formMemory    = 10 << 20
	rootMessage   = "Weather Voice Agent Backend Running"
	missingCity   = "Missing 'city' parameter"
	missingAudio  = "Missing 'audio' file"
	weatherPrefix = "Weather service error: "
	processPrefix = "Processing error: "
)

type AudioProcessor interface {
	ProcessAudio(ctx context.Context, up pipeline.Upload) (pipeline.Result, error)
}

type Handler struct {
	pipeline  AudioProcessor
	weather   weather.Lookup
	notifier  error_notificator.Notificator
	log       *logger.ZapLogger
	base      *zap.Logger
	maxUpload int64
}

func NewHandler(
	p AudioProcessor,
	wl weather.Lookup,
	notifier error_notificator.Notificator,
	base *zap.Logger,
	maxUpload int64,
) *Handler {
	if notifier == nil {
		notifier = error_notificator.Noop{}
	}
	if base == nil {
		base = zap.NewNop()
	}
	return &Handler{
		pipeline:  p,
		weather:   wl,
		notifier:  notifier,
		log:       logger.NewZapLogger(base.Sugar()),
		base:      base,
		maxUpload: maxUpload,
	}
}

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeDetail(w, http.StatusUnprocessableEntity, missingCity)
		return
	}

	rec, err := h.weather.Lookup(r.Context(), city)
	if err != nil {
		status := apperr.WeatherStatus.Status(err)
		detail := err.Error()
		if apperr.KindOf(err) == apperr.KindUnknown {
			detail = weatherPrefix + detail
		}
		h.fail(r, status, "weather lookup failed", err)
		writeDetail(w, status, detail)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"city":    rec.City,
		"weather": rec,
	})
}

func (h *Handler) ProcessAudio(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		if r.ContentLength > h.maxUpload {
			h.tooLarge(w, r.ContentLength)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.tooLarge(w, -1)
			return
		}
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err, Service: serviceName})
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(audioField)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing audio file", Error: err, Service: serviceName})
		writeDetail(w, http.StatusUnprocessableEntity, missingAudio)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(r, http.StatusInternalServerError, "read upload", err)
		writeDetail(w, http.StatusInternalServerError, processPrefix+err.Error())
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("audio received: %s (%s)", header.Filename, humanize.IBytes(uint64(len(data)))),
		Service: serviceName,
	})

	res, err := h.pipeline.ProcessAudio(r.Context(), pipeline.Upload{Filename: header.Filename, Data: data})
	if err != nil {
		status := apperr.PipelineStatus.Status(err)
		detail := err.Error()
		if status >= http.StatusInternalServerError {
			detail = processPrefix + detail
		}
		h.fail(r, status, "audio processing failed", err)
		writeDetail(w, status, detail)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) tooLarge(w http.ResponseWriter, size int64) {
	limit := humanize.IBytes(uint64(h.maxUpload))
	msg := "Upload exceeds the " + limit + " limit"
	if size > 0 {
		msg = fmt.Sprintf("Upload of %s exceeds the %s limit", humanize.IBytes(uint64(size)), limit)
	}
	h.log.Log(logger.LogEntry{Level: "warn", Message: msg, Service: serviceName})
	writeDetail(w, http.StatusRequestEntityTooLarge, msg)
}

// fail logs a request failure. Client errors are warnings; server errors carry
// a stack trace and are forwarded to the alert channel.
func (h *Handler) fail(r *http.Request, status int, msg string, err error) {
	if status < http.StatusInternalServerError {
		h.log.Log(logger.LogEntry{Level: "warn", Message: msg, Error: err, Service: serviceName})
		return
	}

	h.base.Error(msg,
		zap.Error(err),
		zap.String("kind", apperr.KindOf(err).String()),
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestID(r.Context())),
		zap.Stack("stack"),
	)
	_ = h.notifier.Notify(r.Context(), err, r.Method+" "+r.URL.Path+" request_id="+RequestID(r.Context()))
}
