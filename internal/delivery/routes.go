package delivery

import (
	"net/http"
	"time"

	"github.com/AnnaJiju/WeatherSpeak/internal/config"
	"github.com/AnnaJiju/WeatherSpeak/internal/metrics"
	"github.com/AnnaJiju/WeatherSpeak/internal/storage"
	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

type RouteOptions struct {
	ResponsesDir       string
	RateLimitPerMinute int
}

func NewRouter(h *Handler, rec *metrics.Recorder, log *zap.Logger, opts RouteOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(
		httputil.RecoverMiddleware,
		RequestLogger(log, rec),
		cors.Handler(cors.Options{
			AllowedOrigins:   config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)
	RegisterRoutes(r, h, rec, opts)
	return r
}

func RegisterRoutes(r chi.Router, h *Handler, rec *metrics.Recorder, opts RouteOptions) {
	r.Get("/", h.Root)
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", rec.Handler())

	// --- weather ---
	r.Get("/weather", h.Weather)

	// --- voice ---
	if opts.RateLimitPerMinute > 0 {
		r.With(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute)).
			Post("/process-audio", h.ProcessAudio)
	} else {
		r.Post("/process-audio", h.ProcessAudio)
	}

	// --- generated audio ---
	files := http.StripPrefix("/"+storage.URLPrefix+"/", noListing(http.FileServer(http.Dir(opts.ResponsesDir))))
	r.Method(http.MethodGet, "/"+storage.URLPrefix+"/*", files)
	r.Method(http.MethodHead, "/"+storage.URLPrefix+"/*", files)
}
