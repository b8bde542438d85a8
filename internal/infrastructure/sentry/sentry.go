package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// Config holds the Sentry client settings. An empty DSN disables reporting.
type Config struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// Service reports unexpected errors to Sentry. The zero value is a disabled
// service, safe to call.
type Service struct {
	initialized bool
}

// New initialises the Sentry client. Initialisation failures are logged and
// leave the service disabled.
func New(cfg Config, log zerolog.Logger) *Service {
	if cfg.DSN == "" {
		log.Info().Msg("SENTRY_DSN not set, error reporting disabled")
		return &Service{}
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		TracesSampleRate: cfg.SampleRate,
		EnableTracing:    cfg.SampleRate > 0,
	})
	if err != nil {
		log.Error().Err(err).Msg("sentry initialization failed")
		return &Service{}
	}

	log.Info().Str("environment", cfg.Environment).Msg("sentry initialized")
	return &Service{initialized: true}
}

// Enabled reports whether events are sent.
func (s *Service) Enabled() bool {
	return s != nil && s.initialized
}

// CaptureException sends err to Sentry with optional string tags.
func (s *Service) CaptureException(err error, tags map[string]string) {
	if !s.Enabled() || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush waits for buffered events to be sent.
func (s *Service) Flush(timeout time.Duration) bool {
	if !s.Enabled() {
		return true
	}
	return sentry.Flush(timeout)
}

// Recover reports a panic in the calling goroutine and re-panics.
func (s *Service) Recover() {
	if err := recover(); err != nil {
		if s.Enabled() {
			sentry.CurrentHub().Recover(err)
			sentry.Flush(2 * time.Second)
		}
		panic(err)
	}
}
