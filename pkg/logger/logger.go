package logger

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithComponent(name string) Logger
}

type Opts struct {
	Env       string
	SentryUrl string
}

type Impl struct {
	sl *slog.Logger
}

var _ Logger = (*Impl)(nil)

func New(opts Opts) *Impl {
	var zl zerolog.Logger
	level := slog.LevelDebug
	if opts.Env == "production" {
		zl = zerolog.New(os.Stderr).With().Timestamp().Logger()
		level = slog.LevelInfo
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}

	zerologHandler := slogzerolog.Option{
		Level:  level,
		Logger: &zl,
	}.NewZerologHandler()

	handlers := []slog.Handler{zerologHandler}

	if opts.SentryUrl != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryUrl,
			Environment: opts.Env,
		}); err != nil {
			zl.Warn().Err(err).Msg("Failed to initialize sentry, continuing without it")
		} else {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		}
	}

	return &Impl{sl: slog.New(slogmulti.Fanout(handlers...))}
}

func (i *Impl) Debug(msg string, args ...any) { i.sl.Debug(msg, args...) }
func (i *Impl) Info(msg string, args ...any)  { i.sl.Info(msg, args...) }
func (i *Impl) Warn(msg string, args ...any)  { i.sl.Warn(msg, args...) }
func (i *Impl) Error(msg string, args ...any) { i.sl.Error(msg, args...) }

func (i *Impl) WithComponent(name string) Logger {
	return &Impl{sl: i.sl.With("component", name)}
}

// Printf lets the fx framework report its lifecycle events through the logger.
func (i *Impl) Printf(format string, args ...interface{}) {
	i.sl.Debug(fmt.Sprintf(format, args...))
}
