package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New はアプリ共通のロガーを作る。
// dev は見やすいコンソール出力、それ以外は JSON。
func New(env string, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, env, level)
}

func NewWithWriter(w io.Writer, env string, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if env == "dev" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "uptech-api").
		Logger()
}
