// Package logger envuelve zerolog con la configuración estándar de la API:
// consola legible en desarrollo, JSON estructurado en producción.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config nivel y formato de salida del logger.
type Config struct {
	Env   string // development escribe a consola; cualquier otro valor, JSON
	Level string // trace, debug, info, warn, error
}

// Logger logger estructurado de la aplicación, inyectable en los casos de uso.
type Logger struct {
	zl zerolog.Logger
}

// New construye el logger según el entorno. Además redirige el logger global
// de zerolog, así las dependencias que loguean por `log.Logger` salen con el
// mismo formato.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zl := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	log.Logger = zl

	return &Logger{zl: zl}
}

// Un nivel desconocido cae a info.
func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With abre un sublogger con campos fijos (ej. request_id, venta).
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Zerolog expone el logger interno para las piezas que necesitan la API cruda.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
