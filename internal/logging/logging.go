package logging

import (
	"io"
	"strings"

	"books-storefront/internal/config"

	"github.com/labstack/gommon/log"
)

const textHeader = "${time_rfc3339} ${level} ${prefix} ${short_file}:${line}"

// New builds the leveled logger shared by the services and the HTTP server.
func New(prefix string, cfg config.Log) *log.Logger {
	l := log.New(prefix)
	l.SetLevel(ParseLevel(cfg.Level))
	if strings.EqualFold(cfg.Format, "text") {
		l.SetHeader(textHeader)
	}
	return l
}

// Discard returns a logger that writes nowhere, for tests.
func Discard() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
