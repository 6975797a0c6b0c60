package logging

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Redacted replaces secrets in log output
const Redacted = "[REDACTED]"

// Setup configures the standard logrus logger.
// format is "text" or "json"; level is any logrus level name.
func Setup(out io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %v", level, err)
	}

	switch strings.ToLower(format) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q, expected text or json", format)
	}

	log.SetOutput(out)
	log.SetLevel(lvl)
	return nil
}

// RedactHook scrubs secrets from the message and string fields of every entry
type RedactHook struct {
	secrets []string
}

// NewRedactHook returns a hook for the non-empty secrets
func NewRedactHook(secrets ...string) *RedactHook {
	h := &RedactHook{}
	for _, s := range secrets {
		if s != "" {
			h.secrets = append(h.secrets, s)
		}
	}
	return h
}

// Levels implements log.Hook
func (h *RedactHook) Levels() []log.Level {
	return log.AllLevels
}

// Fire implements log.Hook
func (h *RedactHook) Fire(entry *log.Entry) error {
	if len(h.secrets) == 0 {
		return nil
	}
	entry.Message = h.Redact(entry.Message)
	for k, v := range entry.Data {
		switch value := v.(type) {
		case string:
			entry.Data[k] = h.Redact(value)
		case error:
			entry.Data[k] = h.Redact(value.Error())
		case fmt.Stringer:
			entry.Data[k] = h.Redact(value.String())
		}
	}
	return nil
}

// Redact replaces every secret in s
func (h *RedactHook) Redact(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, Redacted)
	}
	return s
}

// Install adds a RedactHook for secrets to the standard logger and returns it
func Install(secrets ...string) *RedactHook {
	h := NewRedactHook(secrets...)
	log.AddHook(h)
	return h
}
