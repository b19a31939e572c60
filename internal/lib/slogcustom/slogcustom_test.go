package slogcustom

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestCustomHandler_WritesMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCustomHandler(&buf, slog.LevelInfo))

	log.Info("quiz created", "quiz_id", "42", "questions", 3)

	line := buf.String()
	assert.Contains(t, line, "INFO:")
	assert.Contains(t, line, "quiz created")
	assert.Contains(t, line, "quiz_id=42")
	assert.Contains(t, line, "questions=3")
}

func TestCustomHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCustomHandler(&buf, slog.LevelWarn))

	log.Info("skipped")
	assert.Empty(t, buf.String())

	log.Error("written")
	assert.Contains(t, buf.String(), "ERROR:")
}

func TestCustomHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCustomHandler(&buf, slog.LevelDebug)).
		With("component", "http").
		WithGroup("request")

	log.Debug("handled", "method", "GET", slog.Group("route", "path", "/quizzes"))

	line := buf.String()
	assert.Contains(t, line, "component=http")
	assert.Contains(t, line, "request.method=GET")
	assert.Contains(t, line, "request.route.path=/quizzes")
}
