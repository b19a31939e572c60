package slogcustom

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// CustomHandler пишет записи slog в одну цветную строку для консоли.
type CustomHandler struct {
	l      *log.Logger
	mu     *sync.Mutex
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewCustomHandler создаёт обработчик, который пишет в out записи уровня не ниже level.
func NewCustomHandler(out io.Writer, level slog.Leveler) *CustomHandler {
	return &CustomHandler{
		l:     log.New(out, "", 0),
		mu:    &sync.Mutex{},
		level: level,
	}
}

func (c *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.HiBlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	var attrs strings.Builder
	for _, a := range c.attrs {
		writeAttr(&attrs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&attrs, c.prefix, a)
		return true
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	c.l.Println(
		r.Time.Format("15:04:05.000"),
		level,
		r.Message,
		strings.TrimSpace(attrs.String()),
	)
	return nil
}

func (c *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return c
	}

	clone := *c
	clone.attrs = make([]slog.Attr, 0, len(c.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, c.attrs...)
	for _, a := range attrs {
		a.Key = c.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (c *CustomHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}

	clone := *c
	clone.prefix = c.prefix + name + "."
	return &clone
}

func (c *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, groupPrefix, ga)
		}
		return
	}

	b.WriteString(color.GreenString(prefix + a.Key))
	b.WriteString("=")
	b.WriteString(fmt.Sprint(a.Value.Any()))
	b.WriteString(" ")
}
