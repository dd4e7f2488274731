package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plexlist/internal/tasks"
)

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is never a terminal")
	}
}

func TestProgressRenderer(t *testing.T) {
	t.Run("terminal draws a bar while scanning", func(t *testing.T) {
		var buf bytes.Buffer
		r := newProgressRenderer(&buf, nil, true)

		r.Render(tasks.ProgressUpdate{Phase: tasks.ScanItems, Section: "Movies", Step: 5, Total: 10})

		out := buf.String()
		if !strings.Contains(out, "5/10") {
			t.Errorf("expected step counter, got %q", out)
		}
		if !strings.HasPrefix(out, clearLine) {
			t.Errorf("expected line to be cleared before drawing, got %q", out)
		}
		if !r.drawn {
			t.Error("expected line to be marked as drawn")
		}
	})

	t.Run("terminal clears on section done", func(t *testing.T) {
		var buf bytes.Buffer
		r := newProgressRenderer(&buf, nil, true)

		r.Render(tasks.ProgressUpdate{Phase: tasks.LoadItems, Message: "Loading"})
		buf.Reset()
		r.Render(tasks.ProgressUpdate{Phase: tasks.SectionDone, Message: "Found 1 matching item"})

		if buf.String() != clearLine {
			t.Errorf("expected only a clear sequence, got %q", buf.String())
		}
		if r.drawn {
			t.Error("expected line to be cleared")
		}
	})

	t.Run("non-terminal logs at debug level", func(t *testing.T) {
		var out, logs bytes.Buffer
		logger := log.New(&logs)
		logger.SetLevel(log.DebugLevel)
		r := newProgressRenderer(&out, logger, false)

		r.Render(tasks.ProgressUpdate{Phase: tasks.ResolveSection, Section: "Movies", Message: "Resolving section"})

		if out.Len() != 0 {
			t.Errorf("expected nothing on output, got %q", out.String())
		}
		if !strings.Contains(logs.String(), "Resolving section") {
			t.Errorf("expected debug log line, got %q", logs.String())
		}
		if !strings.Contains(logs.String(), "resolve_section") {
			t.Errorf("expected phase in log line, got %q", logs.String())
		}
	})

	t.Run("Consume drains until closed", func(t *testing.T) {
		var buf bytes.Buffer
		r := newProgressRenderer(&buf, nil, true)

		updates := make(chan tasks.ProgressUpdate, 3)
		updates <- tasks.ProgressUpdate{Phase: tasks.ResolveSection, Message: "Resolving"}
		updates <- tasks.ProgressUpdate{Phase: tasks.ScanItems, Section: "TV", Step: 1, Total: 2}
		close(updates)

		r.Consume(updates)

		if r.drawn {
			t.Error("expected line to be cleared after the channel closed")
		}
		if !strings.HasSuffix(buf.String(), clearLine) {
			t.Errorf("expected final clear, got %q", buf.String())
		}
	})
}

func TestPalette(t *testing.T) {
	p := NewPalette("#000000", "#000000", "#000000", "#000000", "#000000")
	for _, got := range []string{p.Title("a"), p.OK("a"), p.Err("a"), p.Warn("a"), p.Help("a")} {
		if !strings.Contains(got, "a") {
			t.Errorf("expected rendered text to contain input, got %q", got)
		}
	}
}
